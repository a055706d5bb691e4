// Package store provides durable Context persistence across turns
// (spec §3: "Context is owned by the caller... persisted across
// turns"). Adapted from internal/memory/sqlite.go's schema/connection
// idiom: the vector-embedding table and semantic-recall methods are
// dropped entirely (the Language's memory tiers are plain key→Literal
// maps, no embeddings), leaving one row per (bot_id, channel_id)
// holding the serialized Context as JSON.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/value"
)

// Store persists one Context per (bot_id, channel_id) pair.
type Store struct {
	db *sql.DB
}

// Config configures the SQLite context store.
type Config struct {
	Path string
}

// Open creates or opens a SQLite-backed context store at cfg.Path.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contexts (
		bot_id     TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		flow       TEXT NOT NULL,
		step       TEXT NOT NULL,
		current    TEXT NOT NULL,
		metadata   TEXT NOT NULL,
		hold       TEXT,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (bot_id, channel_id)
	);
	CREATE INDEX IF NOT EXISTS idx_contexts_updated ON contexts(updated_at);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// holdRow is the JSON-serializable shape written to the hold column;
// FormatMem (spec §4.D) handles the Literal↔JSON edge for each step
// variable, so the row itself only needs the flat fields around it.
type holdRow struct {
	InstructionIndex int            `json:"instruction_index"`
	StepVars         map[string]any `json:"step_vars"`
}

// Save serializes ctx into the (bot_id, channel_id) row, replacing any
// prior value. Uses format_mem (spec §4.D) for the current/metadata
// projections so a later Load round-trips content_type tags exactly.
func (s *Store) Save(botID, channelID string, ctx *data.Context) error {
	currentJSON, err := json.Marshal(value.FormatMem(ctx.Current, true))
	if err != nil {
		return fmt.Errorf("failed to encode current tier: %w", err)
	}
	metaObj := value.NewObject(value.CTObject)
	for k, v := range ctx.Metadata {
		metaObj.Set(k, v)
	}
	metaJSON, err := json.Marshal(value.FormatMem(metaObj, true))
	if err != nil {
		return fmt.Errorf("failed to encode metadata tier: %w", err)
	}

	var holdJSON sql.NullString
	if ctx.Hold != nil {
		vars := make(map[string]any, len(ctx.Hold.StepVars))
		for k, v := range ctx.Hold.StepVars {
			vars[k] = value.FormatMem(v, true)
		}
		raw, err := json.Marshal(holdRow{InstructionIndex: ctx.Hold.InstructionIndex, StepVars: vars})
		if err != nil {
			return fmt.Errorf("failed to encode hold: %w", err)
		}
		holdJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO contexts (bot_id, channel_id, flow, step, current, metadata, hold, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bot_id, channel_id) DO UPDATE SET
			flow = excluded.flow, step = excluded.step, current = excluded.current,
			metadata = excluded.metadata, hold = excluded.hold, updated_at = excluded.updated_at
	`, botID, channelID, ctx.Flow, ctx.Step, string(currentJSON), string(metaJSON), holdJSON, time.Now())
	return err
}

// Load reconstructs a Context for (bot_id, channel_id), or returns
// (nil, nil) if no row exists yet — callers should fall back to
// data.NewContext(defaultFlow, "start") in that case.
func (s *Store) Load(botID, channelID string) (*data.Context, error) {
	var flow, step, currentJSON, metaJSON string
	var holdJSON sql.NullString
	err := s.db.QueryRow(`
		SELECT flow, step, current, metadata, hold FROM contexts
		WHERE bot_id = ? AND channel_id = ?
	`, botID, channelID).Scan(&flow, &step, &currentJSON, &metaJSON, &holdJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	var currentRaw, metaRaw any
	if err := json.Unmarshal([]byte(currentJSON), &currentRaw); err != nil {
		return nil, fmt.Errorf("failed to decode current tier: %w", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &metaRaw); err != nil {
		return nil, fmt.Errorf("failed to decode metadata tier: %w", err)
	}

	ctx := data.NewContext(flow, step)
	ctx.Current = value.LoadMem(currentRaw)
	metaLit := value.LoadMem(metaRaw)
	for _, k := range metaLit.ObjKeys {
		ctx.Metadata[k] = metaLit.Obj[k]
	}

	if holdJSON.Valid {
		var hr holdRow
		if err := json.Unmarshal([]byte(holdJSON.String), &hr); err != nil {
			return nil, fmt.Errorf("failed to decode hold: %w", err)
		}
		vars := make(map[string]*value.Literal, len(hr.StepVars))
		for k, v := range hr.StepVars {
			vars[k] = value.LoadMem(v)
		}
		ctx.Hold = &data.Hold{InstructionIndex: hr.InstructionIndex, StepVars: vars}
	}

	return ctx, nil
}

// Delete removes a persisted Context, used by the CLI's `reset`
// helper and by tests exercising a clean-slate turn.
func (s *Store) Delete(botID, channelID string) error {
	_, err := s.db.Exec(`DELETE FROM contexts WHERE bot_id = ? AND channel_id = ?`, botID, channelID)
	return err
}

// List returns every channel_id persisted for botID, newest first.
func (s *Store) List(botID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT channel_id FROM contexts WHERE bot_id = ? ORDER BY updated_at DESC
	`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RawMetadataField reads a single dotted path out of a persisted
// context's metadata blob without a full unmarshal, using gjson for
// the projection.
func (s *Store) RawMetadataField(botID, channelID, path string) (string, bool, error) {
	var metaJSON string
	err := s.db.QueryRow(`
		SELECT metadata FROM contexts WHERE bot_id = ? AND channel_id = ?
	`, botID, channelID).Scan(&metaJSON)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	res := gjson.Get(metaJSON, "_content."+path)
	if !res.Exists() {
		return "", false, nil
	}
	return res.String(), true, nil
}

// PatchMetadataField overwrites a single dotted path in a persisted
// context's metadata blob in place, without decoding the full Literal
// tree — the write-side counterpart to RawMetadataField, for callers
// (e.g. a webhook handler) that only need to poke one field.
func (s *Store) PatchMetadataField(botID, channelID, path, rawValue string) error {
	var metaJSON string
	err := s.db.QueryRow(`
		SELECT metadata FROM contexts WHERE bot_id = ? AND channel_id = ?
	`, botID, channelID).Scan(&metaJSON)
	if err != nil {
		return fmt.Errorf("failed to load metadata for patch: %w", err)
	}

	patched, err := sjson.Set(metaJSON, "_content."+path, rawValue)
	if err != nil {
		return fmt.Errorf("failed to patch metadata field %q: %w", path, err)
	}

	_, err = s.db.Exec(`
		UPDATE contexts SET metadata = ?, updated_at = ? WHERE bot_id = ? AND channel_id = ?
	`, patched, time.Now(), botID, channelID)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
