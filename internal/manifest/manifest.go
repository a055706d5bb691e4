// Package manifest loads a bot manifest: a YAML-frontmatter Markdown
// file (bot.yaml/BOT.md) describing a bot's name, default flow, and
// constituent flow files, adapted from internal/skills/skills.go's
// frontmatter-split parsing — the Language's Invocation contract
// (spec §6) takes "a mapping flow-name → source text" as input, and a
// manifest is how a real CLI turns a directory of .csml files into
// that mapping.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes a bot: its identity plus the flow files that
// make up its bot map.
type Manifest struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	DefaultFlow string            `yaml:"default_flow"`
	Flows       map[string]string `yaml:"flows"` // flow name -> relative .csml path
	Metadata    map[string]string `yaml:"metadata,omitempty"`

	// Notes, the free-text body following the frontmatter. Optional;
	// mirrors a Skill's Instructions field but carries no runtime
	// meaning for the interpreter.
	Notes string `yaml:"-"`

	// Dir is the directory the manifest was loaded from; flow paths
	// in Flows are resolved relative to it.
	Dir string `yaml:"-"`
}

// Load reads and parses a bot manifest file.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(string(content))
	if err != nil {
		return nil, err
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse parses manifest file content: YAML frontmatter delimited by
// `---` lines, followed by an optional free-text body.
func Parse(content string) (*Manifest, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	if err := yaml.Unmarshal([]byte(frontmatter), m); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("missing required field: name")
	}
	if m.DefaultFlow == "" {
		return nil, fmt.Errorf("missing required field: default_flow")
	}
	if len(m.Flows) == 0 {
		return nil, fmt.Errorf("missing required field: flows")
	}
	if _, ok := m.Flows[m.DefaultFlow]; !ok {
		return nil, fmt.Errorf("default_flow %q is not listed in flows", m.DefaultFlow)
	}

	m.Notes = strings.TrimSpace(body)
	return m, nil
}

// splitFrontmatter extracts YAML frontmatter from a manifest file,
// identical in shape to skills.Parse's splitFrontmatter.
func splitFrontmatter(content string) (frontmatter, body string, err error) {
	lines := strings.Split(content, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", fmt.Errorf("missing frontmatter delimiter")
	}

	var fmLines []string
	var bodyStart int
	inFrontmatter := true

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			inFrontmatter = false
			bodyStart = i + 1
			break
		}
		if inFrontmatter {
			fmLines = append(fmLines, lines[i])
		}
	}

	if inFrontmatter {
		return "", "", fmt.Errorf("unclosed frontmatter")
	}

	frontmatter = strings.Join(fmLines, "\n")
	if bodyStart < len(lines) {
		body = strings.Join(lines[bodyStart:], "\n")
	}
	return frontmatter, body, nil
}

// LoadBot reads every flow file named in the manifest and returns the
// mapping flow-name→source text that spec §6's Invocation contract
// takes as input.
func (m *Manifest) LoadBot() (map[string]string, error) {
	bot := make(map[string]string, len(m.Flows))
	for name, rel := range m.Flows {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.Dir, rel)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("flow %q: %w", name, err)
		}
		bot[name] = string(src)
	}
	return bot, nil
}

// Discover finds bot manifests directly under dir (one level deep),
// mirroring skills.Discover's shallow-scan idiom.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "bot.yaml" || name == "bot.yml" || strings.HasSuffix(name, ".bot.yaml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
