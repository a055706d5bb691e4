package builtins

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

var fnClient = &http.Client{Timeout: 30 * time.Second}

// fn implements Fn(fn_id, kv...): it invokes a remote function hosted
// behind the turn's api_info endpoint, passing fn_id plus the
// flattened key/value argument pairs as a JSON body, and returns the
// parsed response. Grounded on internal/value/methods_http.go's
// retried-POST idiom; this builtin is the one caller that needs
// Context rather than only its arguments.
func fn(ctx *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) == 0 || args[0].Kind != value.StringKind {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Fn expects a function id string as its first argument")
	}
	if ctx.APIInfo == nil || ctx.APIInfo.Endpoint == "" {
		return nil, langerr.New(langerr.Http, iv, "Fn called with no api_info configured")
	}

	payload := map[string]any{"fn_id": args[0].Str}
	kv := value.NewObject(value.CTObject)
	for i := 1; i+1 < len(args); i += 2 {
		if args[i].Kind != value.StringKind {
			return nil, langerr.New(langerr.TypeMismatch, iv, "Fn keyword arguments must be named with string keys")
		}
		kv.Set(args[i].Str, args[i+1])
	}
	payload["args"] = value.ToJSON(kv)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, langerr.Wrap(langerr.Internal, iv, err, "Fn failed to encode request")
	}

	operation := func() (*http.Response, error) {
		req, err := http.NewRequest(http.MethodPost, ctx.APIInfo.Endpoint, bytes.NewReader(raw))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range ctx.APIInfo.Credentials {
			req.Header.Set(k, v)
		}
		return fnClient.Do(req)
	}

	resp, err := backoff.Retry(context.Background(), operation, backoff.WithMaxTries(3))
	if err != nil {
		return nil, langerr.Wrap(langerr.Http, iv, err, "Fn request to %q failed", args[0].Str)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return value.String(string(body)), nil
	}
	return value.FromJSON(parsed), nil
}
