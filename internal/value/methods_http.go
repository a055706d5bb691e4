package value

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

// httpClient and httpLimiter back the `Http(url)` builtin's terminal
// `.send()` method: a direct net/http client, rate-limited per spec's
// domain-stack wiring of golang.org/x/time and retried with
// cenkalti/backoff for transient failures.
var (
	httpClient  = &http.Client{Timeout: 30 * time.Second}
	httpLimiter = rate.NewLimiter(rate.Limit(10), 10)
)

func init() {
	objectHTTP = methodTable{
		"set": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			h, ok := args.Pos(0)
			if !ok || h.Kind != ObjectKind {
				return nil, langerr.New(langerr.TypeMismatch, iv, "set expects an object of headers")
			}
			headers, _ := self.Get("headers")
			if headers == nil {
				headers = NewObject(CTObject)
				self.Set("headers", headers)
			}
			for _, k := range h.ObjKeys {
				headers.Set(k, h.Obj[k])
			}
			return self, nil
		}},
		"query": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			q, ok := args.Pos(0)
			if !ok || q.Kind != ObjectKind {
				return nil, langerr.New(langerr.TypeMismatch, iv, "query expects an object")
			}
			query, _ := self.Get("query")
			if query == nil {
				query = NewObject(CTObject)
				self.Set("query", query)
			}
			for _, k := range q.ObjKeys {
				query.Set(k, q.Obj[k])
			}
			return self, nil
		}},
		"get": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			self.Set("method", String("GET"))
			return self, nil
		}},
		"post": {Access: Write, Fn: httpBodyMethod("POST")},
		"put":  {Access: Write, Fn: httpBodyMethod("PUT")},
		"patch": {Access: Write, Fn: httpBodyMethod("PATCH")},
		"delete": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			self.Set("method", String("DELETE"))
			return self, nil
		}},
		"send": {Access: Read, Fn: httpSend},
	}
}

func httpBodyMethod(method string) MethodFunc {
	return func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
		self.Set("method", String(method))
		if body, ok := args.Pos(0); ok {
			self.Set("body", body)
		}
		return self, nil
	}
}

func httpSend(self *Literal, args Args, iv script.Interval) (*Literal, error) {
	urlLit, ok := self.Get("url")
	if !ok {
		return nil, langerr.New(langerr.Http, iv, "http object has no url")
	}
	method := "GET"
	if m, ok := self.Get("method"); ok {
		method = m.Str
	}
	reqURL := urlLit.Str
	if q, ok := self.Get("query"); ok && len(q.ObjKeys) > 0 {
		reqURL += "?"
		for i, k := range q.ObjKeys {
			if i > 0 {
				reqURL += "&"
			}
			reqURL += k + "=" + ToDisplayString(q.Obj[k])
		}
	}

	var bodyReader io.Reader
	if b, ok := self.Get("body"); ok && b.Kind != NullKind {
		raw, _ := json.Marshal(ToJSON(b))
		bodyReader = bytes.NewReader(raw)
	}

	operation := func() (*http.Response, error) {
		if err := httpLimiter.Wait(context.Background()); err != nil {
			return nil, err
		}
		req, err := http.NewRequest(method, reqURL, bodyReader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if h, ok := self.Get("headers"); ok {
			for _, k := range h.ObjKeys {
				req.Header.Set(k, ToDisplayString(h.Obj[k]))
			}
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	resp, err := backoff.Retry(context.Background(), operation, backoff.WithMaxTries(3))
	if err != nil {
		return nil, langerr.Wrap(langerr.Http, iv, err, "http request failed")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := NewObject(CTHttp)
	out.Set("status", Int(int64(resp.StatusCode)))
	var parsed any
	if json.Unmarshal(raw, &parsed) == nil {
		out.Set("body", FromJSON(parsed))
	} else {
		out.Set("body", String(string(raw)))
	}
	return out, nil
}
