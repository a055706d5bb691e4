package builtins

import (
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
	"github.com/csml-lang/csml-go/internal/value"
)

// httpCtor builds the chainable Http-tagged object; its .set/.query/
// .get/.post/…/.send() methods are dispatched through
// internal/value's objectHTTP table.
func httpCtor(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 || args[0].Kind != value.StringKind {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Http expects a single URL string argument")
	}
	obj := value.NewObject(value.CTHttp)
	obj.Set("url", args[0])
	return obj, nil
}

func base64Ctor(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Base64 expects a single value argument")
	}
	obj := value.NewObject(value.CTBase64)
	obj.Set("value", args[0])
	return obj, nil
}

func hexCtor(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Hex expects a single value argument")
	}
	obj := value.NewObject(value.CTHex)
	obj.Set("value", args[0])
	return obj, nil
}

func jwtCtor(_ *data.Context, args []*value.Literal, iv script.Interval) (*value.Literal, error) {
	if len(args) != 1 || args[0].Kind != value.ObjectKind {
		return nil, langerr.New(langerr.TypeMismatch, iv, "Jwt expects a single claims object argument")
	}
	obj := value.NewObject(value.CTJwt)
	obj.Set("claims", args[0])
	return obj, nil
}
