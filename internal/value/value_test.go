package value

import (
	"testing"

	"github.com/csml-lang/csml-go/internal/script"
)

func TestAsBool(t *testing.T) {
	cases := []struct {
		name string
		v    *Literal
		want bool
	}{
		{"string always true", String(""), true},
		{"positive int true", Int(1), true},
		{"zero int false", Int(0), false},
		{"negative int false", Int(-1), false},
		{"nonzero float true", Float(0.5), true},
		{"zero float false", Float(0), false},
		{"null false", Null(), false},
		{"empty array true", Array(nil), true},
		{"empty object true", NewObject(""), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AsBool(c.v); got != c.want {
				t.Errorf("AsBool(%v) = %v, want %v", c.v, got, c.want)
			}
		})
	}
}

func TestAdd_NumericWidening(t *testing.T) {
	r, err := Add(Int(2), Int(3), script.Interval{})
	if err != nil || r.Kind != IntKind || r.Int != 5 {
		t.Fatalf("Int+Int: got %+v, err %v", r, err)
	}
	r, err = Add(Int(2), Float(1.5), script.Interval{})
	if err != nil || r.Kind != FloatKind || r.Float != 3.5 {
		t.Fatalf("Int+Float: got %+v, err %v", r, err)
	}
}

func TestAdd_StringConcatenation(t *testing.T) {
	r, err := Add(String("foo"), String("bar"), script.Interval{})
	if err != nil || r.Str != "foobar" {
		t.Fatalf("String+String: got %+v, err %v", r, err)
	}
}

func TestAdd_StringNumericParse(t *testing.T) {
	r, err := Add(String("2"), Int(3), script.Interval{})
	if err != nil || r.Kind != FloatKind || r.Float != 5 {
		t.Fatalf("expected numeric string to parse and widen to float, got %+v, err %v", r, err)
	}
}

func TestAdd_ObjectMerge(t *testing.T) {
	a := NewObject(CTObject)
	a.Set("x", Int(1))
	b := NewObject(CTObject)
	b.Set("x", Int(2))
	b.Set("y", Int(3))

	r, err := Add(a, b, script.Interval{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if r.Obj["x"].Int != 2 || r.Obj["y"].Int != 3 {
		t.Errorf("expected right-wins merge, got %+v", r.Obj)
	}
}

func TestAdd_ArrayConcatenation(t *testing.T) {
	a := Array([]*Literal{Int(1), Int(2)})
	b := Array([]*Literal{Int(3)})
	r, err := Add(a, b, script.Interval{})
	if err != nil || len(r.Arr) != 3 {
		t.Fatalf("expected concatenated array of length 3, got %+v, err %v", r, err)
	}
}

func TestDiv_ByZero(t *testing.T) {
	_, err := Div(Int(1), Int(0), script.Interval{})
	if err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestMod_CrossKindTrueRemainder(t *testing.T) {
	r, err := Mod(Float(7.5), Int(2), script.Interval{})
	if err != nil {
		t.Fatalf("Mod: %v", err)
	}
	if r.Kind != FloatKind || r.Float != 1.5 {
		t.Errorf("expected true remainder 1.5, got %+v", r)
	}
}

func TestIsEq_CrossKindNumeric(t *testing.T) {
	if !IsEq(Int(3), Float(3.0)) {
		t.Error("expected Int(3) == Float(3.0)")
	}
	if !IsEq(String("3"), Int(3)) {
		t.Error("expected String(\"3\") == Int(3)")
	}
	if IsEq(String("abc"), Int(3)) {
		t.Error("expected String(\"abc\") != Int(3)")
	}
}

func TestCmp_StringNumericParse(t *testing.T) {
	if got := Cmp(String("2"), String("10")); got != Less {
		t.Errorf("expected numeric string compare 2 < 10, got %v", got)
	}
	if got := Cmp(String("b"), String("a")); got != Greater {
		t.Errorf("expected lexical compare b > a, got %v", got)
	}
}

func TestCmp_Incomparable(t *testing.T) {
	if got := Cmp(NewObject(""), Int(1)); got != Incomparable {
		t.Errorf("expected Incomparable, got %v", got)
	}
}

func TestToJSON_FromJSON_RoundTrip(t *testing.T) {
	obj := NewObject(CTHttp)
	obj.Set("status", Int(200))
	obj.Set("body", String("ok"))

	j := ToJSON(obj)
	back := FromJSON(j)

	if back.Kind != ObjectKind || back.ContentType != CTHttp {
		t.Fatalf("expected content_type to round-trip, got %+v", back)
	}
	if back.Obj["status"].Int != 200 || back.Obj["body"].Str != "ok" {
		t.Errorf("unexpected round-tripped fields: %+v", back.Obj)
	}
}

func TestToJSON_PlainObjectHasNoWrapper(t *testing.T) {
	obj := NewObject(CTObject)
	obj.Set("a", Int(1))
	j := ToJSON(obj)
	m, ok := j.(map[string]any)
	if !ok {
		t.Fatalf("expected plain map, got %T", j)
	}
	if _, has := m["content_type"]; has {
		t.Error("plain object should not be wrapped with content_type")
	}
}

func TestFormatMem_LoadMem_RoundTrip(t *testing.T) {
	obj := NewObject(CTJwt)
	obj.Set("claims", NewObject(CTObject))
	obj.Obj["claims"].Set("sub", String("u1"))

	formatted := FormatMem(obj, true)
	back := LoadMem(formatted)

	if back.ContentType != CTJwt {
		t.Fatalf("expected content_type jwt to round-trip, got %q", back.ContentType)
	}
	claims, ok := back.Get("claims")
	if !ok || claims.Obj["sub"].Str != "u1" {
		t.Errorf("expected nested claims to round-trip, got %+v", back.Obj)
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := NewObject(CTObject)
	orig.Set("nested", Array([]*Literal{Int(1)}))

	clone := orig.Clone()
	clone.Obj["nested"].Arr[0] = Int(99)

	if orig.Obj["nested"].Arr[0].Int != 1 {
		t.Error("expected Clone to not alias nested structures")
	}
}

func TestDoExec_DispatchByContentType(t *testing.T) {
	obj := NewObject(CTBase64)
	obj.Set("value", String("hi"))
	r, err := DoExec(obj, "encode", Args{}, script.Interval{})
	if err != nil {
		t.Fatalf("DoExec encode: %v", err)
	}
	if r.Str == "" {
		t.Error("expected a non-empty base64 encoding")
	}
}

func TestDoExec_UndefinedMethod(t *testing.T) {
	_, err := DoExec(Int(1), "nope", Args{}, script.Interval{})
	if err == nil {
		t.Fatal("expected an error for an undefined method")
	}
}

func TestMatchRelation_ArrayMembership(t *testing.T) {
	arr := Array([]*Literal{String("yes"), String("no")})
	if !MatchRelation(arr, String("YES")) {
		t.Error("expected case-insensitive array membership match")
	}
	if MatchRelation(arr, String("maybe")) {
		t.Error("expected no match for absent member")
	}
}

func TestMatchRelation_AcceptsField(t *testing.T) {
	btn := NewObject(CTObject)
	btn.Set("accepts", Array([]*Literal{String("a"), String("b")}))
	if !MatchRelation(btn, String("a")) {
		t.Error("expected scalar to match against accepts field")
	}
}
