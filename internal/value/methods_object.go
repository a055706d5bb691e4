package value

import (
	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

func init() {
	objectGeneric = methodTable{
		"length": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return Int(int64(len(self.ObjKeys))), nil
		}},
		"is_empty": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return Bool(len(self.ObjKeys) == 0), nil
		}},
		"get": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			key, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "get expects one argument")
			}
			if v, ok := self.Get(key.Str); ok {
				return v, nil
			}
			return Null(), nil
		}},
		"contains": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			key, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "contains expects one argument")
			}
			_, ok = self.Get(key.Str)
			return Bool(ok), nil
		}},
		"insert": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			key, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "insert expects (key, value)")
			}
			val, ok := args.Pos(1)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "insert expects (key, value)")
			}
			self.Set(key.Str, val)
			return self, nil
		}},
		"remove": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			key, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "remove expects one argument")
			}
			v, existed := self.Get(key.Str)
			if existed {
				delete(self.Obj, key.Str)
				for i, k := range self.ObjKeys {
					if k == key.Str {
						self.ObjKeys = append(self.ObjKeys[:i], self.ObjKeys[i+1:]...)
						break
					}
				}
				return v, nil
			}
			return Null(), nil
		}},
		"keys": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			items := make([]*Literal, len(self.ObjKeys))
			for i, k := range self.ObjKeys {
				items[i] = String(k)
			}
			return Array(items), nil
		}},
	}

	objectEvent = methodTable{
		"get_type": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return String(self.ContentType), nil
		}},
		"get_content": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			if v, ok := self.Get("content"); ok {
				return v, nil
			}
			return Null(), nil
		}},
		"match": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			text, _ := self.Get("text")
			if text == nil {
				text = String("")
			}
			for _, v := range args {
				if matchRelation(text, v) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		}},
		"match_array": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			text, _ := self.Get("text")
			if text == nil {
				text = String("")
			}
			arr, ok := args.Pos(0)
			if !ok || arr.Kind != ArrayKind {
				return nil, langerr.New(langerr.TypeMismatch, iv, "match_array expects an array")
			}
			for _, v := range arr.Arr {
				if matchRelation(text, v) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		}},
	}
}
