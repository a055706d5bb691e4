package value

import (
	"math/rand"

	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

func init() {
	arrayMethods = methodTable{
		"length": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return Int(int64(len(self.Arr))), nil
		}},
		"is_empty": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return Bool(len(self.Arr) == 0), nil
		}},
		"push": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			v, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "push expects one argument")
			}
			self.Arr = append(self.Arr, v)
			return self, nil
		}},
		"insert": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			v, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "insert expects one argument")
			}
			self.Arr = append(self.Arr, v)
			return self, nil
		}},
		"pop": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			if len(self.Arr) == 0 {
				return nil, langerr.New(langerr.IndexOutOfBounds, iv, "pop on empty array")
			}
			last := self.Arr[len(self.Arr)-1]
			self.Arr = self.Arr[:len(self.Arr)-1]
			return last, nil
		}},
		"clear": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			self.Arr = nil
			return self, nil
		}},
		"contains": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			needle, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "contains expects one argument")
			}
			for _, e := range self.Arr {
				if IsEq(e, needle) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		}},
		"find": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			needle, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "find expects one argument")
			}
			for i, e := range self.Arr {
				if IsEq(e, needle) {
					return Int(int64(i)), nil
				}
			}
			return Int(-1), nil
		}},
		"one_of": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			if len(self.Arr) == 0 {
				return Null(), nil
			}
			return self.Arr[rand.Intn(len(self.Arr))], nil
		}},
	}
}
