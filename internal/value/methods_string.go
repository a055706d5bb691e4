package value

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

func init() {
	stringMethods = methodTable{
		"length": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return Int(int64(len([]rune(self.Str)))), nil
		}},
		// is_empty is zero-argument: the source declares an unused arg
		// slot for this method (see DESIGN.md open question 2).
		"is_empty": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return Bool(self.Str == ""), nil
		}},
		"uppercase": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return String(strings.ToUpper(self.Str)), nil
		}},
		"lowercase": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return String(strings.ToLower(self.Str)), nil
		}},
		"contains": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			needle, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "contains expects one argument")
			}
			return Bool(strings.Contains(self.Str, ToDisplayString(needle))), nil
		}},
		"find": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			needle, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "find expects one argument")
			}
			return Int(int64(strings.Index(self.Str, ToDisplayString(needle)))), nil
		}},
		"append": {Access: Write, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			suffix, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "append expects one argument")
			}
			self.Str += ToDisplayString(suffix)
			return self, nil
		}},
		"slice": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			r := []rune(self.Str)
			start, _ := args.Pos(0)
			end, hasEnd := args.Pos(1)
			s := 0
			if start != nil {
				s = int(start.Int)
			}
			e := len(r)
			if hasEnd && end != nil {
				e = int(end.Int)
			}
			if s < 0 || e > len(r) || s > e {
				return nil, langerr.New(langerr.IndexOutOfBounds, iv, "slice [%d:%d] out of range for length %d", s, e, len(r))
			}
			return String(string(r[s:e])), nil
		}},
		"at": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			idx, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "at expects one argument")
			}
			r := []rune(self.Str)
			i := int(idx.Int)
			if i < 0 || i >= len(r) {
				return nil, langerr.New(langerr.IndexOutOfBounds, iv, "character index %d out of range", i)
			}
			return String(string(r[i])), nil
		}},
		"match": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			pattern, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.TypeMismatch, iv, "match expects one argument")
			}
			re, err := regexp.Compile(ToDisplayString(pattern))
			if err != nil {
				return nil, langerr.Wrap(langerr.InvalidRegex, iv, err, "invalid regex %q", pattern.Str)
			}
			return Bool(re.MatchString(self.Str)), nil
		}},
		"to_int": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(self.Str), 10, 64)
			if err != nil {
				return nil, langerr.Wrap(langerr.TypeMismatch, iv, err, "cannot convert %q to int", self.Str)
			}
			return Int(n), nil
		}},
		"to_float": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(self.Str), 64)
			if err != nil {
				return nil, langerr.Wrap(langerr.TypeMismatch, iv, err, "cannot convert %q to float", self.Str)
			}
			return Float(f), nil
		}},
	}
}
