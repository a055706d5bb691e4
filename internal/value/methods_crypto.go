package value

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/golang-jwt/jwt/v5"

	"github.com/csml-lang/csml-go/internal/langerr"
	"github.com/csml-lang/csml-go/internal/script"
)

func init() {
	objectJWT = methodTable{
		"sign": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			secret, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.Jwt, iv, "sign expects a secret argument")
			}
			claims, _ := self.Get("claims")
			mapClaims := jwt.MapClaims{}
			if claims != nil {
				for _, k := range claims.ObjKeys {
					mapClaims[k] = ToJSON(claims.Obj[k])
				}
			}
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
			signed, err := tok.SignedString([]byte(secret.Str))
			if err != nil {
				return nil, langerr.Wrap(langerr.Jwt, iv, err, "failed to sign token")
			}
			return String(signed), nil
		}},
		"verify": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			tokenStr, ok := args.Pos(0)
			if !ok {
				return nil, langerr.New(langerr.Jwt, iv, "verify expects (token, secret)")
			}
			secret, ok := args.Pos(1)
			if !ok {
				return nil, langerr.New(langerr.Jwt, iv, "verify expects (token, secret)")
			}
			tok, err := jwt.Parse(tokenStr.Str, func(t *jwt.Token) (any, error) {
				return []byte(secret.Str), nil
			})
			if err != nil || !tok.Valid {
				return Null(), nil
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return Null(), nil
			}
			out := NewObject(CTObject)
			for k, v := range claims {
				out.Set(k, FromJSON(v))
			}
			return out, nil
		}},
	}

	objectBase64 = methodTable{
		"encode": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			v, _ := self.Get("value")
			if v == nil {
				v = String("")
			}
			return String(base64.StdEncoding.EncodeToString([]byte(v.Str))), nil
		}},
		"decode": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			v, _ := self.Get("value")
			if v == nil {
				v = String("")
			}
			raw, err := base64.StdEncoding.DecodeString(v.Str)
			if err != nil {
				return nil, langerr.Wrap(langerr.TypeMismatch, iv, err, "invalid base64 value")
			}
			return String(string(raw)), nil
		}},
	}

	objectHex = methodTable{
		"encode": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			v, _ := self.Get("value")
			if v == nil {
				v = String("")
			}
			return String(hex.EncodeToString([]byte(v.Str))), nil
		}},
		"decode": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			v, _ := self.Get("value")
			if v == nil {
				v = String("")
			}
			raw, err := hex.DecodeString(v.Str)
			if err != nil {
				return nil, langerr.Wrap(langerr.TypeMismatch, iv, err, "invalid hex value")
			}
			return String(string(raw)), nil
		}},
	}

	intFloatShared = methodTable{
		"to_string": {Access: Read, Fn: func(self *Literal, args Args, iv script.Interval) (*Literal, error) {
			return String(ToDisplayString(self)), nil
		}},
	}
}
