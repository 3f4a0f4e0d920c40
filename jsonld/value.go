package jsonld

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is a JSON value. The set of implementations is closed: Null, Bool,
// Number, String, Array and Object.
type Value interface {
	Kind() Kind
	json.MarshalerTo
	isValue()
}

// Null is the JSON null.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// String is a JSON string.
type String string

// Array is an ordered JSON array.
type Array []Value

// Object is a JSON object. Key order is not significant; encoding sorts keys.
type Object map[string]Value

// Number is a JSON number that remembers whether it was written as an integer.
type Number struct {
	f       float64
	i       int64
	integer bool
}

// Int returns an integer Number.
func Int(n int64) Number { return Number{f: float64(n), i: n, integer: true} }

// Float returns a floating point Number.
func Float(f float64) Number { return Number{f: f, i: int64(f)} }

// IsInteger reports whether n was created or parsed as an integer.
func (n Number) IsInteger() bool { return n.integer }

// Int64 returns the integer value, truncating floats.
func (n Number) Int64() int64 {
	if n.integer {
		return n.i
	}
	return int64(n.f)
}

// Float64 returns the value as a float64.
func (n Number) Float64() float64 { return n.f }

// Equal reports whether two numbers have the same value and integer flag.
func (n Number) Equal(o Number) bool {
	if n.integer != o.integer {
		return false
	}
	if n.integer {
		return n.i == o.i
	}
	return n.f == o.f
}

func (n Number) String() string {
	if n.integer {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// MarshalJSONTo implements json.MarshalerTo.
func (Null) MarshalJSONTo(enc *jsontext.Encoder) error { return enc.WriteToken(jsontext.Null) }

// MarshalJSONTo implements json.MarshalerTo.
func (b Bool) MarshalJSONTo(enc *jsontext.Encoder) error {
	return enc.WriteToken(jsontext.Bool(bool(b)))
}

// MarshalJSONTo implements json.MarshalerTo.
func (n Number) MarshalJSONTo(enc *jsontext.Encoder) error {
	if n.integer {
		return enc.WriteToken(jsontext.Int(n.i))
	}
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
		return fmt.Errorf("jsonld: cannot encode non-finite number %v", n.f)
	}
	return enc.WriteToken(jsontext.Float(n.f))
}

// MarshalJSONTo implements json.MarshalerTo.
func (s String) MarshalJSONTo(enc *jsontext.Encoder) error {
	return enc.WriteToken(jsontext.String(string(s)))
}

// MarshalJSONTo implements json.MarshalerTo.
func (a Array) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, v := range a {
		if err := encodeValue(enc, v); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndArray)
}

// MarshalJSONTo implements json.MarshalerTo.
func (o Object) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, k := range o.Keys() {
		if err := enc.WriteToken(jsontext.String(k)); err != nil {
			return err
		}
		if err := encodeValue(enc, o[k]); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

func encodeValue(enc *jsontext.Encoder, v Value) error {
	if v == nil {
		return enc.WriteToken(jsontext.Null)
	}
	return v.MarshalJSONTo(enc)
}

// Keys returns the object's keys in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Parse decodes a single JSON document.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// ParseString decodes a single JSON document held in a string.
func ParseString(s string) (Value, error) {
	return Decode(strings.NewReader(s))
}

// MustParse is like ParseString but panics on error. It is meant for tests and
// package-level literals.
func MustParse(s string) Value {
	v, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Decode reads a single JSON document from r.
func Decode(r io.Reader) (Value, error) {
	dec := jsontext.NewDecoder(r)
	v, err := decodeValue(dec)
	if err != nil {
		return nil, syntaxErr(err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, syntaxErr(err)
	}
	return v, nil
}

func syntaxErr(err error) error {
	return &Error{Code: ErrCodeSyntax, Message: "invalid JSON", Err: err}
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return Null{}, nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return parseNumber(tok.String())
	case '[':
		arr := Array{}
		for dec.PeekKind() != ']' {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		obj := Object{}
		for dec.PeekKind() != '}' {
			key, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// the token is only valid until the next decoder call
			name := key.String()
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj[name] = v
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unexpected JSON token kind %v", tok.Kind())
}

func parseNumber(raw string) (Value, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return Float(f), nil
}

// Marshal encodes v as compact JSON with sorted object keys.
func Marshal(v Value) ([]byte, error) {
	if v == nil {
		v = Null{}
	}
	return json.Marshal(v)
}

// Encode writes v to w as compact JSON.
func Encode(w io.Writer, v Value) error {
	enc := jsontext.NewEncoder(w)
	return encodeValue(enc, v)
}

// Document holds a Value so it can be embedded in structs decoded with
// github.com/go-json-experiment/json.
type Document struct {
	Value Value
}

// UnmarshalJSONFrom implements json.UnmarshalerFrom.
func (d *Document) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	d.Value = v
	return nil
}

// MarshalJSONTo implements json.MarshalerTo.
func (d Document) MarshalJSONTo(enc *jsontext.Encoder) error {
	return encodeValue(enc, d.Value)
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Equal reports deep equality. Integer and float numbers with the same value
// are equal.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av.f == bv.f
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch tv := v.(type) {
	case Array:
		out := make(Array, len(tv))
		for i, e := range tv {
			out[i] = Clone(e)
		}
		return out
	case Object:
		out := make(Object, len(tv))
		for k, e := range tv {
			out[k] = Clone(e)
		}
		return out
	case nil:
		return Null{}
	}
	return v
}

// FromGo converts plain Go values (as produced by encoding/json or used by
// json-gold) into a Value.
func FromGo(x any) (Value, error) {
	switch tx := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return tx, nil
	case bool:
		return Bool(tx), nil
	case string:
		return String(tx), nil
	case int:
		return Int(int64(tx)), nil
	case int64:
		return Int(tx), nil
	case float64:
		if tx == math.Trunc(tx) && math.Abs(tx) < 1<<53 {
			return Int(int64(tx)), nil
		}
		return Float(tx), nil
	case []any:
		out := make(Array, len(tx))
		for i, e := range tx {
			v, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		out := make(Object, len(tx))
		for k, e := range tx {
			v, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("jsonld: unsupported Go value %T", x)
}

// ToGo converts v into the shapes produced by encoding/json: maps, slices,
// strings, float64, bool and nil.
func ToGo(v Value) any {
	switch tv := v.(type) {
	case Bool:
		return bool(tv)
	case Number:
		return tv.f
	case String:
		return string(tv)
	case Array:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = ToGo(e)
		}
		return out
	case Object:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = ToGo(e)
		}
		return out
	}
	return nil
}
