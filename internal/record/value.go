package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// TimeLayout is the text form of KindTime values on disk and on the wire.
const TimeLayout = time.RFC3339Nano

// Value is a scalar cell. The zero Value is NULL.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

// Time stores t in UTC without its monotonic reading.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t.UTC()} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) IntValue() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) StringValue() (string, bool) { return v.s, v.kind == KindString }

func (v Value) TimeValue() (time.Time, bool) { return v.t, v.kind == KindTime }

// Number returns the numeric payload of an Int or Float value as float64.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// FromAny converts a bound parameter into a Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case time.Time:
		return Time(t)
	case *time.Time:
		if t == nil {
			return Null()
		}
		return Time(*t)
	case json.Number:
		return fromNumber(t)
	case fmt.Stringer:
		return String(t.String())
	default:
		return String(fmt.Sprint(t))
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	if f, err := n.Float64(); err == nil {
		return Float(f)
	}
	return String(n.String())
}

// Any returns the Go-native payload: nil, bool, int64, float64, string or time.Time.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String renders the value as text; NULL renders as "NULL".
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindTime:
		return v.t.Format(TimeLayout)
	default:
		return "NULL"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("record: float %v is not representable in JSON", v.f)
		}
		// keep a fraction so integral floats decode as floats again
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e21 {
			return []byte(strconv.FormatFloat(v.f, 'f', -1, 64) + ".0"), nil
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindTime:
		return json.Marshal(v.t.Format(TimeLayout))
	default:
		return nil, fmt.Errorf("record: unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON decodes scalars. Nested objects and arrays are kept as their
// compact JSON text in a string value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var x any
	if err := dec.Decode(&x); err != nil {
		return fmt.Errorf("record: decode value: %w", err)
	}

	switch t := x.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = String(buf.String())
	default:
		*v = FromAny(t)
	}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	if v.kind == KindTime {
		return v.t.Format(TimeLayout), nil
	}
	return v.Any(), nil
}
