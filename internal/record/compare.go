package record

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Equal reports loose equality, the way a dynamically typed caller expects
// `row[col] == param` to behave:
//   - Int and Float compare numerically
//   - a string holding a number's decimal text equals that number
//   - true/false equal 1/0
//   - a time equals its RFC 3339 text
//   - NULL only equals NULL
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}

	if a.kind == b.kind {
		switch a.kind {
		case KindBool:
			return a.b == b.b
		case KindInt:
			return a.i == b.i
		case KindFloat:
			return a.f == b.f
		case KindString:
			return a.s == b.s
		case KindTime:
			return a.t.Equal(b.t)
		}
	}

	if at, ok := asTime(a, b); ok {
		bt, ok := asTime(b, a)
		return ok && at.Equal(bt)
	}

	af, aok := looseNumber(a)
	bf, bok := looseNumber(b)
	if aok && bok {
		return af == bf
	}
	return false
}

// Compare orders a and b for ORDER BY: -1, 0 or +1. Pairs with no natural
// order (NULL, mismatched kinds) compare equal so a stable sort keeps them
// where they were.
func Compare(a, b Value) int {
	if a.IsNull() || b.IsNull() {
		return 0
	}

	switch {
	case a.kind == KindString && b.kind == KindString:
		return strings.Compare(a.s, b.s)
	case a.kind == KindTime || b.kind == KindTime:
		at, aok := asTime(a, b)
		bt, bok := asTime(b, a)
		if !aok || !bok {
			return 0
		}
		return at.Compare(bt)
	case a.kind == KindInt && b.kind == KindInt:
		return cmpOrdered(a.i, b.i)
	}

	af, aok := looseNumber(a)
	bf, bok := looseNumber(b)
	if !aok || !bok {
		return 0
	}
	return cmpOrdered(af, bf)
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// looseNumber coerces numbers, booleans and numeric strings to float64.
func looseNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindInt, KindFloat:
		return v.Number()
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		s := strings.TrimSpace(v.s)
		if s == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asTime reads v as a time when v is a time, or when v is a string and
// other is a time.
func asTime(v, other Value) (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindString:
		if other.kind != KindTime {
			return time.Time{}, false
		}
		t, err := time.Parse(TimeLayout, v.s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}
