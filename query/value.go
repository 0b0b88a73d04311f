package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindTime
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// ErrCoercion is matched by every CoercionError.
var ErrCoercion = errors.New("value coercion failed")

// CoercionError reports a value that cannot be converted to the requested type.
type CoercionError struct {
	From Kind
	To   string
	Err  error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %s value to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("cannot convert %s value to %s", e.From, e.To)
}

func (e *CoercionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCoercion, e.Err}
	}
	return []error{ErrCoercion}
}

// Value is a tagged scalar: the unit of data exchanged between entities,
// bindings, and raw result rows.
// The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating point value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text returns a text value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Time returns a date/time value.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// ValueOf converts a Go value, as handed over by callers or database drivers,
// into a Value. Unsupported types fail with a CoercionError.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val, nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return Uint(uint64(val))
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return Uint(val)
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case string:
		return Text(val), nil
	case []byte:
		return Text(string(val)), nil
	case bool:
		return Bool(val), nil
	case time.Time:
		return Time(val), nil
	case *int64:
		return fromPtr(val, Int)
	case *string:
		return fromPtr(val, Text)
	case *float64:
		return fromPtr(val, Float)
	case *bool:
		return fromPtr(val, Bool)
	case *time.Time:
		return fromPtr(val, Time)
	default:
		return Null(), &CoercionError{From: KindNull, To: "value", Err: fmt.Errorf("unsupported Go type %T", v)}
	}
}

// MustValueOf is like ValueOf but panics on unsupported types.
func MustValueOf(v any) Value {
	val, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return val
}

// Uint returns an integer value for v, or a CoercionError when v does not
// fit in an int64.
func Uint(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return Null(), &CoercionError{From: KindInt, To: "int64", Err: fmt.Errorf("%d overflows int64", v)}
	}
	return Int(int64(v)), nil
}

func fromPtr[T any](p *T, wrap func(T) Value) (Value, error) {
	if p == nil {
		return Null(), nil
	}
	return wrap(*p), nil
}

// Kind returns the kind of scalar held.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsZero reports whether v holds NULL or the zero value of its kind.
// A primary key whose value IsZero belongs to an unsaved entity.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindInt:
		return v.i == 0
	case KindFloat:
		return v.f == 0
	case KindText:
		return v.s == ""
	case KindBool:
		return !v.b
	case KindTime:
		return v.t.IsZero()
	default:
		return true
	}
}

// Any returns the value as a plain Go value suitable for database/sql arguments.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String renders the value for logs and CLI output.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		s, _ := v.Text()
		return s
	}
}

// Int64 coerces the value to an integer. NULL yields 0.
func (v Value) Int64() (int64, error) {
	switch v.kind {
	case KindNull:
		return 0, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f != math.Trunc(v.f) || v.f >= 1<<63 || v.f < math.MinInt64 {
			return 0, &CoercionError{From: v.kind, To: "int64", Err: fmt.Errorf("%v is not integral", v.f)}
		}
		return int64(v.f), nil
	case KindText:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, &CoercionError{From: v.kind, To: "int64", Err: err}
		}
		return n, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, &CoercionError{From: v.kind, To: "int64"}
	}
}

// Float64 coerces the value to a float. NULL yields 0.
func (v Value) Float64() (float64, error) {
	switch v.kind {
	case KindNull:
		return 0, nil
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, &CoercionError{From: v.kind, To: "float64", Err: err}
		}
		return f, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, &CoercionError{From: v.kind, To: "float64"}
	}
}

// Text coerces the value to a string. NULL yields "".
func (v Value) Text() (string, error) {
	switch v.kind {
	case KindNull:
		return "", nil
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	case KindText:
		return v.s, nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindTime:
		return v.t.Format(time.RFC3339Nano), nil
	default:
		return "", &CoercionError{From: v.kind, To: "string"}
	}
}

// Boolean coerces the value to a bool. NULL yields false.
func (v Value) Boolean() (bool, error) {
	switch v.kind {
	case KindNull:
		return false, nil
	case KindInt:
		return v.i != 0, nil
	case KindFloat:
		return v.f != 0, nil
	case KindText:
		b, err := strconv.ParseBool(strings.TrimSpace(v.s))
		if err != nil {
			return false, &CoercionError{From: v.kind, To: "bool", Err: err}
		}
		return b, nil
	case KindBool:
		return v.b, nil
	default:
		return false, &CoercionError{From: v.kind, To: "bool"}
	}
}

// timeLayouts are tried in order when text is coerced to time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp coerces the value to a time. NULL yields the zero time.
func (v Value) Timestamp() (time.Time, error) {
	switch v.kind {
	case KindNull:
		return time.Time{}, nil
	case KindTime:
		return v.t, nil
	case KindText:
		s := strings.TrimSpace(v.s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &CoercionError{From: v.kind, To: "time.Time", Err: fmt.Errorf("unrecognized time %q", v.s)}
	default:
		return time.Time{}, &CoercionError{From: v.kind, To: "time.Time"}
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}
