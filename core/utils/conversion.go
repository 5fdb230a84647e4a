package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToInt converts JSON-decoded values to int. NetBox reports some integer
// columns as decimals ("vcpus": 4.0 or "4.00"); those are accepted only when
// they are whole. ok is false for nil, for fractional values and for values
// that are not numbers.
func ToInt(val any) (int, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		return wholeInt(v)
	case float32:
		return wholeInt(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return wholeInt(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return wholeInt(f)
	default:
		return 0, false
	}
}

func wholeInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// IntPtr is ToInt for nullable columns: nil when val is not a whole number,
// so a fractional value never compares equal to an int.
func IntPtr(val any) *int {
	i, ok := ToInt(val)
	if !ok {
		return nil
	}
	return &i
}

// ToString renders a JSON-decoded scalar for tabular output. nil is empty,
// maps and slices are rendered as compact JSON.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}
