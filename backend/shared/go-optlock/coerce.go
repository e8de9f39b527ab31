package optlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	errNotWhole   = errors.New("not a whole number")
	errOutOfRange = errors.New("out of int64 range")
)

// coerceVersion turns a proposed lock value into an int64. present is
// false for nil and blank strings.
func coerceVersion(raw any) (v int64, present bool, err error) {
	switch x := raw.(type) {
	case nil:
		return 0, false, nil
	case string:
		return parseVersion(x)
	case []byte:
		return parseVersion(string(x))
	case json.Number:
		return parseVersion(x.String())
	case int:
		return int64(x), true, nil
	case int8:
		return int64(x), true, nil
	case int16:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case int64:
		return x, true, nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return int64(x), true, nil
	case uint16:
		return int64(x), true, nil
	case uint32:
		return int64(x), true, nil
	case uint64:
		return fromUint(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, false, nil
		}
		return coerceVersion(rv.Elem().Interface())
	}
	return 0, false, fmt.Errorf("unsupported type %T", raw)
}

func parseVersion(s string) (int64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true, nil
	}
	// "7.0" arrives from clients that stringify JSON numbers
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return fromFloat(f)
}

func fromUint(u uint64) (int64, bool, error) {
	if u > math.MaxInt64 {
		return 0, false, errOutOfRange
	}
	return int64(u), true, nil
}

func fromFloat(f float64) (int64, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false, errNotWhole
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false, errOutOfRange
	}
	return int64(f), true, nil
}
