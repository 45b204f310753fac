package models

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

// ID is a row id as sent by clients. Besides plain integers it accepts
// integral floats such as 1.0 and numeric strings such as "1".
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(s), Type: reflect.TypeOf(*id)}
		}
		*id = ID(n)
		return nil
	}

	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*id = ID(n)
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeOf(*id)}
	}
	*id = ID(f)
	return nil
}

func jsonKind(data []byte) string {
	switch {
	case len(data) == 0:
		return "value"
	case data[0] == '{':
		return "object"
	case data[0] == '[':
		return "array"
	case data[0] == 't' || data[0] == 'f':
		return "bool"
	default:
		return "number " + string(data)
	}
}
