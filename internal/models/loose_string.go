package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// LooseString accepts a JSON string, number or bool and keeps its text.
// Objects, arrays and null decode to the empty string instead of failing the whole payload.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = LooseString(v)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			*s = ""
			return nil
		}
		*s = LooseString(strconv.FormatBool(b))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = LooseString(data)
	default:
		*s = ""
	}
	return nil
}

func (s LooseString) String() string {
	return string(s)
}
