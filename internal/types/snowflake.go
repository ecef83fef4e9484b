package types

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/bytedance/sonic"
)

// Snowflake is a platform identifier handled as a string. Documents written by
// older releases store these as bare integers, so both forms are accepted on
// read and numeric values are written back as integers.
type Snowflake string

// MarshalJSON writes numeric ids as bare integers and anything else as a string.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	if isDigits(string(s)) {
		return []byte(s), nil
	}

	return sonic.Marshal(string(s))
}

// UnmarshalJSON accepts either an integer or a string.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	value, err := flexString(data)
	if err != nil {
		return err
	}

	*s = Snowflake(value)

	return nil
}

// flexString decodes a JSON string or number into its string form.
func flexString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := sonic.Unmarshal(data, &value); err != nil {
			return "", err
		}

		return value, nil
	}

	var number json.Number
	if err := sonic.Unmarshal(data, &number); err != nil {
		return "", err
	}

	return number.String(), nil
}

// isDigits reports whether s is a canonical non-negative integer.
func isDigits(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}

	_, err := strconv.ParseUint(s, 10, 64)

	return err == nil
}
