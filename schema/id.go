package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/stubgen/errors"
)

// ID is a 64-bit schema node identifier. Documents may write it as an
// integer or as a "0x"-prefixed hex string (IDs above 2^53 do not survive
// JSON number handling in most producers).
type ID uint64

// String renders the ID the way the IDL compiler prints node IDs
func (id ID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// ParseID parses a decimal or 0x-prefixed hexadecimal node ID
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	var (
		v   uint64
		err error
	)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err = strconv.ParseUint(rest, 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, errors.NewInvalidSchema("malformed node id %q", s)
	}
	return ID(v), nil
}

// MarshalJSON encodes the ID as a hex string
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON accepts a JSON number or string
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*id = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := ParseID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UnmarshalYAML accepts a YAML integer (decimal or 0x hex) or string
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.NewInvalidSchema("node id must be a scalar at line %d", value.Line)
	}
	parsed, err := ParseID(value.Value)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
