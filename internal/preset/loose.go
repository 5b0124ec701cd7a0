package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// looseInt is written as a plain integer but also reads the forms older
// preset files used: quoted numbers ("1920"), empty strings for unset, and
// whole floats (4.0).
type looseInt int

func parseLooseInt(s string) (looseInt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return looseInt(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return looseInt(f), nil
}

func (v *looseInt) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an integer", n.Line)
	}
	if n.Tag == "!!null" {
		*v = 0
		return nil
	}
	p, err := parseLooseInt(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*v = p
	return nil
}

func (v *looseInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	p, err := parseLooseInt(s)
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// UnmarshalText serves TOML, for both quoted and bare values.
func (v *looseInt) UnmarshalText(b []byte) error {
	p, err := parseLooseInt(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
