package decision

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Direction is the direction of a relative adjustment
type Direction string

// Type is how the value of an adjustment is interpreted
type Type string

const (
	// DirectionUp increases capacity
	DirectionUp Direction = "up"
	// DirectionDown decreases capacity
	DirectionDown Direction = "down"

	// TypeAbsolute adjusts by a number of instances
	TypeAbsolute Type = "absolute"
	// TypePercent adjusts by a percentage of current capacity
	TypePercent Type = "percent"
)

// Adjustment is a capacity change relative to a group's current desired
// capacity
type Adjustment struct {
	Direction Direction
	Type      Type
	// Value is a count for absolute adjustments and a percentage (25.5, not
	// 0.255) for percent adjustments
	Value float64
}

// Target returns the desired capacity that results from applying the
// adjustment to current. Absolute values are truncated and percent
// adjustments round away from current so small groups still move.
// The result is not clamped to any bounds.
func (a Adjustment) Target(current int) int {
	var delta int

	switch a.Type {
	case TypePercent:
		delta = int(math.Ceil(float64(current) * (0.01 * a.Value)))
	default:
		delta = int(a.Value)
	}

	if a.Direction == DirectionDown {
		return current - delta
	}

	return current + delta
}

func (a Adjustment) String() string {
	sign := "+"
	if a.Direction == DirectionDown {
		sign = "-"
	}

	value := strconv.FormatFloat(a.Value, 'f', -1, 64)
	if a.Type == TypePercent {
		return fmt.Sprintf("%s%s%%", sign, value)
	}

	return sign + value
}

// ParseAdjustment parses an adjustment of the form "+2", "-3" or "+25%"
func ParseAdjustment(s string) (Adjustment, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Adjustment{}, errors.Errorf("invalid adjustment %q: expected a sign followed by a value", s)
	}

	a := Adjustment{Type: TypeAbsolute}

	switch s[0] {
	case '+':
		a.Direction = DirectionUp
	case '-':
		a.Direction = DirectionDown
	default:
		return Adjustment{}, errors.Errorf("invalid adjustment %q: must start with + or -", s)
	}

	value := s[1:]
	if strings.HasSuffix(value, "%") {
		a.Type = TypePercent
		value = strings.TrimSuffix(value, "%")
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Adjustment{}, errors.Wrapf(err, "parsing adjustment %q", s)
	}

	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Adjustment{}, errors.Errorf("invalid adjustment %q: value must be a non-negative number", s)
	}

	if a.Type == TypeAbsolute && v != math.Trunc(v) {
		return Adjustment{}, errors.Errorf("invalid adjustment %q: absolute adjustments must be whole numbers", s)
	}

	a.Value = v
	return a, nil
}
