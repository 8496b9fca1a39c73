package matcher

import "fmt"

// Policy decides which aggregate score wins.
type Policy int

const (
	// PreferMin selects the template with the smallest total colour distance.
	PreferMin Policy = iota
	// PreferMax selects the template with the largest total colour distance.
	// This mirrors historical behaviour of the stamping tool.
	PreferMax
)

// ParsePolicy maps a configuration name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "min", "prefer_min":
		return PreferMin, nil
	case "max", "prefer_max":
		return PreferMax, nil
	default:
		return PreferMin, fmt.Errorf("unknown policy: %s", name)
	}
}

func (p Policy) String() string {
	if p == PreferMax {
		return "max"
	}
	return "min"
}

// better reports whether score strictly beats best under the policy.
func (p Policy) better(score, best float64) bool {
	if p == PreferMax {
		return score > best
	}
	return score < best
}
