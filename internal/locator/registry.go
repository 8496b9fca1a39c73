package locator

import "fmt"

// New creates a locator based on the specified variant
func New(variant string) (Locator, error) {
	switch variant {
	case "bisect", "":
		return NewBisect(), nil
	default:
		return nil, fmt.Errorf("unknown locator variant: %s", variant)
	}
}
