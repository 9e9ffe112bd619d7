package domain

import (
	"fmt"
	"strings"
)

// Color names one of the two independently keyed storage lanes.
type Color string

const (
	Blue  Color = "BLUE"
	Green Color = "GREEN"
)

// Colors lists both colors in reporting order.
var Colors = [2]Color{Blue, Green}

// ParseColor accepts "blue" or "green" in any case.
func ParseColor(s string) (Color, error) {
	switch Color(strings.ToUpper(strings.TrimSpace(s))) {
	case Blue:
		return Blue, nil
	case Green:
		return Green, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

// Valid reports whether c is BLUE or GREEN.
func (c Color) Valid() bool {
	return c == Blue || c == Green
}

// Flip returns the other color. It panics on an invalid color, which can only
// be built by bypassing ParseColor.
func (c Color) Flip() Color {
	switch c {
	case Blue:
		return Green
	case Green:
		return Blue
	default:
		panic(fmt.Sprintf("secrets: flip of invalid color %q", string(c)))
	}
}

// Slug is the lower-case form used in collection and table names.
func (c Color) Slug() string {
	return strings.ToLower(string(c))
}

func (c Color) String() string {
	return string(c)
}
