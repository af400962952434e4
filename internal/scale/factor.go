// Package scale selects and runs the magnification kernel for a scale
// factor, and checks that a bitmap is shaped the way the kernel needs.
package scale

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrInvalidFactor is returned for scale text that is neither a single
	// ratio nor "<int>x<int>" with both sides at least 1.
	ErrInvalidFactor = errors.New("invalid scale factor")

	// ErrUnsupported is returned for a well-formed ratio pair no kernel
	// implements.
	ErrUnsupported = errors.New("unsupported scale factor")
)

// Factor is one of the horizontal/vertical ratio pairs the kernel family
// implements. The zero value is not a valid factor.
type Factor int

const (
	Factor2x2 Factor = iota + 1
	Factor2x3
	Factor2x4
	Factor3x3
	Factor4x4
)

var ratios = map[Factor][2]int{
	Factor2x2: {2, 2},
	Factor2x3: {2, 3},
	Factor2x4: {2, 4},
	Factor3x3: {3, 3},
	Factor4x4: {4, 4},
}

// Supported lists every factor in the order the usage text shows them.
func Supported() []Factor {
	return []Factor{Factor2x2, Factor2x3, Factor2x4, Factor3x3, Factor4x4}
}

// ParseFactor reads a -k value. "2", "3" and "4" are the uniform ratios;
// anything else must be "<h>x<v>" naming a supported pair.
func ParseFactor(s string) (Factor, error) {
	switch s {
	case "2":
		return Factor2x2, nil
	case "3":
		return Factor3x3, nil
	case "4":
		return Factor4x4, nil
	}

	hs, vs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFactor, s)
	}
	h, herr := strconv.Atoi(hs)
	v, verr := strconv.Atoi(vs)
	if herr != nil || verr != nil || h < 1 || v < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFactor, s)
	}

	for f, r := range ratios {
		if r[0] == h && r[1] == v {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %dx%d", ErrUnsupported, h, v)
}

// X is the horizontal ratio.
func (f Factor) X() int { return f.ratio()[0] }

// Y is the vertical ratio.
func (f Factor) Y() int { return f.ratio()[1] }

func (f Factor) ratio() [2]int {
	r, ok := ratios[f]
	if !ok {
		panic(fmt.Sprintf("scale: invalid factor %d", int(f)))
	}
	return r
}

// Valid reports whether f is one of the supported factors.
func (f Factor) Valid() bool {
	_, ok := ratios[f]
	return ok
}

// Key is the legacy single-integer encoding, h*100+v. Only used in logs.
func (f Factor) Key() int {
	return f.X()*100 + f.Y()
}

// MinRows is the smallest source height the kernel can read safely.
func (f Factor) MinRows() int {
	if f == Factor4x4 {
		return 4
	}
	return 2
}

func (f Factor) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Factor(%d)", int(f))
	}
	return fmt.Sprintf("%dx%d", f.X(), f.Y())
}

// Flag is how the factor is written on the command line: "2" rather than
// "2x2" for the uniform ratios.
func (f Factor) Flag() string {
	if f.X() == f.Y() {
		return strconv.Itoa(f.X())
	}
	return f.String()
}

// ValidValues renders the accepted -k values for messages, as in
// "2, 2x3, 2x4, 3 and 4".
func ValidValues() string {
	names := lo.Map(Supported(), func(f Factor, _ int) string { return f.Flag() })
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
