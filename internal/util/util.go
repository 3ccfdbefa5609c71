package util

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// coordinatePrecision keeps roughly 1cm of resolution.
const coordinatePrecision = 7

// ParseCoordinate parses a decimal degree string as reported by a geocoder.
// Surrounding whitespace is ignored; NaN and infinities are rejected.
func ParseCoordinate(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New("empty coordinate")
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse coordinate %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("coordinate %q is not finite", s)
	}

	return f, nil
}

// FormatCoordinate formats decimal degrees without trailing zeros.
func FormatCoordinate(f float64) string {
	return strconv.FormatFloat(roundTo(f, coordinatePrecision), 'f', -1, 64)
}

func roundTo(f float64, digits int) float64 {
	scale := math.Pow10(digits)

	return math.Round(f*scale) / scale
}
