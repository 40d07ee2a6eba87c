package handlers

import (
	"fmt"
	"math"
	"strconv"
)

// Bounds for query parameters on preview and listing endpoints.
const (
	minPreviewScale = 0.25
	maxPreviewScale = 4.0

	defaultLogLimit = 50
	maxLogLimit     = 500
)

// parseScale reads a preview scale parameter. Empty means 1; values
// outside the preview bounds clamp instead of erroring, mirroring the
// designer zoom range.
func parseScale(raw string) (float64, error) {
	if raw == "" {
		return 1, nil
	}
	s, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(s) || s <= 0 {
		return 0, fmt.Errorf("invalid scale %q", raw)
	}
	if s < minPreviewScale {
		s = minPreviewScale
	}
	if s > maxPreviewScale {
		s = maxPreviewScale
	}
	return s, nil
}

// parseLimit reads a result count parameter, falling back to the
// default and capping runaway values.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLogLimit
	}
	if n > maxLogLimit {
		n = maxLogLimit
	}
	return n
}
