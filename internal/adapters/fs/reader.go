package fs

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"go.trai.ch/patterneta/internal/core/domain"
)

// ParseCoordinates reads (theta, rho) pairs from r.
// Blank lines and lines starting with '#' are ignored; lines whose first two fields
// are not numbers are skipped.
func ParseCoordinates(r io.Reader) ([]domain.Coordinate, error) {
	var coords []domain.Coordinate

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		theta, ok := parseFinite(fields[0])
		if !ok {
			continue
		}
		rho, ok := parseFinite(fields[1])
		if !ok {
			continue
		}

		coords = append(coords, domain.Coordinate{Theta: theta, Rho: rho})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return coords, nil
}

// parseFinite parses a coordinate field. NaN and infinities are rejected.
func parseFinite(field string) (float64, bool) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
