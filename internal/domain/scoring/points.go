package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
)

var ErrInvalidPointsTable = errors.New("invalid points table")

// PointsTable maps finishing position (1-based index) to points.
// Positions beyond the table score zero.
type PointsTable []int

func DefaultPointsTable() PointsTable {
	return PointsTable{100, 80, 65, 55, 45, 35, 30, 25, 20, 15, 12, 10, 8, 6, 5, 4, 3, 2, 1, 1}
}

// ParsePointsTable reads a comma separated list, e.g. "100,80,65".
func ParsePointsTable(raw string) (PointsTable, error) {
	parts := strings.Split(raw, ",")
	out := make(PointsTable, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidPointsTable, part)
		}
		out = append(out, value)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (t PointsTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: at least one position is required", ErrInvalidPointsTable)
	}
	for idx, value := range t {
		if value < 0 {
			return fmt.Errorf("%w: position %d has negative points", ErrInvalidPointsTable, idx+1)
		}
		if idx > 0 && value > t[idx-1] {
			return fmt.Errorf("%w: position %d scores more than position %d", ErrInvalidPointsTable, idx+1, idx)
		}
	}
	return nil
}

func (t PointsTable) ForPosition(position int) int {
	if position < 1 || position > len(t) {
		return 0
	}
	return t[position-1]
}

// ForOutcome scores an outcome: FIN uses the table, every other status is zero.
func (t PointsTable) ForOutcome(outcome result.Outcome) int {
	position, ok := result.PositionOf(outcome)
	if !ok {
		return 0
	}
	return t.ForPosition(position)
}
