package result

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
)

var (
	ErrUnknownStatus   = errors.New("unknown result status")
	ErrInvalidPosition = errors.New("invalid finishing position")
	ErrUnknownCategory = errors.New("unknown result category")
)

type Status string

const (
	StatusFinished     Status = "FIN"
	StatusDidNotFinish Status = "DNF"
	StatusDidNotStart  Status = "DNS"
	StatusDisqualified Status = "DSQ"
	StatusOutsideLimit Status = "OTL"
)

var allStatuses = map[Status]struct{}{
	StatusFinished:     {},
	StatusDidNotFinish: {},
	StatusDidNotStart:  {},
	StatusDisqualified: {},
	StatusOutsideLimit: {},
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := allStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return status, nil
}

// Outcome is what happened to one rider: Finished or NotFinished.
type Outcome interface {
	Status() Status
	isOutcome()
}

type Finished struct {
	Position int
}

func (Finished) Status() Status { return StatusFinished }
func (Finished) isOutcome()     {}

type NotFinished struct {
	Reason Status
}

func (o NotFinished) Status() Status { return o.Reason }
func (NotFinished) isOutcome()       {}

// NewOutcome builds the outcome variant for a raw (status, position) pair.
// Position is required for FIN and ignored otherwise.
func NewOutcome(status Status, position *int) (Outcome, error) {
	if _, ok := allStatuses[status]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if status != StatusFinished {
		return NotFinished{Reason: status}, nil
	}
	if position == nil || *position < 1 {
		return nil, fmt.Errorf("%w: FIN requires a position >= 1", ErrInvalidPosition)
	}
	return Finished{Position: *position}, nil
}

// PositionOf returns the finishing position when the outcome is Finished.
func PositionOf(o Outcome) (int, bool) {
	finished, ok := o.(Finished)
	if !ok {
		return 0, false
	}
	return finished.Position, true
}

type Category string

const (
	CategoryElite  Category = "elite"
	CategoryJunior Category = "junior"
)

func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryElite:
		return CategoryElite, nil
	case CategoryJunior:
		return CategoryJunior, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

// SetKey identifies one result set of a race.
type SetKey struct {
	Category Category
	Gender   roster.Gender
}

func (k SetKey) String() string {
	return string(k.Category) + "/" + string(k.Gender)
}

// ParseSetKey accepts "category:gender", e.g. "elite:M".
func ParseSetKey(raw string) (SetKey, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return SetKey{}, fmt.Errorf("invalid result set %q, expected category:gender", raw)
	}
	category, err := ParseCategory(parts[0])
	if err != nil {
		return SetKey{}, err
	}
	gender, err := roster.ParseGender(parts[1])
	if err != nil {
		return SetKey{}, err
	}
	return SetKey{Category: category, Gender: gender}, nil
}

// RaceResult is the latest known outcome for one rider in one race.
type RaceResult struct {
	RaceID     string
	RiderID    string
	Gender     roster.Gender
	Category   Category
	Discipline string
	Outcome    Outcome
	UpdatedAt  time.Time
}

func (r RaceResult) Status() Status {
	if r.Outcome == nil {
		return ""
	}
	return r.Outcome.Status()
}

// Import tracks the most recent submission of one result set.
type Import struct {
	ID          string
	RaceID      string
	Category    Category
	Gender      roster.Gender
	Discipline  string
	SourceURL   string
	IsFinal     bool
	ContentHash string
	UpdatedAt   time.Time
}

func (i Import) Key() SetKey {
	return SetKey{Category: i.Category, Gender: i.Gender}
}

// Entry is one incoming row of a result batch.
type Entry struct {
	RiderID string
	Outcome Outcome
}

// Batch is one submission for a single result set.
type Batch struct {
	Category   Category
	Gender     roster.Gender
	Discipline string
	SourceURL  string
	IsFinal    bool
	Entries    []Entry
}

func (b Batch) Key() SetKey {
	return SetKey{Category: b.Category, Gender: b.Gender}
}
