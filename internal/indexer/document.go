package indexer

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Status is the lifecycle state a caller assigns to a document.
type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{
	StatusActual:     "ACTUAL",
	StatusIrrelevant: "IRRELEVANT",
	StatusBanned:     "BANNED",
	StatusRemoved:    "REMOVED",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q: %w", name, apperrors.ErrInvalidInput)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Document is an indexed document. It is never modified after AddDocument.
type Document struct {
	ID     int    `json:"id"`
	Rating int    `json:"rating"`
	Status Status `json:"status"`
	Text   string `json:"text"`
}

// Predicate decides whether a candidate document may appear in results. It
// is called at most once per candidate and must not have side effects.
type Predicate func(id int, status Status, rating int) bool

// WithStatus matches documents having exactly status.
func WithStatus(status Status) Predicate {
	return func(_ int, s Status, _ int) bool {
		return s == status
	}
}

// averageRating is the integer average of ratings, truncated toward zero.
func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
