// Package validator checks document requests before they reach the index and
// optionally strips HTML markup from document text.
package validator

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
)

const (
	maxTextLength = 1048576
	maxRatings    = 1024
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateDocumentRequest checks every field of req and returns a
// *ValidationError naming each bad one. An empty status means ACTUAL.
func ValidateDocumentRequest(req *ingestion.DocumentRequest) error {
	errs := make(map[string]string)

	switch {
	case req.ID == nil:
		errs["id"] = "id is required"
	case *req.ID < 0:
		errs["id"] = "id must not be negative"
	}
	if len(req.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	} else if !tokenizer.IsValidWord(req.Text) {
		errs["text"] = "text must not contain control characters"
	}
	if req.Status != "" {
		if _, err := indexer.ParseStatus(req.Status); err != nil {
			errs["status"] = "status must be one of ACTUAL, IRRELEVANT, BANNED, REMOVED"
		}
	}
	if len(req.Ratings) > maxRatings {
		errs["ratings"] = fmt.Sprintf("at most %d ratings are accepted", maxRatings)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Sanitizer turns HTML into plain indexable text.
type Sanitizer struct {
	policy   *bluemonday.Policy
	controls *strings.Replacer
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		policy:   bluemonday.StrictPolicy(),
		controls: strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " "),
	}
}

// Clean removes all markup, decodes entities and turns line breaks and tabs
// into spaces. Other control characters are left for validation to reject.
func (s *Sanitizer) Clean(text string) string {
	stripped := html.UnescapeString(s.policy.Sanitize(text))
	return s.controls.Replace(stripped)
}
