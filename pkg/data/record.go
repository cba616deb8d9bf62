package data

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	dateParseLayout = "2006-1-2"
)

var (
	// ErrNotFound is returned when a registration number is not in the source.
	ErrNotFound = errors.New("registration not found")

	errDBNotInitialized = errors.New("database not initialized")
)

// Record is a single trademark registration.
type Record struct {
	RegNumber string   `json:"reg_number" yaml:"reg_number"`
	Name      string   `json:"name" yaml:"name"`
	RegDate   string   `json:"reg_date" yaml:"reg_date"`
	Owner     string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Classes   []string `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// Criteria narrows a registration search. Empty fields match everything.
type Criteria struct {
	Classes []string `json:"classes,omitempty" yaml:"classes,omitempty"`
	From    string   `json:"from,omitempty" yaml:"from,omitempty"`
	To      string   `json:"to,omitempty" yaml:"to,omitempty"`
	Limit   int      `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Source looks up registrations.
type Source interface {
	Name() string
	Search(ctx context.Context, c *Criteria) ([]*Record, error)
	Get(ctx context.Context, regNumber string) (*Record, error)
}

// Validate checks the date bounds.
func (c *Criteria) Validate() error {
	if c == nil {
		return nil
	}

	from, err := parseBound(c.From)
	if err != nil {
		return fmt.Errorf("invalid from date %q: %w", c.From, err)
	}
	to, err := parseBound(c.To)
	if err != nil {
		return fmt.Errorf("invalid to date %q: %w", c.To, err)
	}

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("from date %s is after to date %s", c.From, c.To)
	}
	if c.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", c.Limit)
	}
	return nil
}

// Matches reports whether the record satisfies the criteria. Classes match
// when any one overlaps. Records with an unreadable date never match a date
// bound but still match class-only criteria.
func (c *Criteria) Matches(r *Record) bool {
	if r == nil {
		return false
	}
	if c == nil {
		return true
	}

	if len(c.Classes) > 0 && !slices.ContainsFunc(r.Classes, func(v string) bool {
		return slices.Contains(c.Classes, v)
	}) {
		return false
	}

	if c.From == "" && c.To == "" {
		return true
	}

	d, err := time.Parse(dateParseLayout, strings.TrimSpace(r.RegDate))
	if err != nil {
		return false
	}

	if from, err := parseBound(c.From); err != nil || (!from.IsZero() && d.Before(from)) {
		return false
	}
	if to, err := parseBound(c.To); err != nil || (!to.IsZero() && d.After(to)) {
		return false
	}
	return true
}

func parseBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateParseLayout, s)
}

// NormalizeDate zero pads a parsable date and leaves anything else as is.
func NormalizeDate(s string) string {
	d, err := time.Parse(dateParseLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d.Format(dateLayout)
}

// NormalizeClasses trims, deduplicates and sorts class codes.
func NormalizeClasses(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func filter(list []*Record, c *Criteria) []*Record {
	out := make([]*Record, 0, len(list))
	for _, r := range list {
		if !c.Matches(r) {
			continue
		}
		out = append(out, r)
		if c != nil && c.Limit > 0 && len(out) >= c.Limit {
			break
		}
	}
	return out
}

func sortRecords(list []*Record) {
	slices.SortFunc(list, func(a, b *Record) int {
		return strings.Compare(a.RegNumber, b.RegNumber)
	})
}
