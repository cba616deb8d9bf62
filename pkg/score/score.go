package score

import (
	"strings"
	"time"
)

const (
	// DateLayout is the registration date format. Single digit month and
	// day are accepted as well.
	DateLayout = "2006-01-02"

	parseLayout   = "2006-1-2"
	secondsPerDay = 24 * 60 * 60
	daysPerYear   = 365.25

	LocaleZH = "zh"
	LocaleEN = "en"
)

// Evaluator maps registration dates to assessments using a policy table.
type Evaluator struct {
	Policy *Policy
	Locale string
	Now    func() time.Time
}

// Assessment is the opportunity score of a single registration date.
type Assessment struct {
	Score       int       `json:"score" yaml:"score"`
	Band        Band      `json:"band" yaml:"band"`
	Label       string    `json:"label" yaml:"label"`
	LegalBasis  string    `json:"legal_basis" yaml:"legalBasis"`
	Metrics     Metrics   `json:"metrics" yaml:"metrics"`
	Years       float64   `json:"years" yaml:"years"`
	EvaluatedAt time.Time `json:"evaluated_at" yaml:"evaluatedAt"`
}

// NewEvaluator returns an evaluator for the default policy reading the wall clock.
func NewEvaluator(locale string) *Evaluator {
	return &Evaluator{
		Policy: DefaultPolicy,
		Locale: NormalizeLocale(locale),
		Now:    time.Now,
	}
}

// Evaluate scores the registration date against the current time.
func Evaluate(registrationDate string) *Assessment {
	return NewEvaluator(LocaleZH).Evaluate(registrationDate)
}

// EvaluateAt scores the registration date against a fixed point in time.
func EvaluateAt(registrationDate string, now time.Time) *Assessment {
	return NewEvaluator(LocaleZH).EvaluateAt(registrationDate, now)
}

func (e *Evaluator) Evaluate(registrationDate string) *Assessment {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return e.EvaluateAt(registrationDate, now())
}

// EvaluateAt never fails: a date that does not parse yields the error band.
func (e *Evaluator) EvaluateAt(registrationDate string, now time.Time) *Assessment {
	p := e.Policy
	if p == nil {
		p = DefaultPolicy
	}

	years, ok := ElapsedYears(registrationDate, now)
	if !ok {
		return e.assess(p.Error, 0, now)
	}

	switch {
	case years >= p.WindowStartYears && years <= p.WindowEndYears:
		return e.assess(p.VeryHigh, years, now)
	case years > p.WindowEndYears:
		return e.assess(p.Moderate, years, now)
	default:
		return e.assess(p.Low, years, now)
	}
}

func (e *Evaluator) assess(r Rule, years float64, now time.Time) *Assessment {
	return &Assessment{
		Score:       r.Score,
		Band:        r.Band,
		Label:       r.Label.For(NormalizeLocale(e.Locale)),
		LegalBasis:  r.LegalBasis,
		Metrics:     r.Metrics,
		Years:       years,
		EvaluatedAt: now,
	}
}

// ElapsedYears returns the whole days between the registration date and now
// divided by the average year length. Both values are compared on their
// wall clock reading so daylight saving shifts do not move a date across a
// day boundary. Future dates produce negative values.
func ElapsedYears(registrationDate string, now time.Time) (float64, bool) {
	reg, err := ParseDate(registrationDate)
	if err != nil {
		return 0, false
	}

	wall := time.Date(now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)

	secs := wall.Unix() - reg.Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return float64(days) / daysPerYear, true
}

// ParseDate parses a YYYY-MM-DD registration date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(parseLayout, strings.TrimSpace(s), time.UTC)
}

// NormalizeLocale maps anything other than English to the Chinese labels.
func NormalizeLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), LocaleEN) {
		return LocaleEN
	}
	return LocaleZH
}
