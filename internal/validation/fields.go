// Package validation sanitizes and validates user-supplied fields before
// they reach the query layer. Validators are pure functions returning the
// sanitized value or a *FieldError; only sanitized values may be bound as
// statement parameters.
package validation

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldError reports one rejected field with the reason.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func failf(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

const (
	MaxProjectNameLen    = 255
	MaxDescriptionLen    = 5000
	MinOrganisationIDLen = 10
	MaxMetricUnitLen     = 50
	MinYear              = 2000
	YearHorizon          = 10
	MaxMetricMagnitude   = 1e15
)

var (
	projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,()&]+$`)
	metricUnitPattern  = regexp.MustCompile(`^[a-zA-Z0-9\s%°/³²-]+$`)
)

var (
	statusSet   = []string{"draft", "active", "completed", "archived"}
	categorySet = []string{"environmental", "social", "governance"}
	periodSet   = []string{"Q1", "Q2", "Q3", "Q4", "H1", "H2", "Annual"}
)

// currentYear is a seam for year-bound tests.
var currentYear = func() int { return time.Now().Year() }

// ProjectName requires a non-empty name of at most 255 characters drawn from
// a restricted character set, and returns it HTML-escaped. Length bounds
// count characters, not bytes.
func ProjectName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", failf("name", "project name is required")
	}
	if utf8.RuneCountInString(name) > MaxProjectNameLen {
		return "", failf("name", "project name cannot exceed %d characters", MaxProjectNameLen)
	}
	if !projectNamePattern.MatchString(name) {
		return "", failf("name", "project name contains invalid characters")
	}
	return html.EscapeString(name), nil
}

// OrganisationName applies the project name rules to organisation records.
func OrganisationName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", failf("name", "organisation name is required")
	}
	if utf8.RuneCountInString(name) > MaxProjectNameLen {
		return "", failf("name", "organisation name cannot exceed %d characters", MaxProjectNameLen)
	}
	if !projectNamePattern.MatchString(name) {
		return "", failf("name", "organisation name contains invalid characters")
	}
	return html.EscapeString(name), nil
}

// Description is optional free text, bounded and HTML-escaped.
func Description(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return "", failf("description", "description cannot exceed %d characters", MaxDescriptionLen)
	}
	return html.EscapeString(desc), nil
}

// identifier requires an opaque id of at least MinOrganisationIDLen
// characters. Ids are generated, never typed, so anything shorter is a
// tampered or truncated value.
func identifier(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", failf(field, "%s is required", field)
	}
	if utf8.RuneCountInString(id) < MinOrganisationIDLen {
		return "", failf(field, "invalid %s", field)
	}
	return id, nil
}

func OrganisationID(raw string) (string, error) {
	return identifier("organisation_id", raw)
}

func ProjectID(raw string) (string, error) {
	return identifier("project_id", raw)
}

// Status normalizes case and checks membership in the closed status set.
// An empty status defaults to draft.
func Status(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		return "draft", nil
	}
	for _, s := range statusSet {
		if status == s {
			return status, nil
		}
	}
	return "", failf("status", "invalid status, must be one of: %s", strings.Join(statusSet, ", "))
}

// Category normalizes case and checks membership in the ESG category set.
func Category(raw string) (string, error) {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return "", failf("category", "category is required")
	}
	for _, c := range categorySet {
		if category == c {
			return category, nil
		}
	}
	return "", failf("category", "invalid category, must be one of: %s", strings.Join(categorySet, ", "))
}

// Period checks membership in the reporting period set. Periods are
// case-sensitive labels, not free text.
func Period(raw string) (string, error) {
	period := strings.TrimSpace(raw)
	if period == "" {
		return "", failf("period", "period is required")
	}
	for _, p := range periodSet {
		if period == p {
			return period, nil
		}
	}
	return "", failf("period", "invalid period, must be one of: %s", strings.Join(periodSet, ", "))
}

// Year bounds the reporting year to [2000, current year+10].
func Year(year int) (int, error) {
	maxYear := currentYear() + YearHorizon
	if year < MinYear || year > maxYear {
		return 0, failf("year", "year must be between %d and %d", MinYear, maxYear)
	}
	return year, nil
}

// MetricValue bounds the magnitude so malformed input is rejected without
// judging domain plausibility.
func MetricValue(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, failf("metric_value", "metric value must be a valid number")
	}
	if math.Abs(value) > MaxMetricMagnitude {
		return 0, failf("metric_value", "metric value is out of reasonable range")
	}
	return value, nil
}

// MetricUnit is optional, bounded, and drawn from a restricted character set
// covering common measurement notation (%, °, /, ³, ²).
func MetricUnit(raw string) (string, error) {
	unit := strings.TrimSpace(raw)
	if unit == "" {
		return "", nil
	}
	if utf8.RuneCountInString(unit) > MaxMetricUnitLen {
		return "", failf("metric_unit", "metric unit too long")
	}
	if !metricUnitPattern.MatchString(unit) {
		return "", failf("metric_unit", "metric unit contains invalid characters")
	}
	return unit, nil
}

// Text validates optional free text against a per-field length bound and
// returns it HTML-escaped.
func Text(raw, field string, maxLen int) (string, error) {
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) > maxLen {
		return "", failf(field, "%s cannot exceed %d characters", field, maxLen)
	}
	return html.EscapeString(text), nil
}
