package validation

import (
	"errors"
	"strings"

	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/models"
)

// Per-field length bounds for free-text inputs.
const (
	MaxMetricNameLen        = 255
	MaxSourceLen            = 500
	MaxNotesLen             = 2000
	MaxIndustryLen          = 255
	MaxAssessmentSectionLen = 10000
)

// ProjectInput is the raw project form submission.
type ProjectInput struct {
	Name           string
	Description    string
	OrganisationID string
	Status         string
}

func (in ProjectInput) empty() bool {
	return strings.TrimSpace(in.Name) == "" &&
		strings.TrimSpace(in.Description) == "" &&
		strings.TrimSpace(in.OrganisationID) == "" &&
		strings.TrimSpace(in.Status) == ""
}

// ValidateProject validates every field and aggregates all failures, so the
// caller can surface them together. An entirely empty submission returns
// common.ErrNoInput, distinct from an invalid one.
func ValidateProject(in ProjectInput) (*models.Project, error) {
	if in.empty() {
		return nil, common.ErrNoInput
	}

	var errs []error
	p := &models.Project{}
	var err error

	if p.Name, err = ProjectName(in.Name); err != nil {
		errs = append(errs, err)
	}
	if p.Description, err = Description(in.Description); err != nil {
		errs = append(errs, err)
	}
	if p.OrganisationID, err = OrganisationID(in.OrganisationID); err != nil {
		errs = append(errs, err)
	}
	if p.Status, err = Status(in.Status); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

// ProjectUpdateInput carries the mutable project fields. The owning
// organisation is fixed at creation and cannot be reassigned.
type ProjectUpdateInput struct {
	Name        string
	Description string
	Status      string
}

func (in ProjectUpdateInput) empty() bool {
	return strings.TrimSpace(in.Name) == "" &&
		strings.TrimSpace(in.Description) == "" &&
		strings.TrimSpace(in.Status) == ""
}

// ValidateProjectUpdate validates the mutable fields, aggregating all
// failures. An entirely empty submission returns common.ErrNoInput.
func ValidateProjectUpdate(in ProjectUpdateInput) (*models.Project, error) {
	if in.empty() {
		return nil, common.ErrNoInput
	}

	var errs []error
	p := &models.Project{}
	var err error

	if p.Name, err = ProjectName(in.Name); err != nil {
		errs = append(errs, err)
	}
	if p.Description, err = Description(in.Description); err != nil {
		errs = append(errs, err)
	}
	if p.Status, err = Status(in.Status); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

// OrganisationInput is the raw organisation form submission.
type OrganisationInput struct {
	Name        string
	Industry    string
	Description string
}

func (in OrganisationInput) empty() bool {
	return strings.TrimSpace(in.Name) == "" &&
		strings.TrimSpace(in.Industry) == "" &&
		strings.TrimSpace(in.Description) == ""
}

// ValidateOrganisation validates an organisation submission, aggregating all
// failures.
func ValidateOrganisation(in OrganisationInput) (*models.Organisation, error) {
	if in.empty() {
		return nil, common.ErrNoInput
	}

	var errs []error
	o := &models.Organisation{}
	var err error

	if o.Name, err = OrganisationName(in.Name); err != nil {
		errs = append(errs, err)
	}
	if o.Industry, err = Text(in.Industry, "industry", MaxIndustryLen); err != nil {
		errs = append(errs, err)
	}
	if o.Description, err = Description(in.Description); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return o, nil
}

// ESGDataPointInput is the raw metric form submission. Year and MetricValue
// arrive already parsed; the transport layer owns string-to-number parsing.
type ESGDataPointInput struct {
	ProjectID   string
	Category    string
	Year        int
	Period      string
	MetricName  string
	MetricValue float64
	MetricUnit  string
	Source      string
	Notes       string
}

func (in ESGDataPointInput) empty() bool {
	return strings.TrimSpace(in.ProjectID) == "" &&
		strings.TrimSpace(in.Category) == "" &&
		in.Year == 0 &&
		strings.TrimSpace(in.Period) == "" &&
		strings.TrimSpace(in.MetricName) == "" &&
		in.MetricValue == 0 &&
		strings.TrimSpace(in.MetricUnit) == "" &&
		strings.TrimSpace(in.Source) == "" &&
		strings.TrimSpace(in.Notes) == ""
}

// ValidateESGDataPoint validates a metric submission field-by-field,
// aggregating all failures.
func ValidateESGDataPoint(in ESGDataPointInput) (*models.ESGDataPoint, error) {
	if in.empty() {
		return nil, common.ErrNoInput
	}

	var errs []error
	d := &models.ESGDataPoint{}
	var err error

	if d.ProjectID, err = ProjectID(in.ProjectID); err != nil {
		errs = append(errs, err)
	}
	if d.Category, err = Category(in.Category); err != nil {
		errs = append(errs, err)
	}
	if d.Year, err = Year(in.Year); err != nil {
		errs = append(errs, err)
	}
	if d.Period, err = Period(in.Period); err != nil {
		errs = append(errs, err)
	}
	if d.MetricName, err = Text(in.MetricName, "metric_name", MaxMetricNameLen); err != nil {
		errs = append(errs, err)
	}
	if d.MetricValue, err = MetricValue(in.MetricValue); err != nil {
		errs = append(errs, err)
	}
	if d.MetricUnit, err = MetricUnit(in.MetricUnit); err != nil {
		errs = append(errs, err)
	}
	if d.Source, err = Text(in.Source, "source", MaxSourceLen); err != nil {
		errs = append(errs, err)
	}
	if d.Notes, err = Text(in.Notes, "notes", MaxNotesLen); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return d, nil
}

// AssessmentInput is the raw framework assessment submission.
type AssessmentInput struct {
	ProjectID      string
	Governance     string
	Strategy       string
	RiskManagement string
	MetricsTargets string
}

// ValidateAssessment validates the four disclosure sections. At least one
// section must contain content; an all-empty submission is ErrNoInput.
func ValidateAssessment(in AssessmentInput) (*models.Assessment, error) {
	if strings.TrimSpace(in.Governance) == "" &&
		strings.TrimSpace(in.Strategy) == "" &&
		strings.TrimSpace(in.RiskManagement) == "" &&
		strings.TrimSpace(in.MetricsTargets) == "" {
		return nil, common.ErrNoInput
	}

	var errs []error
	a := &models.Assessment{}
	var err error

	if a.ProjectID, err = ProjectID(in.ProjectID); err != nil {
		errs = append(errs, err)
	}
	if a.Governance, err = Text(in.Governance, "governance", MaxAssessmentSectionLen); err != nil {
		errs = append(errs, err)
	}
	if a.Strategy, err = Text(in.Strategy, "strategy", MaxAssessmentSectionLen); err != nil {
		errs = append(errs, err)
	}
	if a.RiskManagement, err = Text(in.RiskManagement, "risk_management", MaxAssessmentSectionLen); err != nil {
		errs = append(errs, err)
	}
	if a.MetricsTargets, err = Text(in.MetricsTargets, "metrics_targets", MaxAssessmentSectionLen); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return a, nil
}
