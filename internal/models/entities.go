package models

import "time"

// Project is a compliance project owned by an organisation.
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	OrganisationID string `json:"organisation_id"`
	// OrganisationName is denormalized into list views for display.
	OrganisationName string    `json:"organisation_name,omitempty"`
	Status           string    `json:"status"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Organisation groups projects.
type Organisation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

// ESGDataPoint is one reported metric value for a project.
type ESGDataPoint struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Category    string  `json:"category"`
	Year        int     `json:"year"`
	Period      string  `json:"period"`
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
	MetricUnit  string  `json:"metric_unit"`
	Source      string  `json:"source"`
	Notes       string  `json:"notes"`
}

// Assessment is one framework assessment (TCFD, CSRD, GRI, or SASB) for a
// project. Each framework has its own table; the sections are common.
type Assessment struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"project_id"`
	Governance     string  `json:"governance_data"`
	Strategy       string  `json:"strategy_data"`
	RiskManagement string  `json:"risk_management_data"`
	MetricsTargets string  `json:"metrics_targets_data"`
	OverallScore   float64 `json:"overall_score"`
}
