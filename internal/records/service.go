// Package records is the upstream-facing facade over the local store and
// the remote API. Every operation is gated by a live session, inputs are
// validated before any statement parameter is bound, and reads go through
// the hybrid loader under the caller's fallback policy.
package records

import (
	"context"
	"strings"
	"time"

	"github.com/esgtools/esgkeeper/internal/auth"
	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/loader"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/models"
	"github.com/esgtools/esgkeeper/internal/remote"
	"github.com/esgtools/esgkeeper/internal/storage"
	"github.com/esgtools/esgkeeper/internal/validation"
	"github.com/google/uuid"
)

type Service struct {
	exec     *storage.Executor
	api      *remote.Client
	hybrid   *loader.Hybrid
	sessions *auth.SessionManager
	log      logging.Logger
}

func NewService(exec *storage.Executor, api *remote.Client, hybrid *loader.Hybrid, sessions *auth.SessionManager, log logging.Logger) *Service {
	return &Service{
		exec:     exec,
		api:      api,
		hybrid:   hybrid,
		sessions: sessions,
		log:      log.With("component", "records"),
	}
}

// Projects lists all projects under the caller's fallback policy.
func (s *Service) Projects(ctx context.Context, sess *models.Session, p loader.Policy) ([]models.Project, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	return loader.Load(ctx, s.hybrid, p, s.api.ListProjects, s.localProjects)
}

// Project fetches one project by id.
func (s *Service) Project(ctx context.Context, sess *models.Session, p loader.Policy, projectID string) (*models.Project, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	id, err := validation.ProjectID(projectID)
	if err != nil {
		return nil, err
	}
	remoteFn := func(ctx context.Context) (*models.Project, error) {
		return s.api.GetProject(ctx, id)
	}
	localFn := func(ctx context.Context) (*models.Project, error) {
		return s.localProject(ctx, id)
	}
	return loader.Load(ctx, s.hybrid, p, remoteFn, localFn)
}

// CreateProject validates the submission and writes it. Writes go to the
// remote API when the policy enables it, otherwise to the local store; a
// failed remote write is never replayed locally.
func (s *Service) CreateProject(ctx context.Context, sess *models.Session, p loader.Policy, in validation.ProjectInput) (*models.Project, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	project, err := validation.ValidateProject(in)
	if err != nil {
		return nil, err
	}
	project.CreatedBy = sess.Identity

	if p.RemoteEnabled {
		return s.api.CreateProject(ctx, project)
	}

	project.ID = uuid.NewString()
	_, err = s.exec.Exec(ctx, storage.OpProjectInsert,
		project.ID, project.Name, project.Description,
		project.OrganisationID, project.Status, project.CreatedBy)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject validates and applies changes to the mutable project fields.
// The owning organisation cannot be reassigned.
func (s *Service) UpdateProject(ctx context.Context, sess *models.Session, p loader.Policy, projectID string, in validation.ProjectUpdateInput) (*models.Project, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	id, err := validation.ProjectID(projectID)
	if err != nil {
		return nil, err
	}
	project, err := validation.ValidateProjectUpdate(in)
	if err != nil {
		return nil, err
	}
	project.ID = id

	if p.RemoteEnabled {
		return s.api.UpdateProject(ctx, project)
	}

	n, err := s.exec.Exec(ctx, storage.OpProjectUpdate,
		project.ID, project.Name, project.Description, project.Status)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}
	return project, nil
}

// DeleteProject removes a project by id.
func (s *Service) DeleteProject(ctx context.Context, sess *models.Session, p loader.Policy, projectID string) error {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return err
	}
	id, err := validation.ProjectID(projectID)
	if err != nil {
		return err
	}

	if p.RemoteEnabled {
		return s.api.DeleteProject(ctx, id)
	}

	n, err := s.exec.Exec(ctx, storage.OpProjectDelete, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Organisations lists organisations under the caller's fallback policy.
func (s *Service) Organisations(ctx context.Context, sess *models.Session, p loader.Policy) ([]models.Organisation, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	return loader.Load(ctx, s.hybrid, p, s.api.ListOrganisations, s.localOrganisations)
}

// CreateOrganisation validates the submission and writes it, following the
// same policy routing as project writes.
func (s *Service) CreateOrganisation(ctx context.Context, sess *models.Session, p loader.Policy, in validation.OrganisationInput) (*models.Organisation, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	org, err := validation.ValidateOrganisation(in)
	if err != nil {
		return nil, err
	}

	if p.RemoteEnabled {
		return s.api.CreateOrganisation(ctx, org)
	}

	org.ID = uuid.NewString()
	_, err = s.exec.Exec(ctx, storage.OpOrganisationInsert,
		org.ID, org.Name, org.Industry, org.Description)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ESGData lists the metric values recorded for a project.
func (s *Service) ESGData(ctx context.Context, sess *models.Session, p loader.Policy, projectID string) ([]models.ESGDataPoint, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	id, err := validation.ProjectID(projectID)
	if err != nil {
		return nil, err
	}
	remoteFn := func(ctx context.Context) ([]models.ESGDataPoint, error) {
		return s.api.ListESGData(ctx, id)
	}
	localFn := func(ctx context.Context) ([]models.ESGDataPoint, error) {
		return s.localESGData(ctx, id)
	}
	return loader.Load(ctx, s.hybrid, p, remoteFn, localFn)
}

// AddESGDataPoint validates and stores one metric submission.
func (s *Service) AddESGDataPoint(ctx context.Context, sess *models.Session, p loader.Policy, in validation.ESGDataPointInput) (*models.ESGDataPoint, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	point, err := validation.ValidateESGDataPoint(in)
	if err != nil {
		return nil, err
	}

	if p.RemoteEnabled {
		return s.api.CreateESGData(ctx, point)
	}

	point.ID = uuid.NewString()
	_, err = s.exec.Exec(ctx, storage.OpESGDataInsert,
		point.ID, point.ProjectID, point.Category, point.Year, point.Period,
		point.MetricName, point.MetricValue, point.MetricUnit, point.Source, point.Notes)
	if err != nil {
		return nil, err
	}
	return point, nil
}

// Assessment fetches the latest framework assessment for a project.
func (s *Service) Assessment(ctx context.Context, sess *models.Session, p loader.Policy, kind storage.FrameworkKind, projectID string) (*models.Assessment, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	id, err := validation.ProjectID(projectID)
	if err != nil {
		return nil, err
	}
	remoteFn := func(ctx context.Context) (*models.Assessment, error) {
		return s.api.GetAssessment(ctx, kind, id)
	}
	localFn := func(ctx context.Context) (*models.Assessment, error) {
		return s.localAssessment(ctx, kind, id)
	}
	return loader.Load(ctx, s.hybrid, p, remoteFn, localFn)
}

// SaveAssessment validates and stores a framework assessment, stamping the
// compliance score derived from section completeness.
func (s *Service) SaveAssessment(ctx context.Context, sess *models.Session, p loader.Policy, kind storage.FrameworkKind, in validation.AssessmentInput) (*models.Assessment, error) {
	if err := s.sessions.RequireAuth(sess); err != nil {
		return nil, err
	}
	assessment, err := validation.ValidateAssessment(in)
	if err != nil {
		return nil, err
	}
	assessment.OverallScore = complianceScore(assessment)

	if p.RemoteEnabled {
		return s.api.CreateAssessment(ctx, kind, assessment)
	}

	op, err := storage.AssessmentInsertOp(kind)
	if err != nil {
		return nil, err
	}
	assessment.ID = uuid.NewString()
	_, err = s.exec.Exec(ctx, op,
		assessment.ID, assessment.ProjectID, assessment.Governance, assessment.Strategy,
		assessment.RiskManagement, assessment.MetricsTargets, assessment.OverallScore)
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

// complianceScore averages per-section scores: substantial content scores
// 100, moderate 75, minimal 50, empty 0.
func complianceScore(a *models.Assessment) float64 {
	sections := []string{a.Governance, a.Strategy, a.RiskManagement, a.MetricsTargets}
	var total float64
	for _, section := range sections {
		switch n := len(strings.TrimSpace(section)); {
		case n > 500:
			total += 100
		case n > 200:
			total += 75
		case n > 0:
			total += 50
		}
	}
	return total / float64(len(sections))
}

func (s *Service) localProjects(ctx context.Context) ([]models.Project, error) {
	recs, err := s.exec.Query(ctx, storage.OpProjectList)
	if err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(recs))
	for _, rec := range recs {
		projects = append(projects, projectFromRecord(rec))
	}
	return projects, nil
}

func (s *Service) localProject(ctx context.Context, projectID string) (*models.Project, error) {
	recs, err := s.exec.Query(ctx, storage.OpProjectByID, projectID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.ErrorNotFound
	}
	p := projectFromRecord(recs[0])
	return &p, nil
}

func (s *Service) localOrganisations(ctx context.Context) ([]models.Organisation, error) {
	recs, err := s.exec.Query(ctx, storage.OpOrganisationList)
	if err != nil {
		return nil, err
	}
	orgs := make([]models.Organisation, 0, len(recs))
	for _, rec := range recs {
		orgs = append(orgs, models.Organisation{
			ID:          recString(rec, "id"),
			Name:        recString(rec, "name"),
			Industry:    recString(rec, "industry"),
			Description: recString(rec, "description"),
		})
	}
	return orgs, nil
}

func (s *Service) localESGData(ctx context.Context, projectID string) ([]models.ESGDataPoint, error) {
	recs, err := s.exec.Query(ctx, storage.OpESGDataByProject, projectID)
	if err != nil {
		return nil, err
	}
	points := make([]models.ESGDataPoint, 0, len(recs))
	for _, rec := range recs {
		points = append(points, models.ESGDataPoint{
			ID:          recString(rec, "id"),
			ProjectID:   recString(rec, "project_id"),
			Category:    recString(rec, "category"),
			Year:        recInt(rec, "year"),
			Period:      recString(rec, "period"),
			MetricName:  recString(rec, "metric_name"),
			MetricValue: recFloat(rec, "metric_value"),
			MetricUnit:  recString(rec, "metric_unit"),
			Source:      recString(rec, "source"),
			Notes:       recString(rec, "notes"),
		})
	}
	return points, nil
}

func (s *Service) localAssessment(ctx context.Context, kind storage.FrameworkKind, projectID string) (*models.Assessment, error) {
	op, err := storage.AssessmentSelectOp(kind)
	if err != nil {
		return nil, err
	}
	recs, err := s.exec.Query(ctx, op, projectID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.ErrorNotFound
	}
	rec := recs[0]
	return &models.Assessment{
		ID:             recString(rec, "id"),
		ProjectID:      recString(rec, "project_id"),
		Governance:     recString(rec, "governance_data"),
		Strategy:       recString(rec, "strategy_data"),
		RiskManagement: recString(rec, "risk_management_data"),
		MetricsTargets: recString(rec, "metrics_targets_data"),
		OverallScore:   recFloat(rec, "overall_score"),
	}, nil
}

func projectFromRecord(rec storage.Record) models.Project {
	return models.Project{
		ID:               recString(rec, "id"),
		Name:             recString(rec, "name"),
		Description:      recString(rec, "description"),
		OrganisationID:   recString(rec, "organisation_id"),
		OrganisationName: recString(rec, "organisation_name"),
		Status:           recString(rec, "status"),
		CreatedBy:        recString(rec, "created_by"),
		CreatedAt:        recTime(rec, "created_at"),
		UpdatedAt:        recTime(rec, "updated_at"),
	}
}

func recString(rec storage.Record, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func recInt(rec storage.Record, key string) int {
	switch v := rec[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func recFloat(rec storage.Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// recTime accepts a native timestamp or the text form SQLite stores for
// CURRENT_TIMESTAMP defaults.
func recTime(rec storage.Record, key string) time.Time {
	switch v := rec[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
