package storage

import "fmt"

// Operation identifies one statement in the closed catalog. Statement text
// is only ever selected by Operation value; no code path assembles a table
// or column name from caller-supplied text.
type Operation int

const (
	opUnknown Operation = iota

	OpCredentialByIdentity
	OpCredentialInsert
	OpCredentialUpdateFailureState
	OpCredentialResetFailures

	OpOrganisationList
	OpOrganisationInsert

	OpProjectList
	OpProjectByID
	OpProjectInsert
	OpProjectUpdate
	OpProjectDelete

	OpESGDataByProject
	OpESGDataInsert

	OpTCFDAssessmentByProject
	OpTCFDAssessmentInsert
	OpCSRDAssessmentByProject
	OpCSRDAssessmentInsert
	OpGRIAssessmentByProject
	OpGRIAssessmentInsert
	OpSASBAssessmentByProject
	OpSASBAssessmentInsert
)

var operationNames = map[Operation]string{
	OpCredentialByIdentity:         "credential_by_identity",
	OpCredentialInsert:             "credential_insert",
	OpCredentialUpdateFailureState: "credential_update_failure_state",
	OpCredentialResetFailures:      "credential_reset_failures",
	OpOrganisationList:             "organisation_list",
	OpOrganisationInsert:           "organisation_insert",
	OpProjectList:                  "project_list",
	OpProjectByID:                  "project_by_id",
	OpProjectInsert:                "project_insert",
	OpProjectUpdate:                "project_update",
	OpProjectDelete:                "project_delete",
	OpESGDataByProject:             "esg_data_by_project",
	OpESGDataInsert:                "esg_data_insert",
	OpTCFDAssessmentByProject:      "tcfd_assessment_by_project",
	OpTCFDAssessmentInsert:         "tcfd_assessment_insert",
	OpCSRDAssessmentByProject:      "csrd_assessment_by_project",
	OpCSRDAssessmentInsert:         "csrd_assessment_insert",
	OpGRIAssessmentByProject:       "gri_assessment_by_project",
	OpGRIAssessmentInsert:          "gri_assessment_insert",
	OpSASBAssessmentByProject:      "sasb_assessment_by_project",
	OpSASBAssessmentInsert:         "sasb_assessment_insert",
}

// String returns the diagnostic name of the operation. It is safe to show
// in errors and logs: it never contains statement text or parameters.
func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(op))
}

// statements is the closed catalog. $N placeholders are understood by both
// the pgx and sqlite drivers.
var statements = map[Operation]string{
	OpCredentialByIdentity: `
		SELECT identity, email, display_name, password_hash, salt, role,
		       failed_attempts, locked_until, last_login
		FROM credentials
		WHERE identity = $1`,

	OpCredentialInsert: `
		INSERT INTO credentials (identity, email, display_name, password_hash, salt, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identity) DO NOTHING`,

	OpCredentialUpdateFailureState: `
		UPDATE credentials
		SET failed_attempts = $2, locked_until = $3
		WHERE identity = $1`,

	OpCredentialResetFailures: `
		UPDATE credentials
		SET failed_attempts = 0, locked_until = NULL, last_login = $2
		WHERE identity = $1`,

	OpOrganisationList: `
		SELECT id, name, industry, description FROM organisations ORDER BY name`,

	OpOrganisationInsert: `
		INSERT INTO organisations (id, name, industry, description)
		VALUES ($1, $2, $3, $4)`,

	OpProjectList: `
		SELECT p.id, p.name, p.description, p.organisation_id, p.status,
		       p.created_by, p.created_at, p.updated_at, o.name AS organisation_name
		FROM projects p
		LEFT JOIN organisations o ON p.organisation_id = o.id
		ORDER BY p.created_at DESC`,

	OpProjectByID: `
		SELECT p.id, p.name, p.description, p.organisation_id, p.status,
		       p.created_by, p.created_at, p.updated_at, o.name AS organisation_name
		FROM projects p
		LEFT JOIN organisations o ON p.organisation_id = o.id
		WHERE p.id = $1`,

	OpProjectInsert: `
		INSERT INTO projects (id, name, description, organisation_id, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,

	OpProjectUpdate: `
		UPDATE projects
		SET name = $2, description = $3, status = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,

	OpProjectDelete: `
		DELETE FROM projects WHERE id = $1`,

	OpESGDataByProject: `
		SELECT id, project_id, category, year, period, metric_name,
		       metric_value, metric_unit, source, notes
		FROM esg_data_points
		WHERE project_id = $1
		ORDER BY category, year DESC, period DESC`,

	OpESGDataInsert: `
		INSERT INTO esg_data_points
		    (id, project_id, category, year, period, metric_name, metric_value, metric_unit, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,

	OpTCFDAssessmentByProject: assessmentSelect("tcfd_assessments"),
	OpTCFDAssessmentInsert:    assessmentInsert("tcfd_assessments"),
	OpCSRDAssessmentByProject: assessmentSelect("csrd_assessments"),
	OpCSRDAssessmentInsert:    assessmentInsert("csrd_assessments"),
	OpGRIAssessmentByProject:  assessmentSelect("gri_assessments"),
	OpGRIAssessmentInsert:     assessmentInsert("gri_assessments"),
	OpSASBAssessmentByProject: assessmentSelect("sasb_assessments"),
	OpSASBAssessmentInsert:    assessmentInsert("sasb_assessments"),
}

// assessmentSelect and assessmentInsert build catalog entries at package
// init from compile-time table names. They are never called with runtime
// input.
func assessmentSelect(table string) string {
	return `
		SELECT id, project_id, governance_data, strategy_data,
		       risk_management_data, metrics_targets_data, overall_score
		FROM ` + table + `
		WHERE project_id = $1
		ORDER BY created_at DESC`
}

func assessmentInsert(table string) string {
	return `
		INSERT INTO ` + table + `
		    (id, project_id, governance_data, strategy_data, risk_management_data, metrics_targets_data, overall_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
}

// FrameworkKind enumerates the supported assessment frameworks.
type FrameworkKind string

const (
	FrameworkTCFD FrameworkKind = "tcfd"
	FrameworkCSRD FrameworkKind = "csrd"
	FrameworkGRI  FrameworkKind = "gri"
	FrameworkSASB FrameworkKind = "sasb"
)

// AssessmentSelectOp maps a framework kind to its fixed select operation.
// Unknown kinds are rejected; the kind never reaches statement text.
func AssessmentSelectOp(kind FrameworkKind) (Operation, error) {
	switch kind {
	case FrameworkTCFD:
		return OpTCFDAssessmentByProject, nil
	case FrameworkCSRD:
		return OpCSRDAssessmentByProject, nil
	case FrameworkGRI:
		return OpGRIAssessmentByProject, nil
	case FrameworkSASB:
		return OpSASBAssessmentByProject, nil
	default:
		return opUnknown, fmt.Errorf("unknown assessment framework %q", kind)
	}
}

// AssessmentInsertOp maps a framework kind to its fixed insert operation.
func AssessmentInsertOp(kind FrameworkKind) (Operation, error) {
	switch kind {
	case FrameworkTCFD:
		return OpTCFDAssessmentInsert, nil
	case FrameworkCSRD:
		return OpCSRDAssessmentInsert, nil
	case FrameworkGRI:
		return OpGRIAssessmentInsert, nil
	case FrameworkSASB:
		return OpSASBAssessmentInsert, nil
	default:
		return opUnknown, fmt.Errorf("unknown assessment framework %q", kind)
	}
}

// statementFor resolves an operation against the catalog.
func statementFor(op Operation) (string, error) {
	stmt, ok := statements[op]
	if !ok {
		return "", fmt.Errorf("operation %s is not in the statement catalog", op)
	}
	return stmt, nil
}
