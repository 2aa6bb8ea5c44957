package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/esgtools/esgkeeper/internal/auth"
	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/storage"
	"github.com/esgtools/esgkeeper/internal/validation"
)

func (a *App) status() string {
	if a.isLoggedIn() {
		return fmt.Sprintf("(%s)", a.session.Identity)
	}
	return ""
}

// readCommand reads one command line and splits it into fields. A trailing
// line without a newline is still delivered; the error surfaces on the next
// read. Commands and prompts share a.reader so buffered input is never lost
// between them.
func readCommand(reader *bufio.Reader) ([]string, error) {
	line, err := reader.ReadString('\n')
	fields := strings.Fields(line)
	if err != nil && len(fields) == 0 {
		return nil, err
	}
	return fields, nil
}

func (a *App) root(ctx context.Context) {
	fmt.Println("ESG record-keeper (type 'help' for commands)")

	a.login(ctx)

	for {
		fmt.Printf("esg %s> ", a.status())
		parts, err := readCommand(a.reader)
		if err != nil {
			return
		}
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		select {
		case <-ctx.Done():
			return
		default:
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: projects, project <id>, addproject, editproject <id>, delproject <id>,")
				fmt.Println("  orgs, addorg, esg <project-id>, addesg,")
				fmt.Println("  assessment <tcfd|csrd|gri|sasb> <project-id>, assess <tcfd|csrd|gri|sasb>,")
				fmt.Println("  evidence-put, evidence-get <key>, logout, exit")
			} else {
				fmt.Println("Available commands: login, exit")
			}
		case "login":
			a.login(ctx)
		case "logout":
			a.logout()
		case "projects":
			a.listProjects(ctx)
		case "project":
			if len(args) != 1 {
				fmt.Println("Usage: project <id>")
				continue
			}
			a.showProject(ctx, args[0])
		case "addproject":
			a.addProject(ctx)
		case "editproject":
			if len(args) != 1 {
				fmt.Println("Usage: editproject <id>")
				continue
			}
			a.editProject(ctx, args[0])
		case "delproject":
			if len(args) != 1 {
				fmt.Println("Usage: delproject <id>")
				continue
			}
			a.deleteProject(ctx, args[0])
		case "orgs":
			a.listOrganisations(ctx)
		case "addorg":
			a.addOrganisation(ctx)
		case "esg":
			if len(args) != 1 {
				fmt.Println("Usage: esg <project-id>")
				continue
			}
			a.listESGData(ctx, args[0])
		case "addesg":
			a.addESGData(ctx)
		case "assessment":
			if len(args) != 2 {
				fmt.Println("Usage: assessment <tcfd|csrd|gri|sasb> <project-id>")
				continue
			}
			a.showAssessment(ctx, args[0], args[1])
		case "assess":
			if len(args) != 1 {
				fmt.Println("Usage: assess <tcfd|csrd|gri|sasb>")
				continue
			}
			a.saveAssessment(ctx, args[0])
		case "evidence-put":
			a.evidencePut(ctx)
		case "evidence-get":
			if len(args) != 1 {
				fmt.Println("Usage: evidence-get <key>")
				continue
			}
			a.evidenceGet(ctx, args[0])
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

// reportError prints the caller-visible form of an error. Authentication and
// session errors are already generic; anything else is shown as-is because
// the layers below never leak statement text or backend detail.
func (a *App) reportError(err error) {
	var locked *auth.LockedError
	if errors.As(err, &locked) {
		fmt.Println(locked.Error())
		return
	}
	if errors.Is(err, common.ErrReauthenticationRequired) {
		a.session = nil
		fmt.Println("Session expired, please log in again.")
		return
	}
	fmt.Println("Error:", err.Error())
}

func (a *App) login(ctx context.Context) {
	identity, err := GetSimpleText(a.reader, "Enter identity", os.Stdout)
	if err != nil || identity == "" {
		return
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		a.reportError(err)
		return
	}

	cred, err := a.auth.Authenticate(ctx, identity, string(password))
	if err != nil {
		a.reportError(err)
		return
	}

	session, err := a.sessions.Login(cred)
	if err != nil {
		a.reportError(err)
		return
	}
	a.session = session
	a.api.SetToken(session.APIToken)
	fmt.Printf("Welcome, %s!\n", cred.DisplayName)
}

func (a *App) logout() {
	a.sessions.Logout(a.session)
	a.session = nil
	a.api.SetToken("")
	fmt.Println("Logged out.")
}

func (a *App) listProjects(ctx context.Context) {
	projects, err := a.records.Projects(ctx, a.session, a.policy())
	if err != nil {
		a.reportError(err)
		return
	}
	if len(projects) == 0 {
		fmt.Println("No projects yet.")
		return
	}
	for _, p := range projects {
		fmt.Printf("%s  %-30s  %-10s  %s\n", p.ID, p.Name, p.Status, p.OrganisationName)
	}
}

func (a *App) showProject(ctx context.Context, id string) {
	p, err := a.records.Project(ctx, a.session, a.policy(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Println("Project not found.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Printf("Name:         %s\nStatus:       %s\nOrganisation: %s\nDescription:  %s\n",
		p.Name, p.Status, p.OrganisationName, p.Description)
}

func (a *App) addProject(ctx context.Context) {
	name, _ := GetSimpleText(a.reader, "Project name", os.Stdout)
	description, _ := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	orgID, _ := GetSimpleText(a.reader, "Organisation id", os.Stdout)
	status, _ := GetSimpleText(a.reader, "Status (draft/active/completed/archived, default draft)", os.Stdout)

	p, err := a.records.CreateProject(ctx, a.session, a.policy(), validation.ProjectInput{
		Name:           name,
		Description:    description,
		OrganisationID: orgID,
		Status:         status,
	})
	if err != nil {
		if errors.Is(err, common.ErrNoInput) {
			fmt.Println("Nothing submitted.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Printf("Created project %s\n", p.ID)
}

func (a *App) editProject(ctx context.Context, id string) {
	name, _ := GetSimpleText(a.reader, "Project name", os.Stdout)
	description, _ := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	status, _ := GetSimpleText(a.reader, "Status (draft/active/completed/archived, default draft)", os.Stdout)

	p, err := a.records.UpdateProject(ctx, a.session, a.policy(), id, validation.ProjectUpdateInput{
		Name:        name,
		Description: description,
		Status:      status,
	})
	if err != nil {
		if errors.Is(err, common.ErrNoInput) {
			fmt.Println("Nothing submitted.")
			return
		}
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Println("Project not found.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Printf("Updated project %s\n", p.ID)
}

func (a *App) deleteProject(ctx context.Context, id string) {
	confirm, _ := GetSimpleText(a.reader, "Delete this project? (yes/no)", os.Stdout)
	if strings.ToLower(confirm) != "yes" {
		fmt.Println("Cancelled.")
		return
	}
	if err := a.records.DeleteProject(ctx, a.session, a.policy(), id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Println("Project not found.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Println("Project deleted.")
}

func (a *App) addOrganisation(ctx context.Context) {
	name, _ := GetSimpleText(a.reader, "Organisation name", os.Stdout)
	industry, _ := GetSimpleText(a.reader, "Industry (optional)", os.Stdout)
	description, _ := GetSimpleText(a.reader, "Description (optional)", os.Stdout)

	o, err := a.records.CreateOrganisation(ctx, a.session, a.policy(), validation.OrganisationInput{
		Name:        name,
		Industry:    industry,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, common.ErrNoInput) {
			fmt.Println("Nothing submitted.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Printf("Created organisation %s\n", o.ID)
}

func (a *App) listOrganisations(ctx context.Context) {
	orgs, err := a.records.Organisations(ctx, a.session, a.policy())
	if err != nil {
		a.reportError(err)
		return
	}
	for _, o := range orgs {
		fmt.Printf("%s  %-30s  %s\n", o.ID, o.Name, o.Industry)
	}
}

func (a *App) listESGData(ctx context.Context, projectID string) {
	points, err := a.records.ESGData(ctx, a.session, a.policy(), projectID)
	if err != nil {
		a.reportError(err)
		return
	}
	if len(points) == 0 {
		fmt.Println("No data points recorded for this project.")
		return
	}
	for _, d := range points {
		fmt.Printf("%-13s  %d %-6s  %-30s  %g %s\n",
			d.Category, d.Year, d.Period, d.MetricName, d.MetricValue, d.MetricUnit)
	}
}

func (a *App) addESGData(ctx context.Context) {
	projectID, _ := GetSimpleText(a.reader, "Project id", os.Stdout)
	category, _ := GetSimpleText(a.reader, "Category (environmental/social/governance)", os.Stdout)
	yearText, _ := GetSimpleText(a.reader, "Reporting year", os.Stdout)
	period, _ := GetSimpleText(a.reader, "Period (Q1-Q4, H1, H2, Annual)", os.Stdout)
	metricName, _ := GetSimpleText(a.reader, "Metric name", os.Stdout)
	valueText, _ := GetSimpleText(a.reader, "Metric value", os.Stdout)
	unit, _ := GetSimpleText(a.reader, "Metric unit (optional)", os.Stdout)
	source, _ := GetSimpleText(a.reader, "Source (optional)", os.Stdout)
	notes, _ := GetSimpleText(a.reader, "Notes (optional)", os.Stdout)

	year, err := strconv.Atoi(yearText)
	if err != nil && yearText != "" {
		fmt.Println("Year must be a valid number.")
		return
	}
	value, err := strconv.ParseFloat(valueText, 64)
	if err != nil && valueText != "" {
		fmt.Println("Metric value must be a valid number.")
		return
	}

	point, err := a.records.AddESGDataPoint(ctx, a.session, a.policy(), validation.ESGDataPointInput{
		ProjectID:   projectID,
		Category:    category,
		Year:        year,
		Period:      period,
		MetricName:  metricName,
		MetricValue: value,
		MetricUnit:  unit,
		Source:      source,
		Notes:       notes,
	})
	if err != nil {
		if errors.Is(err, common.ErrNoInput) {
			fmt.Println("Nothing submitted.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Printf("Recorded %s = %g %s\n", point.MetricName, point.MetricValue, point.MetricUnit)
}

func frameworkKind(raw string) (storage.FrameworkKind, bool) {
	switch storage.FrameworkKind(strings.ToLower(raw)) {
	case storage.FrameworkTCFD:
		return storage.FrameworkTCFD, true
	case storage.FrameworkCSRD:
		return storage.FrameworkCSRD, true
	case storage.FrameworkGRI:
		return storage.FrameworkGRI, true
	case storage.FrameworkSASB:
		return storage.FrameworkSASB, true
	}
	return "", false
}

func (a *App) showAssessment(ctx context.Context, kindRaw, projectID string) {
	kind, ok := frameworkKind(kindRaw)
	if !ok {
		fmt.Println("Unknown framework:", kindRaw)
		return
	}

	assessment, err := a.records.Assessment(ctx, a.session, a.policy(), kind, projectID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Printf("No %s assessment recorded for this project.\n", kind)
			return
		}
		a.reportError(err)
		return
	}

	fmt.Printf("%s assessment (score %.1f)\n", strings.ToUpper(string(kind)), assessment.OverallScore)
	fmt.Println("Governance:      ", assessment.Governance)
	fmt.Println("Strategy:        ", assessment.Strategy)
	fmt.Println("Risk management: ", assessment.RiskManagement)
	fmt.Println("Metrics/targets: ", assessment.MetricsTargets)
}

func (a *App) saveAssessment(ctx context.Context, kindRaw string) {
	kind, ok := frameworkKind(kindRaw)
	if !ok {
		fmt.Println("Unknown framework:", kindRaw)
		return
	}

	projectID, _ := GetSimpleText(a.reader, "Project id", os.Stdout)
	governance, _ := GetMultiline(a.reader, "Governance disclosures", os.Stdout)
	strategy, _ := GetMultiline(a.reader, "Strategy disclosures", os.Stdout)
	riskManagement, _ := GetMultiline(a.reader, "Risk management disclosures", os.Stdout)
	metricsTargets, _ := GetMultiline(a.reader, "Metrics and targets", os.Stdout)

	assessment, err := a.records.SaveAssessment(ctx, a.session, a.policy(), kind, validation.AssessmentInput{
		ProjectID:      projectID,
		Governance:     governance,
		Strategy:       strategy,
		RiskManagement: riskManagement,
		MetricsTargets: metricsTargets,
	})
	if err != nil {
		if errors.Is(err, common.ErrNoInput) {
			fmt.Println("At least one section must contain content.")
			return
		}
		a.reportError(err)
		return
	}
	fmt.Printf("Saved %s assessment, compliance score %.1f\n", strings.ToUpper(string(kind)), assessment.OverallScore)
}

func (a *App) evidencePut(ctx context.Context) {
	if err := a.sessions.RequireAuth(a.session); err != nil {
		a.reportError(err)
		return
	}
	key, url, err := a.evidence.PresignedPutURL(ctx)
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Evidence key:", key)
	fmt.Println("Upload URL (valid 15 min):", url)
}

func (a *App) evidenceGet(ctx context.Context, key string) {
	if err := a.sessions.RequireAuth(a.session); err != nil {
		a.reportError(err)
		return
	}
	url, err := a.evidence.PresignedGetURL(ctx, key)
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Println("Download URL (valid 15 min):", url)
}
