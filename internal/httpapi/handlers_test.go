package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/registry"
)

func authedRequest(t *testing.T, env *testEnv, user *auth.User, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, user))
	return req
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestCreateReportInOwnVillage(t *testing.T) {
	env := newTestEnv(t)
	reporter := env.seedUser(t, auth.RoleVillageReporter, sitapurVillage)

	body := `{
		"villageId": "vil-3",
		"title": "Broken handpump",
		"description": "No drinking water since Monday",
		"category": "drinking_water",
		"state": "Uttar Pradesh",
		"district": "Sitapur",
		"block": "Biswan",
		"village": "Rampur"
	}`
	rec := env.do(authedRequest(t, env, reporter, http.MethodPost, "/v1/reports", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var report registry.ProblemReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.ReporterID != reporter.ID {
		t.Fatalf("reporterId = %s, want %s", report.ReporterID, reporter.ID)
	}
	if report.Priority != registry.PriorityMedium {
		t.Fatalf("priority = %s, want default medium", report.Priority)
	}
	if report.Status != registry.ProblemPending {
		t.Fatalf("status = %s, want pending", report.Status)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/reports/"+report.ID {
		t.Fatalf("Location header = %q", loc)
	}
}

func TestCreateReportOutsideVillageDenied(t *testing.T) {
	env := newTestEnv(t)
	reporter := env.seedUser(t, auth.RoleVillageReporter, sitapurVillage)

	body := `{
		"villageId": "vil-9",
		"title": "Road washed out",
		"category": "connectivity",
		"state": "Uttar Pradesh",
		"district": "Sitapur",
		"block": "Biswan",
		"village": "OtherVillage"
	}`
	rec := env.do(authedRequest(t, env, reporter, http.MethodPost, "/v1/reports", body))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != codeLocationAccessDenied {
		t.Fatalf("error = %s", resp.Error)
	}
	if len(env.registry.reports) != 0 {
		t.Fatal("report must not be created")
	}
}

func TestCreateReportRoleDenied(t *testing.T) {
	env := newTestEnv(t)
	assessor := env.seedUser(t, auth.RoleAssessor, sitapurVillage)

	body := `{"villageId":"vil-3","title":"x","category":"education","state":"Uttar Pradesh","district":"Sitapur","block":"Biswan","village":"Rampur"}`
	rec := env.do(authedRequest(t, env, assessor, http.MethodPost, "/v1/reports", body))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != codeInsufficientPermissions {
		t.Fatalf("error = %s", resp.Error)
	}
}

func TestUpdateReportOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, auth.RoleVillageReporter, sitapurVillage)
	other := env.seedUser(t, auth.RoleVillageReporter, sitapurVillage)

	report := &registry.ProblemReport{
		ReporterID: owner.ID,
		VillageID:  "vil-3",
		Title:      "Broken handpump",
		Category:   registry.FocusDrinkingWater,
		Priority:   registry.PriorityHigh,
		Status:     registry.ProblemPending,
	}
	if err := env.registry.CreateProblemReport(t.Context(), report); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	env.owners.owners["problem_report/"+report.ID] = owner.ID

	body := `{"status":"in_progress"}`
	rec := env.do(authedRequest(t, env, other, http.MethodPatch, "/v1/reports/"+report.ID, body))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != codeOwnershipRequired {
		t.Fatalf("error = %s", resp.Error)
	}

	rec = env.do(authedRequest(t, env, owner, http.MethodPatch, "/v1/reports/"+report.ID, body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var updated registry.ProblemReport
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != registry.ProblemInProgress {
		t.Fatalf("status = %s, want in_progress", updated.Status)
	}
}

func TestGetReportNotFound(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, auth.RoleViewer, auth.Location{State: "Uttar Pradesh", District: "Sitapur"})

	rec := env.do(authedRequest(t, env, viewer, http.MethodGet, "/v1/reports/ghost", ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != codeResourceNotFound {
		t.Fatalf("error = %s", resp.Error)
	}
}

func TestCreateAssessmentScoreBounds(t *testing.T) {
	env := newTestEnv(t)
	assessor := env.seedUser(t, auth.RoleAssessor, sitapurVillage)

	body := `{"villageId":"vil-3","focusArea":"sanitation","overallScore":140,"gapLevel":"moderate"}`
	rec := env.do(authedRequest(t, env, assessor, http.MethodPost, "/v1/assessments", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body = `{"villageId":"vil-3","focusArea":"sanitation","overallScore":62.5,"gapLevel":"moderate","recommendations":["build soak pits"]}`
	rec = env.do(authedRequest(t, env, assessor, http.MethodPost, "/v1/assessments", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var assessment registry.Assessment
	if err := json.Unmarshal(rec.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if assessment.AssessorID != assessor.ID {
		t.Fatalf("assessorId = %s, want %s", assessment.AssessorID, assessor.ID)
	}
	if assessment.Status != registry.AssessmentDraft {
		t.Fatalf("status = %s, want draft", assessment.Status)
	}
}

func TestListVillagesDistrictScope(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, auth.RoleDistrictAdmin, auth.Location{State: "Uttar Pradesh", District: "Sitapur"})
	env.registry.villages = []registry.Village{
		{ID: "vil-1", Name: "Rampur", State: "Uttar Pradesh", District: "Sitapur", Block: "Biswan"},
		{ID: "vil-2", Name: "Sisendi", State: "Uttar Pradesh", District: "Lucknow", Block: "Mohanlalganj"},
	}

	rec := env.do(authedRequest(t, env, admin, http.MethodGet, "/v1/locations/Uttar%20Pradesh/Sitapur/villages", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp listVillagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Rampur" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}

	rec = env.do(authedRequest(t, env, admin, http.MethodGet, "/v1/locations/Uttar%20Pradesh/Lucknow/villages", ""))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != codeLocationAccessDenied {
		t.Fatalf("error = %s", body.Error)
	}
}
