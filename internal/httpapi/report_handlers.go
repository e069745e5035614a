package httpapi

import (
	"net/http"
	"strings"

	"adarshgram.org/internal/audit"
	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/registry"
)

type createReportRequest struct {
	VillageID   string `json:"villageId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`

	// Target jurisdiction; read by the location policy before decoding.
	State    string `json:"state"`
	District string `json:"district"`
	Block    string `json:"block"`
	Village  string `json:"village"`
}

type updateReportRequest struct {
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

func (a *API) createReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, codeNotAuthenticated, "authentication required")
		return
	}

	var req createReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.VillageID) == "" || strings.TrimSpace(req.Title) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "villageId and title are required")
		return
	}
	category, err := registry.ParseFocusArea(req.Category)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	priority := registry.PriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		priority, err = registry.ParsePriority(req.Priority)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
	}

	report := &registry.ProblemReport{
		ReporterID:  identity.UserID,
		VillageID:   strings.TrimSpace(req.VillageID),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Priority:    priority,
		Status:      registry.ProblemPending,
	}
	if err := a.registry.CreateProblemReport(r.Context(), report); err != nil {
		handleRegistryError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "registry.report.created", map[string]any{
		"report_id":  report.ID,
		"village_id": report.VillageID,
	})
	w.Header().Set("Location", "/v1/reports/"+report.ID)
	writeJSON(w, http.StatusCreated, report)
}

func (a *API) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.registry.GetProblemReport(r.Context(), r.PathValue("id"))
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) updateReport(w http.ResponseWriter, r *http.Request) {
	var req updateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	var upd registry.ProblemReportUpdate
	upd.Description = req.Description
	if req.Priority != nil {
		priority, err := registry.ParsePriority(*req.Priority)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		upd.Priority = &priority
	}
	if req.Status != nil {
		status, err := registry.ParseProblemStatus(*req.Status)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		upd.Status = &status
	}

	report, err := a.registry.UpdateProblemReport(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "registry.report.updated", map[string]any{
		"report_id": report.ID,
	})
	writeJSON(w, http.StatusOK, report)
}

type createAssessmentRequest struct {
	VillageID       string   `json:"villageId"`
	FocusArea       string   `json:"focusArea"`
	OverallScore    float64  `json:"overallScore"`
	GapLevel        string   `json:"gapLevel"`
	Recommendations []string `json:"recommendations"`
}

type updateAssessmentRequest struct {
	OverallScore *float64 `json:"overallScore"`
	GapLevel     *string  `json:"gapLevel"`
	Status       *string  `json:"status"`
}

func (a *API) createAssessment(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, codeNotAuthenticated, "authentication required")
		return
	}

	var req createAssessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.VillageID) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "villageId is required")
		return
	}
	focusArea, err := registry.ParseFocusArea(req.FocusArea)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.OverallScore < 0 || req.OverallScore > 100 {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "overallScore must be between 0 and 100")
		return
	}
	gapLevel, err := registry.ParseGapLevel(req.GapLevel)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	assessment := &registry.Assessment{
		VillageID:       strings.TrimSpace(req.VillageID),
		AssessorID:      identity.UserID,
		FocusArea:       focusArea,
		OverallScore:    req.OverallScore,
		GapLevel:        gapLevel,
		Recommendations: req.Recommendations,
		Status:          registry.AssessmentDraft,
	}
	if err := a.registry.CreateAssessment(r.Context(), assessment); err != nil {
		handleRegistryError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "registry.assessment.created", map[string]any{
		"assessment_id": assessment.ID,
		"village_id":    assessment.VillageID,
	})
	w.Header().Set("Location", "/v1/assessments/"+assessment.ID)
	writeJSON(w, http.StatusCreated, assessment)
}

func (a *API) getAssessment(w http.ResponseWriter, r *http.Request) {
	assessment, err := a.registry.GetAssessment(r.Context(), r.PathValue("id"))
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func (a *API) updateAssessment(w http.ResponseWriter, r *http.Request) {
	var req updateAssessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	var upd registry.AssessmentUpdate
	if req.OverallScore != nil {
		if *req.OverallScore < 0 || *req.OverallScore > 100 {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "overallScore must be between 0 and 100")
			return
		}
		upd.OverallScore = req.OverallScore
	}
	if req.GapLevel != nil {
		gapLevel, err := registry.ParseGapLevel(*req.GapLevel)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		upd.GapLevel = &gapLevel
	}
	if req.Status != nil {
		status, err := registry.ParseAssessmentStatus(*req.Status)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		upd.Status = &status
	}

	assessment, err := a.registry.UpdateAssessment(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "registry.assessment.updated", map[string]any{
		"assessment_id": assessment.ID,
	})
	writeJSON(w, http.StatusOK, assessment)
}

type listVillagesResponse struct {
	Items []registry.Village `json:"items"`
}

func (a *API) listVillages(w http.ResponseWriter, r *http.Request) {
	villages, err := a.registry.ListVillages(r.Context(), r.PathValue("state"), r.PathValue("district"))
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listVillagesResponse{Items: villages})
}
