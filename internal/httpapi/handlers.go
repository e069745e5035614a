package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/obs"
	"adarshgram.org/internal/registry"
)

// Machine-readable error codes surfaced in the "error" field of failure
// responses.
const (
	codeMissingToken            = "MISSING_TOKEN"
	codeAuthenticationFailed    = "AUTHENTICATION_FAILED"
	codeInvalidUser             = "INVALID_USER"
	codeNotAuthenticated        = "NOT_AUTHENTICATED"
	codeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	codeLocationAccessDenied    = "LOCATION_ACCESS_DENIED"
	codeMissingResourceID       = "MISSING_RESOURCE_ID"
	codeInvalidResourceType     = "INVALID_RESOURCE_TYPE"
	codeResourceNotFound        = "RESOURCE_NOT_FOUND"
	codeOwnershipRequired       = "OWNERSHIP_REQUIRED"
	codeOwnershipCheckFailed    = "OWNERSHIP_CHECK_FAILED"
	codeInvalidRequest          = "INVALID_REQUEST"
	codeConflict                = "CONFLICT"
	codeInternalError           = "INTERNAL_ERROR"
)

// ReadyProbe reports readiness (for example a DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the API's injected dependencies.
type Config struct {
	Auth     *auth.Service
	Tokens   *auth.TokenService
	Users    auth.UserStore
	Owners   auth.OwnershipStore
	Registry registry.Store
	Ready    ReadyProbe
	Version  string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	authsvc    *auth.Service
	tokens     *auth.TokenService
	users      auth.UserStore
	owners     auth.OwnershipStore
	registry   registry.Store
	readyProbe ReadyProbe
	version    string
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		authsvc:    cfg.Auth,
		tokens:     cfg.Tokens,
		users:      cfg.Users,
		owners:     cfg.Owners,
		registry:   cfg.Registry,
		readyProbe: cfg.Ready,
		version:    cfg.Version,
	}

	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("GET /readyz", a.ready)
	a.mux.HandleFunc("GET /v1/info", a.info)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /v1/auth/refresh", a.handleRefresh)

	a.mux.Handle("POST /v1/reports", a.protect(a.createReport,
		RequireRole(auth.RoleVillageReporter, auth.RoleBlockOfficer, auth.RoleDistrictAdmin, auth.RoleSystemAdmin),
		RequireLocationAccess(auth.ScopeVillage)))
	a.mux.Handle("GET /v1/reports/{id}", a.protect(a.getReport))
	a.mux.Handle("PATCH /v1/reports/{id}", a.protect(a.updateReport,
		a.RequireOwnershipOrAdmin(auth.KindProblemReport)))

	a.mux.Handle("POST /v1/assessments", a.protect(a.createAssessment,
		RequireRole(auth.RoleAssessor, auth.RoleSystemAdmin)))
	a.mux.Handle("GET /v1/assessments/{id}", a.protect(a.getAssessment))
	a.mux.Handle("PATCH /v1/assessments/{id}", a.protect(a.updateAssessment,
		a.RequireOwnershipOrAdmin(auth.KindAssessment)))

	a.mux.Handle("GET /v1/locations/{state}/{district}/villages", a.protect(a.listVillages,
		RequireLocationAccess(auth.ScopeDistrict)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// protect chains the authentication gate and the given policies in front of a
// handler. Policies run in the order supplied, after authentication.
func (a *API) protect(h http.HandlerFunc, policies ...func(http.Handler) http.Handler) http.Handler {
	var handler http.Handler = h
	for i := len(policies) - 1; i >= 0; i-- {
		handler = policies[i](handler)
	}
	return a.RequireAuth(handler)
}

// Handler assembles the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = RateLimit(h, 20, 10)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "adarshgram-api",
		"version": a.version,
	})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "adarshgram-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	payload := map[string]any{
		"error":   code,
		"message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, status, payload)
}

func unauthorized(w http.ResponseWriter, r *http.Request, code, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="adarshgram"`)
	writeError(w, r, http.StatusUnauthorized, code, msg)
}

func forbidden(w http.ResponseWriter, r *http.Request, code, msg string) {
	writeError(w, r, http.StatusForbidden, code, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, r, http.StatusNotFound, codeResourceNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
