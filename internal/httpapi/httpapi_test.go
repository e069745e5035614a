package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/registry"
)

// stubUserStore is an in-memory auth.UserStore.
type stubUserStore struct {
	byID    map[string]*auth.User
	byEmail map[string]*auth.User
	nextID  int
	findErr error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		byID:    map[string]*auth.User{},
		byEmail: map[string]*auth.User{},
	}
}

func (s *stubUserStore) add(u *auth.User) *auth.User {
	if u.ID == "" {
		s.nextID++
		u.ID = fmt.Sprintf("user-%d", s.nextID)
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u
	return u
}

func (s *stubUserStore) FindActiveByID(ctx context.Context, id string) (*auth.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.byID[id]
	if !ok || !u.IsActive {
		return nil, auth.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubUserStore) Create(ctx context.Context, u *auth.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return auth.ErrAlreadyExists
	}
	s.add(u)
	return nil
}

func (s *stubUserStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

// stubOwners is an in-memory auth.OwnershipStore that counts lookups.
type stubOwners struct {
	owners map[string]string // kind/id -> owner
	err    error
	calls  int
}

func (s *stubOwners) OwnerOf(ctx context.Context, kind auth.ResourceKind, id string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	owner, ok := s.owners[kind.String()+"/"+id]
	if !ok {
		return "", auth.ErrNotFound
	}
	return owner, nil
}

// stubRegistry is an in-memory registry.Store.
type stubRegistry struct {
	villages    []registry.Village
	reports     map[string]*registry.ProblemReport
	assessments map[string]*registry.Assessment
	nextID      int
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		reports:     map[string]*registry.ProblemReport{},
		assessments: map[string]*registry.Assessment{},
	}
}

func (s *stubRegistry) ListVillages(ctx context.Context, state, district string) ([]registry.Village, error) {
	var out []registry.Village
	for _, v := range s.villages {
		if v.State == state && v.District == district {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubRegistry) CreateProblemReport(ctx context.Context, report *registry.ProblemReport) error {
	if report.ID == "" {
		s.nextID++
		report.ID = fmt.Sprintf("rep-%d", s.nextID)
	}
	now := time.Now().UTC()
	report.ReportedAt = now
	report.UpdatedAt = now
	clone := *report
	s.reports[report.ID] = &clone
	return nil
}

func (s *stubRegistry) GetProblemReport(ctx context.Context, id string) (*registry.ProblemReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *stubRegistry) UpdateProblemReport(ctx context.Context, id string, upd registry.ProblemReportUpdate) (*registry.ProblemReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	if upd.Priority != nil {
		r.Priority = *upd.Priority
	}
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	r.UpdatedAt = time.Now().UTC()
	clone := *r
	return &clone, nil
}

func (s *stubRegistry) CreateAssessment(ctx context.Context, a *registry.Assessment) error {
	if a.ID == "" {
		s.nextID++
		a.ID = fmt.Sprintf("asm-%d", s.nextID)
	}
	now := time.Now().UTC()
	a.AssessedAt = now
	a.UpdatedAt = now
	clone := *a
	s.assessments[a.ID] = &clone
	return nil
}

func (s *stubRegistry) GetAssessment(ctx context.Context, id string) (*registry.Assessment, error) {
	a, ok := s.assessments[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *stubRegistry) UpdateAssessment(ctx context.Context, id string, upd registry.AssessmentUpdate) (*registry.Assessment, error) {
	a, ok := s.assessments[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	if upd.OverallScore != nil {
		a.OverallScore = *upd.OverallScore
	}
	if upd.GapLevel != nil {
		a.GapLevel = *upd.GapLevel
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	a.UpdatedAt = time.Now().UTC()
	clone := *a
	return &clone, nil
}

// --- test wiring ---

type testEnv struct {
	api      *API
	users    *stubUserStore
	owners   *stubOwners
	registry *stubRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokenService("test-access-secret", "test-refresh-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	users := newStubUserStore()
	svc, err := auth.NewService(users, tokens)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	owners := &stubOwners{owners: map[string]string{}}
	reg := newStubRegistry()
	api := New(Config{
		Auth:     svc,
		Tokens:   tokens,
		Users:    users,
		Owners:   owners,
		Registry: reg,
		Version:  "test",
	})
	return &testEnv{api: api, users: users, owners: owners, registry: reg}
}

func (e *testEnv) seedUser(t *testing.T, role auth.Role, loc auth.Location) *auth.User {
	t.Helper()
	u := &auth.User{
		Email:     fmt.Sprintf("%s-%d@example.com", role, len(e.users.byID)+1),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		Location:  loc,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	return e.users.add(u)
}

func (e *testEnv) tokenFor(t *testing.T, u *auth.User) string {
	t.Helper()
	pair, err := e.api.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pair.AccessToken
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.api.mux.ServeHTTP(rec, req)
	return rec
}

type errBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errBody {
	t.Helper()
	var body errBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func withIdentity(r *http.Request, identity auth.Identity) *http.Request {
	return r.WithContext(auth.ContextWithIdentity(r.Context(), identity))
}

var sitapurVillage = auth.Location{
	State:    "Uttar Pradesh",
	District: "Sitapur",
	Block:    "Biswan",
	Village:  "Rampur",
}
