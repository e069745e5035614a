package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"adarshgram.org/internal/auth"
	"adarshgram.org/internal/ids"
)

var (
	_ Store               = (*PGStore)(nil)
	_ auth.OwnershipStore = (*PGStore)(nil)
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// OwnerOf resolves the owning identity of a resource through an explicit
// per-kind accessor. It reports auth.ErrNotFound for a missing resource;
// any other failure means the check could not be performed.
func (s *PGStore) OwnerOf(ctx context.Context, kind auth.ResourceKind, id string) (string, error) {
	switch kind {
	case auth.KindProblemReport:
		return s.ownerColumn(ctx, `select reporter_id from problem_reports where id = $1`, id)
	case auth.KindAssessment:
		return s.ownerColumn(ctx, `select assessor_id from assessments where id = $1`, id)
	default:
		return "", fmt.Errorf("%w: unknown resource kind %q", ErrInvalidInput, kind)
	}
}

func (s *PGStore) ownerColumn(ctx context.Context, query, id string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

const villageColumns = `id, name, state, district, block, pincode, total_population, sc_population, sc_percentage, is_eligible, status, registered_at, updated_at`

func (s *PGStore) ListVillages(ctx context.Context, state, district string) ([]Village, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+villageColumns+` from villages where state = $1 and district = $2 order by name`,
		state, district)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var villages []Village
	for rows.Next() {
		var v Village
		if err := rows.Scan(&v.ID, &v.Name, &v.State, &v.District, &v.Block, &v.Pincode,
			&v.TotalPopulation, &v.SCPopulation, &v.SCPercentage, &v.IsEligible, &v.Status,
			&v.RegisteredAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		villages = append(villages, v)
	}
	return villages, rows.Err()
}

const reportColumns = `id, reporter_id, village_id, title, description, category, priority, status, reported_at, updated_at`

func (s *PGStore) CreateProblemReport(ctx context.Context, report *ProblemReport) error {
	if report.ID == "" {
		report.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into problem_reports (id, reporter_id, village_id, title, description, category, priority, status)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
		returning reported_at, updated_at
	`, report.ID, report.ReporterID, report.VillageID, report.Title, report.Description,
		string(report.Category), string(report.Priority), string(report.Status))
	return row.Scan(&report.ReportedAt, &report.UpdatedAt)
}

func (s *PGStore) GetProblemReport(ctx context.Context, id string) (*ProblemReport, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+reportColumns+` from problem_reports where id = $1`, id)
	return scanProblemReport(row)
}

func (s *PGStore) UpdateProblemReport(ctx context.Context, id string, upd ProblemReportUpdate) (*ProblemReport, error) {
	row := s.db.QueryRowContext(ctx, `
		update problem_reports set
			description = coalesce($2, description),
			priority    = coalesce($3, priority),
			status      = coalesce($4, status),
			updated_at  = now()
		where id = $1
		returning `+reportColumns+`
	`, id, nullString(upd.Description), nullEnum(upd.Priority), nullEnum(upd.Status))
	return scanProblemReport(row)
}

func scanProblemReport(row *sql.Row) (*ProblemReport, error) {
	var r ProblemReport
	err := row.Scan(&r.ID, &r.ReporterID, &r.VillageID, &r.Title, &r.Description,
		&r.Category, &r.Priority, &r.Status, &r.ReportedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const assessmentColumns = `id, village_id, assessor_id, focus_area, overall_score, gap_level, recommendations, status, assessed_at, updated_at`

func (s *PGStore) CreateAssessment(ctx context.Context, assessment *Assessment) error {
	if assessment.ID == "" {
		assessment.ID = ids.New()
	}
	recs, err := json.Marshal(assessment.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		insert into assessments (id, village_id, assessor_id, focus_area, overall_score, gap_level, recommendations, status)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
		returning assessed_at, updated_at
	`, assessment.ID, assessment.VillageID, assessment.AssessorID, string(assessment.FocusArea),
		assessment.OverallScore, string(assessment.GapLevel), recs, string(assessment.Status))
	return row.Scan(&assessment.AssessedAt, &assessment.UpdatedAt)
}

func (s *PGStore) GetAssessment(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+assessmentColumns+` from assessments where id = $1`, id)
	return scanAssessment(row)
}

func (s *PGStore) UpdateAssessment(ctx context.Context, id string, upd AssessmentUpdate) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		update assessments set
			overall_score = coalesce($2, overall_score),
			gap_level     = coalesce($3, gap_level),
			status        = coalesce($4, status),
			updated_at    = now()
		where id = $1
		returning `+assessmentColumns+`
	`, id, nullFloat(upd.OverallScore), nullEnum(upd.GapLevel), nullEnum(upd.Status))
	return scanAssessment(row)
}

func scanAssessment(row *sql.Row) (*Assessment, error) {
	var (
		a    Assessment
		recs []byte
	)
	err := row.Scan(&a.ID, &a.VillageID, &a.AssessorID, &a.FocusArea, &a.OverallScore,
		&a.GapLevel, &recs, &a.Status, &a.AssessedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
	}
	return &a, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullEnum[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}
