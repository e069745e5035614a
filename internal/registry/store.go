package registry

import "context"

// Store describes persistence for the village-development records the
// authorization policies protect.
type Store interface {
	ListVillages(ctx context.Context, state, district string) ([]Village, error)

	CreateProblemReport(ctx context.Context, report *ProblemReport) error
	GetProblemReport(ctx context.Context, id string) (*ProblemReport, error)
	UpdateProblemReport(ctx context.Context, id string, upd ProblemReportUpdate) (*ProblemReport, error)

	CreateAssessment(ctx context.Context, assessment *Assessment) error
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	UpdateAssessment(ctx context.Context, id string, upd AssessmentUpdate) (*Assessment, error)
}
