package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("registry: not found")
	ErrInvalidInput = errors.New("registry: invalid input")
)

// FocusArea is a development sector tracked per village.
type FocusArea string

const (
	FocusEducation        FocusArea = "education"
	FocusHealthcare       FocusArea = "healthcare"
	FocusSanitation       FocusArea = "sanitation"
	FocusConnectivity     FocusArea = "connectivity"
	FocusDrinkingWater    FocusArea = "drinking_water"
	FocusElectricity      FocusArea = "electricity"
	FocusSkillDevelopment FocusArea = "skill_development"
	FocusLivelihood       FocusArea = "livelihood"
)

func ParseFocusArea(raw string) (FocusArea, error) {
	area := FocusArea(strings.TrimSpace(strings.ToLower(raw)))
	switch area {
	case FocusEducation, FocusHealthcare, FocusSanitation, FocusConnectivity,
		FocusDrinkingWater, FocusElectricity, FocusSkillDevelopment, FocusLivelihood:
		return area, nil
	}
	return "", fmt.Errorf("%w: unknown focus area %q", ErrInvalidInput, raw)
}

// Priority ranks problem reports.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.TrimSpace(strings.ToLower(raw)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, raw)
}

// ProblemStatus is the lifecycle state of a reported problem.
type ProblemStatus string

const (
	ProblemPending     ProblemStatus = "pending"
	ProblemUnderReview ProblemStatus = "under_review"
	ProblemInProgress  ProblemStatus = "in_progress"
	ProblemResolved    ProblemStatus = "resolved"
	ProblemRejected    ProblemStatus = "rejected"
)

func ParseProblemStatus(raw string) (ProblemStatus, error) {
	s := ProblemStatus(strings.TrimSpace(strings.ToLower(raw)))
	switch s {
	case ProblemPending, ProblemUnderReview, ProblemInProgress, ProblemResolved, ProblemRejected:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown problem status %q", ErrInvalidInput, raw)
}

// GapLevel grades how far a village is from the target in a focus area.
type GapLevel string

const (
	GapCritical GapLevel = "critical"
	GapModerate GapLevel = "moderate"
	GapMinor    GapLevel = "minor"
	GapAdequate GapLevel = "adequate"
)

func ParseGapLevel(raw string) (GapLevel, error) {
	g := GapLevel(strings.TrimSpace(strings.ToLower(raw)))
	switch g {
	case GapCritical, GapModerate, GapMinor, GapAdequate:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown gap level %q", ErrInvalidInput, raw)
}

// AssessmentStatus is the lifecycle state of an assessment.
type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentCompleted AssessmentStatus = "completed"
	AssessmentReviewed  AssessmentStatus = "reviewed"
)

func ParseAssessmentStatus(raw string) (AssessmentStatus, error) {
	s := AssessmentStatus(strings.TrimSpace(strings.ToLower(raw)))
	switch s {
	case AssessmentDraft, AssessmentCompleted, AssessmentReviewed:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown assessment status %q", ErrInvalidInput, raw)
}

// VillageStatus tracks a village's progress through the program.
type VillageStatus string

const (
	VillageRegistered      VillageStatus = "registered"
	VillageUnderAssessment VillageStatus = "under_assessment"
	VillageInDevelopment   VillageStatus = "in_development"
	VillageAdarshGram      VillageStatus = "adarsh_gram"
)

// Village is a registered village and its eligibility snapshot.
type Village struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	State           string        `json:"state"`
	District        string        `json:"district"`
	Block           string        `json:"block"`
	Pincode         string        `json:"pincode"`
	TotalPopulation int64         `json:"totalPopulation"`
	SCPopulation    int64         `json:"scPopulation"`
	SCPercentage    float64       `json:"scPercentage"`
	IsEligible      bool          `json:"isEligible"`
	Status          VillageStatus `json:"status"`
	RegisteredAt    time.Time     `json:"registeredAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ProblemReport is a citizen-reported issue. ReporterID is recorded at
// creation and never reassigned; it is the owning identity for access control.
type ProblemReport struct {
	ID          string        `json:"id"`
	ReporterID  string        `json:"reporterId"`
	VillageID   string        `json:"villageId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    FocusArea     `json:"category"`
	Priority    Priority      `json:"priority"`
	Status      ProblemStatus `json:"status"`
	ReportedAt  time.Time     `json:"reportedAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Assessment is a scored evaluation of one focus area for a village.
// AssessorID is the owning identity, fixed at creation.
type Assessment struct {
	ID              string           `json:"id"`
	VillageID       string           `json:"villageId"`
	AssessorID      string           `json:"assessorId"`
	FocusArea       FocusArea        `json:"focusArea"`
	OverallScore    float64          `json:"overallScore"`
	GapLevel        GapLevel         `json:"gapLevel"`
	Recommendations []string         `json:"recommendations"`
	Status          AssessmentStatus `json:"status"`
	AssessedAt      time.Time        `json:"assessedAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ProblemReportUpdate carries the mutable fields of a report; nil means keep.
type ProblemReportUpdate struct {
	Description *string
	Priority    *Priority
	Status      *ProblemStatus
}

// AssessmentUpdate carries the mutable fields of an assessment; nil means keep.
type AssessmentUpdate struct {
	OverallScore *float64
	GapLevel     *GapLevel
	Status       *AssessmentStatus
}
