package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. Exactly one role per account.
type Role string

const (
	RoleSystemAdmin     Role = "system_admin"
	RoleDistrictAdmin   Role = "district_admin"
	RoleBlockOfficer    Role = "block_officer"
	RoleVillageReporter Role = "village_reporter"
	RoleAssessor        Role = "assessor"
	RoleViewer          Role = "viewer"
)

// ParseRole maps a raw string onto the closed role set.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
	return role, nil
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleDistrictAdmin, RoleBlockOfficer, RoleVillageReporter, RoleAssessor, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ScopeLevel names a depth in the jurisdiction hierarchy.
type ScopeLevel string

const (
	ScopeState    ScopeLevel = "state"
	ScopeDistrict ScopeLevel = "district"
	ScopeBlock    ScopeLevel = "block"
	ScopeVillage  ScopeLevel = "village"
)

// Location is the jurisdiction an account is permitted to act within.
// A field at depth N is only meaningful when every shallower field is set.
type Location struct {
	State    string `json:"state"`
	District string `json:"district"`
	Block    string `json:"block,omitempty"`
	Village  string `json:"village,omitempty"`
}

// Normalize trims whitespace on all fields.
func (l Location) Normalize() Location {
	return Location{
		State:    strings.TrimSpace(l.State),
		District: strings.TrimSpace(l.District),
		Block:    strings.TrimSpace(l.Block),
		Village:  strings.TrimSpace(l.Village),
	}
}

// ValidateForRole checks that the location is populated deep enough for the
// role: every account needs state and district, block officers additionally
// need a block, village reporters a block and a village. Deeper fields must
// not be set without their parents.
func (l Location) ValidateForRole(role Role) error {
	if l.State == "" || l.District == "" {
		return fmt.Errorf("%w: state and district are required", ErrInvalidInput)
	}
	if l.Village != "" && l.Block == "" {
		return fmt.Errorf("%w: village requires a block", ErrInvalidInput)
	}
	switch role {
	case RoleBlockOfficer:
		if l.Block == "" {
			return fmt.Errorf("%w: block is required for role %s", ErrInvalidInput, role)
		}
	case RoleVillageReporter:
		if l.Block == "" || l.Village == "" {
			return fmt.Errorf("%w: block and village are required for role %s", ErrInvalidInput, role)
		}
	}
	return nil
}

// ResourceKind is the closed set of resource types that support ownership checks.
type ResourceKind string

const (
	KindProblemReport ResourceKind = "problem_report"
	KindAssessment    ResourceKind = "assessment"
)

// Valid reports whether the kind belongs to the closed set.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindProblemReport, KindAssessment:
		return true
	}
	return false
}

func (k ResourceKind) String() string { return string(k) }

// User is an account record as returned by the credential store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber"`
	Role         Role      `json:"role"`
	Location     Location  `json:"location"`
	IsActive     bool      `json:"isActive"`
	LastLogin    time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated request context: the verified token claims
// merged with the jurisdiction read fresh from the store. It lives only for
// the duration of a single request.
type Identity struct {
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Location Location `json:"location"`
}
