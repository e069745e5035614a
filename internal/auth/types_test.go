package auth

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  Village_Reporter ")
	if err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if role != RoleVillageReporter {
		t.Fatalf("role = %s", role)
	}
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLocationValidateForRole(t *testing.T) {
	full := Location{State: "Uttar Pradesh", District: "Sitapur", Block: "Biswan", Village: "Rampur"}
	district := Location{State: "Uttar Pradesh", District: "Sitapur"}

	cases := []struct {
		name    string
		loc     Location
		role    Role
		wantErr bool
	}{
		{"viewer needs only district", district, RoleViewer, false},
		{"district admin needs only district", district, RoleDistrictAdmin, false},
		{"block officer without block", district, RoleBlockOfficer, true},
		{"village reporter without village", Location{State: "Uttar Pradesh", District: "Sitapur", Block: "Biswan"}, RoleVillageReporter, true},
		{"village reporter fully scoped", full, RoleVillageReporter, false},
		{"missing district", Location{State: "Uttar Pradesh"}, RoleViewer, true},
		{"village without block", Location{State: "Uttar Pradesh", District: "Sitapur", Village: "Rampur"}, RoleViewer, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.loc.ValidateForRole(tc.role)
			if tc.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLocationNormalize(t *testing.T) {
	loc := Location{State: " Uttar Pradesh ", District: "Sitapur\t", Block: " ", Village: ""}
	got := loc.Normalize()
	if got.State != "Uttar Pradesh" || got.District != "Sitapur" || got.Block != "" {
		t.Fatalf("unexpected: %+v", got)
	}
}
