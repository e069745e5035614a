package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/healthz", "/healthz"},
		{"/v1/auth/login", "/v1/auth/login"},
		{"/v1/reports", "/v1/reports"},
		{"/v1/reports/01J0ABCDEF", "/v1/reports/:id"},
		{"/v1/assessments/01J0ABCDEF", "/v1/assessments/:id"},
		{"/v1/reports/01J0ABCDEF?fields=status", "/v1/reports/:id"},
		{"/v1/locations/Uttar Pradesh/Sitapur/villages", "/v1/locations/:state/:district/villages"},
		{"/v1/locations/Uttar Pradesh/Sitapur/other", "/v1/locations/Uttar Pradesh/Sitapur/other"},
	}
	for _, tc := range cases {
		if got := CanonicalPath(tc.in); got != tc.want {
			t.Fatalf("CanonicalPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
