package transport

import "testing"

func TestMetricPathCollapsesIDs(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/patients/64f1a2b3c4d5e6f7a8b9c0d1", "/patients/:id"},
		{"/documents/patient/64f1a2b3c4d5e6f7a8b9c0d1", "/documents/patient/:id"},
		{"/backups/64f1a2b3c4d5e6f7a8b9c0d1/download", "/backups/:id/download"},
		{"/auth/9f37a9cd-549f-4da6-ac28-5cae053cc498", "/auth/:id"},
		{"/patients", "/patients"},
		{"/documents/patient-reports", "/documents/patient-reports"},
		{"/abcdef", "/abcdef"}, // hex but too short to be an ID
	}
	for _, tc := range cases {
		if got := metricPath(tc.in); got != tc.want {
			t.Errorf("metricPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
