package backend

import "testing"

func TestReportFilename(t *testing.T) {
	tests := []struct {
		name   string
		header string
		ext    string
		want   string
	}{
		{"empty", "", ".zip", "report_results.zip"},
		{"quoted", `attachment; filename="route_shapefile.zip"`, ".zip", "route_shapefile.zip"},
		{"bare", `attachment; filename=report.pdf`, ".pdf", "report.pdf"},
		{"extended", `attachment; filename*=UTF-8''eval%20report.pdf`, ".pdf", "eval report.pdf"},
		{"malformed falls back to split", `attachment; filename="a b.pdf"; junk`, ".pdf", "a b.pdf"},
		{"path stripped", `attachment; filename="../../etc/passwd"`, ".zip", "passwd"},
		{"no filename", `attachment`, ".pdf", "report_results.pdf"},
		{"empty filename", `attachment; filename=""`, ".zip", "report_results.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReportFilename(tt.header, tt.ext); got != tt.want {
				t.Errorf("ReportFilename(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
