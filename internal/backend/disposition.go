package backend

import (
	"mime"
	"path"
	"strings"
)

// DefaultReportName is the download name used when the backend sends none
const DefaultReportName = "report_results"

// ReportFilename picks the save-as name for a downloaded report from a
// Content-Disposition header. It accepts RFC 6266 parameters and falls back to
// a plain split on "filename=" for headers mime cannot parse. Directory parts
// are stripped; an empty or unusable name becomes DefaultReportName+ext.
func ReportFilename(header, ext string) string {
	fallback := DefaultReportName + ext

	if !strings.Contains(header, "filename") {
		return fallback
	}

	var name string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	}

	if name == "" {
		if _, rest, ok := strings.Cut(header, "filename="); ok {
			name, _, _ = strings.Cut(rest, ";")
			name = strings.ReplaceAll(strings.TrimSpace(name), `"`, "")
		}
	}

	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return fallback
	}

	return name
}
