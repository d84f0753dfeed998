package generate

import (
	"strings"

	"github.com/shpitdev/outreach-mailer/internal/redact"
)

// ErrorMarkerPrefix starts every failure marker returned by Client.Generate.
//
// Classification is purely textual: model output that happens to begin with this
// prefix is indistinguishable from a failure and is counted as one.
const ErrorMarkerPrefix = "Error generating email"

// Marker formats err as a failure marker.
func Marker(err error) string {
	if err == nil {
		return ErrorMarkerPrefix
	}
	return ErrorMarkerPrefix + ": " + redact.Secrets(err.Error())
}

// IsSuccess reports whether text is usable generated content.
func IsSuccess(text string) bool {
	return text != "" && !strings.HasPrefix(text, ErrorMarkerPrefix)
}
