package severity

import "strings"

// Level is a PagerDuty Events v2 severity
type Level string

const (
	Critical Level = "critical"
	Error    Level = "error"
	Warning  Level = "warning"
	Info     Level = "info"
)

// Map converts a Thena priority label into a PagerDuty severity.
// Unknown and empty labels map to Info.
func Map(label string) Level {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "p0", "sev0", "urgent", "critical", "high":
		return Critical
	case "p1", "sev1", "medium":
		return Error
	case "p2", "sev2", "low":
		return Warning
	default:
		return Info
	}
}
