package pipeline

import "github.com/TheGonzalezDesigns/waldo-vision/track"

// ReportKind tags a Report as either a quiet frame or one carrying a
// significant mention.
type ReportKind int

const (
	NoSignificantMention ReportKind = iota
	SignificantMention
)

func (k ReportKind) String() string {
	if k == SignificantMention {
		return "significant_mention"
	}
	return "no_significant_mention"
}

// Severity classifies a SignificantMention by its strongest anomaly score.
// Informational only; it never gates the NoSignificantMention/
// SignificantMention split.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "low"
	}
}

func severityFor(maxScore, threshold float64) Severity {
	switch {
	case maxScore >= threshold*2:
		return SeverityHigh
	case maxScore >= threshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// MentionData is the payload of a SignificantMention report.
type MentionData struct {
	NewSignificantMoments      []track.TrackedBlob
	CompletedSignificantMoments []track.Moment
	IsGlobalDisturbance        bool
	Severity                   Severity
}

// Report is the per-frame verdict a Pipeline hands back to its caller.
type Report struct {
	Kind    ReportKind
	Mention MentionData
}
