package model

// OutcomeStatus tags the result of loading and extracting one document.
type OutcomeStatus int

const (
	// OutcomeSuccess means a non-empty risk section was extracted.
	OutcomeSuccess OutcomeStatus = iota

	// OutcomeEmpty means the document was read but yielded no usable text
	// or no risk-factors section. The document contributes no results.
	OutcomeEmpty

	// OutcomeFailed means the document could not be read or extracted.
	// Err carries the reason; the batch continues without it.
	OutcomeFailed
)

// String returns a human-readable representation of the status.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseOutcomeStatus converts the string form of a status back.
// Unknown values map to OutcomeFailed.
func ParseOutcomeStatus(s string) OutcomeStatus {
	switch s {
	case "success":
		return OutcomeSuccess
	case "empty":
		return OutcomeEmpty
	default:
		return OutcomeFailed
	}
}

// Outcome is the per-document result of the extraction stages.
// Aggregation stages consume success and empty outcomes; failed outcomes
// are only logged and reported.
type Outcome struct {
	// Path is the input file path.
	Path string `json:"path"`

	// Status tags the outcome.
	Status OutcomeStatus `json:"-"`

	// StatusText is Status in string form for serialization.
	StatusText string `json:"status"`

	// Document is the loaded document. Nil when Status is OutcomeFailed.
	Document *Document `json:"document,omitempty"`

	// Section is the extracted risk section. Empty unless Status is OutcomeSuccess.
	Section RiskSection `json:"section"`

	// Err is the failure reason when Status is OutcomeFailed.
	Err error `json:"-"`

	// Reason is a human-readable explanation for empty and failed outcomes.
	Reason string `json:"reason,omitempty"`
}

// NewFailedOutcome creates a failed outcome for path.
func NewFailedOutcome(path string, err error) Outcome {
	o := Outcome{
		Path:       path,
		Status:     OutcomeFailed,
		StatusText: OutcomeFailed.String(),
		Err:        err,
	}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}

// NewEmptyOutcome creates an empty outcome for doc with the given reason.
func NewEmptyOutcome(doc *Document, reason string) Outcome {
	o := Outcome{
		Status:     OutcomeEmpty,
		StatusText: OutcomeEmpty.String(),
		Document:   doc,
		Reason:     reason,
	}
	if doc != nil {
		o.Path = doc.Path
	}
	return o
}

// NewSuccessOutcome creates a successful outcome holding section.
func NewSuccessOutcome(doc *Document, section RiskSection) Outcome {
	return Outcome{
		Path:       doc.Path,
		Status:     OutcomeSuccess,
		StatusText: OutcomeSuccess.String(),
		Document:   doc,
		Section:    section,
	}
}

// Usable reports whether the outcome may feed the aggregation stages.
func (o Outcome) Usable() bool {
	return o.Status != OutcomeFailed
}
