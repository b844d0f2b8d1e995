package entity

import "encoding/json"

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ErrorDetails describes a failed test for failure analysis.
type ErrorDetails struct {
	Error       string
	TestName    string
	CurrentPage string
	Expected    string
	Actual      string
	Browser     string
	Username    string
	PageExcerpt string
}

// FailureAnalysis is the root-cause and remediation guidance for a failure.
type FailureAnalysis struct {
	PossibleCauses []string `json:"possibleCauses"`
	SuggestedFixes []string `json:"suggestedFixes"`
	Severity       Severity `json:"severity"`
}

// UnmarshalJSON accepts a bare string where a list of causes or fixes is
// expected.
func (a *FailureAnalysis) UnmarshalJSON(data []byte) error {
	var fields struct {
		PossibleCauses stringList `json:"possibleCauses"`
		SuggestedFixes stringList `json:"suggestedFixes"`
		Severity       Severity   `json:"severity"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*a = FailureAnalysis{
		PossibleCauses: []string(fields.PossibleCauses),
		SuggestedFixes: []string(fields.SuggestedFixes),
		Severity:       fields.Severity,
	}
	return nil
}
