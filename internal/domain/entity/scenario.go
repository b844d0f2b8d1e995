package entity

import (
	"bytes"
	"encoding/json"
)

// Scenario is a generated test case description.
type Scenario struct {
	TestName       string   `json:"testName"`
	Description    string   `json:"description"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expectedResult"`
	Type           string   `json:"type,omitempty"` // positive, negative, edge

	// Extra holds fields the agent returned beyond the ones above. They are
	// written back unchanged on marshal.
	Extra map[string]any `json:"-"`
}

var scenarioKeys = []string{"testName", "description", "steps", "expectedResult", "type"}

// UnmarshalJSON accepts step objects (kept as compact JSON text) and a bare
// string for steps.
func (s *Scenario) UnmarshalJSON(data []byte) error {
	var fields struct {
		TestName       string     `json:"testName"`
		Description    string     `json:"description"`
		Steps          stringList `json:"steps"`
		ExpectedResult string     `json:"expectedResult"`
		Type           string     `json:"type"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var extra map[string]any
	if err := dec.Decode(&extra); err != nil {
		return err
	}
	for _, k := range scenarioKeys {
		delete(extra, k)
	}
	if len(extra) == 0 {
		extra = nil
	}

	*s = Scenario{
		TestName:       fields.TestName,
		Description:    fields.Description,
		Steps:          []string(fields.Steps),
		ExpectedResult: fields.ExpectedResult,
		Type:           fields.Type,
		Extra:          extra,
	}
	return nil
}

func (s Scenario) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+len(scenarioKeys))
	for k, v := range s.Extra {
		out[k] = v
	}
	out["testName"] = s.TestName
	out["description"] = s.Description
	out["steps"] = s.Steps
	out["expectedResult"] = s.ExpectedResult
	if s.Type != "" {
		out["type"] = s.Type
	}
	return json.Marshal(out)
}
