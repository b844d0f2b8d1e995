package entity

import "encoding/json"

type StepAction string

const (
	ActionGoto         StepAction = "goto"
	ActionLogin        StepAction = "login"
	ActionAddToCart    StepAction = "addToCart"
	ActionGoToCart     StepAction = "goToCart"
	ActionCheckout     StepAction = "checkout"
	ActionFillCheckout StepAction = "fillCheckout"
	ActionComplete     StepAction = "complete"
	ActionVerify       StepAction = "verify"
)

// KnownActions is the vocabulary the step executor understands.
var KnownActions = []StepAction{
	ActionGoto,
	ActionLogin,
	ActionAddToCart,
	ActionGoToCart,
	ActionCheckout,
	ActionFillCheckout,
	ActionComplete,
	ActionVerify,
}

func (a StepAction) IsKnown() bool {
	for _, known := range KnownActions {
		if a == known {
			return true
		}
	}
	return false
}

func (a StepAction) String() string {
	return string(a)
}

// Step is one executable instruction produced by the agent.
// Parameters may arrive nested under "parameters"/"params" or flat next to
// "action"; both forms are merged into Params, nested values winning.
type Step struct {
	Action StepAction     `json:"action"`
	Params map[string]any `json:"parameters,omitempty"`
}

// UnmarshalJSON keeps every element of a plan. A bare string is taken as the
// action; a missing or non-string action decodes as an empty action, which no
// executor knows.
func (s *Step) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*s = Step{}
	raw, ok := v.(map[string]any)
	if !ok {
		if action, ok := v.(string); ok {
			s.Action = StepAction(action)
		}
		return nil
	}

	action, _ := raw["action"].(string)
	delete(raw, "action")

	params := make(map[string]any, len(raw))
	var nested map[string]any
	for k, v := range raw {
		if k == "parameters" || k == "params" {
			if m, ok := v.(map[string]any); ok {
				nested = m
				continue
			}
		}
		params[k] = v
	}
	for k, v := range nested {
		params[k] = v
	}

	s.Action = StepAction(action)
	s.Params = params
	return nil
}

// Param returns a string parameter, trying each key in order.
func (s Step) Param(keys ...string) string {
	for _, k := range keys {
		if v, ok := s.Params[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Expectation is the verify step payload.
type Expectation struct {
	Type     string `json:"type"` // url or text
	Value    string `json:"value"`
	Selector string `json:"selector,omitempty"`
}

// Expectation reads the "expectation" parameter. A bare string is treated
// as a url expectation.
func (s Step) Expectation() (Expectation, bool) {
	switch v := s.Params["expectation"].(type) {
	case map[string]any:
		exp := Expectation{}
		exp.Type, _ = v["type"].(string)
		exp.Value, _ = v["value"].(string)
		exp.Selector, _ = v["selector"].(string)
		return exp, exp.Type != ""
	case string:
		return Expectation{Type: "url", Value: v}, v != ""
	default:
		return Expectation{}, false
	}
}
