package entity

type LocatorSuggestion struct {
	Locator     string  `json:"locator"`
	Type        string  `json:"type"` // css or xpath
	Reliability float64 `json:"reliability"`
}
