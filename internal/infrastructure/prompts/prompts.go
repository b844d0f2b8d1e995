package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

type Name string

const (
	TestData        Name = "test_data"
	TestScenarios   Name = "test_scenarios"
	FailureAnalysis Name = "failure_analysis"
	Locator         Name = "locator"
	LocatorList     Name = "locator_list"
	TestSteps       Name = "test_steps"
	Question        Name = "question"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Render executes the named prompt template.
func Render(name Name, data any) (string, error) {
	tmpl := templates.Lookup(string(name) + ".tmpl")
	if tmpl == nil {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

type Product struct {
	Name  string
	Price float64
}

type TestDataInput struct {
	Kind     string
	Count    int
	SiteURL  string
	Users    []string
	Password string
	Products []Product
}

type ScenariosInput struct {
	Functionality string
}

type FailureInput struct {
	Error       string
	TestName    string
	CurrentPage string
	Browser     string
	Username    string
	Expected    string
	Actual      string
	PageExcerpt string
	SiteURL     string
}

type LocatorInput struct {
	Description string
	PageContext string
}

type StepsInput struct {
	Scenario string
}

type QuestionInput struct {
	Question string
}
