package page

import (
	"context"
	"fmt"
	"sync"

	"shopqa/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// fakeBrowser records actions as "click <sel>", "fill <sel>=<text>" etc.
type fakeBrowser struct {
	mu      sync.Mutex
	calls   []string
	texts   map[string][]string
	visible map[string]bool
	failOn  map[string]error
	url     string
	html    string
	closed  bool
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		texts:   map[string][]string{},
		visible: map[string]bool{},
		failOn:  map[string]error{},
	}
}

func (f *fakeBrowser) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failOn[call]
}

func (f *fakeBrowser) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	if err := f.record("navigate " + url); err != nil {
		return err
	}
	f.url = url
	return nil
}

func (f *fakeBrowser) Click(_ context.Context, selector string) error {
	return f.record("click " + selector)
}

func (f *fakeBrowser) Fill(_ context.Context, selector, text string) error {
	return f.record(fmt.Sprintf("fill %s=%s", selector, text))
}

func (f *fakeBrowser) SelectOption(_ context.Context, selector, value string) error {
	return f.record(fmt.Sprintf("select %s=%s", selector, value))
}

func (f *fakeBrowser) Press(_ context.Context, selector, key string) error {
	return f.record(fmt.Sprintf("press %s=%s", selector, key))
}

func (f *fakeBrowser) Text(_ context.Context, selector string) (string, error) {
	if err := f.record("text " + selector); err != nil {
		return "", err
	}
	if t := f.texts[selector]; len(t) > 0 {
		return t[0], nil
	}
	return "", fmt.Errorf("element not found: %s", selector)
}

func (f *fakeBrowser) Texts(_ context.Context, selector string) ([]string, error) {
	return f.texts[selector], f.record("texts " + selector)
}

func (f *fakeBrowser) Attribute(_ context.Context, selector, name string) (string, error) {
	return "", f.record(fmt.Sprintf("attr %s@%s", selector, name))
}

func (f *fakeBrowser) Count(_ context.Context, selector string) (int, error) {
	return len(f.texts[selector]), f.record("count " + selector)
}

func (f *fakeBrowser) Visible(_ context.Context, selector string) (bool, error) {
	return f.visible[selector], f.record("visible " + selector)
}

func (f *fakeBrowser) WaitVisible(_ context.Context, selector string) error {
	return f.record("wait " + selector)
}

func (f *fakeBrowser) HTML(context.Context) (string, error) {
	return f.html, f.record("html")
}

func (f *fakeBrowser) Screenshot(context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte{0xff, 0xd8}, Format: "jpeg", Width: 1, Height: 1}, f.record("screenshot")
}

func (f *fakeBrowser) CurrentURL() string { return f.url }
func (f *fakeBrowser) IsReady() bool      { return !f.closed }
func (f *fakeBrowser) Close()             { f.closed = true }

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) GenerateTestData(ctx context.Context, kind string, count int) entity.DataSet {
	return m.Called(ctx, kind, count).Get(0).(entity.DataSet)
}

func (m *mockAssistant) GenerateTestScenarios(ctx context.Context, functionality string) []entity.Scenario {
	return m.Called(ctx, functionality).Get(0).([]entity.Scenario)
}

func (m *mockAssistant) AnalyzeFailure(ctx context.Context, details entity.ErrorDetails) entity.FailureAnalysis {
	return m.Called(ctx, details).Get(0).(entity.FailureAnalysis)
}

func (m *mockAssistant) SuggestLocator(ctx context.Context, description string) string {
	return m.Called(ctx, description).String(0)
}

func (m *mockAssistant) SuggestLocators(ctx context.Context, description, pageContext string) []entity.LocatorSuggestion {
	return m.Called(ctx, description, pageContext).Get(0).([]entity.LocatorSuggestion)
}

func (m *mockAssistant) GenerateTestSteps(ctx context.Context, scenario string) []entity.Step {
	return m.Called(ctx, scenario).Get(0).([]entity.Step)
}

func (m *mockAssistant) AskQuestion(ctx context.Context, question string) string {
	return m.Called(ctx, question).String(0)
}
