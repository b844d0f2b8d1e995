package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shopqa/internal/application/port/output"
	"shopqa/internal/domain/entity"
	"shopqa/internal/infrastructure/agentapi"
	"shopqa/internal/infrastructure/logger"
	"shopqa/internal/infrastructure/testusers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/capitan"
)

type mockAgent struct {
	mock.Mock
}

func (m *mockAgent) Send(ctx context.Context, req output.AgentRequest) (*output.AgentReply, error) {
	args := m.Called(ctx, req)
	reply, _ := args.Get(0).(*output.AgentReply)
	return reply, args.Error(1)
}

func replying(text string) *mockAgent {
	m := &mockAgent{}
	m.On("Send", mock.Anything, mock.Anything).Return(&output.AgentReply{Text: text, StatusCode: http.StatusOK}, nil)
	return m
}

func failing(err error) *mockAgent {
	m := &mockAgent{}
	m.On("Send", mock.Anything, mock.Anything).Return(nil, err)
	return m
}

func newAssistant(agent output.AgentPort) *Assistant {
	return New(agent, testusers.Default(), logger.NewNop(), Options{})
}

// agentServer returns an agent client backed by handler.
func agentServer(t *testing.T, handler http.HandlerFunc) *agentapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := agentapi.DefaultConfig()
	cfg.URL = server.URL
	cfg.Timeout = 5 * time.Second
	return agentapi.NewClient(cfg)
}

func refusedAgent(t *testing.T) *agentapi.Client {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	cfg := agentapi.DefaultConfig()
	cfg.URL = url
	cfg.Timeout = 5 * time.Second
	return agentapi.NewClient(cfg)
}

func messageBody(message string) []byte {
	data, _ := json.Marshal(map[string]any{"output": map[string]any{"message": message}})
	return data
}

func TestGenerateTestData_FallbackPerKind(t *testing.T) {
	a := newAssistant(failing(errors.New("connection refused")))
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		data := a.GenerateTestData(ctx, "login", 5)
		require.NotEmpty(t, data)
		assert.Equal(t, testusers.Default().Records(), data)

		standard, ok := data.First("username")
		require.True(t, ok)
		assert.Equal(t, "standard_user", standard.String("username"))
		assert.Equal(t, "secret_sauce", standard.String("password"))
		assert.Equal(t, "normal", standard.String("type"))
	})

	t.Run("user kinds match case-insensitively", func(t *testing.T) {
		assert.Equal(t, testusers.Default().Records(), a.GenerateTestData(ctx, "Problem USERS", 2))
		assert.Equal(t, testusers.Default().Records(), a.GenerateTestData(ctx, "LOGIN credentials", 2))
	})

	t.Run("product", func(t *testing.T) {
		data := a.GenerateTestData(ctx, "Product catalog", 3)
		require.Len(t, data, len(saucedemoProducts))
		for _, rec := range data {
			assert.IsType(t, "", rec["name"])
			assert.IsType(t, float64(0), rec["price"])
			assert.IsType(t, "", rec["id"])
		}
		assert.Equal(t, "sauce-labs-backpack", data[0].String("id"))
	})

	t.Run("checkout and billing", func(t *testing.T) {
		for _, kind := range []string{"checkout", "Billing address"} {
			data := a.GenerateTestData(ctx, kind, 3)
			require.NotEmpty(t, data)
			for _, rec := range data {
				assert.NotEmpty(t, rec.String("firstName"))
				assert.NotEmpty(t, rec.String("lastName"))
				assert.NotEmpty(t, rec.String("postalCode"))
			}
			assert.Equal(t, entity.DefaultCheckoutInfo, data.CheckoutInfo())
		}
	})

	t.Run("unknown kind gets mixed default", func(t *testing.T) {
		data := a.GenerateTestData(ctx, "coupons", 3)
		assert.Equal(t, entity.DataSet{
			{"username": "standard_user", "password": "secret_sauce"},
			{"name": "Sauce Labs Backpack", "id": "sauce-labs-backpack"},
		}, data)
	})
}

func TestGenerateTestData_FallbackIsFreshCopy(t *testing.T) {
	a := newAssistant(failing(errors.New("down")))
	ctx := context.Background()

	first := a.GenerateTestData(ctx, "product", 1)
	first[0]["name"] = "mutated"

	second := a.GenerateTestData(ctx, "product", 1)
	assert.Equal(t, "Sauce Labs Backpack", second[0].String("name"))
}

func TestGenerateTestData_Success(t *testing.T) {
	agent := replying("Here is your data:\n[{\"username\":\"visual_user\",\"password\":\"secret_sauce\"}]\nGood luck")
	a := newAssistant(agent)

	data := a.GenerateTestData(context.Background(), "login", 1)
	assert.Equal(t, entity.DataSet{{"username": "visual_user", "password": "secret_sauce"}}, data)
}

func TestGenerateTestData_CountOnlyShapesPrompt(t *testing.T) {
	agent := &mockAgent{}
	agent.On("Send", mock.Anything, mock.MatchedBy(func(req output.AgentRequest) bool {
		return strings.HasPrefix(req.Message, "Generate 5 realistic product test data items")
	})).Return(&output.AgentReply{Text: `[{"name":"a"},{"name":"b"},{"name":"c"}]`}, nil)

	a := newAssistant(agent)
	data := a.GenerateTestData(context.Background(), "product", 0)

	assert.Len(t, data, 3)
	agent.AssertExpectations(t)
}

func TestGenerateTestData_ParseFailures(t *testing.T) {
	ctx := context.Background()

	for name, text := range map[string]string{
		"no array":           "I cannot help with that.",
		"malformed brackets": "[not valid json]",
		"array of strings":   `["a", "b"]`,
	} {
		t.Run(name, func(t *testing.T) {
			a := newAssistant(replying(text))
			assert.Equal(t, testusers.Default().Records(), a.GenerateTestData(ctx, "user", 3))
		})
	}
}

func TestGenerateTestScenarios_RoundTrip(t *testing.T) {
	scenarios := []entity.Scenario{
		{
			TestName:       "Locked out user",
			Description:    "locked_out_user cannot log in",
			Steps:          []string{"Open login page", "Enter locked_out_user", "Submit"},
			ExpectedResult: "Error banner is shown",
			Type:           "negative",
		},
		{
			TestName:       "Empty cart checkout",
			Description:    "Checkout with no items",
			Steps:          []string{"Login", "Open cart", "Click checkout"},
			ExpectedResult: "Checkout form is shown",
		},
	}
	literal, err := json.Marshal(scenarios)
	require.NoError(t, err)

	client := agentServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(messageBody("Sure, here are the scenarios:\n" + string(literal) + "\nLet me know if you need more."))
	})

	got := newAssistant(client).GenerateTestScenarios(context.Background(), "login")
	assert.Equal(t, scenarios, got)
}

func TestGenerateTestScenarios_KeepsAgentShape(t *testing.T) {
	reply := `Here they are:
[{"testName":"A","description":"d","steps":[{"step":1,"action":"open"}],"expectedResult":"r","priority":"high"}]`

	got := newAssistant(replying(reply)).GenerateTestScenarios(context.Background(), "login")

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].TestName)
	assert.Equal(t, []string{`{"step":1,"action":"open"}`}, got[0].Steps)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"testName":"A","description":"d","steps":["{\"step\":1,\"action\":\"open\"}"],"expectedResult":"r","priority":"high"}]`, string(out))
}

func TestGenerateTestScenarios_MalformedFallsBack(t *testing.T) {
	got := newAssistant(replying("[not valid json]")).GenerateTestScenarios(context.Background(), "cart")

	require.Len(t, got, 2)
	assert.Equal(t, "SauceDemo Login Test", got[0].TestName)
	assert.Equal(t, "Add Product to Cart", got[1].TestName)
}

func TestAnalyzeFailure(t *testing.T) {
	ctx := context.Background()
	details := entity.ErrorDetails{
		Error:       "element #finish not found",
		TestName:    "Checkout",
		CurrentPage: "https://www.saucedemo.com/checkout-step-two.html",
		Expected:    "Order completes",
		Actual:      "Timeout",
	}

	t.Run("success", func(t *testing.T) {
		a := newAssistant(replying("Analysis:\n{\"possibleCauses\":[\"Slow page\"],\"suggestedFixes\":[\"Wait for #finish\"],\"severity\":\"low\"}"))
		got := a.AnalyzeFailure(ctx, details)
		assert.Equal(t, entity.FailureAnalysis{
			PossibleCauses: []string{"Slow page"},
			SuggestedFixes: []string{"Wait for #finish"},
			Severity:       entity.SeverityLow,
		}, got)
	})

	t.Run("missing fields keep shape", func(t *testing.T) {
		got := newAssistant(replying(`{"possibleCauses":["x"]}`)).AnalyzeFailure(ctx, details)
		assert.Equal(t, []string{"x"}, got.PossibleCauses)
		assert.NotNil(t, got.SuggestedFixes)
		assert.Equal(t, entity.SeverityMedium, got.Severity)
	})

	t.Run("single string lists", func(t *testing.T) {
		got := newAssistant(replying(`{"possibleCauses":"Slow page","suggestedFixes":"Wait for #finish","severity":"High"}`)).AnalyzeFailure(ctx, details)
		assert.Equal(t, entity.FailureAnalysis{
			PossibleCauses: []string{"Slow page"},
			SuggestedFixes: []string{"Wait for #finish"},
			Severity:       entity.SeverityHigh,
		}, got)
	})

	t.Run("prose reply", func(t *testing.T) {
		got := newAssistant(replying("Probably a flaky locator.")).AnalyzeFailure(ctx, details)
		assert.Equal(t, analysisProseFallback(), got)
	})

	t.Run("malformed object", func(t *testing.T) {
		got := newAssistant(replying("{severity: high}")).AnalyzeFailure(ctx, details)
		assert.Equal(t, analysisFallback(), got)
	})

	t.Run("call failure", func(t *testing.T) {
		got := newAssistant(failing(errors.New("dial tcp: refused"))).AnalyzeFailure(ctx, details)
		assert.Equal(t, entity.FailureAnalysis{
			PossibleCauses: []string{"Unknown error"},
			SuggestedFixes: []string{"Manual investigation needed"},
			Severity:       entity.SeverityHigh,
		}, got)
	})
}

func TestAnalyzeFailure_PromptCarriesDetails(t *testing.T) {
	agent := &mockAgent{}
	agent.On("Send", mock.Anything, mock.MatchedBy(func(req output.AgentRequest) bool {
		return req.ConversationID == "failure_analysis" &&
			strings.Contains(req.Message, "Error: boom") &&
			strings.Contains(req.Message, "Test: Cart badge") &&
			strings.Contains(req.Message, "Expected: 1 item") &&
			strings.Contains(req.Message, "Actual: 0 items")
	})).Return(&output.AgentReply{Text: "{}"}, nil)

	newAssistant(agent).AnalyzeFailure(context.Background(), entity.ErrorDetails{
		Error:    "boom",
		TestName: "Cart badge",
		Expected: "1 item",
		Actual:   "0 items",
	})
	agent.AssertExpectations(t)
}

func TestSuggestLocator(t *testing.T) {
	ctx := context.Background()

	got := newAssistant(replying("  Use [data-test=\"shopping-cart-link\"]\n")).SuggestLocator(ctx, "cart icon")
	assert.Equal(t, `Use [data-test="shopping-cart-link"]`, got)

	got = newAssistant(failing(errors.New("down"))).SuggestLocator(ctx, "cart icon")
	assert.Equal(t, LocatorNotFound, got)
}

func TestSuggestLocators(t *testing.T) {
	ctx := context.Background()

	got := newAssistant(replying(`[{"locator":"#checkout","type":"css","reliability":9.5}]`)).SuggestLocators(ctx, "checkout", "cart page")
	assert.Equal(t, []entity.LocatorSuggestion{{Locator: "#checkout", Type: "css", Reliability: 9.5}}, got)

	got = newAssistant(replying("Try the id selector.")).SuggestLocators(ctx, "checkout", "cart page")
	assert.Equal(t, locatorsFallback(), got)

	got = newAssistant(replying("[broken")).SuggestLocators(ctx, "checkout", "cart page")
	assert.Equal(t, locatorsFallback(), got, "no closing bracket means no array literal")

	got = newAssistant(replying("[broken]")).SuggestLocators(ctx, "checkout", "cart page")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = newAssistant(failing(errors.New("down"))).SuggestLocators(ctx, "checkout", "cart page")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateTestSteps(t *testing.T) {
	ctx := context.Background()
	reply := `Steps:
[
  {"action":"goto"},
  {"action":"login","parameters":{"username":"standard_user","password":"secret_sauce"}},
  {"action":"addToCart","parameters":{"productName":"Sauce Labs Backpack"}},
  {"action":"goToCart"},
  {"action":"checkout"},
  {"action":"fillCheckout","parameters":{"firstName":"John","lastName":"Doe","postalCode":"12345"}},
  {"action":"complete"},
  {"action":"verify","parameters":{"expectation":{"type":"url","value":"checkout-complete"}}},
  {"action":"takeScreenshot"}
]`

	steps := newAssistant(replying(reply)).GenerateTestSteps(ctx, "buy a backpack")
	require.Len(t, steps, 9)

	for _, s := range steps[:8] {
		assert.True(t, s.Action.IsKnown(), s.Action)
	}
	assert.Equal(t, entity.StepAction("takeScreenshot"), steps[8].Action)
	assert.False(t, steps[8].Action.IsKnown())
	assert.Equal(t, "standard_user", steps[1].Param("username"))
}

func TestGenerateTestSteps_KeepsActionlessSteps(t *testing.T) {
	reply := `[{"action":"goto"},{"action":"verify","parameters":{"expectation":{"type":"text","value":"Products"}}},{"parameters":{}}]`

	steps := newAssistant(replying(reply)).GenerateTestSteps(context.Background(), "open the store")

	require.Len(t, steps, 3)
	assert.Equal(t, entity.ActionGoto, steps[0].Action)
	assert.Equal(t, entity.ActionVerify, steps[1].Action)
	assert.Equal(t, entity.StepAction(""), steps[2].Action)
	assert.False(t, steps[2].Action.IsKnown())
}

func TestGenerateTestSteps_FailureIsEmpty(t *testing.T) {
	ctx := context.Background()

	for name, agent := range map[string]*mockAgent{
		"transport": failing(errors.New("down")),
		"malformed": replying("[not valid json]"),
		"prose":     replying("Just log in and buy something."),
	} {
		t.Run(name, func(t *testing.T) {
			steps := newAssistant(agent).GenerateTestSteps(ctx, "buy a backpack")
			assert.NotNil(t, steps)
			assert.Empty(t, steps)
		})
	}
}

func TestAskQuestion(t *testing.T) {
	client := agentServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":{"message":"Check your locators"}}`))
	})

	got := newAssistant(client).AskQuestion(context.Background(), "why did my test fail?")
	assert.Equal(t, "Check your locators", got)
}

func TestAskQuestion_Fallbacks(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, QuestionUnavailable, newAssistant(failing(errors.New("down"))).AskQuestion(ctx, "q"))
	assert.Equal(t, QuestionUnavailable, newAssistant(replying("   ")).AskQuestion(ctx, "q"))
}

// allOperations runs every operation and collects the results.
func allOperations(a *Assistant) []any {
	ctx := context.Background()
	return []any{
		a.GenerateTestData(ctx, "login", 3),
		a.GenerateTestData(ctx, "product", 3),
		a.GenerateTestData(ctx, "checkout", 3),
		a.GenerateTestData(ctx, "anything", 3),
		a.GenerateTestScenarios(ctx, "cart"),
		a.AnalyzeFailure(ctx, entity.ErrorDetails{Error: "boom"}),
		a.SuggestLocator(ctx, "cart"),
		a.SuggestLocators(ctx, "cart", "inventory"),
		a.GenerateTestSteps(ctx, "buy"),
		a.AskQuestion(ctx, "why?"),
	}
}

func TestFailureKindIndependence(t *testing.T) {
	var statusCalls int
	var mu sync.Mutex
	statusClient := agentServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		statusCalls++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"output":{"message":"[{\"should\":\"be ignored\"}]"}}`))
	})

	fromStatus := allOperations(newAssistant(statusClient))
	fromRefused := allOperations(newAssistant(refusedAgent(t)))

	require.Len(t, fromStatus, len(fromRefused))
	for i := range fromStatus {
		assert.Equal(t, fromRefused[i], fromStatus[i], "operation %d", i)
	}
	assert.Equal(t, len(fromStatus), statusCalls, "exactly one request per operation, no retries")
}

func TestHungAgentFallsBackAfterTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	defer close(release)

	cfg := agentapi.DefaultConfig()
	cfg.URL = server.URL
	cfg.Timeout = 100 * time.Millisecond

	a := newAssistant(agentapi.NewClient(cfg))
	assert.Equal(t, QuestionUnavailable, a.AskQuestion(context.Background(), "hello?"))
}

func TestSessionScopedConversation(t *testing.T) {
	var got struct {
		Input struct {
			ConversationID string `json:"conversationId"`
			Message        string `json:"message"`
		} `json:"input"`
	}
	client := agentServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		_, _ = w.Write(messageBody("ok"))
	})

	a := New(client, testusers.Default(), logger.NewNop(), Options{SessionID: "run-42"})
	a.AskQuestion(context.Background(), "what next?")

	assert.Equal(t, "run-42:qa_assistance", got.Input.ConversationID)
	assert.Contains(t, got.Input.Message, "Question: what next?")
}

func TestConversationIDs(t *testing.T) {
	a := newAssistant(nil)
	assert.Equal(t, "test_data_generation", a.ConversationID(OpTestData))
	assert.Equal(t, "test_scenarios", a.ConversationID(OpTestScenarios))
	assert.Equal(t, "failure_analysis", a.ConversationID(OpAnalyze))
	assert.Equal(t, "locator_suggestion", a.ConversationID(OpLocator))
	assert.Equal(t, "locator_help", a.ConversationID(OpLocators))
	assert.Equal(t, "step_generation", a.ConversationID(OpTestSteps))
	assert.Equal(t, "qa_assistance", a.ConversationID(OpQuestion))
}

func TestConcurrentCalls(t *testing.T) {
	client := agentServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(messageBody(`[{"testName":"t","description":"d","steps":["s"],"expectedResult":"r"}]`))
	})
	a := newAssistant(client)

	var wg sync.WaitGroup
	results := make([][]entity.Scenario, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.GenerateTestScenarios(context.Background(), "login")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Len(t, r, 1)
		assert.Equal(t, "t", r[0].TestName)
	}
}

func TestHooks_RequestFailedCarriesStatus(t *testing.T) {
	client := agentServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	type failure struct {
		kind   string
		status int
		op     string
	}
	events := make(chan failure, 4)

	listener := capitan.Hook(RequestFailed, func(_ context.Context, e *capitan.Event) {
		conv, _ := ConversationIDKey.From(e)
		if conv != "hooks-status:qa_assistance" {
			return
		}
		kind, _ := FailureKindKey.From(e)
		status, _ := StatusCodeKey.From(e)
		op, _ := OperationKey.From(e)
		events <- failure{kind: kind, status: status, op: op}
	})
	defer listener.Close()

	a := New(client, testusers.Default(), logger.NewNop(), Options{SessionID: "hooks-status"})
	assert.Equal(t, QuestionUnavailable, a.AskQuestion(context.Background(), "q"))

	select {
	case got := <-events:
		assert.Equal(t, failure{kind: string(FailureStatus), status: http.StatusServiceUnavailable, op: string(OpQuestion)}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for request.failed hook")
	}
}

func TestHooks_FallbackSignalOnParseFailure(t *testing.T) {
	events := make(chan string, 4)
	listener := capitan.Hook(FallbackUsed, func(_ context.Context, e *capitan.Event) {
		conv, _ := ConversationIDKey.From(e)
		if conv != "hooks-parse:test_scenarios" {
			return
		}
		kind, _ := FailureKindKey.From(e)
		events <- kind
	})
	defer listener.Close()

	a := New(replying("[not valid json]"), testusers.Default(), logger.NewNop(), Options{SessionID: "hooks-parse"})
	a.GenerateTestScenarios(context.Background(), "cart")

	select {
	case kind := <-events:
		assert.Equal(t, string(FailureParse), kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for fallback hook")
	}
}

func TestHooks_CompletedOnSuccess(t *testing.T) {
	events := make(chan int, 4)
	listener := capitan.Hook(RequestCompleted, func(_ context.Context, e *capitan.Event) {
		conv, _ := ConversationIDKey.From(e)
		if conv != "hooks-ok:locator_suggestion" {
			return
		}
		n, _ := ResponseLengthKey.From(e)
		events <- n
	})
	defer listener.Close()

	a := New(replying("#login-button"), testusers.Default(), logger.NewNop(), Options{SessionID: "hooks-ok"})
	a.SuggestLocator(context.Background(), "login button")

	select {
	case n := <-events:
		assert.Equal(t, len("#login-button"), n)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for completed hook")
	}
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, categoryUsers, categorize("Login"))
	assert.Equal(t, categoryUsers, categorize("superuser"))
	assert.Equal(t, categoryProducts, categorize("PRODUCTS"))
	assert.Equal(t, categoryCheckout, categorize("checkout form"))
	assert.Equal(t, categoryCheckout, categorize("billing"))
	assert.Equal(t, categoryMixed, categorize(""))
}
