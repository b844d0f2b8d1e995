package page

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shopqa/internal/application/port/input"
	"shopqa/internal/application/port/output"
	"shopqa/internal/domain/entity"
	"shopqa/internal/infrastructure/browser/htmlclean"
)

var (
	ErrVerification  = errors.New("verification failed")
	ErrMissingParams = errors.New("missing step parameters")
)

const maxContextElements = 80

var sauceDemoSelectors = []string{
	"usernameInput", "passwordInput", "loginButton", "errorMessage",
	"productsContainer", "productItem", "productPrice", "sortDropdown",
	"cartButton", "cartBadge", "checkoutButton",
	"firstNameInput", "lastNameInput", "postalCodeInput", "continueButton",
	"finishButton", "orderComplete", "orderCompleteText",
	"menuButton", "logoutLink",
}

// SauceDemoPage drives the SauceDemo storefront and exposes the assistant
// helpers used by AI-enhanced tests.
type SauceDemoPage struct {
	browser   output.BrowserPort
	assistant input.Assistant
	logger    output.LoggerPort
	loc       Locators
	baseURL   string
}

// NewSauceDemoPage uses the embedded locators. An empty baseURL keeps the
// public site.
func NewSauceDemoPage(browser output.BrowserPort, assistant input.Assistant, logger output.LoggerPort, baseURL string) (*SauceDemoPage, error) {
	loc, err := LoadLocators("saucedemo", sauceDemoSelectors...)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = loc.URL
	}
	return &SauceDemoPage{
		browser:   browser,
		assistant: assistant,
		logger:    logger,
		loc:       loc,
		baseURL:   baseURL,
	}, nil
}

func (p *SauceDemoPage) BaseURL() string {
	return p.baseURL
}

func (p *SauceDemoPage) Goto(ctx context.Context) error {
	return p.browser.Navigate(ctx, p.baseURL)
}

func (p *SauceDemoPage) Login(ctx context.Context, username, password string) error {
	if err := p.browser.Fill(ctx, p.loc.Get("usernameInput"), username); err != nil {
		return err
	}
	if err := p.browser.Fill(ctx, p.loc.Get("passwordInput"), password); err != nil {
		return err
	}
	return p.browser.Click(ctx, p.loc.Get("loginButton"))
}

// ProductCount waits for the inventory and counts its items.
func (p *SauceDemoPage) ProductCount(ctx context.Context) (int, error) {
	if err := p.browser.WaitVisible(ctx, p.loc.Get("productsContainer")); err != nil {
		return 0, err
	}
	return p.browser.Count(ctx, p.loc.Get("productItem"))
}

func (p *SauceDemoPage) AddProductToCart(ctx context.Context, productName string) error {
	return p.browser.Click(ctx, addToCartSelector(productName))
}

func (p *SauceDemoPage) RemoveProductFromCart(ctx context.Context, productName string) error {
	return p.browser.Click(ctx, removeSelector(productName))
}

func (p *SauceDemoPage) GoToCart(ctx context.Context) error {
	return p.browser.Click(ctx, p.loc.Get("cartButton"))
}

func (p *SauceDemoPage) ProceedToCheckout(ctx context.Context) error {
	return p.browser.Click(ctx, p.loc.Get("checkoutButton"))
}

// FillCheckoutInformation fills the form and continues to the overview.
func (p *SauceDemoPage) FillCheckoutInformation(ctx context.Context, info entity.CheckoutInfo) error {
	fields := []struct{ key, value string }{
		{"firstNameInput", info.FirstName},
		{"lastNameInput", info.LastName},
		{"postalCodeInput", info.PostalCode},
	}
	for _, f := range fields {
		if err := p.browser.Fill(ctx, p.loc.Get(f.key), f.value); err != nil {
			return err
		}
	}
	return p.browser.Click(ctx, p.loc.Get("continueButton"))
}

func (p *SauceDemoPage) CompleteOrder(ctx context.Context) error {
	return p.browser.Click(ctx, p.loc.Get("finishButton"))
}

func (p *SauceDemoPage) OrderConfirmation(ctx context.Context) (string, error) {
	if err := p.browser.WaitVisible(ctx, p.loc.Get("orderComplete")); err != nil {
		return "", err
	}
	return p.browser.Text(ctx, p.loc.Get("orderCompleteText"))
}

// SortProducts accepts an option value (az, za, lohi, hilo) or its label.
func (p *SauceDemoPage) SortProducts(ctx context.Context, sortType string) error {
	return p.browser.SelectOption(ctx, p.loc.Get("sortDropdown"), sortType)
}

func (p *SauceDemoPage) ProductPrices(ctx context.Context) ([]float64, error) {
	if err := p.browser.WaitVisible(ctx, p.loc.Get("productPrice")); err != nil {
		return nil, err
	}
	texts, err := p.browser.Texts(ctx, p.loc.Get("productPrice"))
	if err != nil {
		return nil, err
	}
	prices := make([]float64, 0, len(texts))
	for _, t := range texts {
		v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(t), "$"), 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected price %q: %w", t, err)
		}
		prices = append(prices, v)
	}
	return prices, nil
}

// CartBadge returns the number shown on the cart icon, 0 when there is no badge.
func (p *SauceDemoPage) CartBadge(ctx context.Context) (int, error) {
	sel := p.loc.Get("cartBadge")
	visible, err := p.browser.Visible(ctx, sel)
	if err != nil || !visible {
		return 0, err
	}
	text, err := p.browser.Text(ctx, sel)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("unexpected cart badge %q: %w", text, err)
	}
	return n, nil
}

// ErrorMessage returns the login/checkout error banner, "" when none is shown.
func (p *SauceDemoPage) ErrorMessage(ctx context.Context) (string, error) {
	sel := p.loc.Get("errorMessage")
	visible, err := p.browser.Visible(ctx, sel)
	if err != nil || !visible {
		return "", err
	}
	return p.browser.Text(ctx, sel)
}

func (p *SauceDemoPage) Logout(ctx context.Context) error {
	if err := p.browser.Click(ctx, p.loc.Get("menuButton")); err != nil {
		return err
	}
	if err := p.browser.WaitVisible(ctx, p.loc.Get("logoutLink")); err != nil {
		return err
	}
	return p.browser.Click(ctx, p.loc.Get("logoutLink"))
}

// Verify checks a url or text expectation against the current page.
func (p *SauceDemoPage) Verify(ctx context.Context, exp entity.Expectation) error {
	switch exp.Type {
	case "url":
		current := p.browser.CurrentURL()
		if !strings.Contains(current, exp.Value) {
			return fmt.Errorf("%w: expected URL to contain %q, but got %q", ErrVerification, exp.Value, current)
		}
		return nil
	case "text":
		if exp.Selector == "" {
			return fmt.Errorf("%w: text expectation needs a selector", ErrMissingParams)
		}
		text, err := p.browser.Text(ctx, exp.Selector)
		if err != nil {
			return err
		}
		if !strings.Contains(text, exp.Value) {
			return fmt.Errorf("%w: expected text to contain %q, but got %q", ErrVerification, exp.Value, text)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown expectation type %q", ErrMissingParams, exp.Type)
	}
}

// PageContext summarises the interactive elements of the current page.
func (p *SauceDemoPage) PageContext(ctx context.Context) string {
	html, err := p.browser.HTML(ctx)
	if err != nil {
		p.logger.Warn("Failed to read page HTML", "error", err)
		return ""
	}
	return htmlclean.Summary(htmlclean.InteractiveElements(html, maxContextElements))
}

// PageExcerpt returns the cleaned markup of the current page.
func (p *SauceDemoPage) PageExcerpt(ctx context.Context) string {
	html, err := p.browser.HTML(ctx)
	if err != nil {
		p.logger.Warn("Failed to read page HTML", "error", err)
		return ""
	}
	return htmlclean.Clean(html, nil)
}

func (p *SauceDemoPage) GenerateTestData(ctx context.Context, kind string) entity.DataSet {
	return p.assistant.GenerateTestData(ctx, kind, 0)
}

func (p *SauceDemoPage) GenerateTestScenarios(ctx context.Context, functionality string) []entity.Scenario {
	return p.assistant.GenerateTestScenarios(ctx, functionality)
}

func (p *SauceDemoPage) FindElementWithAI(ctx context.Context, description string) string {
	return p.assistant.SuggestLocator(ctx, description)
}

// FindElementsWithAI asks for ranked locators using the live page as context.
func (p *SauceDemoPage) FindElementsWithAI(ctx context.Context, description string) []entity.LocatorSuggestion {
	return p.assistant.SuggestLocators(ctx, description, p.PageContext(ctx))
}

func (p *SauceDemoPage) AskAI(ctx context.Context, question string) string {
	return p.assistant.AskQuestion(ctx, question)
}

// AnalyzeTestFailure fills the page URL and excerpt from the browser when the
// caller left them empty.
func (p *SauceDemoPage) AnalyzeTestFailure(ctx context.Context, details entity.ErrorDetails) entity.FailureAnalysis {
	if p.browser.IsReady() {
		if details.CurrentPage == "" {
			details.CurrentPage = p.browser.CurrentURL()
		}
		if details.PageExcerpt == "" {
			details.PageExcerpt = p.PageExcerpt(ctx)
		}
	}
	return p.assistant.AnalyzeFailure(ctx, details)
}

func addToCartSelector(productName string) string {
	return fmt.Sprintf(`[data-test="add-to-cart-%s"]`, Slug(productName))
}

func removeSelector(productName string) string {
	return fmt.Sprintf(`[data-test="remove-%s"]`, Slug(productName))
}
