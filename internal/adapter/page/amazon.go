package page

import (
	"context"

	"shopqa/internal/application/port/output"
)

var amazonSelectors = []string{
	"searchBox", "firstResult", "signInButton",
	"emailInput", "continueButton", "passwordInput", "submitSignIn",
}

type AmazonPage struct {
	browser output.BrowserPort
	loc     Locators
}

func NewAmazonPage(browser output.BrowserPort) (*AmazonPage, error) {
	loc, err := LoadLocators("amazon", amazonSelectors...)
	if err != nil {
		return nil, err
	}
	return &AmazonPage{browser: browser, loc: loc}, nil
}

func (p *AmazonPage) Goto(ctx context.Context) error {
	return p.browser.Navigate(ctx, p.loc.URL)
}

func (p *AmazonPage) Search(ctx context.Context, term string) error {
	box := p.loc.Get("searchBox")
	if err := p.browser.Fill(ctx, box, term); err != nil {
		return err
	}
	return p.browser.Press(ctx, box, "Enter")
}

func (p *AmazonPage) ClickFirstResult(ctx context.Context) error {
	sel := p.loc.Get("firstResult")
	if err := p.browser.WaitVisible(ctx, sel); err != nil {
		return err
	}
	return p.browser.Click(ctx, sel)
}

// Login signs in through the two-step email then password form.
func (p *AmazonPage) Login(ctx context.Context, email, password string) error {
	if err := p.browser.Click(ctx, p.loc.Get("signInButton")); err != nil {
		return err
	}
	if err := p.browser.Fill(ctx, p.loc.Get("emailInput"), email); err != nil {
		return err
	}
	if err := p.browser.Click(ctx, p.loc.Get("continueButton")); err != nil {
		return err
	}
	if err := p.browser.Fill(ctx, p.loc.Get("passwordInput"), password); err != nil {
		return err
	}
	return p.browser.Click(ctx, p.loc.Get("submitSignIn"))
}
