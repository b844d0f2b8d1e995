package page

import (
	"context"
	"fmt"

	"shopqa/internal/application/service"
	"shopqa/internal/domain/entity"
)

// RegisterSteps binds every known step action to this page.
func (p *SauceDemoPage) RegisterSteps(reg *service.StepRegistry) {
	reg.Register(entity.ActionGoto, func(ctx context.Context, _ entity.Step) error {
		return p.Goto(ctx)
	})
	reg.Register(entity.ActionLogin, p.loginStep)
	reg.Register(entity.ActionAddToCart, p.addToCartStep)
	reg.Register(entity.ActionGoToCart, func(ctx context.Context, _ entity.Step) error {
		return p.GoToCart(ctx)
	})
	reg.Register(entity.ActionCheckout, func(ctx context.Context, _ entity.Step) error {
		return p.ProceedToCheckout(ctx)
	})
	reg.Register(entity.ActionFillCheckout, p.fillCheckoutStep)
	reg.Register(entity.ActionComplete, func(ctx context.Context, _ entity.Step) error {
		return p.CompleteOrder(ctx)
	})
	reg.Register(entity.ActionVerify, p.verifyStep)
}

func (p *SauceDemoPage) loginStep(ctx context.Context, s entity.Step) error {
	username := s.Param("username", "user")
	password := s.Param("password")
	if username == "" || password == "" {
		return fmt.Errorf("%w: login needs username and password", ErrMissingParams)
	}
	return p.Login(ctx, username, password)
}

func (p *SauceDemoPage) addToCartStep(ctx context.Context, s entity.Step) error {
	name := s.Param("productName", "product", "name")
	if name == "" {
		return fmt.Errorf("%w: addToCart needs productName", ErrMissingParams)
	}
	return p.AddProductToCart(ctx, name)
}

// fillCheckoutStep falls back to the default customer for missing fields.
func (p *SauceDemoPage) fillCheckoutStep(ctx context.Context, s entity.Step) error {
	info := entity.DefaultCheckoutInfo
	if v := s.Param("firstName"); v != "" {
		info.FirstName = v
	}
	if v := s.Param("lastName"); v != "" {
		info.LastName = v
	}
	if v := s.Param("postalCode", "zip"); v != "" {
		info.PostalCode = v
	}
	return p.FillCheckoutInformation(ctx, info)
}

func (p *SauceDemoPage) verifyStep(ctx context.Context, s entity.Step) error {
	exp, ok := s.Expectation()
	if !ok {
		return fmt.Errorf("%w: verify needs an expectation", ErrMissingParams)
	}
	return p.Verify(ctx, exp)
}
