package output

import (
	"context"

	"shopqa/internal/domain/entity"
)

type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	SelectOption(ctx context.Context, selector, value string) error
	Press(ctx context.Context, selector, key string) error

	Text(ctx context.Context, selector string) (string, error)
	Texts(ctx context.Context, selector string) ([]string, error)
	Attribute(ctx context.Context, selector, name string) (string, error)
	Count(ctx context.Context, selector string) (int, error)
	Visible(ctx context.Context, selector string) (bool, error)
	WaitVisible(ctx context.Context, selector string) error
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	IsReady() bool
	Close()
}
