package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"sync"
	"time"

	"shopqa/internal/application/port/output"
	"shopqa/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultSlowMotion   = 250 * time.Millisecond
	defaultTimeout      = 10 * time.Second
	maxScreenshotWidth  = 1280
	screenshotQuality   = 75
	navigationIdleLimit = 5 * time.Second
)

var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrBrowserClosed   = errors.New("browser is closed")
)

var keys = map[string]input.Key{
	"Enter":     input.Enter,
	"Tab":       input.Tab,
	"Escape":    input.Escape,
	"Backspace": input.Backspace,
	"ArrowDown": input.ArrowDown,
	"ArrowUp":   input.ArrowUp,
}

type BrowserAdapter struct {
	mu       sync.RWMutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// DisableSecurityFeatures turns off web security and allows mixed content.
	DisableSecurityFeatures bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

// SetTimeout changes how long element lookups wait.
func (b *BrowserAdapter) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed && b.page != nil
}

// pageFor returns the page bound to ctx and the lookup timeout.
func (b *BrowserAdapter) pageFor(ctx context.Context) (*rod.Page, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBrowserClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return b.page.Context(ctx).Timeout(b.timeout), nil
}

func (b *BrowserAdapter) element(ctx context.Context, selector string) (*rod.Element, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, ErrInvalidSelector
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	if isXPathSelector(selector) {
		return page.ElementX(selector)
	}
	return page.Element(selector)
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	_ = page.WaitIdle(navigationIdleLimit)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) SelectOption(ctx context.Context, selector, value string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("select not found: %s: %w", selector, err)
	}
	// Option values first, visible text second.
	if err := el.Select([]string{fmt.Sprintf(`option[value=%q]`, value)}, true, rod.SelectorTypeCSSSector); err == nil {
		return nil
	}
	if err := el.Select([]string{value}, true, rod.SelectorTypeText); err != nil {
		return fmt.Errorf("option %q not found in %s: %w", value, selector, err)
	}
	return nil
}

func (b *BrowserAdapter) Press(ctx context.Context, selector, key string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unsupported key: %s", key)
	}
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.Type(k); err != nil {
		return fmt.Errorf("press %s failed: %w", key, err)
	}
	return nil
}

func (b *BrowserAdapter) Text(ctx context.Context, selector string) (string, error) {
	el, err := b.element(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("element not found: %s: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read text failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Texts does not wait: it returns whatever matches right now.
func (b *BrowserAdapter) Texts(ctx context.Context, selector string) ([]string, error) {
	els, err := b.elements(ctx, selector)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read text failed: %w", err)
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out, nil
}

func (b *BrowserAdapter) Attribute(ctx context.Context, selector, name string) (string, error) {
	el, err := b.element(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("element not found: %s: %w", selector, err)
	}
	v, err := el.Attribute(name)
	if err != nil {
		return "", fmt.Errorf("read attribute %s failed: %w", name, err)
	}
	return ptrToString(v), nil
}

func (b *BrowserAdapter) Count(ctx context.Context, selector string) (int, error) {
	els, err := b.elements(ctx, selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (b *BrowserAdapter) elements(ctx context.Context, selector string) (rod.Elements, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, ErrInvalidSelector
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	if isXPathSelector(selector) {
		return page.ElementsX(selector)
	}
	return page.Elements(selector)
}

// Visible reports false for a missing element instead of waiting for it.
func (b *BrowserAdapter) Visible(ctx context.Context, selector string) (bool, error) {
	els, err := b.elements(ctx, selector)
	if err != nil {
		return false, err
	}
	if len(els) == 0 {
		return false, nil
	}
	return els.First().Visible()
}

func (b *BrowserAdapter) WaitVisible(ctx context.Context, selector string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("element not visible: %s: %w", selector, err)
	}
	return nil
}

func (b *BrowserAdapter) HTML(ctx context.Context) (string, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Screenshot captures the viewport as JPEG, downscaled to maxScreenshotWidth.
func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	imgBytes, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > maxScreenshotWidth {
		img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: screenshotQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close is idempotent.
func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func isXPathSelector(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(/")
}

func ptrToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
