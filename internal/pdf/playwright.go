package pdf

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Playwright prints pages with a headless Chromium. It is an alternative
// to wkhtmltopdf on hosts where only a browser is available.
type Playwright struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywright() (*Playwright, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &Playwright{pw: pw, browser: browser}, nil
}

func (p *Playwright) Render(ctx context.Context, html []byte, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// one page at a time keeps memory use of the shared browser bounded
	p.mu.Lock()
	defer p.mu.Unlock()

	page, err := p.browser.NewPage()
	if err != nil {
		return fmt.Errorf("playwright: new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(string(html)); err != nil {
		return fmt.Errorf("playwright: set content: %w", err)
	}
	if _, err := page.PDF(playwright.PagePdfOptions{
		Path:            playwright.String(dst),
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("playwright: pdf: %w", err)
	}
	return nil
}

func (p *Playwright) Close() error {
	if err := p.browser.Close(); err != nil {
		return err
	}
	return p.pw.Stop()
}
