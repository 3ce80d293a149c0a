// Package pdf turns rendered report HTML into PDF files and keeps track of
// the generated files until they are downloaded.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Renderer converts a complete HTML document into a PDF written to dst.
type Renderer interface {
	Render(ctx context.Context, html []byte, dst string) error
}

// Wkhtmltopdf shells out to the wkhtmltopdf binary. The document is passed
// on stdin so no temporary HTML file is needed.
type Wkhtmltopdf struct {
	Binary  string
	Args    []string
	Timeout time.Duration
}

func NewWkhtmltopdf(binary string, timeout time.Duration) *Wkhtmltopdf {
	return &Wkhtmltopdf{
		Binary:  binary,
		Timeout: timeout,
		Args: []string{
			"--quiet",
			"--encoding", "utf-8",
			"--page-size", "A4",
			"--margin-top", "15mm",
			"--margin-bottom", "15mm",
			"--footer-right", "[page] / [topage]",
			"--footer-font-size", "7",
		},
	}
}

func (w *Wkhtmltopdf) Render(ctx context.Context, html []byte, dst string) error {
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), w.Args...), "-", dst)
	cmd := exec.CommandContext(ctx, w.Binary, args...)
	cmd.Stdin = bytes.NewReader(html)
	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("wkhtmltopdf: %w", ctx.Err())
		}
		return fmt.Errorf("wkhtmltopdf: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
