// Package preview smoke-tests a generated simulation in a headless browser:
// does the page load, what title does it carry, and does its JavaScript throw
// on startup. Requires a local Chrome/Chromium.
package preview

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds one preview check.
const DefaultTimeout = 30 * time.Second

// Result is what the headless load observed.
type Result struct {
	Title         string   `json:"title"`
	BodyLength    int      `json:"body_length"`
	ConsoleErrors []string `json:"console_errors,omitempty"`
}

// Check loads the HTML file at htmlPath in a headless browser and reports the
// page title, rendered body size, and any uncaught JavaScript exceptions.
func Check(ctx context.Context, htmlPath string, timeout time.Duration) (*Result, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)
	defer timeoutCancel()

	res := &Result{}
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if e, ok := ev.(*runtime.EventExceptionThrown); ok {
			res.ConsoleErrors = append(res.ConsoleErrors, e.ExceptionDetails.Error())
		}
	})

	var body string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body"),
		chromedp.Title(&res.Title),
		chromedp.InnerHTML("body", &body),
	)
	if err != nil {
		return nil, fmt.Errorf("load preview: %w", err)
	}
	res.BodyLength = len(body)
	return res, nil
}
