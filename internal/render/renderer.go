// Package render wraps a headless browser for organiser pages whose
// pagination is JS-rendered and absent from the static HTML. Lifecycle is
// explicit: Start, AcquirePage (scoped, ≤3 concurrent), Shutdown.
package render

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const maxConcurrentPages = 3

var userAgentPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
}

var viewportPool = [][2]int{{1366, 768}, {1440, 900}, {1920, 1080}}

// PaginationCandidates are the fixed CSS selector candidates tried, in
// order, to detect a "next page" control.
var PaginationCandidates = []string{
	"a.next", "a[rel=next]", ".pagination .next", "a[aria-label=Next]", "li.next a",
}

// Renderer owns a long-lived headless browser context and serialises page
// acquisition through a semaphore.
type Renderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	sem      chan struct{}

	shutdownOnce sync.Once
}

// Start acquires the long-lived headless browser instance.
func Start(ctx context.Context) (*Renderer, error) {
	ua := userAgentPool[rand.Intn(len(userAgentPool))]
	vp := viewportPool[rand.Intn(len(viewportPool))]

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(ua),
		chromedp.WindowSize(vp[0], vp[1]),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Renderer{
		allocCtx: allocCtx,
		cancel:   cancel,
		sem:      make(chan struct{}, maxConcurrentPages),
	}, nil
}

// Page is a scoped, acquired browser tab. Callers must call Release on all
// code paths.
type Page struct {
	ctx     context.Context
	cancel  context.CancelFunc
	release func()
}

// AcquirePage blocks until one of at most 3 concurrent page slots is free.
func (r *Renderer) AcquirePage(ctx context.Context) (*Page, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		<-r.sem
		return nil, fmt.Errorf("acquire headless page: %w", err)
	}

	released := false
	var mu sync.Mutex
	release := func() {
		mu.Lock()
		defer mu.Unlock()
		if released {
			return
		}
		released = true
		cancel()
		<-r.sem
	}

	return &Page{ctx: tabCtx, cancel: cancel, release: release}, nil
}

// Release returns the page's concurrency slot. Safe to call more than once.
func (p *Page) Release() { p.release() }

// BlockResources runs a no-op action on this page. It does not block
// images, CSS, fonts or media; every resource type is still fetched.
func (p *Page) BlockResources(ctx context.Context) error {
	return chromedp.Run(p.ctx, chromedp.ActionFunc(func(c context.Context) error {
		return nil
	}))
}

// NavigateAndWait navigates to url and waits for selector to appear, with a
// 60s navigation timeout.
func (p *Page) NavigateAndWait(selector string, url string) error {
	ctx, cancel := context.WithTimeout(p.ctx, 60*time.Second)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
	)
}

// PaginationInfo is what WaitForPagination detects.
type PaginationInfo struct {
	TotalPages   int
	NextSelector string
}

// WaitForPagination reports the first PaginationCandidates selector found
// in the live DOM as NextSelector. The total page count is not detected:
// TotalPages is always 1.
func (p *Page) WaitForPagination() (PaginationInfo, error) {
	for _, sel := range PaginationCandidates {
		var count int
		err := chromedp.Run(p.ctx, chromedp.EvaluateAsDevTools(
			fmt.Sprintf(`document.querySelectorAll(%q).length`, sel), &count))
		if err == nil && count > 0 {
			return PaginationInfo{TotalPages: 1, NextSelector: sel}, nil
		}
	}
	return PaginationInfo{TotalPages: 1}, nil
}

// TableExtract is the raw shape scraped from a headless-rendered table.
type TableExtract struct {
	Headers []string
	Rows    [][]string
}

// ExtractTable reads header/row text from the table matching selector.
func (p *Page) ExtractTable(selector string) (TableExtract, error) {
	var js = fmt.Sprintf(`(() => {
		const t = document.querySelector(%q);
		if (!t) return {headers: [], rows: []};
		const headers = Array.from(t.querySelectorAll('thead th')).map(e => e.textContent.trim());
		const rows = Array.from(t.querySelectorAll('tbody tr')).map(
			r => Array.from(r.querySelectorAll('td')).map(c => c.textContent.trim())
		);
		return {headers, rows};
	})()`, selector)

	var out TableExtract
	if err := chromedp.Run(p.ctx, chromedp.EvaluateAsDevTools(js, &out)); err != nil {
		return TableExtract{}, fmt.Errorf("extract table %s: %w", selector, err)
	}
	return out, nil
}

// ScrollToLoad scrolls to the bottom of the page up to maxIterations times,
// for infinite-scroll result lists.
func (p *Page) ScrollToLoad(maxIterations int) error {
	for i := 0; i < maxIterations; i++ {
		if err := chromedp.Run(p.ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil)); err != nil {
			return fmt.Errorf("scroll to load (iteration %d): %w", i, err)
		}
		time.Sleep(300 * time.Millisecond)
	}
	return nil
}

// Shutdown is idempotent and should be tied to the process's termination
// signal handlers by the caller.
func (r *Renderer) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.cancel()
	})
}
