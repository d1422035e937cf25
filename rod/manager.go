package rod

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of pages one Chrome renders before it
// is replaced.
const DefaultRecycleAfter = 75

var errClosed = errors.New("browsers closed")

// browser is one launched Chrome with its page accounting.
type browser struct {
	rod  *rod.Browser
	stop func() error

	served   int
	inflight int
	retired  bool
}

// Browsers hands out the Chrome instance each page renders on. After
// recycleAfter pages a fresh Chrome takes over; the old one is stopped once
// its last page is released, so concurrent renders are never cut off by a
// recycle.
type Browsers struct {
	recycleAfter int
	launch       func() (*browser, error)

	mu      sync.Mutex
	current *browser
	closed  bool
}

func newBrowsers(recycleAfter int, launch func() (*browser, error)) *Browsers {
	return &Browsers{recycleAfter: recycleAfter, launch: launch}
}

// start launches the first Chrome if none is running.
func (b *Browsers) start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}
	if b.current != nil {
		return nil
	}
	br, err := b.launch()
	if err != nil {
		return err
	}
	b.current = br
	return nil
}

// lease returns the browser for the next page and the function releasing
// it. A failed recycle keeps the old browser serving.
func (b *Browsers) lease() (*browser, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, errClosed
	}
	switch {
	case b.current == nil:
		br, err := b.launch()
		if err != nil {
			return nil, nil, err
		}
		b.current = br
	case b.recycleAfter > 0 && b.current.served >= b.recycleAfter:
		if br, err := b.launch(); err == nil {
			b.retire(b.current)
			b.current = br
		}
	}

	br := b.current
	br.served++
	br.inflight++
	var once sync.Once
	return br, func() { once.Do(func() { b.release(br) }) }, nil
}

func (b *Browsers) release(br *browser) {
	b.mu.Lock()
	defer b.mu.Unlock()
	br.inflight--
	if br.retired && br.inflight == 0 {
		_ = br.stop()
	}
}

// retire stops br now if idle, else when its last page is released.
// Must be called with mu held.
func (b *Browsers) retire(br *browser) {
	br.retired = true
	if br.inflight == 0 {
		_ = br.stop()
	}
}

// Close stops the current Chrome. Close is safe to call multiple times.
func (b *Browsers) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.current == nil {
		return nil
	}
	br := b.current
	b.current = nil
	br.retired = true
	return br.stop()
}

// launchChrome starts a headless Chrome tuned for long unattended runs.
func launchChrome() (*browser, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	rb := rod.New().ControlURL(u)
	if err := rb.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	var once sync.Once
	var stopErr error
	return &browser{
		rod: rb,
		stop: func() error {
			once.Do(func() {
				stopErr = rb.Close()
				l.Kill()
			})
			return stopErr
		},
	}, nil
}
