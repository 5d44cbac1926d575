//go:generate mockgen -destination=./mocks/session.go . CatalogFetcher,Installer,Opener,Menu

// Package session holds the browse-and-install state machine behind the
// interactive view: the current catalog snapshot, the cursor and the busy
// guard that keeps fetches and installs from overlapping.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/model"
	"github.com/glorpus-work/modpick/pkg/orchestrator"
)

// DefaultErrorDelay is how long an error screen stays up before the
// controller moves on.
const DefaultErrorDelay = time.Second

// CatalogFetcher produces a fresh catalog snapshot.
type CatalogFetcher interface {
	Fetch(ctx context.Context) (*model.Catalog, error)
}

// Installer runs one install chain.
type Installer interface {
	Install(ctx context.Context, target model.Package, cat *model.Catalog) (orchestrator.Report, error)
}

// Opener shows a URL to the user, usually in the system browser.
type Opener interface {
	Open(url string) error
}

// Menu is the host view the session hands control back to.
type Menu interface {
	ReturnToMenu()
}

// State is the controller's position in its state machine.
type State int

// Controller states.
const (
	StateEmpty State = iota
	StateFetching
	StateBrowsing
	StateInstalling
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFetching:
		return "fetching"
	case StateBrowsing:
		return "browsing"
	case StateInstalling:
		return "installing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Key is an input the view forwards to the controller.
type Key int

// Keys understood by HandleKey.
const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyEnter
	KeyOption1
	KeyOption2
	KeyBack
)

// Options configure a Controller.
type Options struct {
	ErrorDelay    time.Duration
	BrowseBaseURL string
	// OnChange is called after every visible change. It must not block.
	OnChange func()
	// Sleep replaces the error delay wait; tests use it to avoid real time.
	Sleep func(ctx context.Context, d time.Duration)
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	State      State
	Cursor     int
	Count      int
	Busy       bool
	Current    model.Package
	HasCurrent bool // false while a fetch is replacing the catalog
	Lines      []Line
}

// Controller owns the selection state of one browse session.
type Controller struct {
	fetcher   CatalogFetcher
	installer Installer
	opener    Opener
	menu      Menu
	opts      Options

	busy atomic.Bool

	mu      sync.Mutex
	state   State
	catalog *model.Catalog
	cursor  int
	lines   []Line
}

// NewController creates a controller in StateEmpty.
func NewController(fetcher CatalogFetcher, installer Installer, opener Opener, menu Menu, opts Options) *Controller {
	if opts.ErrorDelay < 0 {
		opts.ErrorDelay = 0
	}
	if opts.BrowseBaseURL == "" {
		opts.BrowseBaseURL = model.DefaultBrowseBaseURL
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	return &Controller{
		fetcher:   fetcher,
		installer: installer,
		opener:    opener,
		menu:      menu,
		opts:      opts,
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Busy reports whether a fetch or install is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:  c.state,
		Cursor: c.cursor,
		Count:  c.catalog.Len(),
		Busy:   c.busy.Load(),
		Lines:  append([]Line(nil), c.lines...),
	}
	if c.state != StateFetching {
		s.Current, s.HasCurrent = c.catalog.At(c.cursor)
	}
	return s
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}

// HandleKey routes one key press. Input while busy is dropped, and any key
// other than KeyBack on an empty catalog starts a fetch. It reports whether
// the key was acted on.
func (c *Controller) HandleKey(ctx context.Context, key Key) bool {
	if c.busy.Load() {
		logger.Debug("Dropping input while busy", logger.Fields{"key": int(key)})
		return false
	}
	if key == KeyBack {
		return c.Back()
	}
	if c.empty() {
		return c.Refresh(ctx)
	}

	switch key {
	case KeyLeft:
		return c.MoveLeft()
	case KeyRight:
		return c.MoveRight()
	case KeyEnter:
		return c.Confirm(ctx)
	case KeyOption1:
		return c.OpenSelected()
	case KeyOption2:
		return c.Refresh(ctx)
	default:
		c.mu.Lock()
		c.renderLocked()
		c.mu.Unlock()
		c.changed()
		return true
	}
}

func (c *Controller) empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Len() == 0
}

// Show is called when the view becomes visible. It fetches the catalog if
// none is loaded yet and otherwise redraws the current package.
func (c *Controller) Show(ctx context.Context) bool {
	if c.busy.Load() {
		return false
	}
	if c.empty() {
		return c.Refresh(ctx)
	}
	c.mu.Lock()
	c.renderLocked()
	c.mu.Unlock()
	c.changed()
	return true
}

// Refresh replaces the catalog with a freshly fetched snapshot and resets
// the cursor. On failure the error stays on screen for the error delay, then
// the session empties and control returns to the menu.
func (c *Controller) Refresh(ctx context.Context) bool {
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	defer func() {
		c.busy.Store(false)
		c.changed()
	}()

	c.mu.Lock()
	c.state = StateFetching
	c.cursor = 0
	c.lines = []Line{
		{Kind: LineMuted, Text: "Fetching mod list"},
		{Kind: LineMuted, Text: "This should only take a few seconds.."},
	}
	c.mu.Unlock()
	c.changed()

	cat, err := c.fetcher.Fetch(ctx)
	if err != nil {
		logger.Error("Failed to fetch mod list", logger.Fields{"error": err})
		c.mu.Lock()
		c.lines = []Line{
			{Kind: LineError, Text: "Unable to fetch mod list!"},
			{Kind: LineError, Text: "Please try again later"},
			{Kind: LineMuted, Text: err.Error()},
		}
		c.mu.Unlock()
		c.changed()

		c.opts.Sleep(ctx, c.opts.ErrorDelay)

		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
		if c.menu != nil {
			c.menu.ReturnToMenu()
		}
		return true
	}

	logger.Debug("Catalog loaded", logger.Fields{"packages": cat.Len()})
	c.mu.Lock()
	c.catalog = cat
	c.cursor = 0
	c.state = StateBrowsing
	c.renderLocked()
	c.mu.Unlock()
	return true
}

// MoveLeft selects the previous package, stopping at the first one.
func (c *Controller) MoveLeft() bool {
	return c.move(-1)
}

// MoveRight selects the next package, stopping at the last one.
func (c *Controller) MoveRight() bool {
	return c.move(1)
}

func (c *Controller) move(delta int) bool {
	c.mu.Lock()
	if c.busy.Load() || c.state != StateBrowsing {
		c.mu.Unlock()
		return false
	}
	c.cursor = clamp(c.cursor+delta, c.catalog.Len())
	c.renderLocked()
	c.mu.Unlock()
	c.changed()
	return true
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Confirm installs the selected package with its dependencies. The
// transcript replaces the package details; on failure it stays on screen for
// the error delay before input is accepted again.
func (c *Controller) Confirm(ctx context.Context) bool {
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	defer func() {
		c.busy.Store(false)
		c.changed()
	}()

	c.mu.Lock()
	target, ok := c.catalog.At(c.cursor)
	if !ok || c.state != StateBrowsing {
		c.mu.Unlock()
		return false
	}
	cat := c.catalog
	c.state = StateInstalling
	c.renderLocked()
	header := append([]Line(nil), c.lines...)
	c.mu.Unlock()
	c.changed()

	logger.Info("Installing package", logger.Fields{"package": target.Name, "version": target.Version})
	report, err := c.installer.Install(ctx, target, cat)

	lines := append(header, reportLines(report)...)
	if err != nil {
		logger.Error("Install failed", logger.Fields{"package": target.Name, "error": err})
		lines = append(lines, Line{Kind: LineError, Text: err.Error()})
	}

	c.mu.Lock()
	c.lines = lines
	c.mu.Unlock()

	if err != nil {
		c.changed()
		c.opts.Sleep(ctx, c.opts.ErrorDelay)
	}

	c.mu.Lock()
	// Back is ignored while busy, so the catalog is still the one we installed from.
	c.state = StateBrowsing
	c.mu.Unlock()
	return true
}

// OpenSelected opens the repository page of the selected package.
func (c *Controller) OpenSelected() bool {
	c.mu.Lock()
	if c.busy.Load() || c.state != StateBrowsing {
		c.mu.Unlock()
		return false
	}
	pkg, ok := c.catalog.At(c.cursor)
	c.mu.Unlock()
	if !ok || c.opener == nil {
		return false
	}

	url := pkg.BrowseURL(c.opts.BrowseBaseURL)
	if err := c.opener.Open(url); err != nil {
		logger.Warn("Failed to open browse link", logger.Fields{"url": url, "error": err})
		c.mu.Lock()
		c.lines = append(c.lines, Line{Kind: LineError, Text: fmt.Sprintf("Unable to open %s", url)})
		c.mu.Unlock()
		c.changed()
		return true
	}
	logger.Debug("Opened browse link", logger.Fields{"url": url})
	return true
}

// Back discards the catalog and cursor and hands control to the menu. It is
// ignored while an operation is in flight.
func (c *Controller) Back() bool {
	c.mu.Lock()
	if c.busy.Load() {
		c.mu.Unlock()
		return false
	}
	c.reset()
	c.mu.Unlock()
	c.changed()
	if c.menu != nil {
		c.menu.ReturnToMenu()
	}
	return true
}

func (c *Controller) reset() {
	c.catalog = nil
	c.cursor = 0
	c.state = StateEmpty
	c.lines = nil
}
