package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
)

// State of the autocomplete controller.
type State int

const (
	StateIdle State = iota
	StateTyping
	StateFetching
	StateShown
	StateEmpty
	StateError
	StateClosed
)

// FetchFunc loads suggestions for a query.
type FetchFunc func(ctx context.Context, query string) ([]Item, error)

const (
	defaultDebounce = 300 * time.Millisecond
	defaultMinChars = 2
	blurGraceDelay  = 150 * time.Millisecond
)

// Controller drives the suggestion dropdown for one text input. It
// debounces keystrokes, drops stale responses via a request
// generation counter, and handles keyboard navigation. Safe for use
// from the UI goroutine plus the internal timer/fetch goroutines.
type Controller struct {
	mu sync.Mutex

	fetch    FetchFunc
	debounce time.Duration
	minChars int
	onSelect func(Item)
	onSubmit func(string)
	onUpdate func()

	state     State
	input     string
	items     []Item
	highlight int

	// gen identifies the newest request; timer fires and fetch
	// responses carrying an older gen are discarded.
	gen       uint64
	timer     *time.Timer
	blurTimer *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides the keystroke debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithMinChars overrides the minimum trimmed query length that
// triggers a fetch.
func WithMinChars(n int) Option {
	return func(c *Controller) { c.minChars = n }
}

// WithOnSelect sets the callback fired once per committed selection.
func WithOnSelect(fn func(Item)) Option {
	return func(c *Controller) { c.onSelect = fn }
}

// WithOnSubmit sets the passthrough handler for Enter pressed with no
// open dropdown.
func WithOnSubmit(fn func(string)) Option {
	return func(c *Controller) { c.onSubmit = fn }
}

// WithOnUpdate sets a callback invoked after asynchronous state
// changes (fetch completion), for UIs that need a redraw signal.
func WithOnUpdate(fn func()) Option {
	return func(c *Controller) { c.onUpdate = fn }
}

// NewController returns a controller in the idle state.
func NewController(fetch FetchFunc, opts ...Option) *Controller {
	c := &Controller{
		fetch:     fetch,
		debounce:  defaultDebounce,
		minChars:  defaultMinChars,
		highlight: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input handles a keystroke: the pending debounce timer is superseded
// and, when the trimmed query is long enough, a new fetch is armed.
func (c *Controller) Input(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = query
	c.gen++
	c.stopTimersLocked()
	c.items = nil
	c.highlight = -1

	if len(strings.TrimSpace(query)) < c.minChars {
		c.state = StateIdle
		return
	}

	c.state = StateTyping
	gen := c.gen
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(gen)
	})
}

// fire runs after the debounce interval. A keystroke since arming
// moved the generation on, in which case this fire is stale.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = StateFetching
	query := c.input
	c.mu.Unlock()

	items, err := c.fetch(context.Background(), query)

	c.mu.Lock()
	if gen != c.gen {
		// A newer request was issued while this one was in flight;
		// its response must not clobber fresher state.
		c.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		c.state = StateError
		c.items = nil
	case len(items) == 0:
		c.state = StateEmpty
		c.items = nil
	default:
		c.state = StateShown
		c.items = items
	}
	c.highlight = -1
	notify := c.onUpdate
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// MoveDown advances the highlighted suggestion, wrapping at the end.
// Ignored unless the dropdown is open and non-empty.
func (c *Controller) MoveDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateShown || len(c.items) == 0 {
		return
	}
	c.highlight = (c.highlight + 1) % len(c.items)
}

// MoveUp moves the highlight backwards, wrapping at the start.
func (c *Controller) MoveUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateShown || len(c.items) == 0 {
		return
	}
	c.highlight = (c.highlight - 1 + len(c.items)) % len(c.items)
}

// Enter selects the highlighted suggestion when one exists. With no
// highlight and no open dropdown it passes through to the submit
// handler.
func (c *Controller) Enter() {
	c.mu.Lock()
	if c.state == StateShown && c.highlight >= 0 && c.highlight < len(c.items) {
		c.selectLocked(c.highlight)
		return // selectLocked unlocks
	}
	open := c.state == StateShown
	submit := c.onSubmit
	input := c.input
	c.mu.Unlock()

	if !open && submit != nil {
		submit(input)
	}
}

// Select commits the suggestion at index i (mouse click path).
func (c *Controller) Select(i int) {
	c.mu.Lock()
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return
	}
	c.selectLocked(i)
}

// selectLocked commits a selection: the input takes the suggestion
// value, the dropdown closes, and onSelect fires exactly once.
// Unlocks the mutex before invoking the callback.
func (c *Controller) selectLocked(i int) {
	item := c.items[i]
	c.input = item.Value
	c.closeLocked()
	onSelect := c.onSelect
	c.mu.Unlock()

	if onSelect != nil {
		onSelect(item)
	}
}

// Escape closes the dropdown immediately.
func (c *Controller) Escape() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Blur closes the dropdown after a short grace delay, long enough for
// a click on a suggestion to land first.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blurTimer != nil {
		c.blurTimer.Stop()
	}
	c.blurTimer = time.AfterFunc(blurGraceDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closeLocked()
	})
}

// Close closes the dropdown immediately (outside-click path).
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	c.gen++
	c.stopTimersLocked()
	c.state = StateClosed
	c.items = nil
	c.highlight = -1
}

func (c *Controller) stopTimersLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.blurTimer != nil {
		c.blurTimer.Stop()
		c.blurTimer = nil
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Value returns the current committed input value.
func (c *Controller) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Items returns the suggestions currently shown.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// Highlight returns the highlighted index, -1 when none.
func (c *Controller) Highlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highlight
}
