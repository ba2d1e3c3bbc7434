package suggest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testFetcher records queries and serves canned items, optionally
// blocking until released per query.
type testFetcher struct {
	calls   atomic.Int32
	items   []Item
	release map[string]chan struct{}
}

func (f *testFetcher) fetch(ctx context.Context, query string) ([]Item, error) {
	f.calls.Add(1)
	if ch, ok := f.release[query]; ok {
		<-ch
	}
	out := make([]Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, Item{Value: query + ":" + it.Value, UsageCount: it.UsageCount})
	}
	return out, nil
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.Equal(t, want, c.State())
}

func TestController_ShortQueryNeverFetches(t *testing.T) {
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch, WithDebounce(5*time.Millisecond))

	c.Input("p")
	c.Input(" p ") // trimmed length 1
	time.Sleep(30 * time.Millisecond)

	require.Equal(t, StateIdle, c.State())
	require.Zero(t, f.calls.Load())
}

func TestController_DebounceSupersedesPendingTimer(t *testing.T) {
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch, WithDebounce(25*time.Millisecond))

	// Rapid keystrokes inside the debounce window collapse into one
	// fetch for the final query.
	c.Input("ph")
	time.Sleep(5 * time.Millisecond)
	c.Input("phu")
	time.Sleep(5 * time.Millisecond)
	c.Input("phuk")

	waitState(t, c, StateShown)
	require.Equal(t, int32(1), f.calls.Load())
	require.Equal(t, "phuk:a", c.Items()[0].Value)
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	f := &testFetcher{
		items:   []Item{{Value: "a"}},
		release: map[string]chan struct{}{"slow": make(chan struct{})},
	}
	c := NewController(f.fetch, WithDebounce(time.Millisecond))

	c.Input("slow")
	// Give the slow fetch time to start, then type again.
	time.Sleep(20 * time.Millisecond)
	c.Input("fast")
	waitState(t, c, StateShown)
	require.Equal(t, "fast:a", c.Items()[0].Value)

	// Now the superseded response arrives; it must not clobber the
	// fresher view.
	close(f.release["slow"])
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, StateShown, c.State())
	require.Equal(t, "fast:a", c.Items()[0].Value)
}

func TestController_EmptyResult(t *testing.T) {
	f := &testFetcher{}
	c := NewController(f.fetch, WithDebounce(time.Millisecond))

	c.Input("nothing")
	waitState(t, c, StateEmpty)
	require.Empty(t, c.Items())
}

func TestController_FetchErrorState(t *testing.T) {
	c := NewController(func(ctx context.Context, q string) ([]Item, error) {
		return nil, context.DeadlineExceeded
	}, WithDebounce(time.Millisecond))

	c.Input("broken")
	waitState(t, c, StateError)
}

func TestController_KeyboardNavigationWraps(t *testing.T) {
	f := &testFetcher{items: []Item{{Value: "a"}, {Value: "b"}, {Value: "c"}}}
	c := NewController(f.fetch, WithDebounce(time.Millisecond))

	c.Input("pier")
	waitState(t, c, StateShown)
	require.Equal(t, -1, c.Highlight())

	c.MoveDown()
	require.Equal(t, 0, c.Highlight())
	c.MoveDown()
	c.MoveDown()
	require.Equal(t, 2, c.Highlight())
	c.MoveDown() // wraps to the top
	require.Equal(t, 0, c.Highlight())

	c.MoveUp() // wraps to the bottom
	require.Equal(t, 2, c.Highlight())
}

func TestController_NavigationIgnoredWhileClosed(t *testing.T) {
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch, WithDebounce(time.Millisecond))

	c.MoveDown()
	require.Equal(t, -1, c.Highlight())

	c.Input("pier")
	waitState(t, c, StateShown)
	c.Escape()
	c.MoveDown()
	require.Equal(t, -1, c.Highlight())
	require.Equal(t, StateClosed, c.State())
}

func TestController_EnterSelectsHighlighted(t *testing.T) {
	var selected []Item
	f := &testFetcher{items: []Item{{Value: "a"}, {Value: "b"}}}
	c := NewController(f.fetch,
		WithDebounce(time.Millisecond),
		WithOnSelect(func(it Item) { selected = append(selected, it) }),
	)

	c.Input("pier")
	waitState(t, c, StateShown)
	c.MoveDown()
	c.MoveDown()
	c.Enter()

	// Selection commits the value, closes the dropdown, and fires
	// onSelect exactly once.
	require.Len(t, selected, 1)
	require.Equal(t, "pier:b", selected[0].Value)
	require.Equal(t, "pier:b", c.Value())
	require.Equal(t, StateClosed, c.State())

	// Enter again must not re-fire the selection.
	c.Enter()
	require.Len(t, selected, 1)
}

func TestController_EnterPassthroughWhenClosed(t *testing.T) {
	var submitted []string
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch,
		WithDebounce(time.Millisecond),
		WithOnSubmit(func(v string) { submitted = append(submitted, v) }),
	)

	c.Input("x") // below min chars, dropdown never opens
	c.Enter()
	require.Equal(t, []string{"x"}, submitted)
}

func TestController_EnterNoHighlightDoesNothingWhileOpen(t *testing.T) {
	var submitted []string
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch,
		WithDebounce(time.Millisecond),
		WithOnSubmit(func(v string) { submitted = append(submitted, v) }),
	)

	c.Input("pier")
	waitState(t, c, StateShown)
	c.Enter()
	require.Empty(t, submitted)
	require.Equal(t, StateShown, c.State())
}

func TestController_ClickSelect(t *testing.T) {
	var count atomic.Int32
	f := &testFetcher{items: []Item{{Value: "a"}, {Value: "b"}}}
	c := NewController(f.fetch,
		WithDebounce(time.Millisecond),
		WithOnSelect(func(Item) { count.Add(1) }),
	)

	c.Input("pier")
	waitState(t, c, StateShown)
	c.Select(1)
	require.Equal(t, int32(1), count.Load())
	require.Equal(t, "pier:b", c.Value())

	// Out-of-range clicks are ignored.
	c.Select(5)
	require.Equal(t, int32(1), count.Load())
}

func TestController_BlurGraceAllowsClick(t *testing.T) {
	var count atomic.Int32
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch,
		WithDebounce(time.Millisecond),
		WithOnSelect(func(Item) { count.Add(1) }),
	)

	c.Input("pier")
	waitState(t, c, StateShown)

	// A click that lands within the blur grace period still selects.
	c.Blur()
	c.Select(0)
	require.Equal(t, int32(1), count.Load())

	time.Sleep(2 * blurGraceDelay)
	require.Equal(t, StateClosed, c.State())
}

func TestController_EscapeCancelsPendingFetch(t *testing.T) {
	f := &testFetcher{items: []Item{{Value: "a"}}}
	c := NewController(f.fetch, WithDebounce(20*time.Millisecond))

	c.Input("pier")
	c.Escape()
	time.Sleep(60 * time.Millisecond)

	require.Equal(t, StateClosed, c.State())
	require.Zero(t, f.calls.Load())
}
