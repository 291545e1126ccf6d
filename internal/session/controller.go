package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidstyle/internal/media"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/desertthunder/vidstyle/internal/styles"
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultStep     = 2
	maxProgress     = 100
)

// Options configures a [Controller].
type Options struct {
	ID        string          // Session ID (default: generated)
	Catalog   *styles.Catalog // Preset table (default: [styles.Default])
	Previews  media.Previews  // Preview locator source (required)
	Scheduler Scheduler       // Tick source (default: [TickerScheduler])
	Interval  time.Duration   // Tick period (default: 100ms)
	Step      int             // Progress per tick (default: 2)
	Logger    *log.Logger
	Now       func() time.Time
}

// Controller is the state machine of one transform session.
type Controller struct {
	id        string
	catalog   *styles.Catalog
	previews  media.Previews
	scheduler Scheduler
	interval  time.Duration
	step      int
	logger    *log.Logger
	now       func() time.Time

	mu         sync.Mutex
	style      *models.StylePreset
	media      *models.Media
	locator    media.Locator
	processing bool
	progress   int
	run        uint64
	cancel     func()
	closed     bool
	version    uint64
	lastActive time.Time

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func(Event)
	nextSub  int
}

// New creates a controller in the Idle state.
func New(opts Options) (*Controller, error) {
	if opts.Previews == nil {
		return nil, fmt.Errorf("%w: previews are required", shared.ErrInvalidConfig)
	}
	if opts.ID == "" {
		opts.ID = shared.GenerateID()
	}
	if opts.Catalog == nil {
		opts.Catalog = styles.Default()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTickerScheduler(context.Background())
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Step <= 0 || opts.Step > maxProgress {
		opts.Step = DefaultStep
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		id:         opts.ID,
		catalog:    opts.Catalog,
		previews:   opts.Previews,
		scheduler:  opts.Scheduler,
		interval:   opts.Interval,
		step:       opts.Step,
		logger:     shared.WithLogger(opts.Logger, "session", opts.ID),
		now:        opts.Now,
		lastActive: opts.Now(),
		subs:       make(map[int]func(Event)),
	}, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Catalog returns the preset table injected into this controller.
func (c *Controller) Catalog() *styles.Catalog { return c.catalog }

// SelectStyle sets the selected preset.
//
// Reselecting the current preset changes nothing. The preset cannot change while a transform is
// running, so the run always matches the displayed style. Progress is left alone, so a finished
// session stays [Complete] under the new preset until the next run starts.
func (c *Controller) SelectStyle(id models.StyleID) error {
	preset, err := c.catalog.Must(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shared.ErrSessionClosed
	}
	c.lastActive = c.now()
	if c.processing {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot change style to %q", shared.ErrProcessing, id)
	}
	if c.style != nil && c.style.ID == id {
		c.mu.Unlock()
		return nil
	}

	c.style = &preset
	events := []Event{c.eventLocked(StyleSelected)}
	c.publishAndUnlock(events)

	c.logger.Debug("style selected", "style", id)
	return nil
}

// SelectMedia accepts a video upload, derives its preview locator, and releases the previous one.
//
// Non-video uploads are rejected with [shared.ErrUnsupportedMedia] and leave the session unchanged.
// Accepting media always resets progress and stops any running transform.
func (c *Controller) SelectMedia(upload media.Upload) error {
	if !media.IsVideo(upload.ContentType) {
		return fmt.Errorf("%w: %q is not a video", shared.ErrUnsupportedMedia, upload.ContentType)
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return shared.ErrSessionClosed
	}

	// copying the upload can be slow, so the lock is not held here
	loc, err := c.previews.Acquire(upload)
	if err != nil {
		return fmt.Errorf("failed to acquire preview: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.release(loc)
		return shared.ErrSessionClosed
	}
	c.lastActive = c.now()

	var events []Event
	if ev, ok := c.stopRunLocked(); ok {
		events = append(events, ev)
	}

	previous := c.locator
	meta := loc.Media()
	c.media = &meta
	c.locator = loc
	c.progress = 0
	events = append(events, c.eventLocked(MediaChanged))
	c.publishAndUnlock(events)

	c.release(previous)
	c.logger.Info("media selected", "name", meta.Name, "size", shared.FormatMegabytes(meta.Size))
	return nil
}

// ClearMedia releases the preview locator and returns the session to Idle.
func (c *Controller) ClearMedia() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shared.ErrSessionClosed
	}
	c.lastActive = c.now()
	if c.media == nil {
		c.mu.Unlock()
		return nil
	}

	var events []Event
	if ev, ok := c.stopRunLocked(); ok {
		events = append(events, ev)
	}

	previous := c.locator
	c.media = nil
	c.locator = nil
	c.progress = 0
	events = append(events, c.eventLocked(MediaCleared))
	c.publishAndUnlock(events)

	c.release(previous)
	c.logger.Info("media cleared")
	return nil
}

// StartTransform begins a simulated transform.
//
// It fails with [shared.ErrNotReady] unless both a style and media are selected, and with
// [shared.ErrProcessing] while a run is in progress. Neither failure changes the session.
func (c *Controller) StartTransform() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return shared.ErrSessionClosed
	}
	c.lastActive = c.now()

	switch {
	case c.processing:
		c.mu.Unlock()
		return shared.ErrProcessing
	case c.style == nil || c.media == nil:
		c.mu.Unlock()
		return shared.ErrNotReady
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.run++
	run := c.run
	c.processing = true
	c.progress = 0
	c.cancel = c.scheduler.Every(c.interval, func() { c.advance(run) })

	events := []Event{c.eventLocked(TransformStarted)}
	style := c.style.ID
	c.publishAndUnlock(events)

	c.logger.Info("transform started", "style", style, "run", run)
	return nil
}

// advance moves the given run forward by one step. Ticks from stale runs are ignored.
func (c *Controller) advance(run uint64) {
	c.mu.Lock()
	if c.closed || !c.processing || run != c.run {
		c.mu.Unlock()
		return
	}

	c.progress = min(c.progress+c.step, maxProgress)
	completed := c.progress == maxProgress
	if completed {
		c.processing = false
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
	}

	events := []Event{c.eventLocked(ProgressAdvanced)}
	if completed {
		events = append(events, c.eventLocked(TransformCompleted))
	}
	c.publishAndUnlock(events)

	if completed {
		c.logger.Info("transform complete", "run", run)
	}
}

// Close tears the session down: the running transform is cancelled, the preview locator is released,
// and subscribers receive a final [SessionClosed] event. Later calls are no-ops.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	var events []Event
	if ev, ok := c.stopRunLocked(); ok {
		events = append(events, ev)
	}

	previous := c.locator
	c.locator = nil
	c.closed = true
	events = append(events, c.eventLocked(SessionClosed))
	c.publishAndUnlock(events)

	c.subsMu.Lock()
	clear(c.subs)
	c.subsMu.Unlock()

	c.logger.Debug("session closed")
	if previous != nil {
		if err := previous.Release(); err != nil {
			return fmt.Errorf("failed to release preview: %w", err)
		}
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Closed reports whether [Controller.Close] has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// IdleSince reports whether the session has had no activity since cutoff and is not processing.
func (c *Controller) IdleSince(cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.processing && c.lastActive.Before(cutoff)
}

// Subscribe registers fn for change notifications and returns a function that removes it.
//
// Callbacks run in event order while deliveries are serialized. They may read the controller
// ([Controller.Snapshot], [Controller.Closed]) but must not call SelectStyle, SelectMedia, ClearMedia,
// StartTransform or Close: those wait on the delivery in progress and would deadlock. Hand the work
// to another goroutine instead.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// stopRunLocked cancels a running transform and reports the cancellation event, if any.
func (c *Controller) stopRunLocked() (Event, bool) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if !c.processing {
		return Event{}, false
	}

	reached := c.progress
	c.processing = false
	ev := c.eventLocked(TransformCancelled)
	ev.Reached = reached
	c.logger.Info("transform cancelled", "run", c.run, "progress", reached)
	return ev, true
}

// eventLocked bumps the version and captures the event's snapshot.
func (c *Controller) eventLocked(kind EventKind) Event {
	c.version++
	return Event{Kind: kind, Snapshot: c.snapshotLocked(), Run: c.run}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:  c.id,
		Version:    c.version,
		Processing: c.processing,
		Progress:   c.progress,
	}

	if c.style != nil {
		style := c.style.Clone()
		snap.Style = &style
	}
	if c.media != nil {
		m := *c.media
		snap.Media = &m
		snap.MediaSize = mediaSize(&m)
	}
	if c.locator != nil {
		snap.PreviewURL = c.locator.URL()
	}

	snap.State = deriveState(c.style != nil, c.media != nil, c.processing, c.progress)
	snap.CanTransform = c.style != nil && c.media != nil && !c.processing
	snap.ActionLabel = actionLabel(c.style, c.processing)
	return snap
}

// publishAndUnlock releases the state lock and delivers events in mutation order.
//
// notifyMu is taken before mu is released, so deliveries cannot overtake each other.
func (c *Controller) publishAndUnlock(events []Event) {
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.subsMu.Lock()
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (c *Controller) release(loc media.Locator) {
	if loc == nil {
		return
	}
	if err := loc.Release(); err != nil {
		c.logger.Warn("failed to release preview", "token", loc.Token(), "error", err)
	}
}
