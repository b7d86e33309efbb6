package highlight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is the quiet period before a submitted text is highlighted.
const DefaultDebounce = 50 * time.Millisecond

// Result is a completed background highlight.
type Result struct {
	// Seq is the submission number, increasing with each Submit.
	Seq      uint64
	Language string
	Text     string
	Runs     []Run
}

type request struct {
	seq      uint64
	language string
	text     string
}

// Debouncer highlights the most recently submitted text off the caller's
// goroutine once submissions pause. A pass in flight is not cancelled;
// its result is dropped if a newer one has already been published.
type Debouncer struct {
	h     *Highlighter
	delay time.Duration

	mu      sync.Mutex
	pending *request
	timer   *time.Timer
	seq     uint64
	closed  bool

	latest  atomic.Pointer[Result]
	kick    chan struct{}
	updates chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDebouncer starts a background worker for h. A delay of zero or less
// selects DefaultDebounce.
func NewDebouncer(h *Highlighter, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Debouncer{
		h:       h,
		delay:   delay,
		kick:    make(chan struct{}, 1),
		updates: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

// Submit schedules text for highlighting, replacing any pending text.
// It returns the submission's sequence number, or 0 after Close.
func (d *Debouncer) Submit(language, text string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0
	}
	d.seq++
	d.pending = &request{seq: d.seq, language: language, text: text}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
	return d.seq
}

// Latest returns the newest completed result, or nil. It may be older
// than the last submission.
func (d *Debouncer) Latest() *Result {
	return d.latest.Load()
}

// Updates signals each time a new result is published. Signals coalesce.
func (d *Debouncer) Updates() <-chan struct{} {
	return d.updates
}

// Flush highlights any pending text now, bypassing the quiet period.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}

// Close stops the worker and waits for a pass in flight to finish.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Debouncer) fire() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

func (d *Debouncer) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.kick:
		}

		d.mu.Lock()
		req := d.pending
		d.pending = nil
		d.mu.Unlock()
		if req == nil {
			continue
		}

		runs := d.h.Highlight(req.language, req.text)
		d.publish(&Result{Seq: req.seq, Language: req.language, Text: sanitize(req.text), Runs: runs})
	}
}

func (d *Debouncer) publish(r *Result) {
	for {
		cur := d.latest.Load()
		if cur != nil && cur.Seq >= r.Seq {
			return
		}
		if d.latest.CompareAndSwap(cur, r) {
			break
		}
	}
	select {
	case d.updates <- struct{}{}:
	default:
	}
}
