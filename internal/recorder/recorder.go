// Package recorder observes raw pointer and keyboard events system-wide and
// translates them into the replayable step stream, without blocking the
// observed application.
package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// recordTimeoutSec is the classic-find timeout stamped on every emitted step
// so hand-editing a recorded macro into classic form keeps working.
const recordTimeoutSec = 20

// Recorder captures user interactions into macro steps until the stop
// hotkey fires. One Recorder records one session; it is not reusable.
//
// Concurrency model: the pointer and keyboard listeners plus the idle-flush
// poller run as three goroutines. All state transitions serialize through
// one mutex, and each transition appends fully or appends nothing, so steps
// land in strict chronological order of the triggering event. Accessibility
// lookups happen before the lock is taken, never inside it.
type Recorder struct {
	auto   platform.Automation
	events platform.EventSource
	cfg    config.RecorderConfig
	log    *zap.Logger
	now    func() time.Time

	mu           sync.Mutex
	steps        []macro.Step
	buf          []rune
	lastSelector *selector.Selector
	lastKeyAt    time.Time // zero when no typing run is pending
	lastStepAt   time.Time // zero before the first emitted step

	stop     chan struct{}
	stopOnce sync.Once
}

// New wires a recorder over the given engine and event source.
func New(auto platform.Automation, events platform.EventSource, cfg config.RecorderConfig, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		auto:   auto,
		events: events,
		cfg:    cfg,
		log:    log.With(zap.String("recording_id", uuid.NewString())),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// Run records until the stop hotkey fires or ctx is cancelled, then flushes
// any outstanding typing run and returns the accumulated steps.
func (r *Recorder) Run(ctx context.Context) ([]macro.Step, error) {
	pointerCh, err := r.events.Pointer()
	if err != nil {
		return nil, err
	}
	keyCh, err := r.events.Keys()
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for ev := range pointerCh {
			r.onPointer(ev)
		}
	}()

	go func() {
		defer wg.Done()
		for ev := range keyCh {
			r.onKey(ev)
		}
	}()

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Duration(r.cfg.PollMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.idleFlush()
			}
		}
	}()

	r.log.Info("passive recording started; press the stop hotkey to finish")

	select {
	case <-r.stop:
	case <-ctx.Done():
		r.signalStop()
	}

	// Tear down the listeners; their channels close and the consumer
	// goroutines drain out.
	if err := r.events.Close(); err != nil {
		r.log.Warn("event source close failed", zap.Error(err))
	}
	wg.Wait()

	// Final flush of any remaining typing run.
	r.mu.Lock()
	r.flushTypeLocked(false)
	steps := make([]macro.Step, len(r.steps))
	copy(steps, r.steps)
	r.mu.Unlock()

	r.log.Info("recording stopped", zap.Int("steps", len(steps)))
	return steps, ctx.Err()
}

func (r *Recorder) signalStop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// onPointer handles a raw pointer event. Only left-button presses record; a
// click always implies a focus change, so any pending typing run is flushed
// first.
func (r *Recorder) onPointer(ev platform.PointerEvent) {
	if ev.Button != platform.ButtonLeft || !ev.Pressed {
		return
	}

	// Resolve the clicked point to a selector before taking the lock.
	// A lookup failure degrades to a coordinates-only click step and
	// recording continues; system UI is often invisible to the tree.
	var sel *selector.Selector
	if el, err := r.auto.ElementFromPoint(ev.X, ev.Y); err == nil {
		if built, err := selector.BuildForElement(r.auto, el); err == nil {
			sel = &built
		} else {
			r.log.Debug("selector build failed; recording coordinates only",
				zap.Int("x", ev.X), zap.Int("y", ev.Y), zap.Error(err))
		}
	} else {
		r.log.Debug("element lookup failed; recording coordinates only",
			zap.Int("x", ev.X), zap.Int("y", ev.Y), zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushTypeLocked(false)
	r.lastSelector = sel

	args := map[string]interface{}{
		"x":            ev.X,
		"y":            ev.Y,
		"timeout":      recordTimeoutSec,
		"delay_before": r.takeDelayMsLocked(),
	}
	if sel != nil {
		args["selector_candidates"] = []interface{}{*sel}
	}
	r.steps = append(r.steps, macro.Step{Action: macro.ActionClick, Args: args})
}

// onKey handles a raw key event.
func (r *Recorder) onKey(ev platform.KeyEvent) {
	switch ev.Kind {
	case platform.KeyStop:
		r.mu.Lock()
		r.flushTypeLocked(false)
		r.mu.Unlock()
		r.signalStop()

	case platform.KeyEnter:
		r.mu.Lock()
		r.flushTypeLocked(true)
		r.mu.Unlock()

	case platform.KeyPrintable:
		r.mu.Lock()
		r.buf = append(r.buf, ev.Rune)
		r.lastKeyAt = r.now()
		r.mu.Unlock()

	default:
		// Arrows, backspace, modifiers: a context change. Flush the
		// pending run; the key itself is discarded.
		r.mu.Lock()
		r.flushTypeLocked(false)
		r.mu.Unlock()
	}
}

// idleFlush commits a typing run that has sat idle past the configured
// interval.
func (r *Recorder) idleFlush() {
	idle := time.Duration(r.cfg.IdleFlushMs) * time.Millisecond

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) == 0 || r.lastKeyAt.IsZero() {
		return
	}
	if r.now().Sub(r.lastKeyAt) > idle {
		r.flushTypeLocked(false)
	}
}

// flushTypeLocked commits the pending typing run as a type step. The caller
// must hold r.mu. A flush either fully appends a step or appends nothing.
func (r *Recorder) flushTypeLocked(enter bool) {
	if len(r.buf) == 0 && !enter {
		return
	}
	text := string(r.buf)
	if r.lastSelector != nil || text != "" {
		candidates := []interface{}{}
		if r.lastSelector != nil {
			candidates = append(candidates, *r.lastSelector)
		}
		r.steps = append(r.steps, macro.Step{
			Action: macro.ActionType,
			Args: map[string]interface{}{
				"selector_candidates": candidates,
				"text":                text,
				"enter":               enter,
				"timeout":             recordTimeoutSec,
				"delay_before":        r.takeDelayMsLocked(),
			},
		})
	}
	r.buf = r.buf[:0]
	r.lastKeyAt = time.Time{}
}

// takeDelayMsLocked returns the elapsed milliseconds since the previous
// emitted step and resets the timer. The caller must hold r.mu.
func (r *Recorder) takeDelayMsLocked() int {
	now := r.now()
	delay := 0
	if !r.lastStepAt.IsZero() {
		delay = int(now.Sub(r.lastStepAt) / time.Millisecond)
	}
	r.lastStepAt = now
	return delay
}
