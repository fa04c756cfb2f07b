package autosave

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Key identifies the entity a buffered edit belongs to. Edits are coalesced
// per entry, not per field: the whole entry is re-sent on flush.
type Key struct {
	CourseSlotID uuid.UUID
	Date         string // "2006-01-02"
}

func NewKey(courseSlotID uuid.UUID, date time.Time) Key {
	return Key{CourseSlotID: courseSlotID, Date: date.UTC().Format("2006-01-02")}
}

type (
	// FlushFunc persists a buffered payload. A flush already in transit cannot
	// be aborted, only superseded by a later one.
	FlushFunc func(key Key, payload interface{}) error

	// ErrorFunc is told about a failed flush; the payload stays buffered for
	// the next edit or an explicit Flush to resend.
	ErrorFunc func(key Key, err error)

	pending struct {
		timer   *time.Timer
		payload interface{}
	}

	// Pipeline debounces persistence of in-progress edits. Every Queue on a key
	// resets that key's timer (debounce, not throttle): only the last edit
	// within the window is flushed. Distinct keys never coalesce.
	Pipeline struct {
		mu      sync.Mutex
		delay   time.Duration
		flush   FlushFunc
		onError ErrorFunc
		buf     map[Key]*pending
		closed  bool
	}
)

func NewPipeline(delay time.Duration, flush FlushFunc, onError ErrorFunc) *Pipeline {
	if delay <= 0 {
		delay = time.Second
	}
	return &Pipeline{
		delay:   delay,
		flush:   flush,
		onError: onError,
		buf:     make(map[Key]*pending),
	}
}

// Queue buffers `payload` under `key` and (re)starts the key's timer,
// cancelling any previously pending save for that key.
func (p *Pipeline) Queue(key Key, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	if pnd, ok := p.buf[key]; ok {
		pnd.payload = payload
		if pnd.timer != nil {
			pnd.timer.Stop()
			pnd.timer.Reset(p.delay)
		} else { // retained failed flush; a fresh edit re-arms it
			pnd.timer = time.AfterFunc(p.delay, func() { p.fire(key) })
		}
		return
	}
	pnd := &pending{payload: payload}
	pnd.timer = time.AfterFunc(p.delay, func() { p.fire(key) })
	p.buf[key] = pnd
}

// Flush persists the pending payload of `key` immediately, if any.
func (p *Pipeline) Flush(key Key) error {
	payload, ok := p.take(key)
	if !ok {
		return nil
	}
	return p.doFlush(key, payload)
}

// Cancel drops the pending save of `key` without persisting it.
func (p *Pipeline) Cancel(key Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pnd, ok := p.buf[key]; ok {
		if pnd.timer != nil {
			pnd.timer.Stop()
		}
		delete(p.buf, key)
	}
}

// Pending reports whether an unsaved edit is buffered for `key`.
func (p *Pipeline) Pending(key Key) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.buf[key]
	return ok
}

// Len returns the number of keys with buffered edits.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Close flushes all pending edits and rejects further queueing. Shutdown path.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	keys := make([]Key, 0, len(p.buf))
	for key, pnd := range p.buf {
		if pnd.timer != nil {
			pnd.timer.Stop()
		}
		keys = append(keys, key)
	}
	p.mu.Unlock()

	for _, key := range keys {
		payload, ok := p.take(key)
		if !ok {
			continue
		}
		_ = p.doFlush(key, payload)
	}
}

func (p *Pipeline) fire(key Key) {
	payload, ok := p.take(key)
	if !ok { // superseded or cancelled in the meantime
		return
	}
	_ = p.doFlush(key, payload)
}

func (p *Pipeline) take(key Key) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pnd, ok := p.buf[key]
	if !ok {
		return nil, false
	}
	if pnd.timer != nil {
		pnd.timer.Stop()
	}
	delete(p.buf, key)
	return pnd.payload, true
}

func (p *Pipeline) doFlush(key Key, payload interface{}) error {
	err := p.flush(key, payload)
	if err == nil {
		return nil
	}

	// keep the failed payload around for a resend, unless a newer edit
	// arrived while the flush was in transit; no automatic retry, the next
	// edit or an explicit Flush picks it up
	p.mu.Lock()
	if _, ok := p.buf[key]; !ok && !p.closed {
		p.buf[key] = &pending{payload: payload}
	}
	p.mu.Unlock()

	if p.onError != nil {
		p.onError(key, err)
	}
	return err
}
