package utils

import (
	"sync"
	"time"
)

// Debouncer delays calls per key. A new call for a key cancels the one
// still pending for it. The zero value is ready to use.
type Debouncer struct {
	mutex   sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// Debounce calls fn after duration unless Debounce is called again for the
// same key first.
func (d *Debouncer) Debounce(key string, duration time.Duration, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}
	if d.timers == nil {
		d.timers = make(map[string]*time.Timer)
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(duration, func() {
		d.mutex.Lock()
		current := d.timers[key] == timer
		if current {
			delete(d.timers, key)
		}
		d.mutex.Unlock()
		if current {
			fn()
		}
	})
	d.timers[key] = timer
}

// Pending reports whether a call for key is waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Stop cancels every pending call. Later calls to Debounce are ignored.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
