// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects events until no new event arrives for the window, then
// delivers them together. Repeated events for one path collapse to the
// latest, except that a created file stays created.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending map[string]Event
	onFlush func([]Event)
	stopped bool
}

// NewDebouncer creates a debouncer that calls onFlush with the settled
// events, sorted by path.
func NewDebouncer(window time.Duration, onFlush func([]Event)) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]Event),
		onFlush: onFlush,
	}
}

// Add records an event and restarts the window.
func (d *Debouncer) Add(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[ev.Path]; ok && prev.Op == OpCreated && ev.Op == OpModified {
		ev.Op = OpCreated
	}
	d.pending[ev.Path] = ev

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.Flush)
}

// Flush delivers pending events immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}

	events := make([]Event, 0, len(d.pending))
	for _, ev := range d.pending {
		events = append(events, ev)
	}
	d.pending = make(map[string]Event)
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	// onFlush runs outside the lock so it may call Add.
	if d.onFlush != nil {
		d.onFlush(events)
	}
}

// Stop discards pending events and rejects new ones. It returns the number
// of events dropped.
func (d *Debouncer) Stop() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return 0
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	dropped := len(d.pending)
	d.pending = make(map[string]Event)
	return dropped
}

// Pending returns the number of paths waiting to be delivered.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
