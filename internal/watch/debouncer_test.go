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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecorder struct {
	mu      sync.Mutex
	batches [][]Event
}

func (r *flushRecorder) record(events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *flushRecorder) get() [][]Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

func TestDebouncer_SingleEvent(t *testing.T) {
	rec := &flushRecorder{}
	debouncer := NewDebouncer(50*time.Millisecond, rec.record)
	defer debouncer.Stop()

	debouncer.Add(NewEvent("/tmp/disk.trigger.yaml", OpModified, false))

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 10*time.Millisecond)
	batch := rec.get()[0]
	require.Len(t, batch, 1)
	assert.Equal(t, "/tmp/disk.trigger.yaml", batch[0].Path)
	assert.Equal(t, "disk.trigger.yaml", batch[0].Name)
	assert.Equal(t, OpModified, batch[0].Op)
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	rec := &flushRecorder{}
	debouncer := NewDebouncer(80*time.Millisecond, rec.record)
	defer debouncer.Stop()

	debouncer.Add(NewEvent("/tmp/b.yaml", OpCreated, false))
	time.Sleep(10 * time.Millisecond)
	debouncer.Add(NewEvent("/tmp/a.yaml", OpModified, false))
	time.Sleep(10 * time.Millisecond)
	debouncer.Add(NewEvent("/tmp/b.yaml", OpModified, false))
	assert.Equal(t, 2, debouncer.Pending())

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Len(t, rec.get(), 1, "a burst must produce one batch")

	batch := rec.get()[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "/tmp/a.yaml", batch[0].Path)
	assert.Equal(t, "/tmp/b.yaml", batch[1].Path)
	assert.Equal(t, OpCreated, batch[1].Op, "a created file stays created")
	assert.Equal(t, 0, debouncer.Pending())
}

func TestDebouncer_LatestOpWins(t *testing.T) {
	rec := &flushRecorder{}
	debouncer := NewDebouncer(time.Hour, rec.record)
	defer debouncer.Stop()

	debouncer.Add(NewEvent("/tmp/a.yaml", OpModified, false))
	debouncer.Add(NewEvent("/tmp/a.yaml", OpDeleted, false))
	debouncer.Flush()

	require.Len(t, rec.get(), 1)
	assert.Equal(t, OpDeleted, rec.get()[0][0].Op)
}

func TestDebouncer_Stop(t *testing.T) {
	rec := &flushRecorder{}
	debouncer := NewDebouncer(50*time.Millisecond, rec.record)

	debouncer.Add(NewEvent("/tmp/a.yaml", OpModified, false))
	debouncer.Add(NewEvent("/tmp/b.yaml", OpModified, false))
	assert.Equal(t, 2, debouncer.Stop())
	assert.Equal(t, 0, debouncer.Stop())

	debouncer.Add(NewEvent("/tmp/c.yaml", OpModified, false))
	debouncer.Flush()
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, rec.get())
	assert.Equal(t, 0, debouncer.Pending())
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	rec := &flushRecorder{}
	debouncer := NewDebouncer(time.Hour, rec.record)
	debouncer.Flush()
	assert.Empty(t, rec.get())
}
