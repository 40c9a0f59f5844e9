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

package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tombee/exprmigrate/pkg/errors"
)

func float(v float64) *float64 { return &v }

func TestTrigger_ResolveType(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    string
	}{
		{"explicit type kept", Trigger{TriggerType: TypeFalling, Expression: "t1 > 0 ? ERROR : OK"}, TypeFalling},
		{"expression", Trigger{Expression: "t1 > 0 ? ERROR : OK"}, TypeExpression},
		{"unknown type falls through", Trigger{TriggerType: "sideways", Expression: "t1"}, TypeExpression},
		{"rising thresholds", Trigger{WarnValue: float(10), ErrorValue: float(20)}, TypeRising},
		{"falling thresholds", Trigger{WarnValue: float(20), ErrorValue: float(10)}, TypeFalling},
		{"equal thresholds", Trigger{WarnValue: float(10), ErrorValue: float(10)}, ""},
		{"one threshold", Trigger{ErrorValue: float(10)}, ""},
		{"nothing", Trigger{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.ResolveType())
		})
	}
}

func TestTrigger_SameIdentity(t *testing.T) {
	a := &Trigger{Name: "disk", Targets: []string{"a.*", "b.*"}, Tags: []string{"infra"}}

	b := &Trigger{Name: "disk"}
	b.AddTarget("b.*")
	b.AddTarget("a.*")
	b.AddTag("infra")
	assert.True(t, a.SameIdentity(b))

	b.AddTag("db")
	assert.False(t, a.SameIdentity(b))

	c := &Trigger{Name: "cpu", Targets: a.Targets, Tags: a.Tags}
	assert.False(t, a.SameIdentity(c))

	d := &Trigger{Name: "disk", Targets: []string{"a.*", "a.*"}, Tags: []string{"infra"}}
	assert.False(t, a.SameIdentity(d))
}

func TestTrigger_ApplyDefaults(t *testing.T) {
	tr := &Trigger{Name: "disk"}
	tr.applyDefaults()

	require.NotNil(t, tr.TTL)
	assert.Equal(t, DefaultTTL, *tr.TTL)
	assert.Equal(t, StateNoData, tr.TTLState)
	assert.Equal(t, DefaultSchedule(), tr.Schedule)
	assert.NotNil(t, tr.Tags)
	assert.NotNil(t, tr.Targets)
	assert.NotNil(t, tr.Parents)
	assert.NotNil(t, tr.Saturation)

	ttl := 60
	custom := &Trigger{TTL: &ttl, TTLState: StateOK}
	custom.applyDefaults()
	assert.Equal(t, 60, *custom.TTL)
	assert.Equal(t, StateOK, custom.TTLState)
}

func TestTrigger_Validate(t *testing.T) {
	valid := func() *Trigger {
		tr := &Trigger{Name: "disk", Targets: []string{"servers.*.disk"}}
		tr.applyDefaults()
		return tr
	}

	tests := []struct {
		name   string
		mutate func(*Trigger)
		field  string
	}{
		{"no name", func(tr *Trigger) { tr.Name = "" }, "name"},
		{"no targets", func(tr *Trigger) { tr.Targets = nil }, "targets"},
		{"bad ttl state", func(tr *Trigger) { tr.TTLState = "PANIC" }, "ttl_state"},
		{"bad type", func(tr *Trigger) { tr.TriggerType = "sideways" }, "trigger_type"},
		{"untyped saturation", func(tr *Trigger) { tr.Saturation = []Saturation{{}} }, "saturation[0].type"},
		{"bad schedule", func(tr *Trigger) { tr.Schedule.EndOffset = 1440 }, "sched.endOffset"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid()
			tt.mutate(tr)

			err := tr.Validate()
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
}

func TestTrigger_Clone(t *testing.T) {
	fallback := "none"
	ttl := 60
	orig := &Trigger{
		Name:       "disk",
		Targets:    []string{"a"},
		TTL:        &ttl,
		Schedule:   &Schedule{Days: []Day{{Name: "Mon"}}},
		Saturation: []Saturation{{Type: "check", Fallback: &fallback, ExtraParameters: map[string]interface{}{"k": "v"}}},
	}

	c := orig.Clone()
	assert.Equal(t, orig, c)

	c.Targets[0] = "b"
	*c.TTL = 1
	c.Schedule.Days[0].Enabled = true
	*c.Saturation[0].Fallback = "other"
	c.Saturation[0].ExtraParameters["k"] = "w"

	assert.Equal(t, "a", orig.Targets[0])
	assert.Equal(t, 60, *orig.TTL)
	assert.False(t, orig.Schedule.Days[0].Enabled)
	assert.Equal(t, "none", *orig.Saturation[0].Fallback)
	assert.Equal(t, "v", orig.Saturation[0].ExtraParameters["k"])
}
