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
	"fmt"
	"slices"

	"github.com/tombee/exprmigrate/pkg/errors"
)

// Trigger states.
const (
	StateOK        = "OK"
	StateWarn      = "WARN"
	StateError     = "ERROR"
	StateNoData    = "NODATA"
	StateException = "EXCEPTION"
)

// Trigger types.
const (
	TypeRising     = "rising"
	TypeFalling    = "falling"
	TypeExpression = "expression"
)

// DefaultTTL is the number of seconds without data before TTLState applies.
const DefaultTTL = 600

var validStates = []string{StateOK, StateWarn, StateError, StateNoData, StateException}

// Trigger is an alerting trigger as stored in trigger documents and sent to
// the alerting API.
type Trigger struct {
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Name    string   `json:"name" yaml:"name"`
	Tags    []string `json:"tags" yaml:"tags"`
	Targets []string `json:"targets" yaml:"targets"`

	// WarnValue and ErrorValue are thresholds for rising/falling triggers.
	WarnValue  *float64 `json:"warn_value" yaml:"warn_value"`
	ErrorValue *float64 `json:"error_value" yaml:"error_value"`

	Desc string `json:"desc" yaml:"desc"`

	// TTL is the number of seconds without data before TTLState is set.
	TTL      *int   `json:"ttl" yaml:"ttl"`
	TTLState string `json:"ttl_state" yaml:"ttl_state"`

	Schedule *Schedule `json:"sched" yaml:"sched"`

	// Expression is evaluated by the alerting engine in ternary syntax.
	// Legacy "STATE if COND else STATE" expressions are converted by
	// Normalizer.
	Expression  string `json:"expression" yaml:"expression"`
	TriggerType string `json:"trigger_type" yaml:"trigger_type"`

	IsRemote        bool   `json:"is_remote" yaml:"is_remote"`
	MuteNewMetrics  bool   `json:"mute_new_metrics" yaml:"mute_new_metrics"`
	IsPullType      bool   `json:"is_pull_type" yaml:"is_pull_type"`
	Dashboard       string `json:"dashboard" yaml:"dashboard"`
	PendingInterval *int   `json:"pending_interval" yaml:"pending_interval"`

	// Parents are IDs of parent triggers.
	Parents    []string     `json:"parents" yaml:"parents"`
	Saturation []Saturation `json:"saturation" yaml:"saturation"`
}

// Saturation enriches alerts with extra data of the given type.
type Saturation struct {
	Type            string                 `json:"type" yaml:"type"`
	Fallback        *string                `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	ExtraParameters map[string]interface{} `json:"extra_parameters,omitempty" yaml:"extra_parameters,omitempty"`
}

// AddTarget appends a target pattern.
func (t *Trigger) AddTarget(target string) {
	t.Targets = append(t.Targets, target)
}

// AddTag appends a tag.
func (t *Trigger) AddTag(tag string) {
	t.Tags = append(t.Tags, tag)
}

// SameIdentity reports whether two triggers describe the same alert: equal
// names and equal target and tag sets.
func (t *Trigger) SameIdentity(other *Trigger) bool {
	return t.Name == other.Name &&
		sameSet(t.Targets, other.Targets) &&
		sameSet(t.Tags, other.Tags)
}

func sameSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	other := make(map[string]bool, len(b))
	for _, s := range b {
		if !set[s] {
			return false
		}
		other[s] = true
	}
	return len(set) == len(other)
}

// ResolveType returns the trigger type. An explicit valid type wins; a
// trigger with an expression is an expression trigger; otherwise the
// thresholds decide. It returns "" when nothing decides.
func (t *Trigger) ResolveType() string {
	switch t.TriggerType {
	case TypeRising, TypeFalling, TypeExpression:
		return t.TriggerType
	}
	if t.Expression != "" {
		return TypeExpression
	}
	if t.WarnValue != nil && t.ErrorValue != nil {
		switch {
		case *t.WarnValue > *t.ErrorValue:
			return TypeFalling
		case *t.WarnValue < *t.ErrorValue:
			return TypeRising
		}
	}
	return ""
}

// applyDefaults fills unset fields the way the alerting API expects them.
func (t *Trigger) applyDefaults() {
	if t.TTL == nil {
		ttl := DefaultTTL
		t.TTL = &ttl
	}
	if t.TTLState == "" {
		t.TTLState = StateNoData
	}
	if t.Schedule == nil {
		t.Schedule = DefaultSchedule()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Targets == nil {
		t.Targets = []string{}
	}
	if t.Parents == nil {
		t.Parents = []string{}
	}
	if t.Saturation == nil {
		t.Saturation = []Saturation{}
	}
}

// Validate checks the fields that do not depend on the expression.
func (t *Trigger) Validate() error {
	if t.Name == "" {
		return &errors.ValidationError{
			Field:      "name",
			Message:    "trigger has no name",
			Suggestion: "every trigger needs a unique, human-readable name",
		}
	}
	if len(t.Targets) == 0 {
		return &errors.ValidationError{
			Field:      "targets",
			Message:    fmt.Sprintf("trigger %q has no targets", t.Name),
			Suggestion: "add at least one metric target; t1 in expressions refers to the first one",
		}
	}
	if t.TTLState != "" && !slices.Contains(validStates, t.TTLState) {
		return &errors.ValidationError{
			Field:      "ttl_state",
			Message:    fmt.Sprintf("unknown state %q", t.TTLState),
			Suggestion: "use one of OK, WARN, ERROR, NODATA, EXCEPTION",
		}
	}
	switch t.TriggerType {
	case "", TypeRising, TypeFalling, TypeExpression:
	default:
		return &errors.ValidationError{
			Field:      "trigger_type",
			Message:    fmt.Sprintf("unknown trigger type %q", t.TriggerType),
			Suggestion: "use rising, falling or expression",
		}
	}
	for i, s := range t.Saturation {
		if s.Type == "" {
			return &errors.ValidationError{
				Field:   fmt.Sprintf("saturation[%d].type", i),
				Message: "saturation has no type",
			}
		}
	}
	if t.Schedule != nil {
		return t.Schedule.Validate()
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Trigger) Clone() *Trigger {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.Targets = slices.Clone(t.Targets)
	c.Parents = slices.Clone(t.Parents)
	c.TTL = clonePtr(t.TTL)
	c.WarnValue = clonePtr(t.WarnValue)
	c.ErrorValue = clonePtr(t.ErrorValue)
	c.PendingInterval = clonePtr(t.PendingInterval)
	if t.Schedule != nil {
		s := *t.Schedule
		s.Days = slices.Clone(t.Schedule.Days)
		c.Schedule = &s
	}
	if t.Saturation != nil {
		c.Saturation = make([]Saturation, len(t.Saturation))
		for i, s := range t.Saturation {
			s.Fallback = clonePtr(s.Fallback)
			if s.ExtraParameters != nil {
				params := make(map[string]interface{}, len(s.ExtraParameters))
				for k, v := range s.ExtraParameters {
					params[k] = v
				}
				s.ExtraParameters = params
			}
			c.Saturation[i] = s
		}
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
