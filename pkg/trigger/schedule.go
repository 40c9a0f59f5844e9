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

// DaysOfWeek lists schedule day names in the order the API expects.
var DaysOfWeek = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const (
	minutesInHour = 60
	lastMinute    = 24*minutesInHour - 1
)

// Schedule restricts when a trigger may fire. Offsets are minutes since
// midnight in the zone given by TZOffset.
type Schedule struct {
	StartOffset int   `json:"startOffset" yaml:"startOffset"`
	EndOffset   int   `json:"endOffset" yaml:"endOffset"`
	TZOffset    int   `json:"tzOffset" yaml:"tzOffset"`
	Days        []Day `json:"days" yaml:"days"`
}

// Day enables or disables a weekday.
type Day struct {
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// DefaultSchedule covers the whole day, every day.
func DefaultSchedule() *Schedule {
	s := &Schedule{StartOffset: 0, EndOffset: lastMinute, TZOffset: 0}
	s.normalizeDays(nil)
	return s
}

// DisabledDays returns the names of disabled days in week order.
func (s *Schedule) DisabledDays() []string {
	var disabled []string
	for _, d := range s.Days {
		if !d.Enabled {
			disabled = append(disabled, d.Name)
		}
	}
	return disabled
}

// DisableDay turns off the named day.
func (s *Schedule) DisableDay(day string) error {
	return s.setDay(day, false)
}

// EnableDay turns on the named day.
func (s *Schedule) EnableDay(day string) error {
	return s.setDay(day, true)
}

func (s *Schedule) setDay(day string, enabled bool) error {
	if !slices.Contains(DaysOfWeek, day) {
		return unknownDayError(day)
	}
	disabled := s.DisabledDays()
	if enabled {
		disabled = slices.DeleteFunc(disabled, func(d string) bool { return d == day })
	} else if !slices.Contains(disabled, day) {
		disabled = append(disabled, day)
	}
	s.normalizeDays(disabled)
	return nil
}

// SetStart sets the start of the active window.
func (s *Schedule) SetStart(hour, minute int) error {
	offset, err := clockOffset("sched.startOffset", hour, minute)
	if err != nil {
		return err
	}
	s.StartOffset = offset
	return nil
}

// SetEnd sets the end of the active window.
func (s *Schedule) SetEnd(hour, minute int) error {
	offset, err := clockOffset("sched.endOffset", hour, minute)
	if err != nil {
		return err
	}
	s.EndOffset = offset
	return nil
}

// Start returns the start of the active window as hour and minute.
func (s *Schedule) Start() (hour, minute int) {
	return s.StartOffset / minutesInHour, s.StartOffset % minutesInHour
}

// End returns the end of the active window as hour and minute.
func (s *Schedule) End() (hour, minute int) {
	return s.EndOffset / minutesInHour, s.EndOffset % minutesInHour
}

// Normalize rewrites Days as the full week in order, keeping the enabled
// flags of the days present. Missing days are enabled.
func (s *Schedule) Normalize() error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.normalizeDays(s.DisabledDays())
	return nil
}

// Validate checks offsets and day names.
func (s *Schedule) Validate() error {
	for _, d := range s.Days {
		if !slices.Contains(DaysOfWeek, d.Name) {
			return unknownDayError(d.Name)
		}
	}
	offsets := []struct {
		field  string
		offset int
	}{
		{"sched.startOffset", s.StartOffset},
		{"sched.endOffset", s.EndOffset},
	}
	for _, o := range offsets {
		if o.offset < 0 || o.offset > lastMinute {
			return &errors.ValidationError{
				Field:      o.field,
				Message:    fmt.Sprintf("offset %d is outside the day", o.offset),
				Suggestion: fmt.Sprintf("offsets are minutes since midnight, 0 to %d", lastMinute),
			}
		}
	}
	return nil
}

func (s *Schedule) normalizeDays(disabled []string) {
	days := make([]Day, 0, len(DaysOfWeek))
	for _, name := range DaysOfWeek {
		days = append(days, Day{Name: name, Enabled: !slices.Contains(disabled, name)})
	}
	s.Days = days
}

func clockOffset(field string, hour, minute int) (int, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute >= minutesInHour {
		return 0, &errors.ValidationError{
			Field:      field,
			Message:    fmt.Sprintf("invalid time %02d:%02d", hour, minute),
			Suggestion: "hours are 0-23 and minutes 0-59",
		}
	}
	return hour*minutesInHour + minute, nil
}

func unknownDayError(day string) error {
	return &errors.ValidationError{
		Field:      "sched.days",
		Message:    fmt.Sprintf("unknown day %q", day),
		Suggestion: "use one of Mon, Tue, Wed, Thu, Fri, Sat, Sun",
	}
}
