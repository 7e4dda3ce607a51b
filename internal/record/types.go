package record

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned by transports when a message has no content.
var ErrEmptyText = errors.New("text is required")

// Type discriminates the record variants.
type Type string

const (
	TypeTask    Type = "task"
	TypeMood    Type = "mood_entry"
	TypeHabit   Type = "habit"
	TypeGoal    Type = "goal"
	TypeHealth  Type = "health"
	TypeWorkout Type = "workout"
)

var allTypes = []Type{TypeTask, TypeMood, TypeHabit, TypeGoal, TypeHealth, TypeWorkout}

// Types returns every supported record type.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t is one of the closed set of types.
func (t Type) Valid() bool {
	for _, v := range allTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseType maps s onto a Type. Unknown values become TypeTask.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "mood" {
		return TypeMood
	}
	if t.Valid() {
		return t
	}
	return TypeTask
}

// Priority is the urgency of a record.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority parses s case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Frequencies for habit records.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// DefaultDuration is used for workouts that do not state one.
const DefaultDuration = "30 minutes"
