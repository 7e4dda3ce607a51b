package generative

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// Sampling defaults for classification calls.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 512
)

type template int

const (
	templateTask template = iota
	templateMoodTask
	templateHabit
	templateGoal
)

func chooseTemplate(types []record.Type) template {
	switch {
	case slices.Contains(types, record.TypeMood) && slices.Contains(types, record.TypeTask):
		return templateMoodTask
	case slices.Contains(types, record.TypeHabit):
		return templateHabit
	case slices.Contains(types, record.TypeGoal):
		return templateGoal
	default:
		return templateTask
	}
}

// ReferenceDates are the literal dates a prompt anchors relative phrases to.
type ReferenceDates struct {
	Now       string
	Tomorrow  string
	DayAfter  string
	EndOfWeek string
	NextWeek  string
}

// NewReferenceDates computes reference dates relative to now.
func NewReferenceDates(now time.Time) ReferenceDates {
	daysToSunday := (7 - int(now.Weekday())) % 7
	return ReferenceDates{
		Now:       record.NewTimestamp(now).String(),
		Tomorrow:  record.DayAt(now, 1, record.DefaultHour, 0).String(),
		DayAfter:  record.DayAt(now, 2, record.DefaultHour, 0).String(),
		EndOfWeek: record.DayAt(now, daysToSunday, record.DefaultHour, 0).String(),
		NextWeek:  record.DayAt(now, 7, record.DefaultHour, 0).String(),
	}
}

// BuildPrompt renders the prompt for text. history is the formatted
// conversation context, oldest turn first, and may be empty.
func BuildPrompt(text string, types []record.Type, now time.Time, history string) string {
	dates := NewReferenceDates(now)
	var b strings.Builder

	b.WriteString("You turn a short personal message into JSON objects.\n")
	b.WriteString("Each object has the fields type, title, description, tags, priority and dueDate.\n")
	b.WriteString("type is one of: task, mood_entry, habit, goal, health, workout.\n")
	b.WriteString("priority is one of: high, medium, low. dueDate uses the format YYYY-MM-DD HH:MM.\n")
	b.WriteString("Respond with JSON objects only.\n\n")

	b.WriteString("Reference dates:\n")
	fmt.Fprintf(&b, "- now: %s\n", dates.Now)
	fmt.Fprintf(&b, "- tomorrow: %s\n", dates.Tomorrow)
	fmt.Fprintf(&b, "- day after tomorrow: %s\n", dates.DayAfter)
	fmt.Fprintf(&b, "- end of week: %s\n", dates.EndOfWeek)
	fmt.Fprintf(&b, "- next week: %s\n\n", dates.NextWeek)

	if history = strings.TrimSpace(history); history != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "User: %s\n\n", strings.TrimSpace(text))

	switch chooseTemplate(types) {
	case templateMoodTask:
		b.WriteString("Assistant: I'll create both a mood entry and a task for you.\n\n")
		writeExample(&b, "Emotional state", record.TypeMood, "Current emotional state and feelings", `"mood", "emotions"`, record.PriorityHigh, dates.Now)
		b.WriteString("\n")
		writeExample(&b, "Task to complete", record.TypeTask, "Specific task that needs to be done", `"task"`, record.PriorityHigh, dates.Tomorrow)
	case templateHabit:
		b.WriteString("Assistant: I'll create a habit for you.\n\n")
		writeExample(&b, "New habit", record.TypeHabit, "Regular activity to develop", `"habit"`, record.PriorityMedium, dates.Tomorrow)
	case templateGoal:
		b.WriteString("Assistant: I'll create a long-term goal for you.\n\n")
		writeExample(&b, "Long-term goal", record.TypeGoal, "Important long-term objective", `"goal"`, record.PriorityMedium, dates.NextWeek)
	default:
		b.WriteString("Assistant: I'll create a task for you.\n\n")
		writeExample(&b, "Task", record.TypeTask, "Specific task to complete", `"task"`, record.PriorityHigh, dates.Tomorrow)
	}
	return b.String()
}

func writeExample(b *strings.Builder, title string, t record.Type, description, tags string, p record.Priority, due string) {
	fmt.Fprintf(b, "{\n  \"title\": %q,\n  \"type\": %q,\n  \"description\": %q,\n  \"tags\": [%s],\n  \"priority\": %q,\n  \"dueDate\": %q\n}\n",
		title, t, description, tags, p, due)
}
