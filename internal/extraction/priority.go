package extraction

import (
	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

type priorityRule struct {
	when     func(string) bool
	priority record.Priority
}

// Explicit priority vocabulary, checked low, then high, then medium.
// "need" and "tomorrow" are deliberately not urgency cues.
var priorityTable = []priorityRule{
	{has("someday", "some day", "no rush", "in free time", "in my free time", "low urgency",
		"not important", "unimportant", "in the future", "dream*"), record.PriorityLow},
	{has("urgent*", "critical*", "immediately", "asap", "important", "must", "required",
		"organize", "prepare"), record.PriorityHigh},
	{has("this week", "soon", "meeting*", "presentation*", "report*", "want", "plan",
		"learn", "framework*", "technolog*", "send"), record.PriorityMedium},
}

// Contextual cascade, consulted only when the table found nothing.
var priorityCascade = []priorityRule{
	{has("reminder*", "alarm*"), record.PriorityHigh},
	{has("worried", "anxiety", "panic*", "nervous", "can't sleep", "cannot sleep"), record.PriorityHigh},
	{has("interview*"), record.PriorityHigh},
	{has("by noon", "by midday", "by 12", "deadline*"), record.PriorityHigh},
	{both(words("project*"), words("by")), record.PriorityHigh},
	{has("joy*", "happiness", "gratitude", "grateful"), record.PriorityMedium},
}

// Priority derives a priority from text.
func (e *Extractor) Priority(text string) record.Priority {
	t := lexicon.Normalize(text)
	for _, r := range priorityTable {
		if r.when(t) {
			return r.priority
		}
	}
	for _, r := range priorityCascade {
		if r.when(t) {
			return r.priority
		}
	}
	return record.PriorityMedium
}
