package routing

import (
	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// Detection is the outcome of type routing along with the rule that decided
// it, for logging.
type Detection struct {
	Types []record.Type
	Rule  string
}

// TypeRouter maps a message onto one or two record types.
type TypeRouter struct{}

// NewTypeRouter creates a TypeRouter.
func NewTypeRouter() *TypeRouter {
	return &TypeRouter{}
}

// DetectTypes returns between one and MaxTypes record types for text.
func (r *TypeRouter) DetectTypes(text string) []record.Type {
	return r.Detect(text).Types
}

// Detect is DetectTypes with the deciding rule attached.
func (r *TypeRouter) Detect(text string) Detection {
	t := lexicon.Normalize(text)

	for _, sc := range specialCases {
		if sc.match(t) {
			return single(sc.typ, "special:"+sc.name)
		}
	}

	for _, g := range categoryGroups {
		if !g.words.Any(t) {
			continue
		}
		switch g.typ {
		case record.TypeTask:
			return r.resolveTask(t)
		default:
			return single(g.typ, "group:"+string(g.typ))
		}
	}

	if types := multiLabel(t); len(types) > 0 {
		return Detection{Types: types, Rule: "multi_label"}
	}
	return single(record.TypeTask, "default")
}

// resolveTask settles a task match that may also carry mood language.
// Exam anxiety is the one mood that outranks the task.
func (r *TypeRouter) resolveTask(t string) Detection {
	if moodGroup().Any(t) && veryNervousWords.Any(t) && examWords.Any(t) {
		return single(record.TypeMood, "task_vs_mood:exam_anxiety")
	}
	return single(record.TypeTask, "group:task")
}

// multiLabel collects up to MaxTypes weak cues from a compound message.
func multiLabel(t string) []record.Type {
	if lexicon.CountWord(t, "and") == 0 || len(lexicon.Words(t)) <= minMultiLabelWords {
		return nil
	}
	var types []record.Type
	for _, c := range weakCues {
		if c.words.Any(t) {
			types = append(types, c.typ)
			if len(types) == MaxTypes {
				break
			}
		}
	}
	return types
}

func moodGroup() lexicon.Set {
	for _, g := range categoryGroups {
		if g.typ == record.TypeMood {
			return g.words
		}
	}
	return lexicon.Set{}
}

func single(t record.Type, rule string) Detection {
	return Detection{Types: []record.Type{t}, Rule: rule}
}
