package extraction

import (
	"strings"

	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

var taskDescriptions = []rule{
	{both(reportWords, managerWords), "Prepare and send the report on completed work to the manager"},
	{both(presentationWords, words("investor*")), "Prepare materials and rehearse the pitch for the investor presentation"},
	{both(presentationWords, words("client*")), "Prepare materials and rehearse the presentation for the client"},
	{has("grocer*", "store", "supermarket"), "Go to the store and buy groceries for the week"},
	{both(presentationWords, words("universit*")), "Prepare the university presentation showing study results"},
	{both(words("code", "coding"), words("work")), "Complete the coding task for work"},
	{both(meetingWords, words("team*")), "Hold a meeting with the team to discuss the project"},
	{has("interview*"), "Prepare for the job interview and pick suitable clothes"},
	{has(moveWords...), "Pack belongings and arrange movers for the move"},
	{both(words("surgery", "operation"), words("mom", "mother")), "Be with mom during the surgery and support her"},
}

var moodDescriptions = []rule{
	{has("worried", "anxious"), "Feeling strong worry and anxiety"},
	{has("tired", "exhausted"), "Feeling tired and in need of rest"},
	{has("great"), "Feeling great, full of energy and positivity"},
}

var habitDescriptions = []rule{
	{has("run", "running", "jog*"), "Run every morning to stay in shape"},
	{has("programming"), "Program every day to build skills"},
	{has("english", "language*"), "Study the language regularly to build fluency"},
	{has("read", "reading"), "Read regularly for growth and self-education"},
}

var goalDescriptions = []rule{
	{has("startup*"), "Launch a startup and attract investment"},
	{has("app", "apps", "application"), "Build a mobile app with a high-quality design"},
	{has("photographer*"), "Become a professional photographer and open a studio"},
	{has("tokyo"), "Learn Japanese and move to Tokyo to work in IT"},
}

var descriptionRules = map[record.Type][]rule{
	record.TypeTask:  taskDescriptions,
	record.TypeMood:  moodDescriptions,
	record.TypeHabit: habitDescriptions,
	record.TypeGoal:  goalDescriptions,
}

// Fixed fallbacks for types whose default does not echo the message.
var defaultDescriptions = map[record.Type]string{
	record.TypeMood:  "Note about current emotional state",
	record.TypeHabit: "Develop a new useful habit",
	record.TypeGoal:  "Achieve an important long-term goal",
}

// Prefixes for types whose default echoes the message.
var echoPrefixes = map[record.Type]string{
	record.TypeTask:    "Do: ",
	record.TypeHealth:  "Health note: ",
	record.TypeWorkout: "Workout session: ",
}

// Description derives a description for a record of type t.
func (e *Extractor) Description(text string, t record.Type) string {
	if d, ok := e.SpecificDescription(text, t); ok {
		return d
	}
	if d, ok := defaultDescriptions[t]; ok {
		return d
	}
	if p, ok := echoPrefixes[t]; ok {
		return p + strings.TrimSpace(text)
	}
	return "Description: " + strings.TrimSpace(text)
}

// SpecificDescription returns a description only when a rule matches.
func (e *Extractor) SpecificDescription(text string, t record.Type) (string, bool) {
	return first(descriptionRules[t], lexicon.Normalize(text))
}

// EchoDescription is the "Do: <text>" description used when nothing more
// specific is known.
func EchoDescription(text string) string {
	return echoPrefixes[record.TypeTask] + strings.TrimSpace(text)
}
