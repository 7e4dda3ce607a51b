package routing

import (
	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// MaxTypes is the most types a single message can be routed to.
const MaxTypes = 2

// minMultiLabelWords is the word count a message must exceed before the
// multi-label pass runs.
const minMultiLabelWords = 5

type specialCase struct {
	name  string
	match func(text string) bool
	typ   record.Type
}

var (
	learnWords       = lexicon.New("learn*")
	languageWords    = lexicon.New("programming language*", "python", "javascript", "golang", "rust")
	somedayWords     = lexicon.New("someday", "some day")
	readWords        = lexicon.New("read", "reading")
	importantToLearn = lexicon.New("important to learn")
	naturalLanguage  = lexicon.New("language*")
	planToLearn      = lexicon.New("plan to learn", "planning to learn")
	techWords        = lexicon.New("framework*", "technolog*")
	certificateWords = lexicon.New("get a certificate", "get certificate", "get certified")
	interviewWords   = lexicon.New("interview*")
	examWords        = lexicon.New("exam*")
	veryNervousWords = lexicon.New("very nervous", "really nervous")
)

// Special cases run before the category groups and resolve phrasings that
// would otherwise be ambiguous. Order matters.
var specialCases = []specialCase{
	{
		name:  "learn_programming_language",
		match: func(t string) bool { return learnWords.Any(t) && languageWords.Any(t) },
		typ:   record.TypeHabit,
	},
	{
		name:  "someday_read",
		match: func(t string) bool { return somedayWords.Any(t) && readWords.Any(t) },
		typ:   record.TypeGoal,
	},
	{
		name:  "important_to_learn_language",
		match: func(t string) bool { return importantToLearn.Any(t) && naturalLanguage.Any(t) },
		typ:   record.TypeHabit,
	},
	{
		name:  "plan_to_learn_technology",
		match: func(t string) bool { return planToLearn.Any(t) && techWords.Any(t) },
		typ:   record.TypeHabit,
	},
	{
		name:  "certificate",
		match: certificateWords.Any,
		typ:   record.TypeGoal,
	},
	{
		name:  "interview",
		match: interviewWords.Any,
		typ:   record.TypeTask,
	},
}

type categoryGroup struct {
	typ   record.Type
	words lexicon.Set
}

// Category groups in priority order. Concrete tasks dominate emotional
// language, which dominates habits and then goals.
var categoryGroups = []categoryGroup{
	{typ: record.TypeTask, words: lexicon.New(
		"need", "need to", "must", "have to", "urgent*", "important",
		"meeting*", "presentation*", "report*", "document*", "letter*",
		"call", "shopping", "store", "grocer*", "food", "medicine*",
		"pharmacy", "doctor*", "hospital*", "clinic*", "work", "working",
		"office", "project*", "exam*", "course*", "lecture*", "seminar*",
		"conference*", "trip*", "vacation*", "ticket*", "hotel*", "visa*",
		"repair*", "cleaning", "laundry", "cooking", "apartment*",
	)},
	{typ: record.TypeMood, words: lexicon.New(
		"feel*", "worried", "anxious", "tired", "sad", "happy", "angry",
		"annoyed", "calm", "nervous", "mood", "emotion*", "depress*",
		"stress*", "anxiety", "panic*", "joy*", "disappointed", "lonely",
		"proud", "grateful", "can't sleep", "cannot sleep",
	)},
	{typ: record.TypeHabit, words: lexicon.New(
		"every day", "daily", "regularly", "habit*", "start",
		"want to start", "plan to start", "every morning", "every evening",
		"every week", "every month", "workout*", "exercis*", "running",
		"run", "meditat*", "yoga", "sport*", "fitness", "train",
		"training",
	)},
	{typ: record.TypeGoal, words: lexicon.New(
		"want to create", "want to open", "want to become", "achieve*",
		"goal*", "dream*", "someday", "in the future", "in a year",
		"startup*", "business*", "career*", "profession*", "skill*",
		"mastery", "travel*", "become a professional", "photographer*",
	)},
	{typ: record.TypeHealth, words: lexicon.New(
		"health*", "blood pressure", "vitamin*", "lose weight", "diet*",
		"symptom*", "headache*", "pill*", "quit smoking", "check-up",
		"checkup", "sleep schedule",
	)},
	{typ: record.TypeWorkout, words: lexicon.New(
		"gym", "push-ups", "pushups", "squat*", "lift weights", "cardio",
		"pilates", "swim*", "cycling", "plank*",
	)},
}

// Secondary cues for the multi-label pass, in collection order.
var weakCues = []categoryGroup{
	{typ: record.TypeMood, words: lexicon.New(
		"love", "excited", "upset", "bored", "afraid", "scared", "relaxed",
		"glad", "lucky",
	)},
	{typ: record.TypeHabit, words: lexicon.New(
		"each day", "each morning", "every night", "routine*", "practice*",
		"keep doing",
	)},
	{typ: record.TypeGoal, words: lexicon.New(
		"want to", "wish", "hope to", "one day", "plan to",
	)},
	{typ: record.TypeTask, words: lexicon.New(
		"tomorrow", "today", "buy", "send", "finish", "pick up", "remind*",
	)},
}
