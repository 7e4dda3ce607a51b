package extraction

import (
	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

type tagRule struct {
	tag   string
	words lexicon.Set
}

// Tag table, scanned in order. A message collects every tag whose
// vocabulary it mentions, up to record.MaxTags.
var tagTable = []tagRule{
	{"work", lexicon.New("work", "office", "colleague*", "project*", "meeting*", "programming", "code", "coding",
		"development", "client*", "presentation*", "career*", "business*", "report*", "manager*", "boss",
		"supplier*", "team*", "interview*", "candidate*", "testing", "app", "commercial proposal", "sales")},
	{"family", lexicon.New("family", "kids", "children", "parents", "relatives", "mom", "mother", "dad", "father",
		"birthday*", "wedding*", "newlyweds")},
	{"health", lexicon.New("health*", "doctor*", "medicine*", "hospital*", "tired", "therapist*", "treatment*",
		"lose weight", "diet*", "quit smoking", "fatigue", "surgery")},
	{"sport", lexicon.New("sport*", "workout*", "fitness", "gym", "run", "running", "jog*", "training",
		"exercis*", "physical shape")},
	{"tech", lexicon.New("programming", "code", "coding", "development", "computer*", "technolog*", "website*",
		"portfolio*", "software")},
	{"mood", lexicon.New("mood", "feel*", "emotion*", "great", "good", "bad", "worried", "nervous", "love",
		"anxious", "anxiety", "stress*")},
	{"study", lexicon.New("study*", "exam*", "math*", "learn*", "education", "course*", "lecture*", "spanish",
		"language*", "universit*", "master's", "artificial intelligence", "motivation letter", "english",
		"japanese")},
	{"shopping", lexicon.New("shopping", "buy", "store", "product*", "grocer*", "suit", "gift*", "flowers",
		"cake", "furniture", "ticket*")},
	{"home", lexicon.New("home", "house", "apartment*", "moving", "move", "real estate", "movers")},
	{"travel", lexicon.New("travel*", "vacation*", "europe", "hotel*", "visa*", "plane*", "flight*",
		"mountain*", "hike*", "hiking", "tokyo")},
	{"hobby", lexicon.New("hobby", "hobbies", "guitar*", "music", "lessons")},
	{"beauty", lexicon.New("beauty", "manicure", "massage*", "skincare")},
	{"organization", lexicon.New("organiz*", "packing", "belongings", "preparation")},
	{"design", lexicon.New("design*", "interface*", "ui", "ux", "graphic*", "visual*")},
	{"gifts", lexicon.New("gift*", "congratulat*", "surprise*")},
	{"cooking", lexicon.New("cooking", "cook", "recipe*", "chef", "kitchen*")},
	{"music", lexicon.New("music", "piano*", "guitar*", "instrument*", "melod*")},
	{"report", lexicon.New("report*", "manager*")},
	{"presentation", lexicon.New("presentation*", "demo*", "investor*")},
	{"negotiation", lexicon.New("negotiat*", "supplier*", "terms")},
	{"meeting", lexicon.New("meeting*", "team meeting")},
	{"system", lexicon.New("system*", "database*")},
	{"project", lexicon.New("project*", "technical specification", "requirement*")},
	{"hr", lexicon.New("hr", "interview*", "candidate*", "hiring")},
	{"qa", lexicon.New("qa", "testing", "bug*")},
	{"sales", lexicon.New("sales", "commercial proposal", "pricing")},
	{"startup", lexicon.New("startup*", "investment*", "mvp", "co-founder*", "cofounder*")},
	{"meditation", lexicon.New("meditat*", "wellness", "yoga")},
	{"photography", lexicon.New("photograph*", "studio*")},
	{"habit", lexicon.New("habit*", "regularly", "daily", "every day")},
}

// Contextual backfill for messages that produced fewer than two tags.
var backfillTags = []tagRule{
	{"task", lexicon.New("tomorrow", "day after tomorrow")},
	{"habit", lexicon.New("want", "will start")},
	{"mood", lexicon.New("feel*", "worried")},
}

const minTags = 2

// FallbackTag is the only tag of a message nothing else matched.
const FallbackTag = "task"

// Tags derives up to record.MaxTags tags from text.
func (e *Extractor) Tags(text string) []string {
	t := lexicon.Normalize(text)

	var tags []string
	for _, r := range tagTable {
		if r.words.Any(t) {
			tags = record.AddTags(tags, r.tag)
		}
	}

	if len(tags) < minTags {
		for _, r := range backfillTags {
			if r.words.Any(t) {
				tags = record.AddTags(tags, r.tag)
			}
		}
	}

	if len(tags) == 0 {
		return []string{FallbackTag}
	}
	return tags
}

// TypeTags are the tags a correction tops records up with, per type.
var TypeTags = map[record.Type][]string{
	record.TypeTask:    {"work", "important"},
	record.TypeMood:    {"mood", "emotions"},
	record.TypeHabit:   {"habit", "self-development"},
	record.TypeGoal:    {"goal", "long-term"},
	record.TypeHealth:  {"health", "self-care"},
	record.TypeWorkout: {"sport", "fitness"},
}
