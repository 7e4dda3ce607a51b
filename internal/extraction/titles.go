package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

var (
	reportWords       = words("report*")
	managerWords      = words("manager*", "boss*")
	presentationWords = words("presentation*")
	meetingWords      = words("meeting*")
	moveWords         = words("moving", "move", "relocat*")
)

// Task titles. Order matters: combined cues come before their parts.
var taskTitles = []rule{
	{both(reportWords, managerWords), "Send report to manager"},
	{both(presentationWords, words("investor*")), "Presentation for investors"},
	{both(presentationWords, words("client*")), "Presentation for client"},
	{has("grocer*", "store", "supermarket"), "Buy groceries"},
	{both(presentationWords, words("universit*")), "University presentation"},
	{both(words("code", "coding"), words("work")), "Write code for work"},
	{both(meetingWords, words("team*")), "Team meeting"},
	{has("interview*"), "Job interview"},
	{has(moveWords...), "Prepare for the move"},
	{both(words("surgery", "operation"), words("mom", "mother")), "Support mom during surgery"},
	{has("doctor*", "hospital*"), "Doctor visit"},
	{both(meetingWords, words("client*")), "Client meeting"},
	{has(reportWords...), "Prepare report"},
	{has(presentationWords...), "Prepare presentation"},
	{has(meetingWords...), "Meeting"},
	{has("call", "phone"), "Phone call"},
	{has("letter*", "email*"), "Write letter"},
	{has("document*"), "Prepare document"},
	{has("shopping"), "Shopping"},
	{has("repair*"), "Repair"},
	{has("cleaning", "clean"), "Cleaning"},
	{has("cooking", "cook"), "Cooking"},
	{has("laundry"), "Laundry"},
	{has("exam*"), "Prepare for exam"},
	{has("course*"), "Take course"},
	{has("lecture*"), "Attend lecture"},
	{has("conference*"), "Attend conference"},
	{has("vacation*"), "Plan vacation"},
	{has("trip*"), "Plan trip"},
	{has("ticket*"), "Buy tickets"},
	{has("hotel*"), "Book hotel"},
	{has("visa*"), "Apply for visa"},
}

var moodTitles = []rule{
	{has("worried", "anxious", "stress*"), "Emotional state"},
	{has("tired", "exhausted", "fatigue"), "Tiredness"},
	{has("great", "good"), "Great mood"},
	{has("sad", "bad"), "Bad mood"},
	{has("anxiety", "restless"), "Anxiety"},
}

var habitTitles = []rule{
	{has("run", "running", "jog*"), "Morning run"},
	{has("programming", "python", "learn*"), "Learning Python"},
	{has("english", "language*"), "Language learning"},
	{has("read", "reading"), "Daily reading"},
	{has("workout*", "sport*"), "Regular workouts"},
	{has("meditat*", "yoga"), "Meditation"},
}

var goalTitles = []rule{
	{has("startup*", "business*", "open"), "Start a business"},
	{has("app", "apps", "application"), "Build an app"},
	{has("photographer*"), "Become a photographer"},
	{has("tokyo"), "Move to Tokyo"},
	{has("career*", "profession*"), "Career growth"},
	{has("skill*", "mastery"), "Skill development"},
	{has("house", "home", "apartment*"), "Buy a home"},
	{has("travel*", "trip*"), "Plan travel"},
}

var healthTitles = []rule{
	{has("doctor*", "checkup", "check-up"), "Health check-up"},
	{has("vitamin*", "pill*", "medicine*", "medication*"), "Take medication"},
	{has("sleep*"), "Sleep schedule"},
	{has("weight", "diet*"), "Healthy diet"},
	{has("blood pressure"), "Check blood pressure"},
}

var workoutTitles = []rule{
	{has("gym"), "Gym session"},
	{has("swim*"), "Swimming"},
	{has("squat*", "push-ups", "pushups", "plank*"), "Strength training"},
	{has("cardio", "cycling"), "Cardio workout"},
	{has("yoga", "pilates"), "Yoga session"},
}

var titleRules = map[record.Type][]rule{
	record.TypeTask:    taskTitles,
	record.TypeMood:    moodTitles,
	record.TypeHabit:   habitTitles,
	record.TypeGoal:    goalTitles,
	record.TypeHealth:  healthTitles,
	record.TypeWorkout: workoutTitles,
}

// DefaultTitles are used when no title rule matches.
var DefaultTitles = map[record.Type]string{
	record.TypeTask:    "Task",
	record.TypeMood:    "Mood entry",
	record.TypeHabit:   "New habit",
	record.TypeGoal:    "Long-term goal",
	record.TypeHealth:  "Health note",
	record.TypeWorkout: "Workout",
}

// Words skipped by the significant-word title heuristic.
var titleStopWords = map[string]bool{
	"need": true, "needs": true, "must": true, "should": true, "have": true,
	"urgently": true, "urgent": true, "important": true, "definitely": true,
	"tomorrow": true, "today": true, "tonight": true, "after": true,
	"want": true, "will": true, "going": true, "gotta": true, "please": true,
	"remember": true, "that": true, "this": true, "with": true, "from": true,
	"there": true, "their": true, "about": true, "really": true,
}

const (
	heuristicMinWords  = 3
	heuristicScanWords = 5
	heuristicMaxWords  = 2
	significantLen     = 3
)

// Title derives a title for a record of type t.
func (e *Extractor) Title(text string, t record.Type) string {
	norm := lexicon.Normalize(text)
	if title, ok := first(titleRules[t], norm); ok {
		return title
	}
	if t == record.TypeTask {
		if title := significantWords(text); title != "" {
			return title
		}
	}
	return DefaultTitles[record.ParseType(string(t))]
}

// significantWords title-cases up to two long, non-stop words from the
// start of the message.
func significantWords(text string) string {
	ws := lexicon.Words(text)
	if len(ws) < heuristicMinWords {
		return ""
	}
	if len(ws) > heuristicScanWords {
		ws = ws[:heuristicScanWords]
	}
	var picked []string
	for _, w := range ws {
		lw := strings.ToLower(w)
		if utf8.RuneCountInString(lw) <= significantLen || titleStopWords[lw] {
			continue
		}
		picked = append(picked, titleCase(lw))
		if len(picked) == heuristicMaxWords {
			break
		}
	}
	return strings.Join(picked, " ")
}

func titleCase(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}
