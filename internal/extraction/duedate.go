package extraction

import (
	"regexp"
	"strconv"
	"time"

	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// maxDueDateInputLength bounds the text scanned by the time-of-day patterns.
const maxDueDateInputLength = 10000

// clock is a resolved time of day.
type clock struct {
	hour, minute int
}

func (c clock) valid() bool {
	return c.hour >= 0 && c.hour < 24 && c.minute >= 0 && c.minute < 60
}

var (
	eveningWords = lexicon.New("evening", "afternoon", "tonight", "night")
	weekdayNames = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
)

// timePatterns resolve the time-of-day component. Order matters: explicit
// clock times come before bare hours, which come before day-part words.
var timePatterns = []struct {
	pattern *regexp.Regexp
	resolve func(match []string, text string) (clock, bool)
}{
	// "at 9:45", "9:45", "7:30 pm"
	{
		pattern: regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?:\s*(am|pm|a\.m\.|p\.m\.)(?:[^a-z]|$))?`),
		resolve: func(m []string, text string) (clock, bool) {
			return meridiem(atoi(m[1]), atoi(m[2]), m[3], "")
		},
	},
	// "at noon", "by midday"
	{
		pattern: regexp.MustCompile(`\b(noon|midday)\b`),
		resolve: func([]string, string) (clock, bool) { return clock{12, 0}, true },
	},
	// "at midnight"
	{
		pattern: regexp.MustCompile(`\bmidnight\b`),
		resolve: func([]string, string) (clock, bool) { return clock{23, 59}, true },
	},
	// "7 pm", "11am"
	{
		pattern: regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)(?:[^a-z]|$)`),
		resolve: func(m []string, text string) (clock, bool) {
			return meridiem(atoi(m[1]), 0, m[2], text)
		},
	},
	// "8 o'clock"
	{
		pattern: regexp.MustCompile(`\b(\d{1,2})\s*o'clock\b`),
		resolve: func(m []string, text string) (clock, bool) {
			return meridiem(atoi(m[1]), 0, "", text)
		},
	},
	// "at 7", "by 12"
	{
		pattern: regexp.MustCompile(`\b(?:at|by)\s+(\d{1,2})\b`),
		resolve: func(m []string, text string) (clock, bool) {
			return meridiem(atoi(m[1]), 0, "", text)
		},
	},
	{
		pattern: regexp.MustCompile(`\bmorning\b`),
		resolve: func([]string, string) (clock, bool) { return clock{10, 0}, true },
	},
	{
		pattern: regexp.MustCompile(`\bafternoon\b`),
		resolve: func([]string, string) (clock, bool) { return clock{14, 0}, true },
	},
	{
		pattern: regexp.MustCompile(`\b(evening|tonight)\b`),
		resolve: func([]string, string) (clock, bool) { return clock{18, 0}, true },
	},
	{
		pattern: regexp.MustCompile(`\bnight\b`),
		resolve: func([]string, string) (clock, bool) { return clock{22, 0}, true },
	},
}

// dayPatterns resolve the calendar-day offset from now. Urgency wins over
// every other cue and "day after tomorrow" must precede "tomorrow".
var dayPatterns = []struct {
	pattern *regexp.Regexp
	resolve func(match []string, now time.Time) int
}{
	{
		pattern: regexp.MustCompile(`\b(urgent\w*|asap|immediately)\b`),
		resolve: func([]string, time.Time) int { return 0 },
	},
	{
		pattern: regexp.MustCompile(`\bday after tomorrow\b`),
		resolve: func([]string, time.Time) int { return 2 },
	},
	{
		pattern: regexp.MustCompile(`\btomorrow\b`),
		resolve: func([]string, time.Time) int { return 1 },
	},
	{
		pattern: regexp.MustCompile(`\b(today|tonight|this evening|this morning|this afternoon)\b`),
		resolve: func([]string, time.Time) int { return 0 },
	},
	{
		pattern: regexp.MustCompile(`\bnext week\b`),
		resolve: func([]string, time.Time) int { return 7 },
	},
	// "on friday", "next monday": the next such day, never today
	{
		pattern: regexp.MustCompile(`\b(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`),
		resolve: func(m []string, now time.Time) int {
			days := (int(weekdayNames[m[1]]) - int(now.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return days
		},
	},
	{
		pattern: regexp.MustCompile(`\bthis week\b`),
		resolve: func([]string, time.Time) int { return 3 },
	},
}

// defaultDayOffset applies when no day cue is present.
const defaultDayOffset = 1

// DueDate resolves the due date of text relative to now.
func (e *Extractor) DueDate(text string, now time.Time) record.Timestamp {
	return ResolveDueDate(text, now)
}

// ResolveDueDate combines the time-of-day and calendar-day passes into one
// timestamp in now's location.
func ResolveDueDate(text string, now time.Time) record.Timestamp {
	t := lexicon.Normalize(text)
	if len(t) > maxDueDateInputLength {
		t = t[:maxDueDateInputLength]
	}
	c := resolveClock(t)
	return record.DayAt(now, resolveDayOffset(t, now), c.hour, c.minute)
}

func resolveClock(text string) clock {
	for _, p := range timePatterns {
		m := p.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if c, ok := p.resolve(m, text); ok && c.valid() {
			return c
		}
	}
	return clock{record.DefaultHour, 0}
}

func resolveDayOffset(text string, now time.Time) int {
	for _, p := range dayPatterns {
		if m := p.pattern.FindStringSubmatch(text); m != nil {
			return p.resolve(m, now)
		}
	}
	return defaultDayOffset
}

// meridiem applies an am/pm suffix to a 12-hour reading. Without a suffix,
// an evening cue in text moves bare hours into the afternoon; callers pass
// an empty text for explicit HH:MM times.
func meridiem(hour, minute int, suffix, text string) (clock, bool) {
	switch suffix {
	case "pm", "p.m.":
		if hour < 12 {
			hour += 12
		}
	case "am", "a.m.":
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 0 && hour < 12 && eveningWords.Any(text) {
			hour += 12
		}
	}
	c := clock{hour, minute}
	return c, c.valid()
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
