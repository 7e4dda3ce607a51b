package extraction

import (
	"regexp"

	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

var (
	dailyWords  = lexicon.New("every day", "daily", "each day", "every morning", "every evening")
	weeklyWords = lexicon.New("every week", "weekly", "once a week", "each week")

	durationPattern = regexp.MustCompile(`\b(\d{1,3})\s*(minutes?|mins?|hours?|hrs?|h)\b`)
)

// Frequency derives a habit frequency.
func (e *Extractor) Frequency(text string) string {
	t := lexicon.Normalize(text)
	switch {
	case dailyWords.Any(t):
		return record.FrequencyDaily
	case weeklyWords.Any(t):
		return record.FrequencyWeekly
	default:
		return record.FrequencyDaily
	}
}

// Duration derives a workout duration such as "45 minutes".
func (e *Extractor) Duration(text string) string {
	m := durationPattern.FindStringSubmatch(lexicon.Normalize(text))
	if m == nil {
		return record.DefaultDuration
	}
	unit := "minutes"
	if m[2][0] == 'h' {
		unit = "hours"
	}
	if m[1] == "1" {
		unit = unit[:len(unit)-1]
	}
	return m[1] + " " + unit
}
