package generative

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// StripFences removes markdown code fences, keeping their contents.
func StripFences(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// ScanObjects returns every top-level brace-balanced span in s. Braces inside
// JSON strings are ignored; an unterminated trailing span is dropped.
func ScanObjects(s string) []string {
	var (
		spans    []string
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, s[start:i+1])
				start = -1
			}
		}
	}
	return spans
}

// looseRecord accepts whatever a model emits for a record. Every field
// decodes from any JSON scalar, and tags also from a single string, so a
// malformed value does not discard the whole object. dueDate is not read:
// the validator re-derives it from the message.
type looseRecord struct {
	Type        looseString  `json:"type"`
	Title       looseString  `json:"title"`
	Description looseString  `json:"description"`
	Tags        looseStrings `json:"tags"`
	Priority    looseString  `json:"priority"`
	Frequency   looseString  `json:"frequency"`
	Duration    looseString  `json:"duration"`
}

// looseString is a string, number or bool. Objects, arrays and null decode
// as empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	*s = looseString(scalarText(data))
	return nil
}

// looseStrings is an array of scalars or a single comma-separated string.
type looseStrings []string

func (s *looseStrings) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*s = strings.Split(scalarText(data), ",")
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, scalarText(item))
	}
	*s = out
	return nil
}

func scalarText(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// ParseObjects extracts records from a model reply. Spans that are not valid
// JSON objects are skipped; types outside the closed set become task. It
// returns ErrNoObjects when nothing usable remains.
func ParseObjects(reply string) ([]record.Record, error) {
	var out []record.Record
	for _, span := range ScanObjects(StripFences(reply)) {
		var lr looseRecord
		if err := json.Unmarshal([]byte(span), &lr); err != nil {
			continue
		}
		if lr.Type == "" && lr.Title == "" && lr.Description == "" {
			continue
		}
		var tags []string
		if len(lr.Tags) > 0 {
			tags = record.AddTags(nil, lr.Tags...)
		}
		out = append(out, record.Record{
			Type:        record.ParseType(string(lr.Type)),
			Title:       string(lr.Title),
			Description: string(lr.Description),
			Tags:        tags,
			Priority:    record.Priority(strings.ToLower(strings.TrimSpace(string(lr.Priority)))),
			Frequency:   string(lr.Frequency),
			Duration:    string(lr.Duration),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoObjects
	}
	return out, nil
}
