package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the wire format of due dates.
const TimestampLayout = "2006-01-02 15:04"

var inputLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a calendar date with a time of day, serialized as
// "YYYY-MM-DD HH:MM".
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the minute.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Minute)}
}

// DayAt returns the timestamp days after now's calendar day at hour:minute,
// in now's location.
func DayAt(now time.Time, days, hour, minute int) Timestamp {
	y, m, d := now.Date()
	return Timestamp{Time: time.Date(y, m, d+days, hour, minute, 0, 0, now.Location())}
}

// ParseTimestamp accepts the wire format and a few common variants.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// Equal reports whether t and u are the same instant.
func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}

func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	return t.UnmarshalText([]byte(s))
}
