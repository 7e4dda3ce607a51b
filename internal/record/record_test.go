package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"task", TypeTask},
		{"mood_entry", TypeMood},
		{"Mood", TypeMood},
		{" HABIT ", TypeHabit},
		{"goal", TypeGoal},
		{"health", TypeHealth},
		{"workout", TypeWorkout},
		{"reminder", TypeTask},
		{"", TypeTask},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseType(tt.in))
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("HIGH")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("critical")
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	r := Default("  buy milk ", refNow)

	assert.Equal(t, TypeTask, r.Type)
	assert.Equal(t, "Task", r.Title)
	assert.Equal(t, "Do: buy milk", r.Description)
	assert.Equal(t, []string{"task"}, r.Tags)
	assert.Equal(t, PriorityMedium, r.Priority)
	require.NotNil(t, r.DueDate)
	assert.Equal(t, "2025-06-11 18:00", r.DueDate.String())
}

func TestDayAt_MonthRollover(t *testing.T) {
	now := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-02 10:00", DayAt(now, 2, 10, 0).String())
}

func TestTimestamp_JSON(t *testing.T) {
	ts := DayAt(refNow, 1, 9, 45)
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-11 09:45"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(ts))

	require.NoError(t, json.Unmarshal([]byte(`"2025-06-11T09:45:00Z"`), &back))
	assert.Equal(t, "2025-06-11 09:45", back.String())

	assert.Error(t, json.Unmarshal([]byte(`"tomorrow evening"`), &back))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Record
		want Record
	}{
		{
			name: "task drops extras",
			in:   Record{Type: TypeTask, Priority: "HIGH", Frequency: "daily", Duration: "1 hour"},
			want: Record{Type: TypeTask, Priority: PriorityHigh, Tags: []string{}},
		},
		{
			name: "habit defaults frequency",
			in:   Record{Type: TypeHabit, Priority: "urgent", Duration: "1 hour"},
			want: Record{Type: TypeHabit, Priority: PriorityMedium, Tags: []string{}, Frequency: FrequencyDaily},
		},
		{
			name: "habit keeps weekly",
			in:   Record{Type: TypeHabit, Priority: PriorityLow, Frequency: "Weekly"},
			want: Record{Type: TypeHabit, Priority: PriorityLow, Tags: []string{}, Frequency: FrequencyWeekly},
		},
		{
			name: "workout defaults duration",
			in:   Record{Type: TypeWorkout, Priority: PriorityLow, Frequency: "daily"},
			want: Record{Type: TypeWorkout, Priority: PriorityLow, Tags: []string{}, Duration: DefaultDuration},
		},
		{
			name: "unknown type becomes task",
			in:   Record{Type: "note", Priority: PriorityLow},
			want: Record{Type: TypeTask, Priority: PriorityLow, Tags: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestAddTags(t *testing.T) {
	got := AddTags([]string{"Work", "work", " "}, "report", "urgent", "office", "extra")
	assert.Equal(t, []string{"work", "report", "urgent", "office"}, got)
}

func TestClone_IsDeep(t *testing.T) {
	due := DayAt(refNow, 1, 18, 0)
	r := Record{Type: TypeTask, Tags: []string{"a"}, DueDate: &due}
	c := r.Clone()
	c.Tags[0] = "b"
	*c.DueDate = DayAt(refNow, 5, 18, 0)

	assert.Equal(t, "a", r.Tags[0])
	assert.Equal(t, "2025-06-11 18:00", r.DueDate.String())
}
