package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

func TestTypeRouter_DetectTypes(t *testing.T) {
	r := NewTypeRouter()

	tests := []struct {
		name string
		text string
		want []record.Type
		rule string
	}{
		{
			name: "learning a programming language is a habit",
			text: "I want to learn Python programming",
			want: []record.Type{record.TypeHabit},
			rule: "special:learn_programming_language",
		},
		{
			name: "someday reading is a goal",
			text: "Someday I will read all of Tolstoy",
			want: []record.Type{record.TypeGoal},
			rule: "special:someday_read",
		},
		{
			name: "important to learn a language",
			text: "It is important to learn a new language",
			want: []record.Type{record.TypeHabit},
			rule: "special:important_to_learn_language",
		},
		{
			name: "plan to learn a framework",
			text: "I plan to learn a new framework",
			want: []record.Type{record.TypeHabit},
			rule: "special:plan_to_learn_technology",
		},
		{
			name: "certificate outranks need",
			text: "I need to get a certificate in accounting",
			want: []record.Type{record.TypeGoal},
			rule: "special:certificate",
		},
		{
			name: "interview outranks nerves",
			text: "I'm nervous about the interview",
			want: []record.Type{record.TypeTask},
			rule: "special:interview",
		},
		{
			name: "report to manager",
			text: "tomorrow I need to send the report to my manager",
			want: []record.Type{record.TypeTask},
			rule: "group:task",
		},
		{
			name: "task wins over mood",
			text: "I feel tired after work",
			want: []record.Type{record.TypeTask},
			rule: "group:task",
		},
		{
			name: "exam anxiety is a mood",
			text: "I'm very nervous about the exam",
			want: []record.Type{record.TypeMood},
			rule: "task_vs_mood:exam_anxiety",
		},
		{
			name: "plain mood",
			text: "I feel happy today",
			want: []record.Type{record.TypeMood},
			rule: "group:mood_entry",
		},
		{
			name: "habit",
			text: "I want to start running every morning",
			want: []record.Type{record.TypeHabit},
			rule: "group:habit",
		},
		{
			name: "goal",
			text: "I dream of opening a business",
			want: []record.Type{record.TypeGoal},
			rule: "group:goal",
		},
		{
			name: "health",
			text: "I should check my blood pressure",
			want: []record.Type{record.TypeHealth},
			rule: "group:health",
		},
		{
			name: "workout",
			text: "Going to the gym for squats",
			want: []record.Type{record.TypeWorkout},
			rule: "group:workout",
		},
		{
			name: "multi label from weak cues",
			text: "I love my cat and I want to adopt another one",
			want: []record.Type{record.TypeMood, record.TypeGoal},
			rule: "multi_label",
		},
		{
			name: "short conjunction message skips multi label",
			text: "cats and dogs",
			want: []record.Type{record.TypeTask},
			rule: "default",
		},
		{
			name: "default",
			text: "Hello there",
			want: []record.Type{record.TypeTask},
			rule: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Detect(tt.text)
			assert.Equal(t, tt.want, got.Types)
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, tt.want, r.DetectTypes(tt.text))
		})
	}
}

func TestTypeRouter_NeverExceedsMaxTypes(t *testing.T) {
	r := NewTypeRouter()
	got := r.DetectTypes("I love mornings and I want to practice my routine and buy new shoes")
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), MaxTypes)
}
