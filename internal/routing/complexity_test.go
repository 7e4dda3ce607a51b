package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplexityRouter_Signals(t *testing.T) {
	c := NewComplexityRouter()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "allow-listed report",
			text: "tomorrow I need to send the report to my manager",
		},
		{
			name: "allow-list beats other signals",
			text: "tomorrow I need to send the report and also call mom and dad and my sister",
		},
		{
			name: "short message",
			text: "Buy milk",
		},
		{
			name: "long message",
			text: "I have to remember to pick up the dry cleaning before the shop closes at six on the way home",
			want: []string{SignalWordCount},
		},
		{
			name: "many conjunctions",
			text: "buy bread and milk and eggs and cheese",
			want: []string{SignalConjunction},
		},
		{
			name: "parallel marker",
			text: "I also need to call mom",
			want: []string{SignalParallel},
		},
		{
			name: "many commas",
			text: "milk, bread, eggs, cheese, butter",
			want: []string{SignalCommas},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Signals(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) > 0, c.IsComplex(tt.text))
		})
	}
}
