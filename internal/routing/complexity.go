package routing

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
)

const (
	maxSimpleWords  = 15
	maxSimpleAnds   = 2
	maxSimpleCommas = 3
)

// Phrasings that always take the deterministic path.
var simplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`day after tomorrow.*send.*report`),
	regexp.MustCompile(`tomorrow.*send.*report`),
	regexp.MustCompile(`day after tomorrow.*go.*grocer`),
	regexp.MustCompile(`tomorrow.*go.*grocer`),
	regexp.MustCompile(`presentation.*universit`),
	regexp.MustCompile(`code.*work`),
}

var parallelMarkers = lexicon.New("simultaneously", "in parallel", "also", "in addition", "at the same time")

// Signal names reported by ComplexityRouter.Signals.
const (
	SignalWordCount   = "word_count"
	SignalConjunction = "conjunctions"
	SignalParallel    = "parallel_marker"
	SignalCommas      = "commas"
)

// ComplexityRouter decides whether a message needs the generative path.
type ComplexityRouter struct{}

// NewComplexityRouter creates a ComplexityRouter.
func NewComplexityRouter() *ComplexityRouter {
	return &ComplexityRouter{}
}

// IsComplex reports whether any complexity signal fires for text.
func (c *ComplexityRouter) IsComplex(text string) bool {
	return len(c.Signals(text)) > 0
}

// Signals lists every complexity signal that fires for text. Allow-listed
// simple phrasings report none.
func (c *ComplexityRouter) Signals(text string) []string {
	t := lexicon.Normalize(text)
	for _, re := range simplePatterns {
		if re.MatchString(t) {
			return nil
		}
	}

	var signals []string
	if len(lexicon.Words(t)) > maxSimpleWords {
		signals = append(signals, SignalWordCount)
	}
	if lexicon.CountWord(t, "and") > maxSimpleAnds {
		signals = append(signals, SignalConjunction)
	}
	if parallelMarkers.Any(t) {
		signals = append(signals, SignalParallel)
	}
	if strings.Count(t, ",") > maxSimpleCommas {
		signals = append(signals, SignalCommas)
	}
	return signals
}
