package exemplar

import (
	"time"

	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
)

// apply returns the entries that survive the policy, oldest first, and how
// many were evicted. entries is not modified.
func (p RetentionPolicy) apply(entries []Exemplar, now time.Time) ([]Exemplar, int) {
	kept := make([]Exemplar, 0, len(entries))

	cutoff := time.Time{}
	if p.MaxAge > 0 {
		cutoff = now.Add(-p.MaxAge)
	}
	for _, e := range entries {
		if !cutoff.IsZero() && !e.Timestamp.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}

	if p.DedupeInputs {
		seen := make(map[string]bool, len(kept))
		newestFirst := make([]Exemplar, 0, len(kept))
		for i := len(kept) - 1; i >= 0; i-- {
			key := lexicon.Normalize(kept[i].Input)
			if seen[key] {
				continue
			}
			seen[key] = true
			newestFirst = append(newestFirst, kept[i])
		}
		kept = kept[:0]
		for i := len(newestFirst) - 1; i >= 0; i-- {
			kept = append(kept, newestFirst[i])
		}
	}

	if p.MaxEntries > 0 && len(kept) > p.MaxEntries {
		kept = kept[len(kept)-p.MaxEntries:]
	}
	return kept, len(entries) - len(kept)
}
