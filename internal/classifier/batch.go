package classifier

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// BatchClassify classifies texts concurrently, at most
// Config.BatchParallelism at a time. results[i] belongs to texts[i].
func (s *Service) BatchClassify(ctx context.Context, texts []string) [][]record.Record {
	results := make([][]record.Record, len(texts))

	var g errgroup.Group
	g.SetLimit(s.cfg.BatchParallelism)
	for i, text := range texts {
		g.Go(func() error {
			results[i] = s.classify(ctx, "", text)
			return nil
		})
	}
	// classify never returns an error.
	_ = g.Wait()

	s.logger.Debug("batch classified",
		zap.Int("messages", len(texts)),
		zap.Int("parallelism", s.cfg.BatchParallelism),
	)
	return results
}
