package processor

import (
	"context"
	"sync/atomic"

	"voice-bridge/internal/observability"
)

// callStats counts traffic through one call. Loops update it concurrently.
type callStats struct {
	bytesFromCaller atomic.Int64
	chunksToAgent   atomic.Int64
	bytesToAgent    atomic.Int64
	bytesFromAgent  atomic.Int64
	malformedFrames atomic.Int64
	clears          atomic.Int64
	turns           atomic.Int64
}

func (s *callStats) log(ctx context.Context, logger *observability.Logger, sess *Session) {
	logger.Metrics(ctx,
		observability.MetricField{Key: "call_duration_ms", Value: sess.Duration().Milliseconds()},
		observability.MetricField{Key: "bytes_from_caller", Value: s.bytesFromCaller.Load()},
		observability.MetricField{Key: "chunks_to_agent", Value: s.chunksToAgent.Load()},
		observability.MetricField{Key: "bytes_to_agent", Value: s.bytesToAgent.Load()},
		observability.MetricField{Key: "bytes_from_agent", Value: s.bytesFromAgent.Load()},
		observability.MetricField{Key: "malformed_frames", Value: s.malformedFrames.Load()},
		observability.MetricField{Key: "barge_in_clears", Value: s.clears.Load()},
		observability.MetricField{Key: "conversation_turns", Value: s.turns.Load()},
	)
}
