package station

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/logging"
)

// Run polls the link and checks liveness until the context is done.
func (s *Station) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting station", "poll_interval", s.pollInterval, "data_timeout", s.monitor.Timeout())
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()
	live := time.NewTicker(s.livenessInterval)
	defer live.Stop()

	for {
		select {
		case <-poll.C:
			s.pollOnce(ctx)
		case <-live.C:
			s.CheckLiveness(ctx, s.now())
		case <-ctx.Done():
			log.Info("stopping station")
			return
		}
	}
}

// pollOnce drains one read from the transport into the pipeline.
func (s *Station) pollOnce(ctx context.Context) {
	if s.transport == nil {
		return
	}
	lines, err := s.transport.Poll(ctx)
	now := s.now()
	for _, line := range lines {
		s.HandleLine(ctx, line, now)
	}
	if err != nil {
		var rerr *link.ReadError
		msg := err.Error()
		if errors.As(err, &rerr) {
			msg = rerr.Err.Error()
		}
		logging.FromContext(ctx).Error("link read failed", "err", err)
		s.updateStatus(ctx, link.StatusDisconnected, fmt.Sprintf("Read error: %s", msg), now)
	}
}
