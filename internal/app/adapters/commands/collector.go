package commands

import (
	"context"
	"log/slog"
	"time"
	"twitchbot/internal/app/adapters/metrics"
	"twitchbot/pkg/logger"
)

// CollectCPU samples the host CPU into the metrics gauge every interval
// until ctx is done.
func CollectCPU(ctx context.Context, log logger.Logger, interval time.Duration, sampler CPUSampler) {
	if sampler == nil {
		sampler = sampleCPU
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			percent, err := sampler()
			if err != nil {
				log.Warn("Failed to sample CPU", slog.String("error", err.Error()))
				continue
			}
			metrics.CPUUsage.Set(percent)
		}
	}
}
