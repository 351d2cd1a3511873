package commands

import (
	"context"
	"errors"
	"fmt"
	"github.com/shirou/gopsutil/cpu"
	"runtime"
	"time"
	"twitchbot/internal/app/domain/message"
	"twitchbot/internal/app/ports"
)

// CPUSampler returns the host CPU load in percent.
type CPUSampler func() (float64, error)

func sampleCPU() (float64, error) {
	percent, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percent) == 0 {
		return 0, errors.New("cpu: no samples")
	}
	return percent[0], nil
}

type Status struct {
	status ports.StatusPort
	cpu    CPUSampler
}

// NewStatus builds the status command. A nil sampler reads the host CPU.
func NewStatus(status ports.StatusPort, sampler CPUSampler) *Status {
	if sampler == nil {
		sampler = sampleCPU
	}
	return &Status{status: status, cpu: sampler}
}

func (s *Status) Handle(_ context.Context, _ message.Message) (string, error) {
	st := s.status.Status()

	var uptime time.Duration
	if !st.StartedAt.IsZero() {
		uptime = time.Since(st.StartedAt).Truncate(time.Second)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	percent, err := s.cpu()
	if err != nil {
		return "", fmt.Errorf("sample cpu: %w", err)
	}
	return fmt.Sprintf("bot running %v • CPU load %.2f%% • memory %v MB • %s", uptime, percent, m.Sys/1024/1024, st.State), nil
}
