// Package resources samples process host utilization into the metrics
// gauges on a fixed interval.
package resources

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	domrepo "StockCast/internal/domain/repository"
	xlogger "StockCast/pkg/logger"
)

// Sampler periodically reads CPU and memory utilization. It runs on its
// own goroutine with an explicit start/stop lifecycle and never blocks
// request handling.
type Sampler struct {
	metrics  domrepo.Metrics
	interval time.Duration
	logger   *xlogger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSampler(metrics domrepo.Metrics, interval time.Duration, logger *xlogger.Logger) *Sampler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Sampler{metrics: metrics, interval: interval, logger: logger}
}

// Start launches the sampling loop. Calling Start twice without Stop is
// a programming error.
func (s *Sampler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sample()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Sampler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sampler) sample() {
	var cpuPercent float64
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	} else if err != nil {
		s.logger.Warn("cpu sample failed", xlogger.Error(err))
	}

	var memPercent float64
	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = vm.UsedPercent
	} else {
		s.logger.Warn("memory sample failed", xlogger.Error(err))
	}

	s.metrics.SetResourceUsage(cpuPercent, memPercent)
}
