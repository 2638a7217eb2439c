package viewmodel

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/studyhub/sessionview/internal/logger"
)

// Ticker drives Hub.Tick on a cron schedule such as "@every 1s".
type Ticker struct {
	cron *cron.Cron
}

func StartTicker(spec string, h *Hub, now func() time.Time) (*Ticker, error) {
	if now == nil {
		now = time.Now
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { h.Tick(now()) }); err != nil {
		return nil, err
	}
	c.Start()
	logger.Component("ticker").Info().Str("spec", spec).Msg("view ticker started")
	return &Ticker{cron: c}, nil
}

// Stop waits for a running tick to finish or ctx to expire.
func (t *Ticker) Stop(ctx context.Context) {
	select {
	case <-t.cron.Stop().Done():
	case <-ctx.Done():
	}
}
