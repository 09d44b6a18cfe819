package services

import (
	"github.com/robfig/cron/v3"

	"liveshop/pkg/logger"
)

// Sweeper fires the auction sweep once per second. The callback must not
// block; it only posts work onto the hub's command queue.
type Sweeper struct {
	cron *cron.Cron
	log  logger.Logger
}

func NewSweeper(tick func(), log logger.Logger) (*Sweeper, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc("@every 1s", tick); err != nil {
		return nil, err
	}
	return &Sweeper{cron: c, log: log}, nil
}

func (s *Sweeper) Start() {
	s.log.Info("Starting auction sweeper")
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	s.log.Info("Stopping auction sweeper")
	s.cron.Stop()
}
