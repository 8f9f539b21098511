package fetcher

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type warmState int

const (
	stateCold warmState = iota
	stateWarm
	stateBlocked
)

// Warmup gates all crawl traffic behind a one-time long randomized startup
// delay and a homepage visit. A block response during the visit poisons the
// controller permanently; any other failure degrades to an optimistic warm.
type Warmup struct {
	mu    sync.Mutex
	state warmState

	startupBase   time.Duration
	startupJitter time.Duration
	warmupDelay   time.Duration
	jitterFactor  float64

	visit func() (status int, err error)
	sleep func(time.Duration)
}

// NewWarmup builds a controller around visit, which must issue the homepage
// request and report its HTTP status.
func NewWarmup(startupBase, startupJitter, warmupDelay time.Duration, jitterFactor float64, visit func() (int, error)) *Warmup {
	return &Warmup{
		startupBase:   startupBase,
		startupJitter: startupJitter,
		warmupDelay:   warmupDelay,
		jitterFactor:  jitterFactor,
		visit:         visit,
		sleep:         time.Sleep,
	}
}

// Ensure completes the warm-up on first call and is a no-op afterwards.
// Returns ErrBlocked permanently once the origin blocked the warm-up visit.
func (w *Warmup) Ensure() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case stateWarm:
		return nil
	case stateBlocked:
		return ErrBlocked
	}

	w.startupDelay()

	log.Info().Msg("warming up session with a homepage visit")
	w.sleep(Jittered(w.warmupDelay, w.jitterFactor))

	status, err := w.visit()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("warm-up visit failed, proceeding with caution")
		w.sleep(Jittered(10*time.Second, w.jitterFactor))
		w.state = stateWarm
	case blockStatus(status):
		log.Error().Int("status", status).Msg("blocked during warm-up, aborting the run")
		w.state = stateBlocked
		return ErrBlocked
	case status < 200 || status >= 300:
		log.Warn().Int("status", status).Msg("unexpected warm-up status, proceeding with caution")
		w.sleep(Jittered(8*time.Second, w.jitterFactor))
		w.state = stateWarm
	default:
		log.Info().Msg("session warm-up successful")
		w.sleep(Jittered(3*time.Second, w.jitterFactor))
		w.state = stateWarm
	}
	return nil
}

// startupDelay sits out the long randomized pre-crawl quiet period, logging
// every 30s so operators know the job is alive.
func (w *Warmup) startupDelay() {
	total := w.startupBase + time.Duration(rand.Float64()*float64(w.startupJitter))
	if total <= 0 {
		return
	}
	log.Info().
		Dur("total", total).
		Msg("startup delay before any requests")

	remaining := total
	for remaining > 0 {
		step := time.Second
		if remaining < step {
			step = remaining
		}
		w.sleep(step)
		remaining -= step
		if secs := int(remaining.Seconds()); secs > 0 && secs%30 == 0 {
			log.Info().Int("seconds_remaining", secs).Msg("startup delay in progress")
		}
	}
	log.Info().Msg("startup delay complete, beginning crawl")
}
