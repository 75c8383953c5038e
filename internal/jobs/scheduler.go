package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
)

// Task trabajo periódico. El error sólo se registra; el siguiente disparo ocurre igual.
type Task func(ctx context.Context) error

// Scheduler planificador de trabajos en segundo plano sobre gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(log *logger.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("crear scheduler: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{scheduler: s, log: log.Component("jobs"), ctx: ctx, cancel: cancel}, nil
}

// Register programa task cada interval con primer disparo inmediato.
// Un disparo que se solapa con uno en curso se reprograma en lugar de encolarse.
// interval <= 0 no registra nada y devuelve false.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) (bool, error) {
	if interval <= 0 {
		s.log.Info().Str("job", name).Msg("job disabled")
		return false, nil
	}
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.wrap(name, task)),
		gocron.WithName(name),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return false, fmt.Errorf("registrar job %s: %w", name, err)
	}
	s.log.Info().Str("job", name).Dur("interval", interval).Msg("job registered")
	return true, nil
}

func (s *Scheduler) wrap(name string, task Task) func() {
	return func() {
		start := time.Now()
		if err := task(s.ctx); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", name).Dur("elapsed", time.Since(start)).Msg("job finished")
	}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop cancela el contexto de los trabajos en curso y espera a que terminen.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.scheduler.Shutdown()
}
