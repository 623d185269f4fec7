package scheduler

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Job is a periodic background task.
type Job interface {
	Name() string
	Schedule() gocron.JobDefinition
	Execute()
}

type Manager struct {
	scheduler gocron.Scheduler
	logger    *zap.Logger
}

func NewManager(logger *zap.Logger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Manager{scheduler: s, logger: logger}, nil
}

// Register adds jobs; a job that fails to register is logged and skipped.
func (m *Manager) Register(jobs ...Job) {
	for _, job := range jobs {
		_, err := m.scheduler.NewJob(
			job.Schedule(),
			gocron.NewTask(job.Execute),
			gocron.WithName(job.Name()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			m.logger.Warn("failed to register job", zap.String("job", job.Name()), zap.Error(err))
			continue
		}
		m.logger.Info("job registered", zap.String("job", job.Name()))
	}
}

func (m *Manager) Start() {
	m.scheduler.Start()
	m.logger.Info("scheduler started", zap.Int("jobs", len(m.scheduler.Jobs())))
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Warn("failed to shutdown scheduler", zap.Error(err))
	}
	m.logger.Info("scheduler stopped")
}
