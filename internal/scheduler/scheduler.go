package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maisonlabs/courtier/internal/clock"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	obsmetrics "github.com/maisonlabs/courtier/internal/observability/metrics"
	paymentdomain "github.com/maisonlabs/courtier/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
	Config  Config                       `optional:"true"`
}

// Scheduler runs the periodic housekeeping jobs: expiring mandates past
// their end date and flagging unpaid payments past their due date.
type Scheduler struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	metrics *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:      p.DB,
		log:     p.Log.Named("scheduler"),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		metrics: p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	s.metrics.IncJobRun(name)
	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out", zap.String("job", name), zap.Error(err))
		return nil
	}

	s.metrics.IncJobError(name)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "expire_mandates", s.ExpireMandatesJob))
	err = errors.Join(err, s.runJob(parent, "overdue_payments", s.OverduePaymentsJob))
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ExpireMandatesJob moves active mandates whose end date has passed to
// EXPIRED, one batch per run.
func (s *Scheduler) ExpireMandatesJob(ctx context.Context) error {
	now := s.clock.Now()

	var mandates []mandatedomain.Mandate
	err := s.db.WithContext(ctx).
		Where("status = ?", mandatedomain.StatusActive).
		Where("end_date IS NOT NULL AND end_date < ?", now).
		Limit(s.cfg.BatchSize).
		Find(&mandates).Error
	if err != nil {
		return err
	}

	for i := range mandates {
		mandate := &mandates[i]
		result := s.db.WithContext(ctx).
			Model(&mandatedomain.Mandate{}).
			Where("id = ? AND status = ?", mandate.ID, mandatedomain.StatusActive).
			Updates(map[string]any{
				"status":     mandatedomain.StatusExpired,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			s.log.Info("mandate expired",
				zap.Int64("mandate_id", int64(mandate.ID)),
				zap.String("mandate_number", mandate.MandateNumber),
			)
		}
	}
	return nil
}

// OverduePaymentsJob moves pending payments whose due date has passed to
// OVERDUE, one batch per run.
func (s *Scheduler) OverduePaymentsJob(ctx context.Context) error {
	now := s.clock.Now()

	var payments []paymentdomain.Payment
	err := s.db.WithContext(ctx).
		Where("status = ?", paymentdomain.StatusPending).
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Limit(s.cfg.BatchSize).
		Find(&payments).Error
	if err != nil {
		return err
	}

	for i := range payments {
		payment := &payments[i]
		result := s.db.WithContext(ctx).
			Model(&paymentdomain.Payment{}).
			Where("id = ? AND status = ?", payment.ID, paymentdomain.StatusPending).
			Updates(map[string]any{
				"status":     paymentdomain.StatusOverdue,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			s.log.Info("payment overdue",
				zap.Int64("payment_id", int64(payment.ID)),
				zap.String("payment_number", payment.PaymentNumber),
			)
		}
	}
	return nil
}
