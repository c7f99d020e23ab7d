package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/pkg/jobs"
)

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// AmendmentTimerService runs the periodic sweeps over overdue amendment
// rounds. The reminder sweep notifies applicants approaching their deadline;
// the withdrawal sweep withdraws applications whose deadline has passed with
// no response. Both sweeps are per-application: one failure is logged and the
// remainder proceed.
type AmendmentTimerService struct {
	amendments   *AmendmentReviewService
	applications *ApplicationService
	notifier     Notifier
	queue        jobDispatcher
	metrics      *MetricsService
	logger       *zap.Logger

	reminderWindow time.Duration
}

func NewAmendmentTimerService(amendments *AmendmentReviewService, applications *ApplicationService, notifier Notifier, queue jobDispatcher, metrics *MetricsService, reminderWindow time.Duration, logger *zap.Logger) *AmendmentTimerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reminderWindow <= 0 {
		reminderWindow = 48 * time.Hour
	}
	return &AmendmentTimerService{
		amendments:     amendments,
		applications:   applications,
		notifier:       notifier,
		queue:          queue,
		metrics:        metrics,
		logger:         logger,
		reminderWindow: reminderWindow,
	}
}

// RunReminderSweep notifies the applicant of every round falling due within
// the reminder window and stamps the round so it is not picked up again.
// Returns the number of reminders sent.
func (s *AmendmentTimerService) RunReminderSweep(ctx context.Context) (int, error) {
	due, err := s.amendments.ForReminder(ctx, s.reminderWindow)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, late := range due {
		if err := s.notifier.NotifyAmendmentReminder(ctx, late); err != nil {
			s.logger.Warn("amendment reminder delivery failed",
				zap.String("applicationId", late.ApplicationID), zap.Error(err))
			continue
		}
		if err := s.amendments.MarkReminderSent(ctx, late.ApplicationID, late.AmendmentReviewID); err != nil {
			s.logger.Error("failed to stamp amendment reminder",
				zap.String("applicationId", late.ApplicationID), zap.Error(err))
			continue
		}
		sent++
	}
	s.metrics.AddAmendmentRemindersSent(sent)
	return sent, nil
}

// RunWithdrawalSweep withdraws every application whose amendment deadline
// passed with no applicant response, then notifies the applicant and
// woodland officer. Returns the number of withdrawals performed.
func (s *AmendmentTimerService) RunWithdrawalSweep(ctx context.Context) (int, error) {
	due, err := s.amendments.ForWithdrawal(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.SetOverdueAmendmentReviews(len(due))
	withdrawn := 0
	for _, late := range due {
		req := dto.WithdrawApplicationRequest{
			Reason: "No response to requested felling and restocking amendments by the deadline",
		}
		if _, err := s.applications.Withdraw(ctx, late.ApplicationID, req, systemActorID); err != nil {
			s.logger.Error("automatic withdrawal failed",
				zap.String("applicationId", late.ApplicationID), zap.Error(err))
			continue
		}
		if err := s.notifier.NotifyAmendmentWithdrawal(ctx, late); err != nil {
			s.logger.Warn("withdrawal notification delivery failed",
				zap.String("applicationId", late.ApplicationID), zap.Error(err))
		}
		withdrawn++
	}
	return withdrawn, nil
}

// EnqueueSweeps schedules both sweeps on the background queue. The queue
// handler routes on the job type.
func (s *AmendmentTimerService) EnqueueSweeps() error {
	if err := s.queue.Enqueue(jobs.Job{ID: newID(), Type: JobTypeAmendmentReminderSweep}); err != nil {
		return err
	}
	return s.queue.Enqueue(jobs.Job{ID: newID(), Type: JobTypeAmendmentWithdrawalSweep})
}

// Job types dispatched on the background queue.
const (
	JobTypeAmendmentReminderSweep   = "amendment_reminder_sweep"
	JobTypeAmendmentWithdrawalSweep = "amendment_withdrawal_sweep"
)

// Handle processes a sweep job from the queue.
func (s *AmendmentTimerService) Handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case JobTypeAmendmentReminderSweep:
		n, err := s.RunReminderSweep(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("amendment reminder sweep complete", zap.Int("sent", n))
	case JobTypeAmendmentWithdrawalSweep:
		n, err := s.RunWithdrawalSweep(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("amendment withdrawal sweep complete", zap.Int("withdrawn", n))
	default:
		s.logger.Warn("unknown sweep job type", zap.String("type", job.Type))
	}
	return nil
}
