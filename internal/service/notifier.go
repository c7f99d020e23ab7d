package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
)

// Notifier delivers casework notifications to users. Delivery is best
// effort; callers never fail an operation on a notification error.
type Notifier interface {
	NotifyAssignment(ctx context.Context, userID, applicationID string, role models.AssignedRole) error
	NotifyStatusChange(ctx context.Context, result dto.StatusChangeResult) error
	NotifyAmendmentReminder(ctx context.Context, late dto.LateAmendmentResponse) error
	NotifyAmendmentWithdrawal(ctx context.Context, late dto.LateAmendmentResponse) error
}

// LoggingNotifier writes notifications to the structured log. It stands in
// where no external notification channel is configured.
type LoggingNotifier struct {
	logger *zap.Logger
}

func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) NotifyAssignment(_ context.Context, userID, applicationID string, role models.AssignedRole) error {
	n.logger.Info("assignment notification",
		zap.String("userId", userID),
		zap.String("applicationId", applicationID),
		zap.String("role", string(role)))
	return nil
}

func (n *LoggingNotifier) NotifyStatusChange(_ context.Context, result dto.StatusChangeResult) error {
	n.logger.Info("status change notification",
		zap.String("applicationId", result.ApplicationID),
		zap.String("newStatus", string(result.NewStatus)),
		zap.String("applicantId", result.ApplicantID))
	return nil
}

func (n *LoggingNotifier) NotifyAmendmentReminder(_ context.Context, late dto.LateAmendmentResponse) error {
	n.logger.Info("amendment reminder notification",
		zap.String("applicationId", late.ApplicationID),
		zap.String("reference", late.ApplicationReference),
		zap.Time("responseDeadline", late.ResponseDeadline))
	return nil
}

func (n *LoggingNotifier) NotifyAmendmentWithdrawal(_ context.Context, late dto.LateAmendmentResponse) error {
	n.logger.Info("amendment withdrawal notification",
		zap.String("applicationId", late.ApplicationID),
		zap.String("reference", late.ApplicationReference),
		zap.Time("responseDeadline", late.ResponseDeadline))
	return nil
}
