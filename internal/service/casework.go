package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

func newID() string { return uuid.NewString() }

// systemActorID marks ledger entries written by background sweeps rather
// than by a signed-in user.
const systemActorID = "system"

// applicationStore is the repository contract every gate depends on: load
// the fully hydrated aggregate, save all pending changes atomically.
type applicationStore interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	SaveApplication(ctx context.Context, app *models.Application) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// loadApplication fetches the aggregate, mapping a missing row to the
// not-found taxonomy.
func loadApplication(ctx context.Context, store applicationStore, id string) (*models.Application, error) {
	app, err := store.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// saveApplication commits all pending changes for one operation in a single
// transactional save. The cancellation signal is checked here, before the
// commit, never mid-computation.
func saveApplication(ctx context.Context, store applicationStore, app *models.Application) error {
	if err := ctx.Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "operation cancelled before save")
	}
	if err := store.SaveApplication(ctx, app); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save application changes")
	}
	return nil
}

// userPermittedToAmend is the shared reconciliation precondition: the
// application sits in one of the two officer review stages and the acting
// user actively holds an officer role on it. Fails closed.
func userPermittedToAmend(app *models.Application, userID string) bool {
	if app == nil || userID == "" {
		return false
	}
	switch app.CurrentStatus() {
	case models.StatusWoodlandOfficerReview, models.StatusAdminOfficerReview:
	default:
		return false
	}
	return app.IsAssigned(userID, models.AssignedRoleWoodlandOfficer, models.AssignedRoleAdminOfficer)
}

// applicantID resolves who should be notified as the applicant: the active
// Applicant assignee when present, otherwise the application creator.
func applicantID(app *models.Application) string {
	if e := app.ActiveAssignee(models.AssignedRoleApplicant); e != nil {
		return e.AssignedUserID
	}
	return app.CreatedByID
}

// emitAudit reports an audit-worthy fact to the external audit collaborator.
// Audit failure never fails the operation that produced it.
func emitAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, actorID, action, applicationID string, payload map[string]interface{}) {
	if audit == nil {
		return
	}
	body, _ := json.Marshal(payload)
	if err := audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "application",
		ResourceID: &applicationID,
		NewValues:  body,
	}); err != nil && logger != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
