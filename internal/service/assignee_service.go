package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// AssigneeService manages the assignee ledger: who holds which role on an
// application, with at most one active holder per role.
type AssigneeService struct {
	repo   applicationStore
	users  userFinder
	audit  auditLogger
	logger *zap.Logger
	now    func() time.Time
}

// NewAssigneeService constructs the service.
func NewAssigneeService(repo applicationStore, users userFinder, audit auditLogger, logger *zap.Logger) *AssigneeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssigneeService{
		repo:   repo,
		users:  users,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Assign makes the requested user the active holder of a role, closing any
// displaced holder's tenure. Assigning the current holder again is a no-op.
func (s *AssigneeService) Assign(ctx context.Context, applicationID string, req dto.AssignApplicationRequest, actorID string) (*dto.AssignApplicationResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user to assign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot assign an inactive user")
	}
	if !user.CanHoldAssignedRole(req.Role) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("user role %s cannot hold %s on an application", user.Role, req.Role))
	}

	now := s.now()
	alreadyAssigned, displaced := app.AssignUser(req.UserID, req.Role, now)

	result := &dto.AssignApplicationResult{
		ApplicationID:   app.ID,
		Role:            req.Role,
		AssignedUserID:  req.UserID,
		AlreadyAssigned: alreadyAssigned,
		DisplacedUserID: displaced,
	}
	if alreadyAssigned {
		return result, nil
	}

	if req.CaseNote != "" {
		app.CaseNotes = append(app.CaseNotes, models.CaseNote{
			ID:            newID(),
			ApplicationID: app.ID,
			Type:          models.CaseNoteGeneral,
			Text:          req.CaseNote,
			CreatedByID:   actorID,
			CreatedAt:     now,
		})
	}

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}

	result.NotifyUserIDs = []string{req.UserID}
	if displaced != nil {
		result.NotifyUserIDs = append(result.NotifyUserIDs, *displaced)
	}

	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionAssignApplication, app.ID, map[string]interface{}{
		"role":      req.Role,
		"userId":    req.UserID,
		"displaced": displaced,
	})
	return result, nil
}

// Unassign closes every active role entry the user holds on the application.
// A second call for the same user is a no-op.
func (s *AssigneeService) Unassign(ctx context.Context, applicationID string, req dto.UnassignApplicationRequest, actorID string) (*dto.UnassignApplicationResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}

	closed := app.UnassignUser(req.UserID, s.now())
	result := &dto.UnassignApplicationResult{
		ApplicationID: app.ID,
		UserID:        req.UserID,
		Unassigned:    closed,
	}
	if !closed {
		return result, nil
	}

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}

	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionUnassignApplication, app.ID, map[string]interface{}{
		"userId": req.UserID,
	})
	return result, nil
}
