package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// applicationLister narrows the repository to the listing queries.
type applicationLister interface {
	ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int, error)
}

// ApplicationService serves application summaries and the status-level
// operations that belong to no single review gate: withdrawal and its
// reversal.
type ApplicationService struct {
	repo   applicationStore
	lister applicationLister
	cache  *CacheService
	audit  auditLogger
	logger *zap.Logger
	now    func() time.Time
}

func NewApplicationService(repo applicationStore, lister applicationLister, cache *CacheService, audit auditLogger, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:   repo,
		lister: lister,
		cache:  cache,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the fully hydrated application.
func (s *ApplicationService) Get(ctx context.Context, applicationID string) (*models.Application, error) {
	return loadApplication(ctx, s.repo, applicationID)
}

// Summary builds the header read model with the derived current status and
// the active assignee per officer role.
func (s *ApplicationService) Summary(ctx context.Context, applicationID string) (*dto.ApplicationSummary, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	return summarise(app), nil
}

// List returns summaries matching the filter with the total match count.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]dto.ApplicationSummary, int, error) {
	apps, total, err := s.lister.ListApplications(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	out := make([]dto.ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		out = append(out, *summarise(app))
	}
	return out, total, nil
}

// StatusHistory returns the ledger ordered oldest first together with a
// cache-hit flag. The result is cached briefly since listing screens poll it.
func (s *ApplicationService) StatusHistory(ctx context.Context, applicationID string) ([]models.StatusHistoryEntry, bool, error) {
	cacheKey := fmt.Sprintf("application:%s:status-history", applicationID)
	var cached []models.StatusHistoryEntry
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, false, err
	}
	history := make([]models.StatusHistoryEntry, len(app.StatusHistory))
	copy(history, app.StatusHistory)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})

	if err := s.cache.Set(ctx, cacheKey, history, 0); err != nil {
		s.logger.Warn("status history cache write failed", zap.String("applicationId", applicationID), zap.Error(err))
	}
	return history, false, nil
}

// Withdraw appends the Withdrawn status and records the reason as a case
// note. Terminal applications cannot be withdrawn.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID string, req dto.WithdrawApplicationRequest, actorID string) (*dto.StatusChangeResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	prior := app.CurrentStatus()
	switch prior {
	case models.StatusWithdrawn:
		return nil, appErrors.Clone(appErrors.ErrConflict, "application is already withdrawn")
	case models.StatusApproved, models.StatusRefused:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "a decided application cannot be withdrawn")
	}

	now := s.now()
	app.AppendStatus(models.StatusWithdrawn, actorID, now)
	app.CaseNotes = append(app.CaseNotes, models.CaseNote{
		ID:            newID(),
		ApplicationID: app.ID,
		Type:          models.CaseNoteWithdrawal,
		Text:          req.Reason,
		CreatedByID:   actorID,
		CreatedAt:     now,
	})

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	s.invalidateStatusHistory(ctx, app.ID)
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionApplicationWithdrawn, app.ID, map[string]interface{}{
		"priorStatus": string(prior),
	})
	return &dto.StatusChangeResult{
		ApplicationID: app.ID,
		NewStatus:     models.StatusWithdrawn,
		PriorStatus:   prior,
		ApplicantID:   applicantID(app),
	}, nil
}

// RevertWithdrawal restores the status the application held before it was
// withdrawn. The restoration appends a fresh ledger entry rather than
// deleting the withdrawal, so the ledger keeps the full history.
func (s *ApplicationService) RevertWithdrawal(ctx context.Context, applicationID, actorID string) (*dto.StatusChangeResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	if app.CurrentStatus() != models.StatusWithdrawn {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application is not withdrawn")
	}
	restored, ok := app.StatusBeforeWithdrawal()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrDataIntegrity, "no status precedes the withdrawal")
	}

	app.AppendStatus(restored, actorID, s.now())
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	s.invalidateStatusHistory(ctx, app.ID)
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionWithdrawalReverted, app.ID, map[string]interface{}{
		"restoredStatus": string(restored),
	})
	return &dto.StatusChangeResult{
		ApplicationID: app.ID,
		NewStatus:     restored,
		PriorStatus:   models.StatusWithdrawn,
		ApplicantID:   applicantID(app),
	}, nil
}

func (s *ApplicationService) invalidateStatusHistory(ctx context.Context, applicationID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("application:%s:status-history", applicationID)); err != nil {
		s.logger.Warn("status history cache invalidation failed", zap.String("applicationId", applicationID), zap.Error(err))
	}
}

func summarise(app *models.Application) *dto.ApplicationSummary {
	sum := &dto.ApplicationSummary{
		ID:              app.ID,
		Reference:       app.Reference,
		CurrentStatus:   app.CurrentStatus(),
		AreaCode:        app.AreaCode,
		WoodlandOwnerID: app.WoodlandOwnerID,
		DateReceived:    app.DateReceived,
		FinalActionDate: app.FinalActionDate,
	}
	if e := app.ActiveAssignee(models.AssignedRoleAdminOfficer); e != nil {
		sum.AdminOfficerID = &e.AssignedUserID
	}
	if e := app.ActiveAssignee(models.AssignedRoleWoodlandOfficer); e != nil {
		sum.WoodlandOfficerID = &e.AssignedUserID
	}
	if e := app.ActiveAssignee(models.AssignedRoleFieldManager); e != nil {
		sum.FieldManagerID = &e.AssignedUserID
	}
	return sum
}
