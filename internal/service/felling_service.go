package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/dto"
	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

// FellingReconciliationService converts the applicant's proposed felling and
// restocking plan into the case officer's confirmed plan and tracks
// amendments against the proposed baseline.
type FellingReconciliationService struct {
	repo    applicationStore
	audit   auditLogger
	species *models.SpeciesCatalogue
	logger  *zap.Logger
	now     func() time.Time
}

// NewFellingReconciliationService constructs the service. The species
// catalogue is required for rendering amendment diffs.
func NewFellingReconciliationService(repo applicationStore, audit auditLogger, species *models.SpeciesCatalogue, logger *zap.Logger) *FellingReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if species == nil {
		species = models.NewSpeciesCatalogue()
	}
	return &FellingReconciliationService{
		repo:    repo,
		audit:   audit,
		species: species,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ConvertProposedToConfirmed replaces the entire confirmed plan with a fresh
// copy of the proposal. This is a destructive bulk overwrite: any amendments
// recorded against a previous conversion are discarded.
func (s *FellingReconciliationService) ConvertProposedToConfirmed(ctx context.Context, applicationID, actorID string) (*dto.ConfirmedFellingAndRestockingResult, error) {
	app, err := s.loadForAmendment(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}

	for i := range app.SubmittedCompartments {
		app.SubmittedCompartments[i].ConfirmedFellingDetails = nil
	}

	for i := range app.ProposedFellingDetails {
		pfd := &app.ProposedFellingDetails[i]
		sc := app.SubmittedCompartmentByCompartmentID(pfd.CompartmentID)
		if sc == nil {
			return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("proposed felling detail %s references compartment %s with no submitted counterpart", pfd.ID, pfd.CompartmentID))
		}
		cfd, err := s.confirmedFromProposed(app, pfd, sc.ID)
		if err != nil {
			return nil, err
		}
		sc.ConfirmedFellingDetails = append(sc.ConfirmedFellingDetails, *cfd)
	}

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionConfirmedDetailsConvert, app.ID, map[string]interface{}{
		"proposedDetails": len(app.ProposedFellingDetails),
	})
	return s.result(app), nil
}

// SaveFellingDetails applies targeted upserts to confirmed felling details:
// existing ids are overwritten in place with their species reconciled as a
// set; unknown ids create officer-added details with no proposed
// counterpart. All changes commit in one save.
func (s *FellingReconciliationService) SaveFellingDetails(ctx context.Context, applicationID string, updates []dto.ConfirmedFellingDetailUpdate, actorID string) (*dto.ConfirmedFellingAndRestockingResult, error) {
	app, err := s.loadForAmendment(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.applyFellingUpdates(app, updates); err != nil {
		return nil, err
	}
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionConfirmedDetailsUpdate, app.ID, map[string]interface{}{
		"fellingUpdates": len(updates),
	})
	return s.result(app), nil
}

// SaveRestockingDetails applies targeted upserts to confirmed restocking
// details, reconciling each species map by code.
func (s *FellingReconciliationService) SaveRestockingDetails(ctx context.Context, applicationID string, updates []dto.ConfirmedRestockingDetailUpdate, actorID string) (*dto.ConfirmedFellingAndRestockingResult, error) {
	app, err := s.loadForAmendment(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.applyRestockingUpdates(app, updates); err != nil {
		return nil, err
	}
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionConfirmedDetailsUpdate, app.ID, map[string]interface{}{
		"restockingUpdates": len(updates),
	})
	return s.result(app), nil
}

// SaveFellingAndRestocking applies a combined batch of felling and
// restocking upserts in one transactional save.
func (s *FellingReconciliationService) SaveFellingAndRestocking(ctx context.Context, applicationID string, req dto.SaveConfirmedFellingAndRestockingRequest, actorID string) (*dto.ConfirmedFellingAndRestockingResult, error) {
	app, err := s.loadForAmendment(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.applyFellingUpdates(app, req.FellingDetails); err != nil {
		return nil, err
	}
	if err := s.applyRestockingUpdates(app, req.RestockingDetails); err != nil {
		return nil, err
	}
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionConfirmedDetailsUpdate, app.ID, map[string]interface{}{
		"fellingUpdates":    len(req.FellingDetails),
		"restockingUpdates": len(req.RestockingDetails),
	})
	return s.result(app), nil
}

// DeleteFellingDetail removes a confirmed felling detail and cascades to its
// restocking children and their species rows.
func (s *FellingReconciliationService) DeleteFellingDetail(ctx context.Context, applicationID, detailID, actorID string) error {
	app, err := s.loadForAmendment(ctx, applicationID, actorID)
	if err != nil {
		return err
	}

	removed := false
	for i := range app.SubmittedCompartments {
		sc := &app.SubmittedCompartments[i]
		for j := range sc.ConfirmedFellingDetails {
			if sc.ConfirmedFellingDetails[j].ID == detailID {
				sc.ConfirmedFellingDetails = append(sc.ConfirmedFellingDetails[:j], sc.ConfirmedFellingDetails[j+1:]...)
				removed = true
				break
			}
		}
		if removed {
			break
		}
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "confirmed felling detail not found")
	}

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionConfirmedDetailsDelete, app.ID, map[string]interface{}{
		"detailId": detailID,
	})
	return nil
}

// RevertAmendments restores the confirmed detail linked to a proposed
// felling detail back to the proposed values, rebuilding its species and
// restocking children. A deleted confirmed detail is recreated from scratch.
func (s *FellingReconciliationService) RevertAmendments(ctx context.Context, applicationID, proposedFellingDetailID, actorID string) (*dto.ConfirmedFellingAndRestockingResult, error) {
	app, err := s.loadForAmendment(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}

	pfd := app.ProposedFellingDetailByID(proposedFellingDetailID)
	if pfd == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposed felling detail not found")
	}
	sc := app.SubmittedCompartmentByCompartmentID(pfd.CompartmentID)
	if sc == nil {
		return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
			fmt.Sprintf("proposed felling detail %s references compartment %s with no submitted counterpart", pfd.ID, pfd.CompartmentID))
	}

	rebuilt, err := s.confirmedFromProposed(app, pfd, sc.ID)
	if err != nil {
		return nil, err
	}
	if _, existing := app.ConfirmedFellingDetailByProposedID(proposedFellingDetailID); existing != nil {
		// Keep the stored id stable; everything else reverts.
		rebuilt.ID = existing.ID
		*existing = *rebuilt
	} else {
		sc.ConfirmedFellingDetails = append(sc.ConfirmedFellingDetails, *rebuilt)
	}

	if err := saveApplication(ctx, s.repo, app); err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionConfirmedDetailsRevert, app.ID, map[string]interface{}{
		"proposedFellingDetailId": proposedFellingDetailID,
	})
	return s.result(app), nil
}

// AmendedProperties computes the per-field diffs of every confirmed detail
// against its proposed baseline. Read-only.
func (s *FellingReconciliationService) AmendedProperties(ctx context.Context, applicationID string) (*dto.ConfirmedFellingAndRestockingResult, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	return s.result(app), nil
}

func (s *FellingReconciliationService) loadForAmendment(ctx context.Context, applicationID, actorID string) (*models.Application, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	if !userPermittedToAmend(app, actorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user may not amend confirmed felling and restocking details")
	}
	return app, nil
}

// confirmedFromProposed builds a confirmed felling detail copying every
// comparable field of the proposal, its species list verbatim, and a
// confirmed child per proposed restocking detail. Restocking compartments
// resolve independently since restocking may target another compartment.
func (s *FellingReconciliationService) confirmedFromProposed(app *models.Application, pfd *models.ProposedFellingDetail, submittedCompartmentID string) (*models.ConfirmedFellingDetail, error) {
	proposedID := pfd.ID
	cfd := &models.ConfirmedFellingDetail{
		ID:                             newID(),
		SubmittedCompartmentID:         submittedCompartmentID,
		ProposedFellingDetailID:        &proposedID,
		OperationType:                  pfd.OperationType,
		AreaToBeFelled:                 pfd.AreaToBeFelled,
		NumberOfTrees:                  copyIntPtr(pfd.NumberOfTrees),
		EstimatedTotalFellingVolume:    pfd.EstimatedTotalFellingVolume,
		IsPartOfTreePreservationOrder:  copyBoolPtr(pfd.IsPartOfTreePreservationOrder),
		TreePreservationOrderReference: copyStringPtr(pfd.TreePreservationOrderReference),
		IsWithinConservationArea:       copyBoolPtr(pfd.IsWithinConservationArea),
		ConservationAreaReference:      copyStringPtr(pfd.ConservationAreaReference),
		IsRestocking:                   copyBoolPtr(pfd.IsRestocking),
		NoRestockingReason:             copyStringPtr(pfd.NoRestockingReason),
	}
	for _, sp := range pfd.Species {
		cfd.Species = append(cfd.Species, models.FellingSpecies{
			ID:              newID(),
			FellingDetailID: cfd.ID,
			SpeciesCode:     sp.SpeciesCode,
		})
	}
	for i := range pfd.RestockingDetails {
		prd := &pfd.RestockingDetails[i]
		rsc := app.SubmittedCompartmentByCompartmentID(prd.CompartmentID)
		if rsc == nil {
			return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("proposed restocking detail %s references compartment %s with no submitted counterpart", prd.ID, prd.CompartmentID))
		}
		restockProposedID := prd.ID
		crd := models.ConfirmedRestockingDetail{
			ID:                         newID(),
			ConfirmedFellingDetailID:   cfd.ID,
			SubmittedCompartmentID:     rsc.ID,
			ProposedRestockingDetailID: &restockProposedID,
			RestockingProposal:         prd.RestockingProposal,
			Area:                       prd.Area,
			PercentageOfRestockArea:    copyFloatPtr(prd.PercentageOfRestockArea),
			RestockingDensity:          prd.RestockingDensity,
			NumberOfTrees:              copyIntPtr(prd.NumberOfTrees),
		}
		for _, sp := range prd.Species {
			crd.Species = append(crd.Species, models.RestockingSpecies{
				ID:                 newID(),
				RestockingDetailID: crd.ID,
				SpeciesCode:        sp.SpeciesCode,
				Percentage:         copyFloatPtr(sp.Percentage),
			})
		}
		cfd.RestockingDetails = append(cfd.RestockingDetails, crd)
	}
	return cfd, nil
}

func (s *FellingReconciliationService) applyFellingUpdates(app *models.Application, updates []dto.ConfirmedFellingDetailUpdate) error {
	for _, u := range updates {
		_, existing := app.ConfirmedFellingDetailByID(u.ID)
		if existing == nil {
			sc := app.SubmittedCompartmentByCompartmentID(u.CompartmentID)
			if sc == nil {
				return appErrors.Clone(appErrors.ErrNotFound,
					fmt.Sprintf("no submitted compartment %s for new confirmed felling detail", u.CompartmentID))
			}
			created := models.ConfirmedFellingDetail{
				ID:                     newID(),
				SubmittedCompartmentID: sc.ID,
			}
			if u.ID != "" {
				created.ID = u.ID
			}
			sc.ConfirmedFellingDetails = append(sc.ConfirmedFellingDetails, created)
			existing = &sc.ConfirmedFellingDetails[len(sc.ConfirmedFellingDetails)-1]
		}

		existing.OperationType = u.OperationType
		existing.AreaToBeFelled = u.AreaToBeFelled
		existing.NumberOfTrees = u.NumberOfTrees
		existing.EstimatedTotalFellingVolume = u.EstimatedTotalFellingVolume
		existing.IsPartOfTreePreservationOrder = u.IsPartOfTreePreservationOrder
		existing.TreePreservationOrderReference = u.TreePreservationOrderReference
		existing.IsWithinConservationArea = u.IsWithinConservationArea
		existing.ConservationAreaReference = u.ConservationAreaReference
		existing.IsRestocking = u.IsRestocking
		existing.NoRestockingReason = u.NoRestockingReason

		existing.Species = reconcileFellingSpecies(existing.ID, existing.Species, u.SpeciesCodes)
	}
	return nil
}

func (s *FellingReconciliationService) applyRestockingUpdates(app *models.Application, updates []dto.ConfirmedRestockingDetailUpdate) error {
	for _, u := range updates {
		existing := findConfirmedRestocking(app, u.ID)
		if existing == nil {
			_, parent := app.ConfirmedFellingDetailByID(u.ConfirmedFellingDetailID)
			if parent == nil {
				return appErrors.Clone(appErrors.ErrNotFound,
					fmt.Sprintf("confirmed felling detail %s not found for new restocking detail", u.ConfirmedFellingDetailID))
			}
			sc := app.SubmittedCompartmentByCompartmentID(u.CompartmentID)
			if sc == nil {
				return appErrors.Clone(appErrors.ErrNotFound,
					fmt.Sprintf("no submitted compartment %s for new confirmed restocking detail", u.CompartmentID))
			}
			created := models.ConfirmedRestockingDetail{
				ID:                       newID(),
				ConfirmedFellingDetailID: parent.ID,
				SubmittedCompartmentID:   sc.ID,
			}
			if u.ID != "" {
				created.ID = u.ID
			}
			parent.RestockingDetails = append(parent.RestockingDetails, created)
			existing = &parent.RestockingDetails[len(parent.RestockingDetails)-1]
		} else if u.CompartmentID != "" {
			sc := app.SubmittedCompartmentByCompartmentID(u.CompartmentID)
			if sc == nil {
				return appErrors.Clone(appErrors.ErrNotFound,
					fmt.Sprintf("no submitted compartment %s for confirmed restocking detail", u.CompartmentID))
			}
			existing.SubmittedCompartmentID = sc.ID
		}

		existing.RestockingProposal = u.RestockingProposal
		existing.Area = u.Area
		existing.PercentageOfRestockArea = u.PercentageOfRestockArea
		existing.RestockingDensity = u.RestockingDensity
		existing.NumberOfTrees = u.NumberOfTrees

		existing.Species = reconcileRestockingSpecies(existing.ID, existing.Species, u.Species)
	}
	return nil
}

func (s *FellingReconciliationService) result(app *models.Application) *dto.ConfirmedFellingAndRestockingResult {
	res := &dto.ConfirmedFellingAndRestockingResult{
		ApplicationID:     app.ID,
		Compartments:      app.SubmittedCompartments,
		AmendedFelling:    map[string]dto.AmendedProperties{},
		AmendedRestocking: map[string]dto.AmendedProperties{},
	}
	for i := range app.ProposedFellingDetails {
		pfd := &app.ProposedFellingDetails[i]
		_, cfd := app.ConfirmedFellingDetailByProposedID(pfd.ID)
		if cfd == nil {
			continue
		}
		if diff := s.AmendedFellingDetailProperties(pfd, cfd); len(diff) > 0 {
			res.AmendedFelling[pfd.ID] = diff
		}
		for j := range pfd.RestockingDetails {
			prd := &pfd.RestockingDetails[j]
			crd := confirmedRestockingByProposedID(cfd, prd.ID)
			if crd == nil {
				continue
			}
			if diff := s.AmendedRestockingProperties(app, prd, crd); len(diff) > 0 {
				res.AmendedRestocking[prd.ID] = diff
			}
		}
	}
	return res
}

// AmendedFellingDetailProperties diffs a confirmed felling detail against
// its proposed baseline, returning proposed values for every changed field.
// Species compare as sets, not ordered lists.
func (s *FellingReconciliationService) AmendedFellingDetailProperties(pfd *models.ProposedFellingDetail, cfd *models.ConfirmedFellingDetail) dto.AmendedProperties {
	diff := dto.AmendedProperties{}
	if pfd.OperationType != cfd.OperationType {
		diff["OperationType"] = string(pfd.OperationType)
	}
	if pfd.AreaToBeFelled != cfd.AreaToBeFelled {
		diff["AreaToBeFelled"] = formatFloat(pfd.AreaToBeFelled)
	}
	if !equalIntPtr(pfd.NumberOfTrees, cfd.NumberOfTrees) {
		diff["NumberOfTrees"] = formatIntPtr(pfd.NumberOfTrees)
	}
	if pfd.EstimatedTotalFellingVolume != cfd.EstimatedTotalFellingVolume {
		diff["EstimatedTotalFellingVolume"] = formatFloat(pfd.EstimatedTotalFellingVolume)
	}
	if !equalBoolPtr(pfd.IsPartOfTreePreservationOrder, cfd.IsPartOfTreePreservationOrder) {
		diff["IsPartOfTreePreservationOrder"] = formatBoolPtr(pfd.IsPartOfTreePreservationOrder)
	}
	if !equalStringPtr(pfd.TreePreservationOrderReference, cfd.TreePreservationOrderReference) {
		diff["TreePreservationOrderReference"] = formatStringPtr(pfd.TreePreservationOrderReference)
	}
	if !equalBoolPtr(pfd.IsWithinConservationArea, cfd.IsWithinConservationArea) {
		diff["IsWithinConservationArea"] = formatBoolPtr(pfd.IsWithinConservationArea)
	}
	if !equalStringPtr(pfd.ConservationAreaReference, cfd.ConservationAreaReference) {
		diff["ConservationAreaReference"] = formatStringPtr(pfd.ConservationAreaReference)
	}
	if !equalBoolPtr(pfd.IsRestocking, cfd.IsRestocking) {
		diff["IsRestocking"] = formatBoolPtr(pfd.IsRestocking)
	}
	if !equalStringPtr(pfd.NoRestockingReason, cfd.NoRestockingReason) {
		diff["NoRestockingReason"] = formatStringPtr(pfd.NoRestockingReason)
	}
	proposedCodes := fellingSpeciesCodes(pfd.Species)
	confirmedCodes := fellingSpeciesCodes(cfd.Species)
	if !equalStringSets(proposedCodes, confirmedCodes) {
		diff["Species"] = s.speciesNames(proposedCodes)
	}
	return diff
}

// AmendedRestockingProperties diffs a confirmed restocking detail against
// its proposed baseline. The compartment renders through the submitted
// compartment name lookup for display.
func (s *FellingReconciliationService) AmendedRestockingProperties(app *models.Application, prd *models.ProposedRestockingDetail, crd *models.ConfirmedRestockingDetail) dto.AmendedProperties {
	diff := dto.AmendedProperties{}
	if prd.RestockingProposal != crd.RestockingProposal {
		diff["RestockingProposal"] = string(prd.RestockingProposal)
	}
	if prd.Area != crd.Area {
		diff["Area"] = formatFloat(prd.Area)
	}
	if !equalFloatPtr(prd.PercentageOfRestockArea, crd.PercentageOfRestockArea) {
		diff["PercentageOfRestockArea"] = formatFloatPtr(prd.PercentageOfRestockArea)
	}
	if prd.RestockingDensity != crd.RestockingDensity {
		diff["RestockingDensity"] = formatFloat(prd.RestockingDensity)
	}
	if !equalIntPtr(prd.NumberOfTrees, crd.NumberOfTrees) {
		diff["NumberOfTrees"] = formatIntPtr(prd.NumberOfTrees)
	}
	proposedCompartment := app.SubmittedCompartmentByCompartmentID(prd.CompartmentID)
	if proposedCompartment == nil || proposedCompartment.ID != crd.SubmittedCompartmentID {
		diff["Compartment"] = app.CompartmentName(submittedIDOrRaw(proposedCompartment, prd.CompartmentID))
	}
	if !equalRestockingSpecies(prd.Species, crd.Species) {
		diff["Species"] = s.restockingSpeciesSummary(prd.Species)
	}
	return diff
}

func (s *FellingReconciliationService) speciesNames(codes []string) string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, s.species.Name(c))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (s *FellingReconciliationService) restockingSpeciesSummary(species []models.RestockingSpecies) string {
	parts := make([]string, 0, len(species))
	for _, sp := range species {
		name := s.species.Name(sp.SpeciesCode)
		if sp.Percentage != nil {
			parts = append(parts, fmt.Sprintf("%s: %s%%", name, formatFloat(*sp.Percentage)))
		} else {
			parts = append(parts, name)
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func reconcileFellingSpecies(detailID string, current []models.FellingSpecies, codes []string) []models.FellingSpecies {
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	kept := current[:0]
	for _, sp := range current {
		if _, ok := want[sp.SpeciesCode]; ok {
			kept = append(kept, sp)
			delete(want, sp.SpeciesCode)
		}
	}
	for _, c := range codes {
		if _, ok := want[c]; ok {
			kept = append(kept, models.FellingSpecies{ID: newID(), FellingDetailID: detailID, SpeciesCode: c})
			delete(want, c)
		}
	}
	return kept
}

func reconcileRestockingSpecies(detailID string, current []models.RestockingSpecies, want map[string]*float64) []models.RestockingSpecies {
	kept := current[:0]
	seen := make(map[string]struct{}, len(want))
	for _, sp := range current {
		pct, ok := want[sp.SpeciesCode]
		if !ok {
			continue
		}
		sp.Percentage = pct
		kept = append(kept, sp)
		seen[sp.SpeciesCode] = struct{}{}
	}
	codes := make([]string, 0, len(want))
	for c := range want {
		if _, ok := seen[c]; !ok {
			codes = append(codes, c)
		}
	}
	sort.Strings(codes)
	for _, c := range codes {
		kept = append(kept, models.RestockingSpecies{
			ID:                 newID(),
			RestockingDetailID: detailID,
			SpeciesCode:        c,
			Percentage:         want[c],
		})
	}
	return kept
}

func findConfirmedRestocking(app *models.Application, id string) *models.ConfirmedRestockingDetail {
	if id == "" {
		return nil
	}
	for i := range app.SubmittedCompartments {
		sc := &app.SubmittedCompartments[i]
		for j := range sc.ConfirmedFellingDetails {
			cfd := &sc.ConfirmedFellingDetails[j]
			for k := range cfd.RestockingDetails {
				if cfd.RestockingDetails[k].ID == id {
					return &cfd.RestockingDetails[k]
				}
			}
		}
	}
	return nil
}

func confirmedRestockingByProposedID(cfd *models.ConfirmedFellingDetail, proposedID string) *models.ConfirmedRestockingDetail {
	for i := range cfd.RestockingDetails {
		crd := &cfd.RestockingDetails[i]
		if crd.ProposedRestockingDetailID != nil && *crd.ProposedRestockingDetailID == proposedID {
			return crd
		}
	}
	return nil
}

func fellingSpeciesCodes(species []models.FellingSpecies) []string {
	codes := make([]string, 0, len(species))
	for _, sp := range species {
		codes = append(codes, sp.SpeciesCode)
	}
	return codes
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, v := range a {
		set[v]++
	}
	for _, v := range b {
		if set[v] == 0 {
			return false
		}
		set[v]--
	}
	return true
}

func equalRestockingSpecies(a, b []models.RestockingSpecies) bool {
	if len(a) != len(b) {
		return false
	}
	byCode := make(map[string]*float64, len(a))
	for i := range a {
		byCode[a[i].SpeciesCode] = a[i].Percentage
	}
	for i := range b {
		pct, ok := byCode[b[i].SpeciesCode]
		if !ok || !equalFloatPtr(pct, b[i].Percentage) {
			return false
		}
	}
	return true
}

func submittedIDOrRaw(sc *models.SubmittedCompartment, raw string) string {
	if sc != nil {
		return sc.ID
	}
	return raw
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyBoolPtr(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalBoolPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
