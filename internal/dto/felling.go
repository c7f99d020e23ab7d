package dto

import "github.com/fc-casework/felling-licence-api/internal/models"

// ConfirmedFellingDetailUpdate is a targeted upsert of one confirmed felling
// detail. An ID not matching any existing detail creates a new one resolved
// through CompartmentID. SpeciesCodes is reconciled as a set against the
// stored species, adding and removing by code rather than replacing rows.
type ConfirmedFellingDetailUpdate struct {
	ID            string `json:"id,omitempty"`
	CompartmentID string `json:"compartmentId" validate:"required"`

	OperationType                  models.FellingOperationType `json:"operationType" validate:"required"`
	AreaToBeFelled                 float64                     `json:"areaToBeFelled" validate:"gte=0"`
	NumberOfTrees                  *int                        `json:"numberOfTrees,omitempty"`
	EstimatedTotalFellingVolume    float64                     `json:"estimatedTotalFellingVolume" validate:"gte=0"`
	IsPartOfTreePreservationOrder  *bool                       `json:"isPartOfTreePreservationOrder,omitempty"`
	TreePreservationOrderReference *string                     `json:"treePreservationOrderReference,omitempty"`
	IsWithinConservationArea       *bool                       `json:"isWithinConservationArea,omitempty"`
	ConservationAreaReference      *string                     `json:"conservationAreaReference,omitempty"`
	IsRestocking                   *bool                       `json:"isRestocking,omitempty"`
	NoRestockingReason             *string                     `json:"noRestockingReason,omitempty"`

	SpeciesCodes []string `json:"speciesCodes"`
}

// ConfirmedRestockingDetailUpdate is a targeted upsert of one confirmed
// restocking detail. Species maps code to its percentage of the restock
// area and is reconciled by key.
type ConfirmedRestockingDetailUpdate struct {
	ID                       string `json:"id,omitempty"`
	ConfirmedFellingDetailID string `json:"confirmedFellingDetailId" validate:"required"`
	CompartmentID            string `json:"compartmentId" validate:"required"`

	RestockingProposal      models.RestockingProposalType `json:"restockingProposal" validate:"required"`
	Area                    float64                       `json:"area" validate:"gte=0"`
	PercentageOfRestockArea *float64                      `json:"percentageOfRestockArea,omitempty"`
	RestockingDensity       float64                       `json:"restockingDensity" validate:"gte=0"`
	NumberOfTrees           *int                          `json:"numberOfTrees,omitempty"`

	Species map[string]*float64 `json:"species"`
}

// SaveConfirmedFellingAndRestockingRequest carries a combined save of
// felling detail updates with their restocking children.
type SaveConfirmedFellingAndRestockingRequest struct {
	FellingDetails    []ConfirmedFellingDetailUpdate    `json:"fellingDetails"`
	RestockingDetails []ConfirmedRestockingDetailUpdate `json:"restockingDetails"`
}

// AmendedProperties maps field name to the proposed value rendered as a
// string, for every field whose confirmed value differs from the proposal.
type AmendedProperties map[string]string

// ConfirmedFellingAndRestockingResult summarises the confirmed plan after a
// reconciliation operation.
type ConfirmedFellingAndRestockingResult struct {
	ApplicationID     string                          `json:"applicationId"`
	Compartments      []models.SubmittedCompartment   `json:"compartments"`
	AmendedFelling    map[string]AmendedProperties    `json:"amendedFelling,omitempty"`
	AmendedRestocking map[string]AmendedProperties    `json:"amendedRestocking,omitempty"`
}
