package models

// FellingOperationType enumerates the felling operations an applicant may
// propose.
type FellingOperationType string

const (
	OperationClearFelling        FellingOperationType = "CLEAR_FELLING"
	OperationFellingOfCoppice    FellingOperationType = "FELLING_OF_COPPICE"
	OperationFellingIndividual   FellingOperationType = "FELLING_INDIVIDUAL_TREES"
	OperationRegenerationFelling FellingOperationType = "REGENERATION_FELLING"
	OperationThinning            FellingOperationType = "THINNING"
)

// RestockingProposalType enumerates how a felled area will be restocked.
type RestockingProposalType string

const (
	RestockingReplantFelledArea       RestockingProposalType = "REPLANT_THE_FELLED_AREA"
	RestockingAlternativeArea         RestockingProposalType = "PLANT_AN_ALTERNATIVE_AREA"
	RestockingNaturalColonisation     RestockingProposalType = "NATURAL_COLONISATION"
	RestockingCreateDesignedOpenGround RestockingProposalType = "CREATE_DESIGNED_OPEN_GROUND"
	RestockingCoppiceRegrowth         RestockingProposalType = "RESTOCK_WITH_COPPICE_REGROWTH"
	RestockingIndividualTrees         RestockingProposalType = "RESTOCK_WITH_INDIVIDUAL_TREES"
)

// FellingSpecies is one species row on a felling detail, keyed by code.
type FellingSpecies struct {
	ID              string `db:"id" json:"id"`
	FellingDetailID string `db:"felling_detail_id" json:"fellingDetailId"`
	SpeciesCode     string `db:"species_code" json:"speciesCode"`
}

// RestockingSpecies is one species row on a restocking detail with its share
// of the restock area.
type RestockingSpecies struct {
	ID                 string   `db:"id" json:"id"`
	RestockingDetailID string   `db:"restocking_detail_id" json:"restockingDetailId"`
	SpeciesCode        string   `db:"species_code" json:"speciesCode"`
	Percentage         *float64 `db:"percentage" json:"percentage,omitempty"`
}

// ProposedFellingDetail is the applicant's plan for one felling operation in
// one compartment. Immutable outside Draft except by resubmission.
type ProposedFellingDetail struct {
	ID                            string               `db:"id" json:"id"`
	ApplicationID                 string               `db:"application_id" json:"applicationId"`
	CompartmentID                 string               `db:"compartment_id" json:"compartmentId"`
	OperationType                 FellingOperationType `db:"operation_type" json:"operationType"`
	AreaToBeFelled                float64              `db:"area_to_be_felled" json:"areaToBeFelled"`
	NumberOfTrees                 *int                 `db:"number_of_trees" json:"numberOfTrees,omitempty"`
	EstimatedTotalFellingVolume   float64              `db:"estimated_total_felling_volume" json:"estimatedTotalFellingVolume"`
	IsPartOfTreePreservationOrder *bool                `db:"is_part_of_tpo" json:"isPartOfTreePreservationOrder,omitempty"`
	TreePreservationOrderReference *string             `db:"tpo_reference" json:"treePreservationOrderReference,omitempty"`
	IsWithinConservationArea      *bool                `db:"is_within_conservation_area" json:"isWithinConservationArea,omitempty"`
	ConservationAreaReference     *string              `db:"conservation_area_reference" json:"conservationAreaReference,omitempty"`
	IsRestocking                  *bool                `db:"is_restocking" json:"isRestocking,omitempty"`
	NoRestockingReason            *string              `db:"no_restocking_reason" json:"noRestockingReason,omitempty"`
	Species                       []FellingSpecies     `json:"species"`
	RestockingDetails             []ProposedRestockingDetail `json:"restockingDetails"`
}

// ProposedRestockingDetail is the applicant's restocking plan for a felling
// detail. Restocking may target a different compartment than the felling.
type ProposedRestockingDetail struct {
	ID                      string                 `db:"id" json:"id"`
	ProposedFellingDetailID string                 `db:"proposed_felling_detail_id" json:"proposedFellingDetailId"`
	CompartmentID           string                 `db:"compartment_id" json:"compartmentId"`
	RestockingProposal      RestockingProposalType `db:"restocking_proposal" json:"restockingProposal"`
	Area                    float64                `db:"area" json:"area"`
	PercentageOfRestockArea *float64               `db:"percentage_of_restock_area" json:"percentageOfRestockArea,omitempty"`
	RestockingDensity       float64                `db:"restocking_density" json:"restockingDensity"`
	NumberOfTrees           *int                   `db:"number_of_trees" json:"numberOfTrees,omitempty"`
	Species                 []RestockingSpecies    `json:"species"`
}

// ConfirmedFellingDetail is the case officer's validated plan for one felling
// operation, attached to a submitted compartment. ProposedFellingDetailID is
// nil for officer-added details with no proposed counterpart.
type ConfirmedFellingDetail struct {
	ID                      string  `db:"id" json:"id"`
	SubmittedCompartmentID  string  `db:"submitted_compartment_id" json:"submittedCompartmentId"`
	ProposedFellingDetailID *string `db:"proposed_felling_detail_id" json:"proposedFellingDetailId,omitempty"`

	OperationType                 FellingOperationType `db:"operation_type" json:"operationType"`
	AreaToBeFelled                float64              `db:"area_to_be_felled" json:"areaToBeFelled"`
	NumberOfTrees                 *int                 `db:"number_of_trees" json:"numberOfTrees,omitempty"`
	EstimatedTotalFellingVolume   float64              `db:"estimated_total_felling_volume" json:"estimatedTotalFellingVolume"`
	IsPartOfTreePreservationOrder *bool                `db:"is_part_of_tpo" json:"isPartOfTreePreservationOrder,omitempty"`
	TreePreservationOrderReference *string             `db:"tpo_reference" json:"treePreservationOrderReference,omitempty"`
	IsWithinConservationArea      *bool                `db:"is_within_conservation_area" json:"isWithinConservationArea,omitempty"`
	ConservationAreaReference     *string              `db:"conservation_area_reference" json:"conservationAreaReference,omitempty"`
	IsRestocking                  *bool                `db:"is_restocking" json:"isRestocking,omitempty"`
	NoRestockingReason            *string              `db:"no_restocking_reason" json:"noRestockingReason,omitempty"`

	Species           []FellingSpecies             `json:"species"`
	RestockingDetails []ConfirmedRestockingDetail `json:"restockingDetails"`
}

// ConfirmedRestockingDetail is the case officer's restocking plan for a
// confirmed felling detail.
type ConfirmedRestockingDetail struct {
	ID                         string  `db:"id" json:"id"`
	ConfirmedFellingDetailID   string  `db:"confirmed_felling_detail_id" json:"confirmedFellingDetailId"`
	SubmittedCompartmentID     string  `db:"submitted_compartment_id" json:"submittedCompartmentId"`
	ProposedRestockingDetailID *string `db:"proposed_restocking_detail_id" json:"proposedRestockingDetailId,omitempty"`

	RestockingProposal      RestockingProposalType `db:"restocking_proposal" json:"restockingProposal"`
	Area                    float64                `db:"area" json:"area"`
	PercentageOfRestockArea *float64               `db:"percentage_of_restock_area" json:"percentageOfRestockArea,omitempty"`
	RestockingDensity       float64                `db:"restocking_density" json:"restockingDensity"`
	NumberOfTrees           *int                   `db:"number_of_trees" json:"numberOfTrees,omitempty"`

	Species []RestockingSpecies `json:"species"`
}

// ProposedCompartment is a compartment of the linked property profile as the
// applicant described it pre-submission.
type ProposedCompartment struct {
	ID                 string   `db:"id" json:"id"`
	ApplicationID      string   `db:"application_id" json:"applicationId"`
	CompartmentID      string   `db:"compartment_id" json:"compartmentId"`
	CompartmentNumber  string   `db:"compartment_number" json:"compartmentNumber"`
	SubCompartmentName *string  `db:"sub_compartment_name" json:"subCompartmentName,omitempty"`
	TotalHectares      *float64 `db:"total_hectares" json:"totalHectares,omitempty"`
}

// SubmittedCompartment is the post-submission snapshot of a compartment.
// Confirmed felling details hang off these, never off proposed compartments.
type SubmittedCompartment struct {
	ID                 string   `db:"id" json:"id"`
	ApplicationID      string   `db:"application_id" json:"applicationId"`
	CompartmentID      string   `db:"compartment_id" json:"compartmentId"`
	CompartmentNumber  string   `db:"compartment_number" json:"compartmentNumber"`
	SubCompartmentName *string  `db:"sub_compartment_name" json:"subCompartmentName,omitempty"`
	TotalHectares      *float64 `db:"total_hectares" json:"totalHectares,omitempty"`

	ConfirmedFellingDetails []ConfirmedFellingDetail `json:"confirmedFellingDetails"`
}

// DisplayName renders the compartment for amendment diffs and notifications.
func (c *SubmittedCompartment) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.SubCompartmentName != nil && *c.SubCompartmentName != "" {
		return c.CompartmentNumber + "/" + *c.SubCompartmentName
	}
	return c.CompartmentNumber
}
