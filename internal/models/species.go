package models

// Species is one entry of the immutable species reference catalogue.
type Species struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsConifer bool   `json:"isConifer"`
	IsLarch   bool   `json:"isLarch"`
}

// SpeciesCatalogue is an injected, immutable species lookup. Components that
// need species metadata receive one rather than reaching for a global table.
type SpeciesCatalogue struct {
	byCode map[string]Species
}

// NewSpeciesCatalogue builds the standard GB felling species catalogue.
func NewSpeciesCatalogue() *SpeciesCatalogue {
	entries := []Species{
		{Code: "AH", Name: "Ash"},
		{Code: "AR", Name: "Alder"},
		{Code: "BE", Name: "Beech"},
		{Code: "BI", Name: "Birch"},
		{Code: "CAR", Name: "Common alder"},
		{Code: "CP", Name: "Corsican pine", IsConifer: true},
		{Code: "DF", Name: "Douglas fir", IsConifer: true},
		{Code: "EL", Name: "European larch", IsConifer: true, IsLarch: true},
		{Code: "GF", Name: "Grand fir", IsConifer: true},
		{Code: "HCH", Name: "Horse chestnut"},
		{Code: "HL", Name: "Hybrid larch", IsConifer: true, IsLarch: true},
		{Code: "HOL", Name: "Holly"},
		{Code: "JL", Name: "Japanese larch", IsConifer: true, IsLarch: true},
		{Code: "LP", Name: "Lodgepole pine", IsConifer: true},
		{Code: "NS", Name: "Norway spruce", IsConifer: true},
		{Code: "OK", Name: "Oak"},
		{Code: "POP", Name: "Poplar"},
		{Code: "ROW", Name: "Rowan"},
		{Code: "SC", Name: "Sweet chestnut"},
		{Code: "SP", Name: "Scots pine", IsConifer: true},
		{Code: "SS", Name: "Sitka spruce", IsConifer: true},
		{Code: "SY", Name: "Sycamore"},
		{Code: "WCH", Name: "Wild cherry"},
		{Code: "WIL", Name: "Willow"},
		{Code: "CBW", Name: "Cricket bat willow"},
	}
	byCode := make(map[string]Species, len(entries))
	for _, s := range entries {
		byCode[s.Code] = s
	}
	return &SpeciesCatalogue{byCode: byCode}
}

// Lookup returns the species for a code.
func (c *SpeciesCatalogue) Lookup(code string) (Species, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// Name returns the display name for a code, falling back to the code itself
// for unknown entries so diffs stay renderable.
func (c *SpeciesCatalogue) Name(code string) string {
	if s, ok := c.byCode[code]; ok {
		return s.Name
	}
	return code
}

// IsLarch reports whether the code is a larch species.
func (c *SpeciesCatalogue) IsLarch(code string) bool {
	s, ok := c.byCode[code]
	return ok && s.IsLarch
}
