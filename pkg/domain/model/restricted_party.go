package model

// RestrictedPartyRecord is one listed entity of the restricted-party registry
type RestrictedPartyRecord struct {
	Name           string `json:"name"`
	Country        string `json:"country"`
	ListingReason  string `json:"listing_reason"`
	RegulationText string `json:"regulation_text"`
	ListingDate    string `json:"listing_date,omitempty"`
}

// RestrictedPartyRegistry is the ordered, read-only registry
type RestrictedPartyRegistry struct {
	Records []*RestrictedPartyRecord
}

// Len returns the number of records
func (r *RestrictedPartyRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// ReferenceData bundles the three catalogs loaded at startup
type ReferenceData struct {
	Classification *ClassificationCatalog
	Matrix         *ControlMatrix
	Registry       *RestrictedPartyRegistry
}
