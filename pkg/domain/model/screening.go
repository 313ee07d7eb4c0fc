package model

// ScreeningResult is the outcome of restricted-party screening. A nil Record means no hit,
// which is not proof of absence.
type ScreeningResult struct {
	Query  string                 `json:"query"`
	Hit    bool                   `json:"hit"`
	Record *RestrictedPartyRecord `json:"record,omitempty"`
}
