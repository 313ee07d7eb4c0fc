package model

// ExtractedFields are the transaction fields pulled out of free text.
// An empty field means unknown, never a negative answer.
type ExtractedFields struct {
	ItemDescription string `json:"item_description"`
	Destination     string `json:"destination"`
	EndUser         string `json:"end_user"`
	EndUse          string `json:"end_use"`
	ContractValue   string `json:"contract_value"`
	DeliveryDate    string `json:"delivery_date"`
}

// IsEmpty reports whether no field was extracted
func (f ExtractedFields) IsEmpty() bool {
	return f.ItemDescription == "" &&
		f.Destination == "" &&
		f.EndUser == "" &&
		f.EndUse == "" &&
		f.ContractValue == "" &&
		f.DeliveryDate == ""
}

// ContractValue is a parsed monetary amount
type ContractValue struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}
