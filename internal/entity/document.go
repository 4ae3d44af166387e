package entity

// DocumentRecord is one presented document from a transit declaration.
// Validation mismatches are recorded on the record itself, never raised.
type DocumentRecord struct {
	KindCode     string `json:"DocKindCode"`
	Name         string `json:"DocName"`
	ID           string `json:"DocId"`
	CreationDate string `json:"DocCreationDate"`
	HasError     bool   `json:"has_error"`
	ErrorMessage string `json:"error_message"`
}

// SameDocument compares the identifying 4-tuple, ignoring validation state.
func (d DocumentRecord) SameDocument(other DocumentRecord) bool {
	return d.KindCode == other.KindCode &&
		d.Name == other.Name &&
		d.ID == other.ID &&
		d.CreationDate == other.CreationDate
}

// DeclarationDetails are shipment-level attributes read from a transit
// declaration alongside the goods items.
type DeclarationDetails struct {
	DepartureCountryCode   string   `json:"departure_country_code,omitempty"`
	DestinationCountryCode string   `json:"destination_country_code,omitempty"`
	SealQuantity           int      `json:"seal_quantity,omitempty"`
	SealIDs                []string `json:"seal_ids,omitempty"`
}
