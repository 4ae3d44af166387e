package constants

// Presented-document kind codes with dedicated validation rules.
const (
	// DocKindTransitRegister must always carry the register date below.
	DocKindTransitRegister = "09034"
	// DocKindInvoice and DocKindShippingSpec must match the companion
	// invoice's number and date.
	DocKindInvoice      = "04021"
	DocKindShippingSpec = "04131"
	// DocKindRailwayBill documents sometimes arrive without a name.
	DocKindRailwayBill = "02013"
)

// RailwayBillDefaultName substitutes the missing name on 02013 documents.
const RailwayBillDefaultName = "ЖД НАКЛАДНАЯ"

// TransitRegisterDate is the only date accepted on 09034 documents, in its
// canonical form.
const TransitRegisterDate = "31.05.2011"

// TransitRegisterDateForms enumerates every textual representation of
// TransitRegisterDate that sources are known to emit.
var TransitRegisterDateForms = []string{
	"31.05.2011",
	"2011-05-31",
	"2011/05/31",
	"31/05/2011",
	"2011-05-31T00:00:00",
	"2011-05-31T00:00:00Z",
}
