package constants

// NoContainerKey groups items whose source row carries no container number.
// The literal matches the label external consumers already expect.
const NoContainerKey = "Без номера контейнера"

// UnknownParty is returned when the classifier cannot name a sender or
// recipient.
const UnknownParty = "Не опознан"

// DefaultCurrency is assumed whenever no currency can be detected.
const DefaultCurrency = "USD"

// PackageKind is the short package-kind code stamped on extracted items when
// the source document does not carry one.
type PackageKind string

const (
	PackageKindPK PackageKind = "PK" // package
	PackageKindCS PackageKind = "CS" // case
	PackageKindPP PackageKind = "PP" // piece (vehicles)
)

// KnownCurrencies are the tokens the cell-scan currency policy recognizes.
var KnownCurrencies = []string{"USD", "CNY", "EUR", "RUB", "KZT"}
