package extract

import (
	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// Field names a value that a data row contributes to a canonical item.
type Field string

const (
	FieldHSCode           Field = "hs_code"
	FieldDescription      Field = "description"
	FieldDescriptionExtra Field = "description_extra"
	FieldCargoPlaces      Field = "cargo_places"
	FieldPackageKind      Field = "package_kind"
	FieldPackageCount     Field = "package_count"
	FieldNetWeight        Field = "net_weight"
	FieldGrossWeight      Field = "gross_weight"
	FieldCurrency         Field = "currency"
	FieldAmount           Field = "amount"
	FieldContainer        Field = "container"
	FieldInvoice          Field = "invoice"
	FieldInvoiceDate      Field = "invoice_date"
	FieldCaseNo           Field = "case_no"
)

// ColumnMap binds fields to zero-based column indexes of the data region.
type ColumnMap map[Field]int

// ContainerSource selects where a row's container key comes from.
type ContainerSource int

const (
	// ContainerFromColumn reads the key from the mapped container column.
	ContainerFromColumn ContainerSource = iota
	// ContainerFromTruck reuses the truck number picked up during the
	// metadata scan as the single container key for the whole workbook.
	ContainerFromTruck
)

// CurrencyPolicy controls how the shipment currency is resolved when the
// data rows carry no currency column of their own.
type CurrencyPolicy struct {
	Static   string // fixed ISO code, wins over everything else
	Classify bool   // ask the text classifier over the workbook text
	Scan     bool   // fall back to scanning cells for a known code
}

// MetadataRule extracts one shipment metadata value from a labeled cell.
// Cells are scanned sheet by sheet, row by row, line by line; the first
// cell line starting with Prefix wins and the remainder of the line is
// assigned.
type MetadataRule struct {
	Prefix    string
	Transform func(string) string
	Assign    func(*entity.ShipmentMetadata, string)
}

// RowContext is handed to row hooks after the default item mapping ran
// and before the item is appended to its container group.
type RowContext struct {
	Row    []string
	Item   *entity.CanonicalItem
	Key    string
	Result *entity.ExtractionResult
	Skip   bool

	seenCases map[string]bool
}

// SeenCase reports whether the case number already appeared on an earlier
// row of this workbook, and records it.
func (rc *RowContext) SeenCase(caseNo string) bool {
	if rc.seenCases == nil {
		rc.seenCases = make(map[string]bool)
	}
	if rc.seenCases[caseNo] {
		return true
	}
	rc.seenCases[caseNo] = true
	return false
}

// RowHook adjusts a mapped item or skips the row entirely.
type RowHook func(*RowContext)

// FinishHook runs once after all rows were accumulated.
type FinishHook func(res *entity.ExtractionResult)

// CellMetadataHook reads metadata from fixed cell positions instead of
// the prefix scan.
type CellMetadataHook func(sheets []Sheet, res *entity.ExtractionResult)

// Profile is the per-supplier configuration the extraction template runs on.
type Profile struct {
	Name string

	// Sheet and region selection.
	DataSheet   string // named data sheet; empty means the first sheet
	AllSheets   bool   // locate the anchor on every sheet and process each hit
	AnchorLabel string // label in the first column that precedes the data rows
	DataStart   int    // zero-based first data row when AnchorLabel is empty
	MinRows     int    // minimum row count of the data sheet

	// Region trimming.
	TrailingDrop       bool // the last region row is not a data row
	SummaryTotals      bool // that last row also carries the declared totals
	SummaryCols        [3]int
	NumericKeyCol      int  // keep only rows with a numeric cell here; -1 disables
	CutAtNonNumericKey bool // stop the region at the first non-numeric key cell

	// Declared totals read from a labeled row on another sheet.
	TotalsSheet string
	TotalsLabel string
	TotalsCols  [3]int

	// Item mapping.
	Columns     ColumnMap
	PackageKind constants.PackageKind

	// Metadata and currency.
	MetadataRules   []MetadataRule
	CellMetadata    CellMetadataHook
	Currency        CurrencyPolicy
	ClassifySheet   string // sheet fed to the classifier; empty means the whole workbook
	ClassifyParties bool

	// Container keying.
	ContainerFrom       ContainerSource
	SkipNoContainer     bool // drop rows without a container instead of using the sentinel
	CompositeInvoiceKey bool // key as container_invoice when a container spans several invoices

	Row    RowHook
	Finish FinishHook
}

func (p Profile) column(f Field) (int, bool) {
	idx, ok := p.Columns[f]
	return idx, ok
}
