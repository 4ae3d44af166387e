// Package extract turns supplier spreadsheets into the canonical shipment
// shape. Each supplier ships a different workbook layout, so the work is
// split into a shared template (template.go) and per-supplier profiles that
// describe where the data lives and which quirks apply.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// Profile keys are the sender names as they appear in the upstream order
// system, matched case-insensitively.
const (
	SupplierXinjiang = "xinjiang xindudu import and export trading co.,ltd"
	SupplierMTL      = "mtl шаблон"
	SupplierChangan  = "changan international corporation"
	SupplierAstana   = "astana motors"
	SupplierUnified  = "единый шаблон"
)

var profiles = map[string]Profile{
	SupplierXinjiang: xinjiangProfile(),
	SupplierMTL:      mtlProfile(),
	SupplierChangan:  changanProfile(),
	SupplierAstana:   astanaProfile(),
	SupplierUnified:  unifiedProfile(),
}

// Lookup returns the profile registered for the sender name.
func Lookup(supplier string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(supplier))]
	return p, ok
}

// Suppliers lists the registered sender names.
func Suppliers() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	return out
}

// Extract runs the profile registered for supplier over the workbook bytes.
func Extract(ctx context.Context, supplier string, doc []byte, opts Options, deps Deps) (*entity.ExtractionResult, error) {
	p, ok := Lookup(supplier)
	if !ok {
		return nil, fmt.Errorf("no extraction profile for supplier %q", supplier)
	}
	return Run(ctx, p, doc, opts, deps)
}

// xinjiangProfile reads workbooks where every sheet may hold a goods table
// announced by a label row, with the sheet's last row carrying declared
// totals. The whole shipment travels on one truck, so the truck number from
// the header text doubles as the container key.
func xinjiangProfile() Profile {
	return Profile{
		Name:        "xinjiang",
		AllSheets:   true,
		AnchorLabel: "Наименование/модель",

		TrailingDrop:  true,
		SummaryTotals: true,
		SummaryCols:   [3]int{2, 5, 6},
		NumericKeyCol: -1,

		Columns: ColumnMap{
			FieldDescription:  0,
			FieldHSCode:       1,
			FieldCargoPlaces:  2,
			FieldPackageCount: 2,
			FieldNetWeight:    4,
			FieldGrossWeight:  5,
			FieldAmount:       6,
		},
		PackageKind: constants.PackageKindPK,

		MetadataRules: []MetadataRule{
			{Prefix: "Отправитель:", Assign: func(md *entity.ShipmentMetadata, v string) { md.Sender = v }},
			{Prefix: "Получатель:", Assign: func(md *entity.ShipmentMetadata, v string) { md.Recipient = v }},
			{
				Prefix:    "Truck:№ ",
				Transform: func(v string) string { return strings.ReplaceAll(v, " ", "") },
				Assign:    func(md *entity.ShipmentMetadata, v string) { md.Truck = v },
			},
		},
		Currency: CurrencyPolicy{Classify: true, Scan: true},

		ContainerFrom: ContainerFromTruck,
	}
}

// mtlProfile reads the three-sheet MTL workbook: goods on
// "PACKING LIST(Weight)", declared totals on the "Total Case" row of
// "CONTAINER LIST", currency and parties classified from "INVOICE". Every
// case counts as one cargo place; repeated case numbers are cases shared
// between rows and must not be counted twice.
func mtlProfile() Profile {
	return Profile{
		Name:      "mtl",
		DataSheet: "PACKING LIST(Weight)",
		DataStart: 4,
		MinRows:   4,

		TrailingDrop:  true,
		NumericKeyCol: -1,

		TotalsSheet: "CONTAINER LIST",
		TotalsLabel: "Total Case",
		TotalsCols:  [3]int{3, 6, 8},

		Columns: ColumnMap{
			FieldCaseNo:           1,
			FieldDescription:      2,
			FieldDescriptionExtra: 4,
			FieldAmount:           7,
			FieldHSCode:           11,
			FieldContainer:        13,
			FieldNetWeight:        14,
			FieldGrossWeight:      15,
		},
		PackageKind: constants.PackageKindCS,

		Currency:        CurrencyPolicy{Classify: true},
		ClassifySheet:   "INVOICE",
		ClassifyParties: true,

		Row: func(rc *RowContext) {
			caseNo := cellAt(rc.Row, 1)
			if rc.SeenCase(caseNo) {
				rc.Item.CargoPlaces = 0
				rc.Item.PackageCount = 0
			} else {
				rc.Item.CargoPlaces = 1
				rc.Item.PackageCount = 1
			}
		},
		Finish: func(res *entity.ExtractionResult) {
			if res.Sender == "" {
				res.Sender = constants.UnknownParty
			}
			if res.Recipient == "" {
				res.Recipient = constants.UnknownParty
			}
			res.Truck = fmt.Sprintf("Количество контейнеров: %d", res.Containers.Len())
		},
	}
}

// changanProfile reads vehicle invoices: one goods table on the first
// sheet cut off at the first non-numeric commodity code, metadata in fixed
// header cells, and the per-unit price multiplied out by the unit count.
func changanProfile() Profile {
	return Profile{
		Name:      "changan",
		DataStart: 13,

		NumericKeyCol:      2,
		CutAtNonNumericKey: true,

		Columns: ColumnMap{
			FieldDescription:  1,
			FieldHSCode:       2,
			FieldCargoPlaces:  9,
			FieldPackageCount: 9,
			FieldGrossWeight:  12,
			FieldAmount:       13,
		},
		PackageKind: constants.PackageKindPP,

		CellMetadata: changanCellMetadata,
		Currency:     CurrencyPolicy{Classify: true},

		ContainerFrom: ContainerFromTruck,

		Row: func(rc *RowContext) {
			name := rc.Item.Description
			if i := strings.IndexByte(name, '\n'); i >= 0 {
				name = name[:i]
			}
			vin := cellAt(rc.Row, 3)
			date := cellAt(rc.Row, 7)
			rc.Item.Description = name + " VIN:" + vin + " Дата выпуска:" + date
			rc.Item.Packed = true
			rc.Item.Amount *= float64(rc.Item.CargoPlaces)
		},
		Finish: func(res *entity.ExtractionResult) {
			res.Totals = entity.Totals(res.Calc)
			res.Truck = fmt.Sprintf("Количество контейнеров: %d", res.Containers.Len())
		},
	}
}

func changanCellMetadata(sheets []Sheet, res *entity.ExtractionResult) {
	if len(sheets) == 0 {
		return
	}
	rows := sheets[0].Rows

	sender := strings.Split(cellAt(rowAt(rows, 6), 2), "\n")
	if len(sender) >= 3 {
		res.Sender = strings.TrimSpace(sender[0]) + " \n " + strings.TrimSpace(sender[1]) + " \n " + strings.TrimSpace(sender[2])
	} else {
		res.Sender = constants.UnknownParty
	}

	var recipient []string
	for _, line := range strings.Split(cellAt(rowAt(rows, 4), 2), "\n") {
		if strings.TrimSpace(line) != "" {
			recipient = append(recipient, strings.TrimSpace(line))
		}
	}
	if len(recipient) > 0 {
		res.Recipient = strings.Join(recipient, " \n ")
	} else {
		res.Recipient = constants.UnknownParty
	}

	buyer := strings.Split(cellAt(rowAt(rows, 6), 12), "\n")
	if strings.TrimSpace(buyer[0]) != "" {
		res.Buyer = strings.TrimSpace(buyer[0])
	} else {
		res.Buyer = constants.UnknownParty
	}

	res.Truck = cellAt(rowAt(rows, 10), 2)
}

func rowAt(rows [][]string, idx int) []string {
	if idx < 0 || idx >= len(rows) {
		return nil
	}
	return rows[idx]
}

// astanaProfile reads the "PACKING LIST" sheet with a numeric row counter
// in the first column, a fixed CNY currency, and rows without a container
// number dropped rather than grouped under the sentinel.
func astanaProfile() Profile {
	return Profile{
		Name:      "astana",
		DataSheet: "PACKING LIST",
		DataStart: 23,

		NumericKeyCol: 0,

		Columns: ColumnMap{
			FieldDescriptionExtra: 1,
			FieldDescription:      3,
			FieldCargoPlaces:      4,
			FieldPackageCount:     4,
			FieldAmount:           7,
			FieldHSCode:           8,
			FieldNetWeight:        9,
			FieldGrossWeight:      10,
			FieldContainer:        11,
		},
		PackageKind: constants.PackageKindPK,

		Currency: CurrencyPolicy{Static: "CNY"},

		SkipNoContainer: true,

		Finish: fillMetadataPlaceholders,
	}
}

// unifiedProfile reads the normalized "PL" layout: one row per goods line
// with every attribute, including per-row currency, package kind, and the
// shipment parties, in fixed columns. Containers holding goods from several
// invoices are split into container_invoice groups.
func unifiedProfile() Profile {
	return Profile{
		Name:      "unified",
		DataSheet: "PL",
		DataStart: 2,

		NumericKeyCol: -1,

		Columns: ColumnMap{
			FieldHSCode:       1,
			FieldDescription:  2,
			FieldCargoPlaces:  4,
			FieldPackageKind:  5,
			FieldPackageCount: 4,
			FieldNetWeight:    6,
			FieldGrossWeight:  7,
			FieldCurrency:     8,
			FieldAmount:       9,
			FieldContainer:    10,
			FieldInvoice:      11,
			FieldInvoiceDate:  12,
		},

		SkipNoContainer:     true,
		CompositeInvoiceKey: true,

		Row:    unifiedRowMetadata,
		Finish: fillMetadataPlaceholders,
	}
}

func unifiedRowMetadata(rc *RowContext) {
	rc.Item.HSCode = truncateRunes(rc.Item.HSCode, 6)

	senderName := cellAt(rc.Row, 13)
	if seller := cellAt(rc.Row, 15); seller != "" {
		senderName += " П/П " + seller
	}
	recipientName := cellAt(rc.Row, 16)
	if buyer := cellAt(rc.Row, 18); buyer != "" {
		recipientName += " ДЛЯ " + buyer
	}

	res := rc.Result
	if _, seen := res.ContainerInfo[rc.Key]; !seen {
		res.ContainerInfo[rc.Key] = entity.ContainerMetadata{
			SenderName:       senderName,
			SenderAddress:    cellAt(rc.Row, 14),
			RecipientName:    recipientName,
			RecipientAddress: cellAt(rc.Row, 17),
			InvoiceNumber:    cellAt(rc.Row, 11),
			InvoiceDate:      cellAt(rc.Row, 12),
		}
	}
	res.SenderName = senderName
	res.SenderAddress = cellAt(rc.Row, 14)
	res.RecipientName = recipientName
	res.RecipientAddress = cellAt(rc.Row, 17)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// fillMetadataPlaceholders keeps the export shape stable for layouts that
// never state the free-text shipment fields.
func fillMetadataPlaceholders(res *entity.ExtractionResult) {
	fields := []*string{
		&res.Sender, &res.Recipient, &res.Buyer, &res.Seller, &res.Truck,
		&res.InvoiceNumber, &res.InvoiceDate,
		&res.SenderName, &res.SenderAddress,
		&res.RecipientName, &res.RecipientAddress,
	}
	for _, f := range fields {
		if *f == "" {
			*f = "-"
		}
	}
}
