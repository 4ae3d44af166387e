// Package declaration parses transit/customs declarations into the same
// canonical container shape the tabular extractors produce, plus the
// presented-document records used for invoice cross-checking.
package declaration

import (
	"strings"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/coerce"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// Options controls one Parse call.
type Options struct {
	// ContainerFilter, when set, restricts goods extraction to that
	// container number.
	ContainerFilter string
	// Invoice is the companion invoice-extraction result; when present,
	// invoice-kind documents are validated against its number and date.
	Invoice *entity.ExtractionResult
}

// Result is everything one declaration yields.
type Result struct {
	Data      *entity.ExtractionResult
	Documents []entity.DocumentRecord
	Details   entity.DeclarationDetails
}

// Parse extracts goods items, shipment metadata, and presented documents
// from a declaration. Malformed input and documents without goods blocks
// both yield an empty result rather than an error: a filtered view may
// legitimately match nothing, and the caller treats "nothing extracted" the
// same way in either case.
func Parse(xmlBytes []byte, opts Options) *Result {
	empty := &Result{Data: emptyData()}

	root, err := parseTree(xmlBytes)
	if err != nil {
		return empty
	}

	goods := root.findAll("TransitGoodsItemDetails", "GoodsItemDetails")
	if len(goods) == 0 {
		return empty
	}

	data := emptyData()
	data.SenderName, data.SenderAddress = subjectDetails(root, "ConsignorDetails")
	data.RecipientName, data.RecipientAddress = subjectDetails(root, "ConsigneeDetails")

	details := entity.DeclarationDetails{
		DepartureCountryCode:   root.firstText("DepartureCountryCode"),
		DestinationCountryCode: root.firstText("DestinationCountryCode"),
		SealQuantity:           coerce.Int(root.firstText("SealQuantity"), 0),
	}
	for _, seal := range root.findAll("CustomsIdentificationMeansId") {
		if s := seal.trimmedText(); s != "" {
			details.SealIDs = append(details.SealIDs, s)
		}
	}

	documents := collectDocuments(root, opts.Invoice)

	for _, block := range goods {
		item := goodsItem(block)
		if opts.ContainerFilter != "" && item.ContainerID != opts.ContainerFilter {
			continue
		}
		data.Containers.Append(item.ContainerID, item)
		data.Calc.Quantity += float64(item.CargoPlaces)
		data.Calc.Weight += item.GrossWeight
		data.Calc.Amount += item.Amount
	}

	// declarations carry no separate summary row; declared equals computed
	data.Totals = entity.Totals{
		Quantity: data.Calc.Quantity,
		Weight:   data.Calc.Weight,
		Amount:   data.Calc.Amount,
	}

	return &Result{Data: data, Documents: documents, Details: details}
}

func emptyData() *entity.ExtractionResult {
	return &entity.ExtractionResult{Containers: entity.NewContainerMap()}
}

// goodsItem maps one goods block onto a canonical item. Missing or
// malformed leaf values default rather than abort.
func goodsItem(block *node) entity.CanonicalItem {
	containerID := block.firstText("ContainerId")
	if containerID == "" {
		containerID = constants.NoContainerKey
	}

	currency := block.firstAttr("CAValueAmount", "currencyCode")
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	packageKind := block.firstText("PackageKindCode")
	if packageKind == "" {
		packageKind = string(constants.PackageKindPK)
	}
	availability := block.firstText("PackageAvailabilityCode")

	return entity.CanonicalItem{
		HSCode:          block.firstText("CommodityCode"),
		Description:     block.firstText("GoodsDescriptionText"),
		RestrictionFree: block.firstText("GoodsProhibitionFreeCode") == "C",
		Packed:          availability != "0",
		CargoPlaces:     coerce.Int(block.firstText("CargoQuantity"), 0),
		PackageKind:     packageKind,
		PackageCount:    coerce.Int(block.firstText("PackageQuantity"), 0),
		ContainerID:     containerID,
		GrossWeight:     coerce.Float(block.firstText("UnifiedGrossMassMeasure"), 0),
		Currency:        currency,
		Amount:          coerce.Float(block.firstText("CAValueAmount"), 0),
	}
}

// subjectDetails reads a party block: the subject name plus its address
// sub-elements joined with ", ", skipping the address kind code.
func subjectDetails(root *node, blockName string) (name, address string) {
	var parts []string
	for _, block := range root.findAll(blockName) {
		for _, child := range block.children {
			switch {
			case child.local == "SubjectName":
				if s := child.trimmedText(); s != "" && name == "" {
					name = s
				}
			case child.local == "SubjectAddressDetails":
				for _, addr := range child.children {
					if addr.local == "AddressKindCode" {
						continue
					}
					if s := addr.trimmedText(); s != "" {
						parts = append(parts, s)
					}
				}
			}
		}
	}
	return name, strings.Join(parts, ", ")
}

// collectDocuments extracts every presented-document block carrying a kind
// code once, deduplicating by the (kind, name, id, date) tuple, and applies
// the business-rule validation for known kind codes.
func collectDocuments(root *node, invoice *entity.ExtractionResult) []entity.DocumentRecord {
	var documents []entity.DocumentRecord
	for _, block := range root.findAll("TDPresentedDocDetails") {
		doc := entity.DocumentRecord{
			KindCode:     block.firstText("DocKindCode"),
			Name:         block.firstText("DocName"),
			ID:           block.firstText("DocId"),
			CreationDate: block.firstText("DocCreationDate"),
		}
		// documents without a kind code are not presentable records
		if doc.KindCode == "" {
			continue
		}
		if doc.KindCode == constants.DocKindRailwayBill && doc.Name == "" {
			doc.Name = constants.RailwayBillDefaultName
		}
		validate(&doc, invoice)

		duplicate := false
		for _, existing := range documents {
			if existing.SameDocument(doc) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			documents = append(documents, doc)
		}
	}
	return documents
}
