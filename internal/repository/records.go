package repository

import (
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// ContainerRecord is one container's worth of extracted data flattened to
// the store's shape.
type ContainerRecord struct {
	Container        string       `json:"container"`
	Consignor        string       `json:"consignor"`
	Consignee        string       `json:"consignee"`
	Seller           string       `json:"seller,omitempty"`
	Buyer            string       `json:"buyer,omitempty"`
	SenderAddress    string       `json:"sender_address,omitempty"`
	RecipientAddress string       `json:"recipient_address,omitempty"`
	InvoiceNumber    string       `json:"invoice_number,omitempty"`
	InvoiceDate      string       `json:"invoice_date,omitempty"`
	Items            []ItemRecord `json:"items"`
}

// ItemRecord is one goods line in store field names.
type ItemRecord struct {
	Code            string  `json:"code"`
	GoodsName       string  `json:"goods_name"`
	RestrictionFlag bool    `json:"restriction_flag"`
	PackageInfo     bool    `json:"package_info"`
	Places          int     `json:"places"`
	PackageInfoType int     `json:"package_info_type"`
	PackageType     string  `json:"package_type"`
	PackageCount    int     `json:"package_count"`
	Weight          float64 `json:"weight"`
	Currency        string  `json:"currency"`
	ValueAmount     float64 `json:"value_amount"`
}

// PrepareRecords flattens an extraction result into per-container records.
// Container-scoped metadata wins over the shipment-level fields; containers
// without items are dropped.
func PrepareRecords(res *entity.ExtractionResult) []ContainerRecord {
	if res == nil || res.Containers == nil {
		return nil
	}

	var records []ContainerRecord
	for _, key := range res.Containers.Keys() {
		items := res.Containers.Get(key)
		if len(items) == 0 {
			continue
		}

		rec := ContainerRecord{
			Container:        key,
			Consignor:        firstNonEmpty(clean(res.SenderName), clean(res.Sender), "отправитель"),
			Consignee:        firstNonEmpty(clean(res.RecipientName), clean(res.Recipient), "получатель"),
			Seller:           clean(res.Seller),
			Buyer:            clean(res.Buyer),
			SenderAddress:    clean(res.SenderAddress),
			RecipientAddress: clean(res.RecipientAddress),
			InvoiceNumber:    clean(res.InvoiceNumber),
			InvoiceDate:      clean(res.InvoiceDate),
		}
		if meta, ok := res.ContainerInfo[key]; ok {
			rec.Consignor = firstNonEmpty(meta.SenderName, rec.Consignor)
			rec.Consignee = firstNonEmpty(meta.RecipientName, rec.Consignee)
			rec.SenderAddress = firstNonEmpty(clean(meta.SenderAddress), rec.SenderAddress)
			rec.RecipientAddress = firstNonEmpty(clean(meta.RecipientAddress), rec.RecipientAddress)
			rec.InvoiceNumber = firstNonEmpty(clean(meta.InvoiceNumber), rec.InvoiceNumber)
			rec.InvoiceDate = firstNonEmpty(clean(meta.InvoiceDate), rec.InvoiceDate)
		}

		rec.Items = make([]ItemRecord, 0, len(items))
		for _, item := range items {
			rec.Items = append(rec.Items, ItemRecord{
				Code:            item.HSCode,
				GoodsName:       item.Description,
				RestrictionFlag: bool(item.RestrictionFree),
				PackageInfo:     bool(item.Packed),
				Places:          item.CargoPlaces,
				PackageInfoType: item.PackageInfoKind,
				PackageType:     item.PackageKind,
				PackageCount:    item.PackageCount,
				Weight:          item.GrossWeight,
				Currency:        item.Currency,
				ValueAmount:     item.Amount,
			})
		}
		records = append(records, rec)
	}
	return records
}

// clean drops the "-" placeholder some layouts emit for absent metadata.
func clean(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
