package entity

import (
	"strconv"
	"strings"
)

// Flag is a boolean that travels as 0/1 on the wire, matching the labels the
// declaration software expects ("0-БЕЗ, 1 С").
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch s {
	case "", "0", "false", "null":
		*f = false
	case "1", "true":
		*f = true
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = n != 0
	}
	return nil
}

// CanonicalItem is one normalized line of goods within a container. JSON tags
// carry the original-language column labels so exports round-trip into the
// declaration software unchanged; note the trailing space in the package-kind
// label, which is part of the established format.
type CanonicalItem struct {
	HSCode          string  `json:"Код ТН ВЭД"`
	Description     string  `json:"Коммерческое описание товара"`
	RestrictionFree Flag    `json:"Признак товара, свободного от применения запретов и ограничений (всегда 1)"`
	Packed          Flag    `json:"Информация об упаковке (0-БЕЗ, 1 С)"`
	CargoPlaces     int     `json:"Количество грузовых мест"`
	PackageInfoKind int     `json:"Вид информации об упаковке (всегда 0)"`
	PackageKind     string  `json:"Вид упаковки "`
	PackageCount    int     `json:"Количество упаковок"`
	ContainerID     string  `json:"Номер контейнера"`
	GrossWeight     float64 `json:"Вес брутто"`
	Currency        string  `json:"Валюта"`
	Amount          float64 `json:"Сумма"`
}

// Totals are the declared figures read from a document's own summary row.
type Totals struct {
	Quantity float64 `json:"total_quantity"`
	Weight   float64 `json:"total_weight"`
	Amount   float64 `json:"total_amount"`
}

// ComputedTotals are derived by summing extracted items. They are reported
// next to Totals so discrepancies surface instead of self-correcting.
type ComputedTotals struct {
	Quantity float64 `json:"calc_quantity"`
	Weight   float64 `json:"calc_weight"`
	Amount   float64 `json:"calc_amount"`
}

// ShipmentMetadata carries the free-text fields scanned out of a document.
type ShipmentMetadata struct {
	Sender           string `json:"sender,omitempty"`
	Recipient        string `json:"recipient,omitempty"`
	Buyer            string `json:"buyer,omitempty"`
	Seller           string `json:"seller,omitempty"`
	Truck            string `json:"truck,omitempty"`
	InvoiceNumber    string `json:"invoice,omitempty"`
	InvoiceDate      string `json:"date_invoice,omitempty"`
	SenderName       string `json:"sender_name,omitempty"`
	SenderAddress    string `json:"sender_address,omitempty"`
	RecipientName    string `json:"recipient_name,omitempty"`
	RecipientAddress string `json:"recipient_address,omitempty"`
}

// ContainerMetadata is shipment metadata scoped to one container key, used
// when a single document spans multiple invoices to multiple recipients.
type ContainerMetadata struct {
	SenderName       string `json:"sender_name"`
	SenderAddress    string `json:"sender_address"`
	RecipientName    string `json:"recipient_name"`
	RecipientAddress string `json:"recipient_address"`
	InvoiceNumber    string `json:"invoice"`
	InvoiceDate      string `json:"date_invoice"`
}

// ExtractionResult is the full outcome of one extraction run. Every call
// produces a fresh value; nothing is shared between calls.
type ExtractionResult struct {
	Containers *ContainerMap  `json:"containers"`
	Totals     Totals         `json:"totals"`
	Calc       ComputedTotals `json:"calc"`
	ShipmentMetadata
	ContainerInfo map[string]ContainerMetadata `json:"container_info,omitempty"`
}
