package declaration

import (
	"fmt"
	"strings"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// validate applies the per-kind business rules, flagging the record instead
// of failing extraction. Messages stay in the operators' language alongside
// the exported field labels.
func validate(doc *entity.DocumentRecord, invoice *entity.ExtractionResult) {
	switch doc.KindCode {
	case constants.DocKindTransitRegister:
		date := strings.TrimSpace(doc.CreationDate)
		for _, accepted := range constants.TransitRegisterDateForms {
			if date == accepted {
				return
			}
		}
		doc.HasError = true
		doc.ErrorMessage = fmt.Sprintf(
			"Ошибка: Документ с кодом %s должен иметь дату %s, но получена дата: %s",
			doc.KindCode, constants.TransitRegisterDate, date)

	case constants.DocKindInvoice, constants.DocKindShippingSpec:
		if invoice == nil {
			return
		}
		if normalizeDocID(doc.ID) != normalizeDocID(invoice.InvoiceNumber) {
			doc.HasError = true
			doc.ErrorMessage = fmt.Sprintf(
				"Ошибка: Документ с кодом %s должен иметь DocId равный номеру инвойса (%s), но получен: %s",
				doc.KindCode, invoice.InvoiceNumber, doc.ID)
			return
		}
		want := NormalizeDate(invoice.InvoiceDate)
		got := NormalizeDate(doc.CreationDate)
		if got != want {
			doc.HasError = true
			doc.ErrorMessage = fmt.Sprintf(
				"Ошибка: Документ с кодом %s должен иметь дату равную дате инвойса (%s), но получена дата: %s",
				doc.KindCode, want, got)
		}
	}
}

// normalizeDocID strips leading zeros from purely numeric identifiers so
// "0001234" and "1234" compare equal; non-numeric ids compare verbatim.
func normalizeDocID(id string) string {
	s := strings.TrimSpace(id)
	if s == "" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// NormalizeDate reduces the date representations sources are known to emit
// to YYYY-MM-DD: already-ISO dates pass through, DD.MM.YYYY and YYYY/MM/DD
// are rearranged, and ISO-with-time forms are cut at the time separator.
// Unrecognized inputs come back unchanged so mismatches stay visible.
func NormalizeDate(date string) string {
	s := strings.TrimSpace(date)
	if s == "" {
		return ""
	}
	if len(s) == 10 && strings.Count(s, "-") == 2 {
		return s
	}
	if len(s) == 10 && strings.Count(s, ".") == 2 {
		p := strings.Split(s, ".")
		if len(p) == 3 {
			return p[2] + "-" + p[1] + "-" + p[0]
		}
	}
	if len(s) == 10 && strings.Count(s, "/") == 2 {
		p := strings.Split(s, "/")
		if len(p) == 3 {
			return p[0] + "-" + p[1] + "-" + p[2]
		}
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return NormalizeDate(s[:i])
	}
	if i := strings.IndexByte(s, ' '); i > 0 {
		return NormalizeDate(s[:i])
	}
	return s
}
