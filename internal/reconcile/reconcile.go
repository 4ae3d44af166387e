// Package reconcile lines an invoice extraction up against a transit
// declaration so the two sides can be compared record by record. Records
// inside each container are ordered deterministically; whole containers are
// matched by an aligner when one is available, with the deterministic order
// as the fallback.
package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/Wooodyy/mappingdata/internal/declaration"
	"github.com/Wooodyy/mappingdata/internal/entity"
	"github.com/Wooodyy/mappingdata/internal/llm"
)

// Result pairs the two sides after reconciliation. Aligned reports whether
// the aligner's ordering was accepted; Note carries the reason when it was
// not.
type Result struct {
	Invoice     *entity.ExtractionResult
	Declaration *declaration.Result
	Aligned     bool
	Note        string
}

// SortItems orders records by cargo places, amount, and gross weight, all
// descending, with the case-folded description breaking ties. The order is
// stable so equal records keep their extraction order.
func SortItems(items []entity.CanonicalItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CargoPlaces != b.CargoPlaces {
			return a.CargoPlaces > b.CargoPlaces
		}
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		if a.GrossWeight != b.GrossWeight {
			return a.GrossWeight > b.GrossWeight
		}
		return strings.ToLower(strings.TrimSpace(a.Description)) <
			strings.ToLower(strings.TrimSpace(b.Description))
	})
}

// SortContainers applies SortItems to every container group in place.
func SortContainers(m *entity.ContainerMap) {
	if m == nil {
		return
	}
	for _, key := range m.Keys() {
		SortItems(m.Get(key))
	}
}

// FirstContainer returns the declaration's first container key. Extractors
// use it to narrow an invoice down to the containers the declaration covers.
func FirstContainer(decl *declaration.Result) string {
	if decl == nil || decl.Data == nil || decl.Data.Containers == nil {
		return ""
	}
	return decl.Data.Containers.First()
}

// Engine reconciles the two sides of a shipment.
type Engine struct {
	aligner llm.ContainerAligner
	logger  *slog.Logger
}

// NewEngine builds an engine. aligner may be nil, in which case only the
// deterministic ordering applies.
func NewEngine(aligner llm.ContainerAligner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{aligner: aligner, logger: logger}
}

// Reconcile orders both sides and, when an aligner is configured, asks it
// to pair up containers by record similarity. A reply is accepted only if
// both sides come back with exactly the original container keys; anything
// else keeps the deterministic order.
func (e *Engine) Reconcile(ctx context.Context, invoice *entity.ExtractionResult, decl *declaration.Result) *Result {
	res := &Result{Invoice: invoice, Declaration: decl}

	if invoice != nil {
		SortContainers(invoice.Containers)
	}
	if decl != nil && decl.Data != nil {
		SortContainers(decl.Data.Containers)
	}

	if e.aligner == nil || invoice == nil || decl == nil || decl.Data == nil {
		return res
	}
	if invoice.Containers.Len() == 0 || decl.Data.Containers.Len() == 0 {
		return res
	}

	aligned, err := e.aligner.SortContainers(ctx, invoice.Containers, decl.Data.Containers)
	if err != nil {
		e.logger.Warn("reconcile.align.failed", "error", err)
		res.Note = "Не удалось отсортировать данные"
		return res
	}
	if aligned == nil || aligned.Invoice == nil || aligned.Declaration == nil ||
		!aligned.Invoice.SameKeys(invoice.Containers) || !aligned.Declaration.SameKeys(decl.Data.Containers) {
		e.logger.Warn("reconcile.align.rejected",
			"invoice_keys", invoice.Containers.Len(),
			"declaration_keys", decl.Data.Containers.Len())
		res.Note = "Не удалось отсортировать данные"
		return res
	}

	invoice.Containers = aligned.Invoice
	decl.Data.Containers = aligned.Declaration
	res.Aligned = true
	return res
}
