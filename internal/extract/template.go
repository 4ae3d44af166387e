package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/coerce"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// Sheet is one worksheet snapshot in workbook order.
type Sheet struct {
	Name string
	Rows [][]string
}

// Options carries per-run extraction switches.
type Options struct {
	// ContainerFilter keeps only rows belonging to this container.
	ContainerFilter string
}

// Deps are the collaborators a profile may call out to.
type Deps struct {
	Classifier TextClassifier
	Logger     *slog.Logger
}

// TextClassifier resolves values the workbook does not state explicitly.
type TextClassifier interface {
	DetectCurrency(ctx context.Context, text string) (string, error)
	DetectSender(ctx context.Context, text string) (string, error)
	DetectRecipient(ctx context.Context, text string) (string, error)
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

type region struct {
	sheet   Sheet
	start   int
	end     int // exclusive
	summary []string
}

// Run executes the extraction template over an xlsx workbook using the
// supplier profile p.
func Run(ctx context.Context, p Profile, doc []byte, opts Options, deps Deps) (*entity.ExtractionResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets, err := loadSheets(f)
	if err != nil {
		return nil, err
	}

	res := &entity.ExtractionResult{
		Containers:    entity.NewContainerMap(),
		ContainerInfo: make(map[string]entity.ContainerMetadata),
	}

	if p.CellMetadata != nil {
		p.CellMetadata(sheets, res)
	}
	scanMetadata(p.MetadataRules, sheets, &res.ShipmentMetadata)
	classifyParties(ctx, p, sheets, deps, res)

	currency := resolveCurrency(ctx, p, sheets, deps)

	regions, err := locateRegions(p, sheets)
	if err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	rc := &RowContext{Result: res}
	invoices := collectInvoiceKeys(p, regions)

	for _, reg := range regions {
		processRegion(p, reg, opts, currency, invoices, acc, rc, res)
		if p.SummaryTotals && reg.summary != nil {
			res.Totals.Quantity += coerce.Float(cellAt(reg.summary, p.SummaryCols[0]), 0)
			res.Totals.Weight += coerce.Float(cellAt(reg.summary, p.SummaryCols[1]), 0)
			res.Totals.Amount += coerce.Float(cellAt(reg.summary, p.SummaryCols[2]), 0)
		}
	}

	if p.TotalsSheet != "" {
		if err := readTotalsRow(p, sheets, &res.Totals); err != nil {
			return nil, err
		}
	}

	res.Containers = acc.Containers()
	res.Calc = acc.Computed()
	if !p.SummaryTotals && p.TotalsSheet == "" {
		res.Totals = entity.Totals(res.Calc)
	}

	if p.Finish != nil {
		p.Finish(res)
	}

	deps.logger().Info("extract.run.done",
		"profile", p.Name,
		"containers", res.Containers.Len(),
		"items", res.Containers.TotalItems())
	return res, nil
}

func processRegion(p Profile, reg region, opts Options, currency string, invoices map[string]map[string]bool, acc *Accumulator, rc *RowContext, res *entity.ExtractionResult) {
	for i := reg.start; i < reg.end; i++ {
		row := reg.sheet.Rows[i]
		if p.NumericKeyCol >= 0 {
			if !coerce.IsNumeric(cellAt(row, p.NumericKeyCol)) {
				if p.CutAtNonNumericKey {
					return
				}
				continue
			}
		}
		if rowEmpty(row) {
			continue
		}

		rawContainer := containerValue(p, row, res)
		if p.SkipNoContainer && rawContainer == "" {
			continue
		}
		if opts.ContainerFilter != "" && rawContainer != opts.ContainerFilter {
			continue
		}

		item := buildItem(p, row, currency)
		item.ContainerID = rawContainer
		key := rawContainer
		if key == "" {
			key = constants.NoContainerKey
		}
		if invNo := mappedCell(p, row, FieldInvoice); invNo != "" {
			res.InvoiceNumber = invNo
			if d := mappedCell(p, row, FieldInvoiceDate); d != "" {
				res.InvoiceDate = d
			}
			if p.CompositeInvoiceKey && len(invoices[rawContainer]) > 1 {
				key = rawContainer + "_" + invNo
			}
		}

		rc.Row = row
		rc.Item = &item
		rc.Key = key
		rc.Skip = false
		if p.Row != nil {
			p.Row(rc)
		}
		if rc.Skip {
			continue
		}
		acc.Add(rc.Key, *rc.Item)
	}
}

func buildItem(p Profile, row []string, currency string) entity.CanonicalItem {
	item := entity.CanonicalItem{
		HSCode:          mappedCell(p, row, FieldHSCode),
		Description:     mappedCell(p, row, FieldDescription),
		RestrictionFree: true,
		Packed:          true,
		CargoPlaces:     coerce.Int(mappedCell(p, row, FieldCargoPlaces), 0),
		PackageKind:     string(p.PackageKind),
		PackageCount:    coerce.Int(mappedCell(p, row, FieldPackageCount), 0),
		GrossWeight:     coerce.Float(mappedCell(p, row, FieldGrossWeight), 0),
		Currency:        currency,
		Amount:          coerce.Float(mappedCell(p, row, FieldAmount), 0),
	}
	if extra := mappedCell(p, row, FieldDescriptionExtra); extra != "" {
		if item.Description != "" {
			item.Description += " "
		}
		item.Description += extra
	}
	if _, ok := p.column(FieldNetWeight); ok {
		// packed only when both weights are stated and brutto exceeds netto
		netCell := mappedCell(p, row, FieldNetWeight)
		grossCell := mappedCell(p, row, FieldGrossWeight)
		net := coerce.Float(netCell, 0)
		item.Packed = entity.Flag(netCell != "" && grossCell != "" && item.GrossWeight > net)
	}
	if kind := mappedCell(p, row, FieldPackageKind); kind != "" {
		item.PackageKind = kind
	}
	if cur := mappedCell(p, row, FieldCurrency); cur != "" {
		item.Currency = strings.ToUpper(cur)
	}
	return item
}

func containerValue(p Profile, row []string, res *entity.ExtractionResult) string {
	if p.ContainerFrom == ContainerFromTruck {
		return strings.TrimSpace(res.Truck)
	}
	return mappedCell(p, row, FieldContainer)
}

// collectInvoiceKeys pre-scans the regions so composite keys are only used
// for containers that really span more than one invoice.
func collectInvoiceKeys(p Profile, regions []region) map[string]map[string]bool {
	if !p.CompositeInvoiceKey {
		return nil
	}
	out := make(map[string]map[string]bool)
	for _, reg := range regions {
		for i := reg.start; i < reg.end; i++ {
			row := reg.sheet.Rows[i]
			cont := mappedCell(p, row, FieldContainer)
			inv := mappedCell(p, row, FieldInvoice)
			if cont == "" || inv == "" {
				continue
			}
			if out[cont] == nil {
				out[cont] = make(map[string]bool)
			}
			out[cont][inv] = true
		}
	}
	return out
}

func locateRegions(p Profile, sheets []Sheet) ([]region, error) {
	if p.AllSheets && p.AnchorLabel != "" {
		var regs []region
		for _, sh := range sheets {
			for i, row := range sh.Rows {
				if strings.TrimSpace(cellAt(row, 0)) == p.AnchorLabel {
					regs = append(regs, trimRegion(p, sh, i+1))
					break
				}
			}
		}
		return regs, nil
	}

	sh, err := pickSheet(p, sheets)
	if err != nil {
		return nil, err
	}
	if len(sh.Rows) < p.MinRows {
		return nil, fmt.Errorf("sheet %q has %d rows, need at least %d", sh.Name, len(sh.Rows), p.MinRows)
	}
	start := p.DataStart
	if p.AnchorLabel != "" {
		found := false
		for i, row := range sh.Rows {
			if strings.TrimSpace(cellAt(row, 0)) == p.AnchorLabel {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("label %q not found on sheet %q", p.AnchorLabel, sh.Name)
		}
	}
	if start >= len(sh.Rows) {
		return nil, nil
	}
	return []region{trimRegion(p, sh, start)}, nil
}

func trimRegion(p Profile, sh Sheet, start int) region {
	reg := region{sheet: sh, start: start, end: len(sh.Rows)}
	if p.TrailingDrop && reg.end > reg.start {
		reg.end--
		reg.summary = sh.Rows[reg.end]
	}
	return reg
}

func pickSheet(p Profile, sheets []Sheet) (Sheet, error) {
	if len(sheets) == 0 {
		return Sheet{}, fmt.Errorf("workbook has no sheets")
	}
	if p.DataSheet == "" {
		return sheets[0], nil
	}
	for _, sh := range sheets {
		if sh.Name == p.DataSheet {
			return sh, nil
		}
	}
	return Sheet{}, fmt.Errorf("sheet %q not found", p.DataSheet)
}

func readTotalsRow(p Profile, sheets []Sheet, totals *entity.Totals) error {
	var target *Sheet
	for i := range sheets {
		if sheets[i].Name == p.TotalsSheet {
			target = &sheets[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("sheet %q not found", p.TotalsSheet)
	}
	for _, row := range target.Rows {
		if strings.TrimSpace(cellAt(row, 0)) != p.TotalsLabel {
			continue
		}
		totals.Quantity = coerce.Float(cellAt(row, p.TotalsCols[0]), 0)
		totals.Weight = coerce.Float(cellAt(row, p.TotalsCols[1]), 0)
		totals.Amount = coerce.Float(cellAt(row, p.TotalsCols[2]), 0)
		return nil
	}
	return nil
}

func scanMetadata(rules []MetadataRule, sheets []Sheet, md *entity.ShipmentMetadata) {
	for _, rule := range rules {
		value, ok := findPrefixed(sheets, rule.Prefix)
		if !ok {
			continue
		}
		if rule.Transform != nil {
			value = rule.Transform(value)
		}
		rule.Assign(md, value)
	}
}

func findPrefixed(sheets []Sheet, prefix string) (string, bool) {
	for _, sh := range sheets {
		for _, row := range sh.Rows {
			for _, cell := range row {
				for _, line := range strings.Split(cell, "\n") {
					line = strings.TrimSpace(line)
					if strings.HasPrefix(line, prefix) {
						return strings.TrimSpace(line[len(prefix):]), true
					}
				}
			}
		}
	}
	return "", false
}

func classifyParties(ctx context.Context, p Profile, sheets []Sheet, deps Deps, res *entity.ExtractionResult) {
	if !p.ClassifyParties || deps.Classifier == nil {
		return
	}
	text := workbookText(sheets, p.ClassifySheet)
	if strings.TrimSpace(text) == "" {
		return
	}
	if res.Sender == "" {
		sender, err := deps.Classifier.DetectSender(ctx, text)
		if err != nil {
			deps.logger().Warn("extract.classify.sender_failed", "profile", p.Name, "error", err)
		} else {
			res.Sender = sender
		}
	}
	if res.Recipient == "" {
		recipient, err := deps.Classifier.DetectRecipient(ctx, text)
		if err != nil {
			deps.logger().Warn("extract.classify.recipient_failed", "profile", p.Name, "error", err)
		} else {
			res.Recipient = recipient
		}
	}
}

func resolveCurrency(ctx context.Context, p Profile, sheets []Sheet, deps Deps) string {
	if p.Currency.Static != "" {
		return p.Currency.Static
	}
	if p.Currency.Classify && deps.Classifier != nil {
		if text := workbookText(sheets, p.ClassifySheet); strings.TrimSpace(text) != "" {
			cur, err := deps.Classifier.DetectCurrency(ctx, text)
			if err == nil && cur != "" {
				return cur
			}
			if err != nil {
				deps.logger().Warn("extract.classify.currency_failed", "profile", p.Name, "error", err)
			}
		}
	}
	if p.Currency.Scan {
		if cur, ok := scanCurrency(sheets); ok {
			return cur
		}
	}
	return constants.DefaultCurrency
}

func scanCurrency(sheets []Sheet) (string, bool) {
	for _, sh := range sheets {
		for _, row := range sh.Rows {
			for _, cell := range row {
				upper := strings.ToUpper(cell)
				for _, code := range constants.KnownCurrencies {
					if containsWord(upper, code) {
						return code, true
					}
				}
			}
		}
	}
	return "", false
}

func containsWord(s, word string) bool {
	for idx := 0; ; {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isLetter(s[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(s) || !isLetter(s[afterIdx])
		if before && after {
			return true
		}
		idx = afterIdx
	}
}

func isLetter(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func workbookText(sheets []Sheet, only string) string {
	var b strings.Builder
	for _, sh := range sheets {
		if only != "" && sh.Name != only {
			continue
		}
		b.WriteString(sh.Name)
		b.WriteByte('\n')
		for _, row := range sh.Rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func loadSheets(f *excelize.File) ([]Sheet, error) {
	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func mappedCell(p Profile, row []string, f Field) string {
	idx, ok := p.column(f)
	if !ok {
		return ""
	}
	return cellAt(row, idx)
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
