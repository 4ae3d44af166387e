package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Wooodyy/mappingdata/internal/entity"
)

// WriteXLSX returns a review workbook: one row per item with its container
// key, followed by the declared and computed totals.
func WriteXLSX(res *entity.ExtractionResult) ([]byte, error) {
	if res == nil || res.Containers == nil {
		return nil, fmt.Errorf("export: nil result")
	}

	f := excelize.NewFile()
	const sheet = "Товары"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	headers := []string{
		"Номер контейнера",
		"Код ТН ВЭД",
		"Коммерческое описание товара",
		"Количество грузовых мест",
		"Вид упаковки",
		"Количество упаковок",
		"Вес брутто",
		"Валюта",
		"Сумма",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for _, key := range res.Containers.Keys() {
		for _, item := range res.Containers.Get(key) {
			write(1, key)
			write(2, item.HSCode)
			write(3, item.Description)
			write(4, item.CargoPlaces)
			write(5, item.PackageKind)
			write(6, item.PackageCount)
			write(7, item.GrossWeight)
			write(8, item.Currency)
			write(9, item.Amount)
			row++
		}
	}

	row++
	write(1, "Итого по документу")
	write(4, res.Totals.Quantity)
	write(7, res.Totals.Weight)
	write(9, res.Totals.Amount)
	row++
	write(1, "Итого по строкам")
	write(4, res.Calc.Quantity)
	write(7, res.Calc.Weight)
	write(9, res.Calc.Amount)

	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "C", 48)
	_ = f.SetColWidth(sheet, "D", "F", 12)
	_ = f.SetColWidth(sheet, "G", "I", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
