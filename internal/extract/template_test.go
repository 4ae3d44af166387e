package extract

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// buildWorkbook renders sheet grids into xlsx bytes. Row and column indexes
// of the grids line up with the zero-based indexes GetRows hands back.
func buildWorkbook(t *testing.T, order []string, sheets map[string][][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NotEmpty(t, order)

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), order[0]))
	for _, name := range order[1:] {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}

	for name, rows := range sheets {
		for r, row := range rows {
			for c, val := range row {
				if val == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, val))
			}
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func pad(n int) [][]string {
	return make([][]string, n)
}

func TestXinjiangExtraction(t *testing.T) {
	rows := [][]string{
		{"Отправитель: XINJIANG XINDUDU CO", "Сумма, CNY"},
		{"Truck:№ 123 AB"},
		{"Получатель: ТОО ПОЛУЧАТЕЛЬ"},
		{"Наименование/модель", "Код ТН ВЭД", "Кол-во мест", "", "Нетто", "Брутто", "Сумма"},
		{"Товар А", "870323", "2", "", "100", "120.5", "1000"},
		{"Товар Б", "850450", "1", "", "50", "49", "500"},
		{"Итого", "", "3", "", "", "169.5", "1500"},
	}
	doc := buildWorkbook(t, []string{"Лист1"}, map[string][][]string{"Лист1": rows})

	res, err := Extract(context.Background(), SupplierXinjiang, doc, Options{}, Deps{})
	require.NoError(t, err)

	assert.Equal(t, "XINJIANG XINDUDU CO", res.Sender)
	assert.Equal(t, "ТОО ПОЛУЧАТЕЛЬ", res.Recipient)
	assert.Equal(t, "123AB", res.Truck)

	require.Equal(t, []string{"123AB"}, res.Containers.Keys())
	items := res.Containers.Get("123AB")
	require.Len(t, items, 2)

	assert.Equal(t, "870323", items[0].HSCode)
	assert.Equal(t, "Товар А", items[0].Description)
	assert.Equal(t, 2, items[0].CargoPlaces)
	assert.Equal(t, 2, items[0].PackageCount)
	assert.True(t, bool(items[0].Packed))
	assert.False(t, bool(items[1].Packed)) // netto exceeds brutto
	assert.True(t, bool(items[0].RestrictionFree))
	assert.Equal(t, "PK", items[0].PackageKind)
	// no classifier configured, the cell scan picks the code up
	assert.Equal(t, "CNY", items[0].Currency)

	assert.Equal(t, 3.0, res.Totals.Quantity)
	assert.Equal(t, 169.5, res.Totals.Weight)
	assert.Equal(t, 1500.0, res.Totals.Amount)

	assert.Equal(t, 3.0, res.Calc.Quantity)
	assert.Equal(t, 169.5, res.Calc.Weight)
	assert.Equal(t, 1500.0, res.Calc.Amount)
}

func TestXinjiangSumsTotalsAcrossAnchoredSheets(t *testing.T) {
	first := [][]string{
		{"Truck:№ 555 CD"},
		{"Наименование/модель", "Код ТН ВЭД", "Кол-во мест"},
		{"Товар А", "870323", "2", "", "10", "12", "100"},
		{"Итого", "", "2", "", "", "12", "100"},
	}
	second := [][]string{
		{"примечания без таблицы"},
	}
	third := [][]string{
		{"Наименование/модель", "Код ТН ВЭД", "Кол-во мест"},
		{"Товар Б", "850450", "3", "", "20", "25", "300"},
		{"Итого", "", "3", "", "", "25", "300"},
	}
	doc := buildWorkbook(t, []string{"Лист1", "Лист2", "Лист3"}, map[string][][]string{
		"Лист1": first, "Лист2": second, "Лист3": third,
	})

	res, err := Extract(context.Background(), SupplierXinjiang, doc, Options{}, Deps{})
	require.NoError(t, err)

	items := res.Containers.Get("555CD")
	require.Len(t, items, 2)

	assert.Equal(t, 5.0, res.Totals.Quantity)
	assert.Equal(t, 37.0, res.Totals.Weight)
	assert.Equal(t, 400.0, res.Totals.Amount)
	assert.Equal(t, entity.Totals(res.Calc), res.Totals)
}

func TestExtractSameBytesTwiceIsIdentical(t *testing.T) {
	rows := [][]string{
		{"Отправитель: XINJIANG XINDUDU CO"},
		{"Truck:№ 123 AB"},
		{"Наименование/модель", "Код ТН ВЭД", "Кол-во мест"},
		{"Товар А", "870323", "2", "", "100", "120.5", "1000"},
		{"Товар Б", "850450", "1", "", "50", "49", "500"},
		{"Итого", "", "3", "", "", "169.5", "1500"},
	}
	doc := buildWorkbook(t, []string{"Лист1"}, map[string][][]string{"Лист1": rows})

	first, err := Extract(context.Background(), SupplierXinjiang, doc, Options{}, Deps{})
	require.NoError(t, err)
	second, err := Extract(context.Background(), SupplierXinjiang, doc, Options{}, Deps{})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestXinjiangWithoutTruckUsesSentinel(t *testing.T) {
	rows := [][]string{
		{"Наименование/модель", "Код ТН ВЭД", "Кол-во мест"},
		{"Товар", "870323", "1", "", "10", "12", "100"},
		{"Итого", "", "1", "", "", "12", "100"},
	}
	doc := buildWorkbook(t, []string{"Лист1"}, map[string][][]string{"Лист1": rows})

	res, err := Extract(context.Background(), SupplierXinjiang, doc, Options{}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, []string{constants.NoContainerKey}, res.Containers.Keys())
}

func TestMTLExtraction(t *testing.T) {
	packing := append(pad(4), [][]string{
		{"1", "C1", "P-100", "Part", "Деталь", "10", "2", "100", "", "", "", "8708", "", "TCLU1", "5", "6"},
		{"2", "C1", "P-101", "Part", "Деталь2", "5", "2", "200", "", "", "", "8708", "", "TCLU1", "5", "6"},
		{"3", "C2", "P-102", "Part", "Деталь3", "1", "2", "300", "", "", "", "8708", "", "", "4", "4"},
		{"", "", "", "", "", "", "", "Total"},
	}...)
	containerList := append(pad(3), [][]string{
		{"Total Case", "", "", "7", "", "", "123.45", "", "5000"},
	}...)

	doc := buildWorkbook(t,
		[]string{"PACKING LIST(Weight)", "CONTAINER LIST"},
		map[string][][]string{
			"PACKING LIST(Weight)": packing,
			"CONTAINER LIST":       containerList,
		})

	res, err := Extract(context.Background(), SupplierMTL, doc, Options{}, Deps{})
	require.NoError(t, err)

	require.Equal(t, []string{"TCLU1", constants.NoContainerKey}, res.Containers.Keys())

	items := res.Containers.Get("TCLU1")
	require.Len(t, items, 2)
	assert.Equal(t, "P-100 Деталь", items[0].Description)
	assert.Equal(t, "CS", items[0].PackageKind)
	assert.Equal(t, 1, items[0].CargoPlaces)
	// repeated case numbers are the same physical case
	assert.Equal(t, 0, items[1].CargoPlaces)
	assert.Equal(t, 0, items[1].PackageCount)
	assert.True(t, bool(items[0].Packed))

	loose := res.Containers.Get(constants.NoContainerKey)
	require.Len(t, loose, 1)
	assert.False(t, bool(loose[0].Packed)) // brutto equals netto

	assert.Equal(t, 7.0, res.Totals.Quantity)
	assert.Equal(t, 123.45, res.Totals.Weight)
	assert.Equal(t, 5000.0, res.Totals.Amount)

	assert.Equal(t, 2.0, res.Calc.Quantity)
	assert.Equal(t, 16.0, res.Calc.Weight)
	assert.Equal(t, 600.0, res.Calc.Amount)

	assert.Equal(t, constants.UnknownParty, res.Sender)
	assert.Equal(t, constants.UnknownParty, res.Recipient)
	assert.Equal(t, "Количество контейнеров: 2", res.Truck)
}

func TestMTLMissingContainerListFails(t *testing.T) {
	packing := append(pad(4), [][]string{
		{"1", "C1", "P-100", "Part", "Деталь", "10", "2", "100", "", "", "", "8708", "", "TCLU1", "5", "6"},
		{"", "", "", "", "", "", "", "Total"},
	}...)
	doc := buildWorkbook(t, []string{"PACKING LIST(Weight)"},
		map[string][][]string{"PACKING LIST(Weight)": packing})

	_, err := Extract(context.Background(), SupplierMTL, doc, Options{}, Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONTAINER LIST")
}

func TestExtractUnknownSupplier(t *testing.T) {
	_, err := Extract(context.Background(), "nobody", nil, Options{}, Deps{})
	require.Error(t, err)
}

func TestExtractMalformedWorkbook(t *testing.T) {
	_, err := Extract(context.Background(), SupplierXinjiang, []byte("not an xlsx"), Options{}, Deps{})
	require.Error(t, err)
}

func itemWith(places int, weight, amount float64) entity.CanonicalItem {
	return entity.CanonicalItem{CargoPlaces: places, GrossWeight: weight, Amount: amount}
}

func TestAccumulatorTracksComputedTotals(t *testing.T) {
	acc := NewAccumulator()
	acc.Add("A", itemWith(2, 10, 100))
	acc.Add(" ", itemWith(1, 5, 50))
	acc.Add("A", itemWith(3, 15, 150))

	assert.Equal(t, []string{"A", constants.NoContainerKey}, acc.Containers().Keys())
	calc := acc.Computed()
	assert.Equal(t, 6.0, calc.Quantity)
	assert.Equal(t, 30.0, calc.Weight)
	assert.Equal(t, 300.0, calc.Amount)
}
