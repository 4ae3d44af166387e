package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wooodyy/mappingdata/internal/declaration"
	"github.com/Wooodyy/mappingdata/internal/entity"
	"github.com/Wooodyy/mappingdata/internal/llm"
)

func item(desc string, places int, amount, weight float64) entity.CanonicalItem {
	return entity.CanonicalItem{Description: desc, CargoPlaces: places, Amount: amount, GrossWeight: weight}
}

func TestSortItemsOrdering(t *testing.T) {
	items := []entity.CanonicalItem{
		item("Б", 1, 100, 5),
		item("а", 2, 50, 1),
		item("В", 1, 100, 9),
		item("A", 1, 200, 1),
	}
	SortItems(items)

	// places dominate, then amount, then weight, then folded description
	assert.Equal(t, "а", items[0].Description)
	assert.Equal(t, "A", items[1].Description)
	assert.Equal(t, "В", items[2].Description)
	assert.Equal(t, "Б", items[3].Description)
}

func TestSortItemsTieBreakIsCaseFolded(t *testing.T) {
	items := []entity.CanonicalItem{
		item("  ZEBRA", 1, 10, 1),
		item("apple", 1, 10, 1),
	}
	SortItems(items)
	assert.Equal(t, "apple", items[0].Description)
}

func mapOf(t *testing.T, groups map[string][]entity.CanonicalItem, order []string) *entity.ContainerMap {
	t.Helper()
	m := entity.NewContainerMap()
	for _, key := range order {
		for _, it := range groups[key] {
			m.Append(key, it)
		}
	}
	return m
}

func TestFirstContainer(t *testing.T) {
	assert.Equal(t, "", FirstContainer(nil))
	assert.Equal(t, "", FirstContainer(&declaration.Result{}))

	m := mapOf(t, map[string][]entity.CanonicalItem{
		"A": {item("x", 1, 1, 1)},
		"B": {item("y", 1, 1, 1)},
	}, []string{"A", "B"})
	decl := &declaration.Result{Data: &entity.ExtractionResult{Containers: m}}
	assert.Equal(t, "A", FirstContainer(decl))
}

type stubAligner struct {
	reply *llm.AlignedContainers
	err   error
	calls int
}

func (s *stubAligner) SortContainers(ctx context.Context, invoice, decl *entity.ContainerMap) (*llm.AlignedContainers, error) {
	s.calls++
	return s.reply, s.err
}

func sides(t *testing.T) (*entity.ExtractionResult, *declaration.Result) {
	t.Helper()
	inv := &entity.ExtractionResult{Containers: mapOf(t, map[string][]entity.CanonicalItem{
		"A": {item("x", 1, 1, 1)},
		"B": {item("y", 2, 1, 1)},
	}, []string{"A", "B"})}
	decl := &declaration.Result{Data: &entity.ExtractionResult{Containers: mapOf(t, map[string][]entity.CanonicalItem{
		"D1": {item("x", 1, 1, 1)},
		"D2": {item("y", 2, 1, 1)},
	}, []string{"D1", "D2"})}}
	return inv, decl
}

func TestReconcileAcceptsAlignerReply(t *testing.T) {
	inv, decl := sides(t)

	swappedInv := mapOf(t, map[string][]entity.CanonicalItem{
		"A": {item("x", 1, 1, 1)},
		"B": {item("y", 2, 1, 1)},
	}, []string{"B", "A"})
	swappedDecl := mapOf(t, map[string][]entity.CanonicalItem{
		"D1": {item("x", 1, 1, 1)},
		"D2": {item("y", 2, 1, 1)},
	}, []string{"D2", "D1"})

	aligner := &stubAligner{reply: &llm.AlignedContainers{Invoice: swappedInv, Declaration: swappedDecl}}
	res := NewEngine(aligner, nil).Reconcile(context.Background(), inv, decl)

	assert.True(t, res.Aligned)
	assert.Empty(t, res.Note)
	assert.Equal(t, []string{"B", "A"}, inv.Containers.Keys())
	assert.Equal(t, []string{"D2", "D1"}, decl.Data.Containers.Keys())
	assert.Equal(t, 1, aligner.calls)
}

func TestReconcileRejectsKeyMismatch(t *testing.T) {
	inv, decl := sides(t)

	wrong := mapOf(t, map[string][]entity.CanonicalItem{
		"A": {item("x", 1, 1, 1)},
		"Z": {item("y", 2, 1, 1)},
	}, []string{"A", "Z"})
	sameDecl := mapOf(t, map[string][]entity.CanonicalItem{
		"D1": {item("x", 1, 1, 1)},
		"D2": {item("y", 2, 1, 1)},
	}, []string{"D1", "D2"})

	aligner := &stubAligner{reply: &llm.AlignedContainers{Invoice: wrong, Declaration: sameDecl}}
	res := NewEngine(aligner, nil).Reconcile(context.Background(), inv, decl)

	assert.False(t, res.Aligned)
	assert.Equal(t, "Не удалось отсортировать данные", res.Note)
	assert.Equal(t, []string{"A", "B"}, inv.Containers.Keys())
}

func TestReconcileFallsBackOnAlignerError(t *testing.T) {
	inv, decl := sides(t)
	aligner := &stubAligner{err: errors.New("model unavailable")}
	res := NewEngine(aligner, nil).Reconcile(context.Background(), inv, decl)

	assert.False(t, res.Aligned)
	assert.Equal(t, "Не удалось отсортировать данные", res.Note)
}

func TestReconcileRejectsNilReply(t *testing.T) {
	inv, decl := sides(t)
	aligner := &stubAligner{}
	res := NewEngine(aligner, nil).Reconcile(context.Background(), inv, decl)

	assert.False(t, res.Aligned)
	assert.Equal(t, "Не удалось отсортировать данные", res.Note)
}

func TestReconcileWithoutAlignerSortsBothSides(t *testing.T) {
	inv := &entity.ExtractionResult{Containers: mapOf(t, map[string][]entity.CanonicalItem{
		"A": {item("small", 1, 10, 1), item("big", 5, 10, 1)},
	}, []string{"A"})}

	res := NewEngine(nil, nil).Reconcile(context.Background(), inv, nil)
	require.NotNil(t, res)
	assert.False(t, res.Aligned)
	assert.Equal(t, "big", inv.Containers.Get("A")[0].Description)
}
