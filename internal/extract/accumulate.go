package extract

import (
	"strings"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/entity"
)

// Accumulator groups canonical items by container key in first-seen order
// and keeps the computed totals in step with every accepted item.
type Accumulator struct {
	containers *entity.ContainerMap
	calc       entity.ComputedTotals
}

func NewAccumulator() *Accumulator {
	return &Accumulator{containers: entity.NewContainerMap()}
}

// Add files the item under the container key, falling back to the shared
// no-container sentinel when the key is blank.
func (a *Accumulator) Add(key string, item entity.CanonicalItem) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = constants.NoContainerKey
	}
	a.containers.Append(key, item)
	a.calc.Quantity += float64(item.CargoPlaces)
	a.calc.Weight += item.GrossWeight
	a.calc.Amount += item.Amount
}

func (a *Accumulator) Containers() *entity.ContainerMap { return a.containers }

func (a *Accumulator) Computed() entity.ComputedTotals { return a.calc }
