package inference

import (
	"fmt"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// Strategy picks the value that decides a column's type from its non-empty
// data values, in row order.
type Strategy interface {
	Name() string
	Representative(values []models.CellValue) (models.CellValue, bool)
}

const (
	// StrategyFirst names FirstSample.
	StrategyFirst = "first"
	// StrategyMajority names MajorityVote.
	StrategyMajority = "majority"
)

// StrategyByName returns the strategy registered under name. The empty name
// selects FirstSample.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", StrategyFirst:
		return FirstSample{}, nil
	case StrategyMajority:
		return MajorityVote{}, nil
	default:
		return nil, fmt.Errorf("unknown sampling strategy %q (must be %s or %s)", name, StrategyFirst, StrategyMajority)
	}
}

// FirstSample uses the first non-empty value.
type FirstSample struct{}

func (FirstSample) Name() string { return StrategyFirst }

func (FirstSample) Representative(values []models.CellValue) (models.CellValue, bool) {
	if len(values) == 0 {
		return models.Absent(), false
	}
	return values[0], true
}

// MajorityVote classifies every value and returns the first value of the most
// frequent data type. Ties go to the type seen first.
type MajorityVote struct{}

func (MajorityVote) Name() string { return StrategyMajority }

func (MajorityVote) Representative(values []models.CellValue) (models.CellValue, bool) {
	if len(values) == 0 {
		return models.Absent(), false
	}

	counts := make(map[models.DataType]int)
	first := make(map[models.DataType]int)
	var order []models.DataType
	for i, v := range values {
		dt, _ := classify(v)
		if _, ok := first[dt]; !ok {
			first[dt] = i
			order = append(order, dt)
		}
		counts[dt]++
	}

	best := order[0]
	for _, dt := range order[1:] {
		if counts[dt] > counts[best] {
			best = dt
		}
	}
	return values[first[best]], true
}
