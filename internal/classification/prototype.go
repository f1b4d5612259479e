package classification

import (
	"math"
	"sort"

	"github.com/Veraticus/spice-planner/internal/model"
)

// Weights controls how the similarity components combine. They should sum to 1.
type Weights struct {
	TokenOverlap    float64
	AmountCloseness float64
	Recurring       float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{TokenOverlap: 0.65, AmountCloseness: 0.25, Recurring: 0.10}
}

const (
	// degradedFactor scales confidence when a transaction has no usable text.
	degradedFactor = 0.5
	// maxDegradedConfidence bounds text-less results regardless of weights.
	maxDegradedConfidence = 0.29
)

// maxAlternatives bounds the alternatives returned with a result.
const maxAlternatives = 3

// prototype is the accumulated feature statistics of one category.
type prototype struct {
	tokens          map[string]float64
	categoryID      string
	weight          float64
	logAmountSum    float64
	outflowWeight   float64
	recurringWeight float64
}

func (p *prototype) add(f Features, weight float64) {
	for _, t := range f.Tokens {
		p.tokens[t] += weight
	}
	p.weight += weight
	p.logAmountSum += f.LogAmount * weight
	if f.Outflow {
		p.outflowWeight += weight
	}
	if f.Recurring {
		p.recurringWeight += weight
	}
}

// prototypeTable maps categories to prototypes. Prototypes are kept sorted by
// category ID so scoring iterates in a fixed order.
type prototypeTable struct {
	index  map[string]*prototype
	sorted []*prototype
}

func newPrototypeTable() *prototypeTable {
	return &prototypeTable{index: make(map[string]*prototype)}
}

func (t *prototypeTable) add(categoryID string, f Features, weight float64) {
	if categoryID == "" || weight <= 0 {
		return
	}
	p, ok := t.index[categoryID]
	if !ok {
		p = &prototype{categoryID: categoryID, tokens: make(map[string]float64)}
		t.index[categoryID] = p
		t.sorted = append(t.sorted, p)
		sort.Slice(t.sorted, func(i, j int) bool {
			return t.sorted[i].categoryID < t.sorted[j].categoryID
		})
	}
	p.add(f, weight)
}

func (t *prototypeTable) size() int {
	return len(t.sorted)
}

// score returns every category's confidence for f, best first, ties broken by ID.
func (t *prototypeTable) score(f Features, w Weights) []model.CategoryScore {
	scores := make([]model.CategoryScore, 0, len(t.sorted))
	degraded := len(f.Tokens) == 0

	// A token's total weight across categories turns per-category weight into
	// a share, so tokens seen in many categories count for less.
	totals := make(map[string]float64, len(f.Tokens))
	for _, tok := range f.Tokens {
		for _, p := range t.sorted {
			totals[tok] += p.tokens[tok]
		}
	}
	known := 0
	for _, tok := range f.Tokens {
		if totals[tok] > 0 {
			known++
		}
	}

	for _, p := range t.sorted {
		if p.weight <= 0 {
			continue
		}
		var overlap float64
		if known > 0 {
			for _, tok := range f.Tokens {
				if totals[tok] > 0 {
					overlap += p.tokens[tok] / totals[tok]
				}
			}
			overlap /= float64(known)
		}

		mean := p.logAmountSum / p.weight
		closeness := math.Exp(-math.Abs(f.LogAmount - mean))
		closeness *= agreement(f.Outflow, p.outflowWeight/p.weight)

		s := w.AmountCloseness*closeness + w.Recurring*agreement(f.Recurring, p.recurringWeight/p.weight)
		if degraded {
			s = math.Min(s*degradedFactor, maxDegradedConfidence)
		} else {
			s += w.TokenOverlap * overlap
		}

		scores = append(scores, model.CategoryScore{CategoryID: p.categoryID, Confidence: clamp01(s)})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].CategoryID < scores[j].CategoryID
	})
	return scores
}

// agreement is the share of a prototype that matches a boolean feature.
func agreement(feature bool, share float64) float64 {
	if feature {
		return share
	}
	return 1 - share
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
