package delivery

import (
	"math"
	"sort"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
)

const (
	DefaultMaxWeightKg  = 10.0
	DefaultMaxVolumeCm3 = 40000.0
)

// Options caps a single box. Zero or negative values fall back to the defaults.
type Options struct {
	MaxWeightKg  float64
	MaxVolumeCm3 float64
}

func (o Options) withDefaults() Options {
	if o.MaxWeightKg <= 0 {
		o.MaxWeightKg = DefaultMaxWeightKg
	}
	if o.MaxVolumeCm3 <= 0 {
		o.MaxVolumeCm3 = DefaultMaxVolumeCm3
	}
	return o
}

// Box is one shipping box. Items are unit lines with Quantity 1.
type Box struct {
	ID             int         `json:"id"`
	Items          []cart.Line `json:"items"`
	TotalWeightKg  float64     `json:"totalWeightKg"`
	TotalVolumeCm3 float64     `json:"totalVolumeCm3"`
}

type unit struct {
	line   cart.Line
	weight float64
	volume float64
	metric float64
}

// Pack assigns every unit of every line to a box using first-fit decreasing. A unit that
// exceeds the limits on its own still gets a box of its own.
func Pack(lines []cart.Line, opts Options) []Box {
	opts = opts.withDefaults()

	units := expand(lines)
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].metric > units[j].metric
	})

	boxes := make([]Box, 0)
	for _, u := range units {
		placed := false
		for i := range boxes {
			if fits(boxes[i], u, opts) {
				place(&boxes[i], u)
				placed = true
				break
			}
		}
		if !placed {
			b := Box{ID: len(boxes) + 1, Items: make([]cart.Line, 0, 1)}
			place(&b, u)
			boxes = append(boxes, b)
		}
	}
	return boxes
}

// UnitCount is the number of units across all boxes.
func UnitCount(boxes []Box) int {
	n := 0
	for _, b := range boxes {
		n += len(b.Items)
	}
	return n
}

func expand(lines []cart.Line) []unit {
	units := make([]unit, 0, len(lines))
	for _, l := range lines {
		w, v := 0.0, 0.0
		if l.WeightKg != nil && *l.WeightKg > 0 {
			w = *l.WeightKg
		}
		if l.VolumeCm3 != nil && *l.VolumeCm3 > 0 {
			v = *l.VolumeCm3
		}
		one := l
		one.Quantity = 1
		u := unit{line: one, weight: w, volume: v, metric: sizingMetric(l)}
		for i := 0; i < l.Quantity; i++ {
			units = append(units, u)
		}
	}
	return units
}

// sizingMetric prefers volume, then grams, then zero.
func sizingMetric(l cart.Line) float64 {
	if l.VolumeCm3 != nil {
		return *l.VolumeCm3
	}
	if l.WeightKg != nil {
		return math.Round(*l.WeightKg * 1000)
	}
	return 0
}

func fits(b Box, u unit, opts Options) bool {
	if u.weight == 0 && u.volume == 0 {
		return true
	}
	return b.TotalWeightKg+u.weight <= opts.MaxWeightKg && b.TotalVolumeCm3+u.volume <= opts.MaxVolumeCm3
}

func place(b *Box, u unit) {
	b.Items = append(b.Items, u.line)
	b.TotalWeightKg += u.weight
	b.TotalVolumeCm3 += u.volume
}
