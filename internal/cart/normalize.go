package cart

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Efficiency is price per unit of quantity; lower values sort first.
func Efficiency(l Line) float64 {
	return l.Price / float64(l.Quantity)
}

// Normalize drops lines with quantity <= 0, merges the rest by id (quantities summed and
// capped at MaxLineQuantity, first occurrence kept) and stable-sorts them by ascending
// Efficiency. The input slice is never modified.
func Normalize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[int]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.ID]; ok {
			out[i].Quantity = addQuantity(out[i].Quantity, l.Quantity)
			continue
		}
		if l.Quantity > MaxLineQuantity {
			l.Quantity = MaxLineQuantity
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Efficiency(out[i]) < Efficiency(out[j])
	})
	return out
}

// addQuantity sums two positive quantities, saturating at MaxLineQuantity.
func addQuantity(a, b int) int {
	if b >= MaxLineQuantity-a {
		return MaxLineQuantity
	}
	return a + b
}

// AddToCart merges qty units of item into lines. A zero qty means one unit; the line's
// quantity never exceeds MaxLineQuantity.
func AddToCart(lines []Line, item Item, qty int, now time.Time) []Line {
	if qty == 0 {
		qty = 1
	}
	id, ok := NormalizeID(item.ID)
	if !ok {
		id = -int(now.UnixMilli())
		for indexOf(lines, id) >= 0 {
			id--
		}
	}

	next := make([]Line, len(lines), len(lines)+1)
	copy(next, lines)
	if i := indexOf(next, id); i >= 0 {
		updated := next[i]
		updated.Quantity = addQuantity(updated.Quantity, qty)
		next[i] = updated
		return Normalize(next)
	}

	next = append(next, Line{
		ID:        id,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  min(qty, MaxLineQuantity),
		WeightKg:  item.WeightKg,
		VolumeCm3: item.VolumeCm3,
		Category:  item.Category,
		Tags:      item.Tags,
	})
	return Normalize(next)
}

// RemoveFromCart drops the line with id.
func RemoveFromCart(lines []Line, id int) []Line {
	next := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID != id {
			next = append(next, l)
		}
	}
	return Normalize(next)
}

// UpdateQuantity sets the quantity of the line with id; qty <= 0 removes it and qty above
// MaxLineQuantity is capped.
func UpdateQuantity(lines []Line, id int, qty int) []Line {
	if qty <= 0 {
		return RemoveFromCart(lines, id)
	}
	next := make([]Line, len(lines))
	copy(next, lines)
	if i := indexOf(next, id); i >= 0 {
		updated := next[i]
		updated.Quantity = min(qty, MaxLineQuantity)
		next[i] = updated
	}
	return Normalize(next)
}

// NormalizeID turns a loosely typed product id into an int. Integral numbers and
// numeric strings are accepted; anything else reports false.
func NormalizeID(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		if id, err := strconv.Atoi(v.String()); err == nil {
			return id, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return NormalizeID(f)
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(v))
		return id, err == nil
	default:
		return 0, false
	}
}

func indexOf(lines []Line, id int) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
