package delivery

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
)

func f(v float64) *float64 { return &v }

func TestPack_VolumeSplitsBoxes(t *testing.T) {
	boxes := Pack([]cart.Line{
		{ID: 1, Name: "Crate", Quantity: 2, VolumeCm3: f(30000)},
	}, Options{MaxVolumeCm3: 40000})

	require.Len(t, boxes, 2)
	for i, b := range boxes {
		assert.Equal(t, i+1, b.ID)
		assert.Len(t, b.Items, 1)
		assert.Equal(t, 30000.0, b.TotalVolumeCm3)
	}
}

func TestPack_WeightCapacity(t *testing.T) {
	boxes := Pack([]cart.Line{
		{ID: 2, Name: "Litter", Quantity: 4, WeightKg: f(3)},
	}, Options{MaxWeightKg: 10})

	require.Len(t, boxes, 2)
	assert.Len(t, boxes[0].Items, 3)
	assert.Equal(t, 9.0, boxes[0].TotalWeightKg)
	assert.Len(t, boxes[1].Items, 1)
	assert.Equal(t, 3.0, boxes[1].TotalWeightKg)
}

func TestPack_Defaults(t *testing.T) {
	boxes := Pack([]cart.Line{{ID: 1, Quantity: 1, WeightKg: f(10), VolumeCm3: f(40000)}}, Options{MaxWeightKg: -1})
	require.Len(t, boxes, 1)

	boxes = Pack([]cart.Line{{ID: 1, Quantity: 2, WeightKg: f(5.5)}}, Options{})
	assert.Len(t, boxes, 2)
}

func TestPack_DecreasingOrder(t *testing.T) {
	boxes := Pack([]cart.Line{
		{ID: 1, Name: "small", Quantity: 1, VolumeCm3: f(5000)},
		{ID: 2, Name: "large", Quantity: 1, VolumeCm3: f(35000)},
		{ID: 3, Name: "medium", Quantity: 1, VolumeCm3: f(20000)},
	}, Options{})

	require.Len(t, boxes, 2)
	assert.Equal(t, []int{2, 1}, cart.IDs(boxes[0].Items))
	assert.Equal(t, []int{3}, cart.IDs(boxes[1].Items))
}

func TestPack_OversizedSingleton(t *testing.T) {
	boxes := Pack([]cart.Line{
		{ID: 1, Name: "Aquarium", Quantity: 1, WeightKg: f(25)},
		{ID: 2, Name: "Ball", Quantity: 1, WeightKg: f(0.2)},
	}, Options{})

	require.Len(t, boxes, 2)
	assert.Equal(t, []int{1}, cart.IDs(boxes[0].Items))
	assert.Equal(t, 25.0, boxes[0].TotalWeightKg)
	assert.Equal(t, []int{2}, cart.IDs(boxes[1].Items))
}

func TestPack_ZeroSizeUnitsJoinFirstBox(t *testing.T) {
	boxes := Pack([]cart.Line{
		{ID: 1, Name: "Crate", Quantity: 1, VolumeCm3: f(40000)},
		{ID: 2, Name: "Sticker", Quantity: 3},
	}, Options{})

	require.Len(t, boxes, 1)
	assert.Equal(t, []int{1, 2, 2, 2}, cart.IDs(boxes[0].Items))
	assert.Equal(t, 40000.0, boxes[0].TotalVolumeCm3)
}

func TestPack_Empty(t *testing.T) {
	assert.Empty(t, Pack(nil, Options{}))
}

func TestPack_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	opts := Options{MaxWeightKg: 10, MaxVolumeCm3: 40000}
	for round := 0; round < 200; round++ {
		lines := make([]cart.Line, rng.Intn(6))
		want := map[int]int{}
		for i := range lines {
			l := cart.Line{ID: i + 1, Quantity: 1 + rng.Intn(4)}
			if rng.Intn(3) > 0 {
				l.WeightKg = f(float64(rng.Intn(120)) / 10)
			}
			if rng.Intn(3) > 0 {
				l.VolumeCm3 = f(float64(rng.Intn(45000)))
			}
			lines[i] = l
			want[l.ID] += l.Quantity
		}

		boxes := Pack(lines, opts)
		got := map[int]int{}
		for i, b := range boxes {
			require.Equal(t, i+1, b.ID)
			if len(b.Items) > 1 && !singletonWithZeroSize(b) {
				require.LessOrEqual(t, b.TotalWeightKg, opts.MaxWeightKg+1e-9)
				require.LessOrEqual(t, b.TotalVolumeCm3, opts.MaxVolumeCm3)
			}
			for _, item := range b.Items {
				require.Equal(t, 1, item.Quantity)
				got[item.ID]++
			}
		}
		require.Equal(t, want, got, "units must be conserved")
	}
}

// singletonWithZeroSize reports a box holding one sized unit plus only zero-size units.
func singletonWithZeroSize(b Box) bool {
	sized := 0
	for _, l := range b.Items {
		w := l.WeightKg != nil && *l.WeightKg > 0
		v := l.VolumeCm3 != nil && *l.VolumeCm3 > 0
		if w || v {
			sized++
		}
	}
	return sized <= 1
}
