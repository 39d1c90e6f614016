package product

import "time"

// SampleCatalog is the dev seed used by /dev/reset-products and the in-memory boot path.
func SampleCatalog(now time.Time) []Product {
	ts := now.Format(time.RFC3339)
	kg := func(v float64) *float64 { return &v }
	cm3 := kg
	return []Product{
		{ID: 1, Name: "Cat Scratcher Bed", Description: "Comfortable cardboard cat bed", Price: 840, Category: "Pet Supplies",
			Tags: Tags{"cat", "bed", "cardboard"}, WeightKg: kg(1.2), VolumeCm3: cm3(18000), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 2, Name: "Double Food Bowl", Description: "Wooden elevated double food bowl", Price: 420, Category: "Pet Supplies",
			Tags: Tags{"bowl", "feeding", "wood"}, WeightKg: kg(0.8), VolumeCm3: cm3(4500), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 3, Name: "Cat Sweater", Description: "Warm knitted cat sweater", Price: 260, SalePrice: kg(199), Category: "Clothes and accessories",
			Tags: Tags{"cat", "clothes", "winter"}, WeightKg: kg(0.2), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 4, Name: "Cheese Cat House", Description: "Cute cardboard cat house", Price: 399, Category: "Cat exercise",
			Tags: Tags{"cat", "house", "cardboard"}, WeightKg: kg(1.5), VolumeCm3: cm3(32000), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 5, Name: "Salmon Kibble 3kg", Description: "Grain-free salmon dry food", Price: 590, Category: "Animal Food",
			Tags: Tags{"cat", "food", "salmon"}, WeightKg: kg(3), VolumeCm3: cm3(6000), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 6, Name: "Tuna Treats", Description: "Freeze-dried tuna snacks", Price: 120, Category: "Cat snacks",
			Tags: Tags{"cat", "snack", "tuna"}, WeightKg: kg(0.1), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 7, Name: "Tofu Cat Litter", Description: "Flushable tofu litter 6L", Price: 250, Category: "Sand and bathroom",
			Tags: Tags{"cat", "litter"}, WeightKg: kg(2.5), VolumeCm3: cm3(7000), CreatedAt: &ts, UpdatedAt: &ts},
		{ID: 8, Name: "Feather Wand", Description: "Interactive feather teaser", Price: 89, Category: "Cat exercise",
			Tags: Tags{"cat", "toy"}, CreatedAt: &ts, UpdatedAt: &ts},
	}
}
