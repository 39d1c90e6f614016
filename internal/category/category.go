package category

// Item is a storefront category with how many catalog products it holds.
type Item struct {
	Name         string   `json:"categoryName"`
	ProductCount int      `json:"productCount"`
	Tags         []string `json:"tags"`
}

// TagCount is how many catalog products carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
