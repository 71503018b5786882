package domain

type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Tags     []string `json:"tags"`
}

// IndexProducts maps product id to its position in the snapshot.
// The first occurrence wins when the catalog repeats an id.
func IndexProducts(products []Product) map[string]int {
	idx := make(map[string]int, len(products))
	for i, p := range products {
		if _, ok := idx[p.ID]; !ok {
			idx[p.ID] = i
		}
	}
	return idx
}
