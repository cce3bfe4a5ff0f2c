package contract

// Product is a read-mostly catalog record, referenced from orders by id only.
type Product struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"available_quantity"`
}

// ProductFilter narrows ListProducts results.
type ProductFilter struct {
	NameContains string
	Limit        int
}
