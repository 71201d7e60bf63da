package domain

// A CartLine is one cart entry: a snapshot of the product taken at
// add-time plus the selected quantity and options.
//
// Lines are keyed by the product identifier, one line per product.
type CartLine struct {
	Product  Product
	Quantity int
	Size     string
	Color    string
}

func (l CartLine) LineTotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}
