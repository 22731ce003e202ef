package domain

import "time"

// Cart is the pre-checkout mutable line list. A cart belongs to exactly one
// owner: a registered user or a guest session. TotalPrice is derived and is
// recomputed on every mutation; it is never trusted from the client.
type Cart struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Lines      []CartLine `json:"lines"`
	TotalPrice int64      `json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartLine is a single product entry in the cart. Title, Author, ImageURL and
// UnitPrice are snapshots taken at add-time; they are re-validated against the
// catalog only at checkout.
type CartLine struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ImageURL  string `json:"image_url,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns the snapshot price of this line.
func (l *CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Recalculate recomputes the derived TotalPrice from the current lines.
// Must be called after every mutation.
func (c *Cart) Recalculate() {
	var total int64
	for i := range c.Lines {
		total += c.Lines[i].LineTotal()
	}
	c.TotalPrice = total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLineIndex returns the index of the line for the given product, or -1.
func (c *Cart) FindLineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
