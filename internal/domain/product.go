package domain

import "time"

// Product is a catalog entry. Price and CountInStock are authoritative: cart
// lines carry snapshots of them, but checkout decrements stock against this
// record.
type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Price        int64     `json:"price"`
	CountInStock int       `json:"count_in_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InStock reports whether the product can cover the requested quantity.
func (p *Product) InStock(quantity int) bool {
	return p.CountInStock >= quantity
}
