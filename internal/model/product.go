package model

// Product is a single inventory line.
// Image and Video hold URL paths into the attachment store and are nil when absent.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"producto"`
	Quantity int     `json:"cantidad"`
	Image    *string `json:"imagen"`
	Video    *string `json:"video"`
}
