package product

// Status values for a catalog entry.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// CategoryRef links a product to up to three category levels.
type CategoryRef struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
}

// Variant is a purchasable dosage option of a product.
type Variant struct {
	MgOption    int     `json:"mg_option"`
	Price       float64 `json:"price"`
	StockStatus bool    `json:"stock_status"`
}

// Product represents a catalog entry.
type Product struct {
	ID           string
	Name         string
	Slug         string
	Photos       []string
	Description  string
	MetaKey      string
	Price        float64
	Discount     float64
	DefaultPrice float64
	StockStatus  bool
	Status       string
	Categories   []CategoryRef
	Variants     []Variant
}
