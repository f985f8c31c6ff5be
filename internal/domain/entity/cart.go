package entity

// CartItem is one menu line in a cart. Price is in whole rupiah.
type CartItem struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Image     string `json:"image,omitempty"`
	SellerID  string `json:"seller_id"`
	StoreName string `json:"store_name"`
}

// CartTotal folds the subtotal over items. Recomputed on every call, never
// cached.
func CartTotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount folds the total quantity over items.
func ItemCount(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
