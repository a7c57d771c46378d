package model

type Product struct {
	BaseModel
	CategoryID    *string `db:"category_id" json:"category_id"` // Nullable
	SKU           string  `db:"sku" json:"sku"`
	Barcode       *string `db:"barcode" json:"barcode"` // Nullable
	Name          string  `db:"name" json:"name"`
	Description   *string `db:"description" json:"description"`
	HasVariations bool    `db:"has_variations" json:"has_variations"`
	IsActive      bool    `db:"is_active" json:"is_active"`
}

type ProductVariation struct {
	BaseModel
	ProductID string  `db:"product_id" json:"product_id"`
	SKU       string  `db:"sku" json:"sku"`
	Name      string  `db:"name" json:"name"`
	Color     *string `db:"color" json:"color"`
	Size      *string `db:"size" json:"size"`
	IsActive  bool    `db:"is_active" json:"is_active"`
}
