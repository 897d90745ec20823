package catalog

import "context"

// Repository persists shop and product definitions
type Repository interface {
	// FindShops returns every shop with its products ordered by position
	FindShops(ctx context.Context) ([]ShopDefinition, error)

	// FindShop returns one shop with its products
	FindShop(ctx context.Context, id string) (*ShopDefinition, error)

	// SaveShop creates or replaces a shop together with its products
	SaveShop(ctx context.Context, shop *ShopDefinition) error

	// DeleteShop removes a shop and its products
	DeleteShop(ctx context.Context, id string) error

	// SaveProduct creates or updates a single product of an existing shop
	SaveProduct(ctx context.Context, product *ProductDefinition) error

	// FindProduct returns one product definition
	FindProduct(ctx context.Context, shopID, id string) (*ProductDefinition, error)

	// DeleteProduct removes a product
	DeleteProduct(ctx context.Context, shopID, id string) error
}
