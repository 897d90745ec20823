package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/gameshop/backend/internal/domain/catalog"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogRepository implements catalog.Repository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func orderedProducts(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

// FindShops returns every shop with its products
func (r *GormCatalogRepository) FindShops(ctx context.Context) ([]catalog.ShopDefinition, error) {
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).
		Preload("Products", orderedProducts).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load shops: %w", err)
	}

	shops := make([]catalog.ShopDefinition, 0, len(rows))
	for i := range rows {
		def, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		shops = append(shops, *def)
	}
	return shops, nil
}

// FindShop returns one shop with its products
func (r *GormCatalogRepository) FindShop(ctx context.Context, id string) (*catalog.ShopDefinition, error) {
	var row models.ShopModel
	if err := r.db.WithContext(ctx).
		Preload("Products", orderedProducts).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shop %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load shop %s: %w", id, err)
	}
	return row.ToDomain()
}

// SaveShop creates or replaces a shop. Products missing from the
// definition are deleted.
func (r *GormCatalogRepository) SaveShop(ctx context.Context, def *catalog.ShopDefinition) error {
	def.Normalize()
	if err := def.Validate(); err != nil {
		return err
	}

	var row models.ShopModel
	if err := row.FromDomain(def); err != nil {
		return err
	}
	products := row.Products
	row.Products = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save shop %s: %w", def.ID, err)
		}
		if err := tx.Where("shop_id = ?", def.ID).Delete(&models.ProductModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear products of shop %s: %w", def.ID, err)
		}
		if len(products) == 0 {
			return nil
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to save products of shop %s: %w", def.ID, err)
		}
		return nil
	})
}

// DeleteShop removes a shop and its products
func (r *GormCatalogRepository) DeleteShop(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", id).Delete(&models.ProductModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete products of shop %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.ShopModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete shop %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("shop %s: %w", id, shared.ErrNotFound)
		}
		return nil
	})
}

// SaveProduct creates or updates one product of an existing shop
func (r *GormCatalogRepository) SaveProduct(ctx context.Context, def *catalog.ProductDefinition) error {
	def.Normalize()
	if err := def.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ShopModel{}).Where("id = ?", def.ShopID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check shop %s: %w", def.ShopID, err)
		}
		if count == 0 {
			return fmt.Errorf("shop %s: %w", def.ShopID, shared.ErrNotFound)
		}

		row := models.ProductModelFromDomain(def)
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to save product %s: %w", def.Key(), err)
		}
		return nil
	})
}

// FindProduct returns one product definition
func (r *GormCatalogRepository) FindProduct(ctx context.Context, shopID, id string) (*catalog.ProductDefinition, error) {
	var row models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s/%s: %w", shopID, id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load product %s/%s: %w", shopID, id, err)
	}
	def := row.ToDomain()
	return &def, nil
}

// DeleteProduct removes a product
func (r *GormCatalogRepository) DeleteProduct(ctx context.Context, shopID, id string) error {
	result := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		Delete(&models.ProductModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product %s/%s: %w", shopID, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %s/%s: %w", shopID, id, shared.ErrNotFound)
	}
	return nil
}

var _ catalog.Repository = (*GormCatalogRepository)(nil)
