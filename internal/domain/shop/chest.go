package shop

import (
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChestShop is a player placed shop trading from a container
type ChestShop struct {
	*Base
	owner     uuid.UUID
	ownerName string
	admin     bool
	stock     game.Inventory
}

// NewChestShop creates a chest shop owned by a player. Admin shops have
// unlimited stock and ignore the container.
func NewChestShop(id string, owner uuid.UUID, ownerName string, stock game.Inventory, admin bool) (*ChestShop, error) {
	base, err := newBase(id, ownerName+"'s shop")
	if err != nil {
		return nil, err
	}
	return &ChestShop{
		Base:      base,
		owner:     owner,
		ownerName: ownerName,
		admin:     admin,
		stock:     stock,
	}, nil
}

// Kind returns KindChest
func (s *ChestShop) Kind() Kind {
	return KindChest
}

func (s *ChestShop) Owner() uuid.UUID  { return s.owner }
func (s *ChestShop) OwnerName() string { return s.ownerName }
func (s *ChestShop) IsAdmin() bool     { return s.admin }

// Stock returns the container backing the shop, nil for admin shops
func (s *ChestShop) Stock() game.Inventory {
	if s.admin {
		return nil
	}
	return s.stock
}

// NewChestProduct creates a product of this shop and registers it. Chest
// products carry no discount or sell multiplier.
func (s *ChestShop) NewChestProduct(id string, currency valueobject.Currency, content product.Content, pricer product.Pricer) (*product.Product, error) {
	p, err := product.New(id, s, currency, content,
		product.WithPricer(pricer),
		product.WithPlaceholders(func(game.Player) placeholder.Replacer {
			return placeholder.New(
				TokenShopName, s.Name(),
				TokenShopOwner, s.ownerName,
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := s.AddProduct(p); err != nil {
		return nil, err
	}
	return p, nil
}

var _ Shop = (*ChestShop)(nil)
