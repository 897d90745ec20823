// Package catalog keeps the live shops built from stored definitions and
// serves the admin operations on them.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	domaincatalog "github.com/gameshop/backend/internal/domain/catalog"
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/gameshop/backend/internal/domain/stock"
	"github.com/gameshop/backend/internal/infrastructure/content"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ContentBuilder turns stored content descriptors into product content
type ContentBuilder interface {
	Build(d content.Descriptor) (product.Content, error)
}

// PricerCodec builds pricers from stored settings and back
type PricerCodec interface {
	Build(t product.PricingType, settings json.RawMessage) (product.Pricer, error)
	Encode(p product.Pricer) (product.PricingType, json.RawMessage, error)
}

// floatRoller is implemented by pricers that roll random prices
type floatRoller interface {
	Roll(rng *rand.Rand) error
}

// Options selects which shop kinds are loaded and how they are wired
type Options struct {
	VirtualShops bool
	ChestShops   bool
	// Multipliers resolves sell multipliers of virtual shop products
	Multipliers product.SellMultiplierResolver
	// ChestInventory returns the container of a non admin chest shop
	ChestInventory func(shopID string) game.Inventory
	// Clock evaluates virtual shop discounts, time.Now when nil
	Clock func() time.Time
}

// Service holds the live shops and rebuilds them from the repository
type Service struct {
	repo       domaincatalog.Repository
	contents   ContentBuilder
	pricers    PricerCodec
	currencies map[string]valueobject.Currency
	tracker    *stock.Tracker
	publisher  shared.EventPublisher
	opts       Options
	logger     *zap.Logger

	mu    sync.RWMutex
	shops map[string]shop.Shop
}

// NewService creates a catalog service. Call Load to build the shops.
func NewService(
	repo domaincatalog.Repository,
	contents ContentBuilder,
	pricers PricerCodec,
	currencies map[string]valueobject.Currency,
	tracker *stock.Tracker,
	publisher shared.EventPublisher,
	opts Options,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = stock.NewTracker()
	}
	return &Service{
		repo:       repo,
		contents:   contents,
		pricers:    pricers,
		currencies: currencies,
		tracker:    tracker,
		publisher:  publisher,
		opts:       opts,
		logger:     logger.Named("catalog"),
		shops:      make(map[string]shop.Shop),
	}
}

// Load builds every enabled shop from the repository and replaces the live
// set in one step. Broken products are logged and skipped or degraded so a
// single bad definition never blocks the rest of the catalog.
func (s *Service) Load(ctx context.Context) error {
	defs, err := s.repo.FindShops(ctx)
	if err != nil {
		return fmt.Errorf("failed to load shop definitions: %w", err)
	}

	shops := make(map[string]shop.Shop, len(defs))
	products := 0
	for i := range defs {
		def := &defs[i]
		if !s.kindEnabled(def.Kind) {
			s.logger.Debug("Skipping shop of disabled module",
				zap.String("shop_id", def.ID),
				zap.String("kind", def.Kind.String()),
			)
			continue
		}
		built, err := s.buildShop(def)
		if err != nil {
			s.logger.Error("Failed to build shop", zap.String("shop_id", def.ID), zap.Error(err))
			continue
		}
		shops[built.ID()] = built
		products += len(built.Products())
	}

	s.mu.Lock()
	s.shops = shops
	s.mu.Unlock()

	s.logger.Info("Catalog loaded",
		zap.Int("shops", len(shops)),
		zap.Int("products", products),
	)
	return nil
}

// Reload persists pricer state of the live products, then loads the
// catalog again
func (s *Service) Reload(ctx context.Context) error {
	if err := s.SavePrices(ctx); err != nil {
		s.logger.Warn("Failed to persist prices before reload", zap.Error(err))
	}
	return s.Load(ctx)
}

func (s *Service) kindEnabled(kind shop.Kind) bool {
	switch kind {
	case shop.KindVirtual:
		return s.opts.VirtualShops
	case shop.KindChest:
		return s.opts.ChestShops
	default:
		return false
	}
}

func (s *Service) buildShop(def *domaincatalog.ShopDefinition) (shop.Shop, error) {
	def.Normalize()
	if err := def.Validate(); err != nil {
		return nil, err
	}

	switch def.Kind {
	case shop.KindVirtual:
		opts := []shop.VirtualOption{shop.WithClock(s.opts.Clock)}
		if s.opts.Multipliers != nil {
			opts = append(opts, shop.WithMultipliers(s.opts.Multipliers))
		}
		vs, err := shop.NewVirtualShop(def.ID, def.Name, opts...)
		if err != nil {
			return nil, err
		}
		if err := vs.SetDiscounts(def.Discounts); err != nil {
			return nil, err
		}
		applySwitches(vs.Base, def)
		for i := range def.Products {
			s.addVirtualProduct(vs, &def.Products[i])
		}
		return vs, nil

	case shop.KindChest:
		var container game.Inventory
		if !def.Admin && s.opts.ChestInventory != nil {
			container = s.opts.ChestInventory(def.ID)
		}
		cs, err := shop.NewChestShop(def.ID, def.Owner, def.OwnerName, container, def.Admin)
		if err != nil {
			return nil, err
		}
		if def.Name != "" {
			cs.SetName(def.Name)
		}
		applySwitches(cs.Base, def)
		for i := range def.Products {
			s.addChestProduct(cs, &def.Products[i])
		}
		return cs, nil
	}
	return nil, fmt.Errorf("%w: unknown shop kind %q", shared.ErrInvalidInput, def.Kind)
}

func applySwitches(b *shop.Base, def *domaincatalog.ShopDefinition) {
	b.SetTransactionEnabled(product.TradeBuy, def.BuyEnabled)
	b.SetTransactionEnabled(product.TradeSell, def.SellEnabled)
}

// parts resolves what every product variant needs. ok is false when the
// product cannot be built at all.
func (s *Service) parts(def *domaincatalog.ProductDefinition) (valueobject.Currency, product.Content, product.Pricer, bool) {
	log := s.logger.With(zap.String("product", def.Key()))

	currency, found := s.currency(def)
	if !found {
		log.Warn("Skipping product with unknown currency", zap.String("currency", def.Currency))
		return nil, product.Content{}, nil, false
	}

	c, err := s.contents.Build(content.Descriptor(def.Content))
	if err != nil {
		log.Warn("Product content is broken, using dummy content", zap.Error(err))
		c = content.Dummy()
	}

	pricer, err := s.pricers.Build(def.Pricer.Type, def.Pricer.Settings)
	if err != nil {
		log.Warn("Product pricer is broken, trading disabled", zap.Error(err))
		pricer = product.NewDisabledPricer()
	}

	s.tracker.SetLimits(def.Key(), def.TradeLimits())
	return currency, c, pricer, true
}

func (s *Service) currency(def *domaincatalog.ProductDefinition) (valueobject.Currency, bool) {
	if def.Currency == "" && def.Content.Kind == product.ContentDummy {
		// dummy products never trade, any currency will do
		if all := s.sortedCurrencies(); len(all) > 0 {
			return all[0], true
		}
	}
	c, ok := s.currencies[strings.ToLower(def.Currency)]
	return c, ok
}

func (s *Service) sortedCurrencies() []valueobject.Currency {
	ids := make([]string, 0, len(s.currencies))
	for id := range s.currencies {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]valueobject.Currency, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.currencies[id])
	}
	return out
}

func (s *Service) addVirtualProduct(vs *shop.VirtualShop, def *domaincatalog.ProductDefinition) {
	currency, c, pricer, ok := s.parts(def)
	if !ok {
		return
	}
	_, _, err := vs.NewVirtualProduct(def.ID, currency, c, shop.VirtualProductOptions{
		DiscountAllowed: def.DiscountAllowed,
		Pricer:          pricer,
		Limits:          s.tracker.Resolver(def.Key()),
	})
	if err != nil {
		s.logger.Warn("Failed to add product", zap.String("product", def.Key()), zap.Error(err))
	}
}

func (s *Service) addChestProduct(cs *shop.ChestShop, def *domaincatalog.ProductDefinition) {
	currency, c, pricer, ok := s.parts(def)
	if !ok {
		return
	}
	p, err := cs.NewChestProduct(def.ID, currency, c, pricer)
	if err != nil {
		s.logger.Warn("Failed to add product", zap.String("product", def.Key()), zap.Error(err))
		return
	}
	p.SetLimits(s.tracker.Resolver(def.Key()))
}

// Shops returns the live shops sorted by id
func (s *Service) Shops() []shop.Shop {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]shop.Shop, 0, len(s.shops))
	for _, sh := range s.shops {
		out = append(out, sh)
	}
	slices.SortFunc(out, func(a, b shop.Shop) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

// Shop returns a live shop
func (s *Service) Shop(id string) (shop.Shop, error) {
	s.mu.RLock()
	sh, ok := s.shops[strings.ToLower(id)]
	s.mu.RUnlock()
	if !ok {
		return nil, shared.ErrNotFound.Withf("Shop %s not found", id)
	}
	return sh, nil
}

// Product returns a live product
func (s *Service) Product(shopID, productID string) (*product.Product, error) {
	sh, err := s.Shop(shopID)
	if err != nil {
		return nil, err
	}
	p, ok := sh.Product(strings.ToLower(productID))
	if !ok {
		return nil, shared.ErrNotFound.Withf("Product %s not found in shop %s", productID, sh.ID())
	}
	return p, nil
}

// Products returns every live product of every shop
func (s *Service) Products() []*product.Product {
	var out []*product.Product
	for _, sh := range s.Shops() {
		out = append(out, sh.Products()...)
	}
	return out
}

// ListShops returns the response form of all shops
func (s *Service) ListShops() []ShopResponse {
	shops := s.Shops()
	out := make([]ShopResponse, 0, len(shops))
	for _, sh := range shops {
		out = append(out, ToShopResponse(sh))
	}
	return out
}

// GetShop returns the response form of one shop
func (s *Service) GetShop(id string) (*ShopResponse, error) {
	sh, err := s.Shop(id)
	if err != nil {
		return nil, err
	}
	resp := ToShopResponse(sh)
	return &resp, nil
}

// ListProducts returns the response form of all products of a shop
func (s *Service) ListProducts(shopID string) ([]ProductResponse, error) {
	sh, err := s.Shop(shopID)
	if err != nil {
		return nil, err
	}
	products := sh.Products()
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out, nil
}

// GetProduct returns the response form of one product
func (s *Service) GetProduct(shopID, productID string) (*ProductResponse, error) {
	p, err := s.Product(shopID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// SetPrice persists the new price of one trade direction, then applies it
// to the live product and publishes the price change. A failed save leaves
// the live product untouched.
func (s *Service) SetPrice(ctx context.Context, shopID, productID string, tradeType product.TradeType, price decimal.Decimal) (*ProductResponse, error) {
	if !tradeType.IsValid() {
		return nil, shared.ErrInvalidTradeType.Withf("Unknown trade type %q", tradeType)
	}
	p, err := s.Product(shopID, productID)
	if err != nil {
		return nil, err
	}

	next, err := s.repriced(p, tradeType, price)
	if err != nil {
		return nil, err
	}
	if err := s.savePricerOf(ctx, p, next); err != nil {
		return nil, err
	}
	p.SetPrice(tradeType, price)
	s.warnIfArbitrage(p, tradeType)

	events := p.GetDomainEvents()
	p.ClearDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish price change", zap.String("product", p.Key()), zap.Error(err))
		}
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// warnIfArbitrage flags a sell price above the buy price. IsSellable refuses
// such products while the shop buys, so the admin learns why selling stopped.
func (s *Service) warnIfArbitrage(p *product.Product, changed product.TradeType) {
	prices := map[product.TradeType]decimal.Decimal{
		changed:            p.Pricer().Price(changed),
		changed.Opposite(): p.Pricer().Price(changed.Opposite()),
	}
	buy, sell := prices[product.TradeBuy], prices[product.TradeSell]
	if buy.IsNegative() || sell.IsNegative() || !sell.GreaterThan(buy) {
		return
	}
	s.logger.Warn("Sell price exceeds buy price, selling is blocked",
		zap.String("product", p.Key()),
		zap.String("buy", buy.String()),
		zap.String("sell", sell.String()),
	)
}

// repriced returns a copy of the product pricer carrying the new price
func (s *Service) repriced(p *product.Product, tradeType product.TradeType, price decimal.Decimal) (product.Pricer, error) {
	pricingType, settings, err := s.pricers.Encode(p.Pricer())
	if err != nil {
		return nil, fmt.Errorf("failed to encode pricer of %s: %w", p.Key(), err)
	}
	next, err := s.pricers.Build(pricingType, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to copy pricer of %s: %w", p.Key(), err)
	}
	next.SetPrice(tradeType, p.Currency().FineValue(price))
	return next, nil
}

func (s *Service) savePricer(ctx context.Context, p *product.Product) error {
	return s.savePricerOf(ctx, p, p.Pricer())
}

func (s *Service) savePricerOf(ctx context.Context, p *product.Product, pricer product.Pricer) error {
	pricingType, settings, err := s.pricers.Encode(pricer)
	if err != nil {
		return fmt.Errorf("failed to encode pricer of %s: %w", p.Key(), err)
	}
	def, err := s.repo.FindProduct(ctx, p.Shop().ID(), p.ID())
	if err != nil {
		return err
	}
	def.Pricer = domaincatalog.PricerSpec{Type: pricingType, Settings: settings}
	return s.repo.SaveProduct(ctx, def)
}

// SavePrices persists the pricer state of every product whose pricer
// changes on its own, such as demand driven or rolled prices
func (s *Service) SavePrices(ctx context.Context) error {
	var errs []error
	saved := 0
	for _, p := range s.Products() {
		if p.Pricer().Type() == product.PricingFlat {
			continue
		}
		if err := s.savePricer(ctx, p); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	s.logger.Debug("Prices persisted", zap.Int("products", saved), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// RollFloatPrices rolls a new price for every float priced product and
// returns how many were rolled
func (s *Service) RollFloatPrices(rng *rand.Rand) int {
	rolled := 0
	for _, p := range s.Products() {
		roller, ok := p.Pricer().(floatRoller)
		if !ok {
			continue
		}
		if err := roller.Roll(rng); err != nil {
			s.logger.Warn("Failed to roll price", zap.String("product", p.Key()), zap.Error(err))
			continue
		}
		rolled++
	}
	return rolled
}

// Tracker returns the trade limit tracker fed by this catalog
func (s *Service) Tracker() *stock.Tracker {
	return s.tracker
}
