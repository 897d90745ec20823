package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	domaincatalog "github.com/gameshop/backend/internal/domain/catalog"
)

// seedShop lets a seed file leave out the trade switches, which then
// default to enabled
type seedShop struct {
	domaincatalog.ShopDefinition
	BuyEnabled  *bool `json:"buy_enabled"`
	SellEnabled *bool `json:"sell_enabled"`
}

type seedFile struct {
	Shops []seedShop `json:"shops"`
}

// ReadSeed decodes a JSON catalog file and validates every shop in it
func ReadSeed(r io.Reader) ([]domaincatalog.ShopDefinition, error) {
	var file seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	defs := make([]domaincatalog.ShopDefinition, 0, len(file.Shops))
	seen := make(map[string]struct{}, len(file.Shops))
	for _, s := range file.Shops {
		def := s.ShopDefinition
		def.BuyEnabled = s.BuyEnabled == nil || *s.BuyEnabled
		def.SellEnabled = s.SellEnabled == nil || *s.SellEnabled
		def.Normalize()
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("shop %s is defined twice", def.ID)
		}
		seen[def.ID] = struct{}{}
		defs = append(defs, def)
	}
	return defs, nil
}

// Seed stores the given shops, replacing stored shops with the same id
func Seed(ctx context.Context, repo domaincatalog.Repository, defs []domaincatalog.ShopDefinition) error {
	for i := range defs {
		if err := repo.SaveShop(ctx, &defs[i]); err != nil {
			return fmt.Errorf("failed to store shop %s: %w", defs[i].ID, err)
		}
	}
	return nil
}

// Export writes every stored shop as a JSON catalog file ReadSeed accepts
func Export(ctx context.Context, repo domaincatalog.Repository, w io.Writer) error {
	defs, err := repo.FindShops(ctx)
	if err != nil {
		return fmt.Errorf("failed to load shop definitions: %w", err)
	}
	if defs == nil {
		defs = []domaincatalog.ShopDefinition{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Shops []domaincatalog.ShopDefinition `json:"shops"`
	}{Shops: defs})
}
