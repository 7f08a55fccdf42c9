package mining

import (
	"context"
	"errors"

	"github.com/MineVault/MineVault-Backend/db/store"
)

// Catalog reads the purchasable package list. Purchases copy price, power and
// rate from here into the holding so the catalog stays freely editable.
type Catalog struct {
	store store.Store
}

func NewCatalog(store store.Store) *Catalog {
	return &Catalog{store: store}
}

func (c *Catalog) GetPackage(ctx context.Context, id int64) (store.MiningPackage, error) {
	p, err := c.store.GetMiningPackage(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.MiningPackage{}, ErrPackageNotFound
	}
	if err != nil {
		return store.MiningPackage{}, err
	}
	if !p.Active {
		return store.MiningPackage{}, ErrPackageInactive
	}
	return p, nil
}

func (c *Catalog) ListPackages(ctx context.Context) ([]*PackageModel, error) {
	rows, err := c.store.ListActiveMiningPackages(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PackageModel, 0, len(rows))
	for _, p := range rows {
		out = append(out, ToPackageModel(p))
	}
	return out, nil
}
