package cmd

import (
	"context"
	"fmt"

	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// MenuSaver stores menu items, replacing an item with the same id.
type MenuSaver interface {
	Save(ctx context.Context, item *catalog.MenuItem) error
}

var demoMenu = []struct {
	name  string
	price string
}{
	{"Mozzarella Sticks", "8.99"},
	{"Grilled Salmon", "18.99"},
	{"Chocolate Cake", "6.99"},
	{"Fresh Lemonade", "3.99"},
}

// menuNamespace derives stable ids so that seeding twice updates the same rows.
var menuNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tableorder/menu"))

// SeedMenu stores a small demo menu for local development.
func SeedMenu(ctx context.Context, repo MenuSaver) (int, error) {
	for _, entry := range demoMenu {
		id, err := kernel.UUIDFromString(uuid.NewSHA1(menuNamespace, []byte(entry.name)).String())
		if err != nil {
			return 0, err
		}
		price, err := kernel.MoneyFromString(entry.price)
		if err != nil {
			return 0, err
		}

		item, err := catalog.NewMenuItem(id, entry.name, price, true)
		if err != nil {
			return 0, err
		}
		if err = repo.Save(ctx, item); err != nil {
			return 0, fmt.Errorf("seed %s: %w", entry.name, err)
		}
	}

	return len(demoMenu), nil
}
