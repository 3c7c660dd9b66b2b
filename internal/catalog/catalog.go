// Package catalog fetches item customization definitions from the catalog
// service. The definitions are owned by that service; this one treats them
// as read-only input to selection validation and pricing.
package catalog

import (
	"context"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

// Provider supplies the customization surface of a menu item.
type Provider interface {
	GetItemCustomization(ctx context.Context, coffeeShopID, menuItemID string) (*domain.ItemCustomization, error)
}
