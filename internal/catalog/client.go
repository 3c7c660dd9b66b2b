package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"
	"github.com/utafrali/CoffeeOrderGo/pkg/httpclient"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client fetches item customizations over the catalog service's HTTP API.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a catalog client against the given base URL.
func NewClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// GetItemCustomization fetches one item's customization definition and
// validates its structural invariants before handing it to callers.
func (c *Client) GetItemCustomization(ctx context.Context, coffeeShopID, menuItemID string) (*domain.ItemCustomization, error) {
	url := fmt.Sprintf("%s/api/v1/shops/%s/items/%s/customization", c.baseURL, coffeeShopID, menuItemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFound("menu item", menuItemID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope struct {
		Data *domain.ItemCustomization `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("catalog response for item %s has no data", menuItemID)
	}

	item := envelope.Data
	if item.BasePrice.Currency == "" {
		item.BasePrice.Currency = domain.DefaultCurrency
	}
	if err := item.Validate(); err != nil {
		c.logger.ErrorContext(ctx, "catalog returned an inconsistent entry",
			slog.String("menu_item_id", menuItemID),
			slog.String("coffee_shop_id", coffeeShopID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ServiceUnavailable("catalog returned an inconsistent item definition")
	}
	if item.CoffeeShopID == "" {
		item.CoffeeShopID = coffeeShopID
	}

	return item, nil
}
