package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemRequest struct {
	CoffeeShopID string `validate:"required"`
	MenuItemID   string `validate:"required"`
	Quantity     int64  `validate:"gte=1,lte=50"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(addItemRequest{
		CoffeeShopID: "shop-1",
		MenuItemID:   "item-latte",
		Quantity:     2,
	})
	assert.NoError(t, err)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	err := Validate(addItemRequest{Quantity: 1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["CoffeeShopID"])
	assert.Equal(t, "is required", fields["MenuItemID"])
	assert.NotContains(t, fields, "Quantity")
}

func TestValidate_RangeViolations(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		wantMsg  string
	}{
		{name: "below minimum", quantity: 0, wantMsg: "must be greater than or equal to 1"},
		{name: "above maximum", quantity: 51, wantMsg: "must be less than or equal to 50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(addItemRequest{
				CoffeeShopID: "shop-1",
				MenuItemID:   "item-latte",
				Quantity:     tt.quantity,
			})
			require.Error(t, err)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.wantMsg, valErr.Fields()["Quantity"])
		})
	}
}

func TestValidationError_ErrorMessage(t *testing.T) {
	err := Validate(addItemRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'CoffeeShopID' is required")
	assert.Contains(t, err.Error(), "field 'MenuItemID' is required")
}
