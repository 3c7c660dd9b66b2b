package domain

import (
	"strconv"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"
)

// LineSnapshot carries the display strings captured when a line was added,
// so the cart screen renders without another catalog round trip. Never used
// in merge comparison or price arithmetic.
type LineSnapshot struct {
	ItemName string   `json:"item_name"`
	SizeName string   `json:"size_name,omitempty"`
	Details  []string `json:"details,omitempty"`
}

// CartLine is one priced item in a cart. UnitPrice and SizeAdditionalPrice
// are computed when the line is created and never recomputed; a catalog
// price change after that point does not move an existing line.
type CartLine struct {
	ID                  string                 `json:"id"`
	MenuItemID          string                 `json:"menu_item_id"`
	CoffeeShopID        string                 `json:"coffee_shop_id"`
	Quantity            int64                  `json:"quantity"`
	UnitPrice           Money                  `json:"unit_price"`
	SizeAdditionalPrice Money                  `json:"size_additional_price"`
	Selection           CustomizationSelection `json:"selection"`
	Snapshot            LineSnapshot           `json:"snapshot"`
}

// NewCartLine builds a priced cart line from a catalog entry and a validated
// selection. Quantity below 1 is clamped to 1.
func NewCartLine(item *ItemCustomization, sel *ValidatedSelection, quantity int64) CartLine {
	if quantity < 1 {
		quantity = 1
	}

	line := CartLine{
		ID:                  uuid.New().String(),
		MenuItemID:          item.MenuItemID,
		CoffeeShopID:        item.CoffeeShopID,
		Quantity:            quantity,
		UnitPrice:           UnitPrice(item, sel),
		SizeAdditionalPrice: Zero(item.BasePrice.Currency),
		Selection:           sel.clone(),
		Snapshot:            LineSnapshot{ItemName: item.Name},
	}

	if sel.SizeID != "" {
		if size, ok := item.SizeByID(sel.SizeID); ok {
			line.SizeAdditionalPrice = size.AdditionalPrice
			line.Snapshot.SizeName = size.Name
		}
	}
	line.Snapshot.Details = describeSelection(item, sel)

	return line
}

// describeSelection renders human-readable detail lines in catalog order.
func describeSelection(item *ItemCustomization, sel *ValidatedSelection) []string {
	var details []string
	for i := range item.Ingredients {
		ing := &item.Ingredients[i]
		amount, ok := sel.Ingredients[ing.ID]
		if !ok || amount == ing.DefaultAmount {
			continue
		}
		details = append(details, ing.Name+" x"+itoa(amount))
	}
	for i := range item.OptionGroups {
		g := &item.OptionGroups[i]
		chosen := sel.Options[g.ID]
		if len(chosen) == 0 {
			continue
		}
		for j := range g.Choices {
			ch := &g.Choices[j]
			qty, ok := chosen[ch.ID]
			if !ok {
				continue
			}
			if ch.AllowsQuantity && qty != 1 {
				details = append(details, ch.Name+" x"+itoa(qty))
			} else {
				details = append(details, ch.Name)
			}
		}
	}
	return details
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// LineTotal is the line's unit price times its quantity.
func (l *CartLine) LineTotal() Money {
	return l.UnitPrice.MulUnits(l.Quantity)
}

// MergeableWith reports whether two lines represent the same customized
// item: same menu item and a structurally equal selection. Quantity, line
// id, and display snapshot play no part.
func (l *CartLine) MergeableWith(o *CartLine) bool {
	return l.MenuItemID == o.MenuItemID && l.Selection.Equal(o.Selection)
}

func (l *CartLine) clone() CartLine {
	out := *l
	out.Selection = l.Selection.clone()
	if len(l.Snapshot.Details) > 0 {
		out.Snapshot.Details = append([]string(nil), l.Snapshot.Details...)
	}
	return out
}

// Cart is one user's open cart. All lines belong to a single coffee shop;
// the first line fixes the shop and later lines from another shop are
// rejected until the cart is cleared.
type Cart struct {
	UserID       string     `json:"user_id"`
	CoffeeShopID string     `json:"coffee_shop_id,omitempty"`
	Lines        []CartLine `json:"lines"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add places a line in the cart. A line mergeable with an existing one
// increases that line's quantity instead of appending; a line from a
// different coffee shop than the cart's is rejected with a shop conflict.
// Returns the id of the line that absorbed the addition.
func (c *Cart) Add(line CartLine) (string, error) {
	if c.IsEmpty() {
		c.CoffeeShopID = line.CoffeeShopID
	} else if c.CoffeeShopID != line.CoffeeShopID {
		return "", apperrors.ShopConflict(c.CoffeeShopID, line.CoffeeShopID)
	}

	for i := range c.Lines {
		if c.Lines[i].MergeableWith(&line) {
			c.Lines[i].Quantity += line.Quantity
			return c.Lines[i].ID, nil
		}
	}

	c.Lines = append(c.Lines, line)
	return line.ID, nil
}

// UpdateQuantity sets a line's quantity. Values below 1 clamp to 1; removal
// is an explicit operation, never a side effect of a quantity edit.
func (c *Cart) UpdateQuantity(lineID string, quantity int64) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			if quantity < 1 {
				quantity = 1
			}
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return apperrors.NotFound("cart line", lineID)
}

// Remove deletes the line with the given id. Removing the last line leaves
// an empty cart with no shop binding.
func (c *Cart) Remove(lineID string) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			if c.IsEmpty() {
				c.CoffeeShopID = ""
			}
			return nil
		}
	}
	return apperrors.NotFound("cart line", lineID)
}

// RemoveAt deletes the line at the given position.
func (c *Cart) RemoveAt(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return apperrors.NotFound("cart line", "index "+itoa(int64(index)))
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	if c.IsEmpty() {
		c.CoffeeShopID = ""
	}
	return nil
}

// Clear empties the cart and releases the shop binding.
func (c *Cart) Clear() {
	c.Lines = nil
	c.CoffeeShopID = ""
}

// Total is the sum of all line totals.
func (c *Cart) Total() Money {
	total := Money{}
	for i := range c.Lines {
		total = total.Add(c.Lines[i].LineTotal())
	}
	return total
}

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int64 {
	var n int64
	for i := range c.Lines {
		n += c.Lines[i].Quantity
	}
	return n
}

// Clone returns a deep copy. Handed to readers so the single-writer cart
// can keep mutating without racing them.
func (c *Cart) Clone() *Cart {
	out := &Cart{UserID: c.UserID, CoffeeShopID: c.CoffeeShopID}
	if len(c.Lines) > 0 {
		out.Lines = make([]CartLine, len(c.Lines))
		for i := range c.Lines {
			out.Lines[i] = c.Lines[i].clone()
		}
	}
	return out
}
