package domain

import "sort"

// ChoiceQuantity is one selected choice and its quantity inside an option
// group of a checkout payload.
type ChoiceQuantity struct {
	ChoiceID string `json:"choice_id"`
	Quantity int64  `json:"quantity"`
}

// OrderCustomizationPayload is the stable wire form of a line's
// customization, handed to the order service at checkout. Option groups
// serialize as sorted slices, not maps, so the payload bytes for a given
// selection never change between runs.
type OrderCustomizationPayload struct {
	SizeID              string                      `json:"size_id,omitempty"`
	SizeAdditionalPrice Money                       `json:"size_additional_price"`
	Ingredients         map[string]int64            `json:"ingredients,omitempty"`
	Options             map[string][]ChoiceQuantity `json:"options,omitempty"`
}

// OrderItemPayload is one cart line in the checkout payload.
type OrderItemPayload struct {
	LineID        string                    `json:"line_id"`
	MenuItemID    string                    `json:"menu_item_id"`
	ItemName      string                    `json:"item_name"`
	Quantity      int64                     `json:"quantity"`
	UnitPrice     Money                     `json:"unit_price"`
	LineTotal     Money                     `json:"line_total"`
	Customization OrderCustomizationPayload `json:"customization"`
}

// OrderPayload is the full checkout handoff: the shop, every line with its
// frozen prices and customization, and the cart total.
type OrderPayload struct {
	UserID       string             `json:"user_id"`
	CoffeeShopID string             `json:"coffee_shop_id"`
	Items        []OrderItemPayload `json:"items"`
	Total        Money              `json:"total"`
	Currency     string             `json:"currency"`
}

// BuildOrderPayload converts a cart into its checkout payload. Everything
// comes from state frozen at add time; the catalog is not consulted again.
func BuildOrderPayload(cart *Cart) OrderPayload {
	total := cart.Total()

	payload := OrderPayload{
		UserID:       cart.UserID,
		CoffeeShopID: cart.CoffeeShopID,
		Items:        make([]OrderItemPayload, 0, len(cart.Lines)),
		Total:        total,
		Currency:     total.Currency,
	}

	for i := range cart.Lines {
		line := &cart.Lines[i]
		item := OrderItemPayload{
			LineID:     line.ID,
			MenuItemID: line.MenuItemID,
			ItemName:   line.Snapshot.ItemName,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal(),
			Customization: OrderCustomizationPayload{
				SizeID:              line.Selection.SizeID,
				SizeAdditionalPrice: line.SizeAdditionalPrice,
			},
		}

		if len(line.Selection.Ingredients) > 0 {
			item.Customization.Ingredients = make(map[string]int64, len(line.Selection.Ingredients))
			for id, amount := range line.Selection.Ingredients {
				item.Customization.Ingredients[id] = amount
			}
		}

		if len(line.Selection.Options) > 0 {
			item.Customization.Options = make(map[string][]ChoiceQuantity, len(line.Selection.Options))
			for groupID, chosen := range line.Selection.Options {
				if len(chosen) == 0 {
					continue
				}
				choices := make([]ChoiceQuantity, 0, len(chosen))
				for choiceID, qty := range chosen {
					choices = append(choices, ChoiceQuantity{ChoiceID: choiceID, Quantity: qty})
				}
				sort.Slice(choices, func(a, b int) bool {
					return choices[a].ChoiceID < choices[b].ChoiceID
				})
				item.Customization.Options[groupID] = choices
			}
			if len(item.Customization.Options) == 0 {
				item.Customization.Options = nil
			}
		}

		payload.Items = append(payload.Items, item)
	}

	return payload
}
