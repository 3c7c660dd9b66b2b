package domain

import "fmt"

// SizeOption is a mutually exclusive variant of a menu item with its own
// price delta. Exactly one size per item is the default.
type SizeOption struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Abbreviation    string `json:"abbreviation,omitempty"`
	AdditionalPrice Money  `json:"additional_price"`
	IsDefault       bool   `json:"is_default"`
}

// IngredientDefinition describes a component of a menu item. When
// customizable, the customer may adjust the included amount within
// [MinAmount, MaxAmount]; FreeAmount units are included at no charge and
// each unit beyond that costs PricePerUnit.
type IngredientDefinition struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Unit           string `json:"unit,omitempty"`
	DefaultAmount  int64  `json:"default_amount"`
	IsCustomizable bool   `json:"is_customizable"`
	MinAmount      int64  `json:"min_amount,omitempty"`
	MaxAmount      int64  `json:"max_amount,omitempty"`
	FreeAmount     int64  `json:"free_amount,omitempty"`
	PricePerUnit   Money  `json:"price_per_unit,omitempty"`
}

// ChoiceDefinition is one selectable add-on inside an option group.
// BasePrice is charged once when the choice is selected. When
// AllowsQuantity, the customer picks a quantity in [MinQuantity,
// MaxQuantity]; DefaultQuantity units are covered by BasePrice and each
// unit beyond that costs PricePerAdditionalUnit.
type ChoiceDefinition struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	BasePrice              Money  `json:"base_price"`
	AllowsQuantity         bool   `json:"allows_quantity"`
	MinQuantity            int64  `json:"min_quantity,omitempty"`
	MaxQuantity            int64  `json:"max_quantity,omitempty"`
	DefaultQuantity        int64  `json:"default_quantity,omitempty"`
	PricePerAdditionalUnit Money  `json:"price_per_additional_unit,omitempty"`
}

// OptionGroupDefinition is a named set of choices, e.g. "Syrup" or "Milk".
// Required groups must have at least one choice selected; groups that do
// not allow multiple choices accept exactly one.
type OptionGroupDefinition struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	Required              bool               `json:"required"`
	AllowsMultipleChoices bool               `json:"allows_multiple_choices"`
	Choices               []ChoiceDefinition `json:"choices"`
}

// ChoiceByID returns the choice with the given id within the group.
func (g *OptionGroupDefinition) ChoiceByID(id string) (*ChoiceDefinition, bool) {
	for i := range g.Choices {
		if g.Choices[i].ID == id {
			return &g.Choices[i], true
		}
	}
	return nil, false
}

// ItemCustomization is the full customization surface of one menu item:
// its base price, sizes, adjustable ingredients, and option groups. It is
// supplied by the catalog service and read-only to this service.
type ItemCustomization struct {
	MenuItemID   string                  `json:"menu_item_id"`
	CoffeeShopID string                  `json:"coffee_shop_id"`
	Name         string                  `json:"name"`
	BasePrice    Money                   `json:"base_price"`
	Sizes        []SizeOption            `json:"sizes,omitempty"`
	Ingredients  []IngredientDefinition  `json:"ingredients,omitempty"`
	OptionGroups []OptionGroupDefinition `json:"option_groups,omitempty"`
}

// DefaultSize returns the item's default size. An item with no sizes has a
// single implicit size with no surcharge; ok is false in that case.
func (c *ItemCustomization) DefaultSize() (*SizeOption, bool) {
	for i := range c.Sizes {
		if c.Sizes[i].IsDefault {
			return &c.Sizes[i], true
		}
	}
	return nil, false
}

// SizeByID returns the size with the given id.
func (c *ItemCustomization) SizeByID(id string) (*SizeOption, bool) {
	for i := range c.Sizes {
		if c.Sizes[i].ID == id {
			return &c.Sizes[i], true
		}
	}
	return nil, false
}

// IngredientByID returns the ingredient with the given id.
func (c *ItemCustomization) IngredientByID(id string) (*IngredientDefinition, bool) {
	for i := range c.Ingredients {
		if c.Ingredients[i].ID == id {
			return &c.Ingredients[i], true
		}
	}
	return nil, false
}

// GroupByID returns the option group with the given id.
func (c *ItemCustomization) GroupByID(id string) (*OptionGroupDefinition, bool) {
	for i := range c.OptionGroups {
		if c.OptionGroups[i].ID == id {
			return &c.OptionGroups[i], true
		}
	}
	return nil, false
}

// Validate checks the structural invariants of a catalog entry: exactly one
// default size when sizes exist, unique ids, consistent ingredient bounds,
// consistent choice quantity bounds, and a single currency across all prices.
// Entries arriving from the catalog service are validated once at the
// boundary; the pricing and selection code assumes these invariants hold.
func (c *ItemCustomization) Validate() error {
	if c.MenuItemID == "" {
		return fmt.Errorf("catalog entry: menu_item_id is required")
	}
	if c.BasePrice.IsNegative() {
		return fmt.Errorf("catalog entry %s: base price is negative", c.MenuItemID)
	}

	currency := c.BasePrice.Currency
	checkCurrency := func(m Money, what string) error {
		if m.Currency != "" && m.Currency != currency {
			return fmt.Errorf("catalog entry %s: %s currency %q differs from base price currency %q",
				c.MenuItemID, what, m.Currency, currency)
		}
		return nil
	}

	if len(c.Sizes) > 0 {
		defaults := 0
		seen := make(map[string]struct{}, len(c.Sizes))
		for _, s := range c.Sizes {
			if _, dup := seen[s.ID]; dup {
				return fmt.Errorf("catalog entry %s: duplicate size id %q", c.MenuItemID, s.ID)
			}
			seen[s.ID] = struct{}{}
			if s.IsDefault {
				defaults++
			}
			if s.AdditionalPrice.IsNegative() {
				return fmt.Errorf("catalog entry %s: size %q has negative additional price", c.MenuItemID, s.ID)
			}
			if err := checkCurrency(s.AdditionalPrice, "size "+s.ID); err != nil {
				return err
			}
		}
		if defaults != 1 {
			return fmt.Errorf("catalog entry %s: expected exactly one default size, got %d", c.MenuItemID, defaults)
		}
	}

	seenIng := make(map[string]struct{}, len(c.Ingredients))
	for _, ing := range c.Ingredients {
		if _, dup := seenIng[ing.ID]; dup {
			return fmt.Errorf("catalog entry %s: duplicate ingredient id %q", c.MenuItemID, ing.ID)
		}
		seenIng[ing.ID] = struct{}{}
		if !ing.IsCustomizable {
			continue
		}
		if ing.MinAmount > ing.DefaultAmount || ing.DefaultAmount > ing.MaxAmount {
			return fmt.Errorf("catalog entry %s: ingredient %q bounds violate min <= default <= max", c.MenuItemID, ing.ID)
		}
		if ing.FreeAmount < 0 {
			return fmt.Errorf("catalog entry %s: ingredient %q has negative free amount", c.MenuItemID, ing.ID)
		}
		if ing.PricePerUnit.IsNegative() {
			return fmt.Errorf("catalog entry %s: ingredient %q has negative unit price", c.MenuItemID, ing.ID)
		}
		if err := checkCurrency(ing.PricePerUnit, "ingredient "+ing.ID); err != nil {
			return err
		}
	}

	seenGroup := make(map[string]struct{}, len(c.OptionGroups))
	for _, g := range c.OptionGroups {
		if _, dup := seenGroup[g.ID]; dup {
			return fmt.Errorf("catalog entry %s: duplicate option group id %q", c.MenuItemID, g.ID)
		}
		seenGroup[g.ID] = struct{}{}

		seenChoice := make(map[string]struct{}, len(g.Choices))
		for _, ch := range g.Choices {
			if _, dup := seenChoice[ch.ID]; dup {
				return fmt.Errorf("catalog entry %s: group %q has duplicate choice id %q", c.MenuItemID, g.ID, ch.ID)
			}
			seenChoice[ch.ID] = struct{}{}
			if ch.BasePrice.IsNegative() {
				return fmt.Errorf("catalog entry %s: choice %q has negative base price", c.MenuItemID, ch.ID)
			}
			if err := checkCurrency(ch.BasePrice, "choice "+ch.ID); err != nil {
				return err
			}
			if !ch.AllowsQuantity {
				continue
			}
			if ch.MinQuantity > ch.DefaultQuantity || ch.DefaultQuantity > ch.MaxQuantity {
				return fmt.Errorf("catalog entry %s: choice %q quantity bounds violate min <= default <= max", c.MenuItemID, ch.ID)
			}
			if ch.PricePerAdditionalUnit.IsNegative() {
				return fmt.Errorf("catalog entry %s: choice %q has negative per-unit price", c.MenuItemID, ch.ID)
			}
			if err := checkCurrency(ch.PricePerAdditionalUnit, "choice "+ch.ID); err != nil {
				return err
			}
		}
	}

	return nil
}
