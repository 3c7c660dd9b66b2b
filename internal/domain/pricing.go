package domain

// PriceQuote is the per-unit price of a validated selection, broken down by
// contribution. Sent back by the live price endpoint so the item-detail
// screen and the cart line are guaranteed to agree: both come from here.
type PriceQuote struct {
	BasePrice        Money `json:"base_price"`
	SizeSurcharge    Money `json:"size_surcharge"`
	IngredientsTotal Money `json:"ingredients_total"`
	OptionsTotal     Money `json:"options_total"`
	UnitPrice        Money `json:"unit_price"`
}

// Quote computes the per-unit price of a validated selection against its
// catalog entry. Pure and deterministic: no I/O, no clock, no floats.
//
// The price is the base price, plus the selected size's surcharge, plus an
// overage charge for every customizable ingredient raised above its free
// allowance, plus each selected choice's base price (charged once,
// regardless of quantity) and its per-unit charge for quantity above the
// choice's default. Amounts and quantities are validated before this runs,
// so no negative intermediate value can occur, and a selection of all
// defaults reproduces the base price exactly.
func Quote(item *ItemCustomization, sel *ValidatedSelection) PriceQuote {
	currency := item.BasePrice.Currency

	q := PriceQuote{
		BasePrice:        item.BasePrice,
		SizeSurcharge:    Zero(currency),
		IngredientsTotal: Zero(currency),
		OptionsTotal:     Zero(currency),
	}

	if sel.SizeID != "" {
		if size, ok := item.SizeByID(sel.SizeID); ok {
			q.SizeSurcharge = q.SizeSurcharge.Add(size.AdditionalPrice)
		}
	}

	for i := range item.Ingredients {
		ing := &item.Ingredients[i]
		if !ing.IsCustomizable {
			continue
		}
		amount, ok := sel.Ingredients[ing.ID]
		if !ok {
			continue
		}
		if amount > ing.FreeAmount {
			q.IngredientsTotal = q.IngredientsTotal.Add(ing.PricePerUnit.MulUnits(amount - ing.FreeAmount))
		}
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
			q.OptionsTotal = q.OptionsTotal.Add(ch.BasePrice)
			if ch.AllowsQuantity && qty > ch.DefaultQuantity {
				q.OptionsTotal = q.OptionsTotal.Add(ch.PricePerAdditionalUnit.MulUnits(qty - ch.DefaultQuantity))
			}
		}
	}

	q.UnitPrice = q.BasePrice.
		Add(q.SizeSurcharge).
		Add(q.IngredientsTotal).
		Add(q.OptionsTotal)

	return q
}

// UnitPrice computes just the per-unit price of a validated selection.
func UnitPrice(item *ItemCustomization, sel *ValidatedSelection) Money {
	return Quote(item, sel).UnitPrice
}
