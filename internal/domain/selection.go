package domain

import (
	"sort"

	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"
)

// CustomizationSelection captures what the customer chose for one menu item.
// It is parsed once at the HTTP boundary into this shape; untyped key/value
// blobs never travel through the business logic.
//
// Ingredients holds only the amounts the customer touched, keyed by
// ingredient id. Options maps option group id to the selected choice ids and
// their quantities.
type CustomizationSelection struct {
	SizeID      string                      `json:"size_id,omitempty"`
	Ingredients map[string]int64            `json:"ingredients,omitempty"`
	Options     map[string]map[string]int64 `json:"options,omitempty"`
}

// Equal reports structural equality of two selections: same size, same set
// of ingredient overrides with equal amounts, same set of selected choices
// per group with equal quantities. Comparison is map-based and independent
// of any iteration or insertion order.
func (s CustomizationSelection) Equal(o CustomizationSelection) bool {
	if s.SizeID != o.SizeID {
		return false
	}
	if !equalAmounts(s.Ingredients, o.Ingredients) {
		return false
	}
	// nil and empty maps compare equal; only groups with selections count.
	if nonEmptyGroups(s.Options) != nonEmptyGroups(o.Options) {
		return false
	}
	for groupID, choices := range s.Options {
		if len(choices) == 0 {
			continue
		}
		if !equalAmounts(choices, o.Options[groupID]) {
			return false
		}
	}
	return true
}

// clone returns a deep copy with empty maps normalized to nil.
func (s CustomizationSelection) clone() CustomizationSelection {
	out := CustomizationSelection{SizeID: s.SizeID}
	if len(s.Ingredients) > 0 {
		out.Ingredients = make(map[string]int64, len(s.Ingredients))
		for k, v := range s.Ingredients {
			out.Ingredients[k] = v
		}
	}
	if len(s.Options) > 0 {
		out.Options = make(map[string]map[string]int64, len(s.Options))
		for groupID, choices := range s.Options {
			if len(choices) == 0 {
				continue
			}
			cp := make(map[string]int64, len(choices))
			for choiceID, qty := range choices {
				cp[choiceID] = qty
			}
			out.Options[groupID] = cp
		}
		if len(out.Options) == 0 {
			out.Options = nil
		}
	}
	return out
}

func equalAmounts(a, b map[string]int64) bool {
	count := 0
	for k, v := range a {
		ov, ok := b[k]
		if !ok || ov != v {
			return false
		}
		count++
	}
	return count == len(b)
}

func nonEmptyGroups(m map[string]map[string]int64) int {
	n := 0
	for _, choices := range m {
		if len(choices) > 0 {
			n++
		}
	}
	return n
}

// ValidatedSelection is a CustomizationSelection that has been proven
// consistent with its catalog entry: the size id resolves (defaulted when
// absent), every referenced id exists, every amount and quantity is within
// bounds, and quantity-less choices are pinned to 1. It is the only input
// the price calculation accepts.
type ValidatedSelection struct {
	CustomizationSelection
}

// ValidateSelection checks a raw selection against a catalog entry and
// returns the validated form, or the first rule violation. Rules are applied
// in a fixed order so a given bad input always yields the same error:
//
//  1. size id must resolve (default substituted when absent)
//  2. required option groups must have a selection
//  3. selected choice quantities must be within bounds (or pinned to 1)
//  4. ingredient overrides must be within bounds and customizable
//  5. every referenced id must exist in the catalog
func ValidateSelection(item *ItemCustomization, sel CustomizationSelection) (*ValidatedSelection, error) {
	out := sel.clone()

	// Rule 1: size resolution.
	if len(item.Sizes) > 0 {
		if out.SizeID == "" {
			def, ok := item.DefaultSize()
			if !ok {
				return nil, apperrors.UnknownReference("default size", item.MenuItemID)
			}
			out.SizeID = def.ID
		} else if _, ok := item.SizeByID(out.SizeID); !ok {
			return nil, apperrors.UnknownReference("size", out.SizeID)
		}
	} else if out.SizeID != "" {
		return nil, apperrors.UnknownReference("size", out.SizeID)
	}

	// Rule 2: required groups. Catalog order keeps the first failure stable.
	for i := range item.OptionGroups {
		g := &item.OptionGroups[i]
		if !g.Required {
			continue
		}
		if selectedChoices(out.Options[g.ID]) == 0 {
			return nil, apperrors.RequiredOption(g.ID, g.Name)
		}
	}

	// Rule 3: choice quantities, walked in catalog order.
	for i := range item.OptionGroups {
		g := &item.OptionGroups[i]
		chosen := out.Options[g.ID]
		if len(chosen) == 0 {
			continue
		}
		if !g.AllowsMultipleChoices && selectedChoices(chosen) > 1 {
			return nil, apperrors.InvalidInput("option group \"" + g.Name + "\" allows only one choice")
		}
		for j := range g.Choices {
			ch := &g.Choices[j]
			qty, ok := chosen[ch.ID]
			if !ok {
				continue
			}
			if ch.AllowsQuantity {
				if qty < ch.MinQuantity || qty > ch.MaxQuantity {
					return nil, apperrors.OutOfBounds("choice "+ch.ID+" quantity", qty, ch.MinQuantity, ch.MaxQuantity)
				}
			} else {
				// A quantity-less choice is either selected or not.
				chosen[ch.ID] = 1
			}
		}
	}

	// Rule 4: ingredient overrides, walked in catalog order.
	for i := range item.Ingredients {
		ing := &item.Ingredients[i]
		amount, ok := out.Ingredients[ing.ID]
		if !ok {
			continue
		}
		if !ing.IsCustomizable {
			return nil, apperrors.InvalidInput("ingredient \"" + ing.Name + "\" is not customizable")
		}
		if amount < ing.MinAmount || amount > ing.MaxAmount {
			return nil, apperrors.OutOfBounds("ingredient "+ing.ID+" amount", amount, ing.MinAmount, ing.MaxAmount)
		}
	}

	// Rule 5: unknown ids are a hard error, never silently dropped. Keys are
	// sorted so the reported id does not depend on map iteration order.
	for _, id := range sortedKeys(out.Ingredients) {
		if _, ok := item.IngredientByID(id); !ok {
			return nil, apperrors.UnknownReference("ingredient", id)
		}
	}
	for _, groupID := range sortedGroupKeys(out.Options) {
		g, ok := item.GroupByID(groupID)
		if !ok {
			return nil, apperrors.UnknownReference("option group", groupID)
		}
		for _, choiceID := range sortedKeys(out.Options[groupID]) {
			if _, ok := g.ChoiceByID(choiceID); !ok {
				return nil, apperrors.UnknownReference("choice", choiceID)
			}
		}
	}

	return &ValidatedSelection{CustomizationSelection: out}, nil
}

func selectedChoices(m map[string]int64) int {
	return len(m)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGroupKeys(m map[string]map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
