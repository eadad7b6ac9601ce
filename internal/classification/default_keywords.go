package classification

import "github.com/Veraticus/fti/internal/model"

// DefaultRules returns the built-in keyword table in priority order.
// Earlier rules win: "gas bill" is Transportation because "gas" is checked first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: model.CategoryFood,
			Keywords: []string{"restaurant", "cafe", "coffee", "food", "pizza", "burger", "lunch", "dinner", "breakfast", "grocery", "supermarket"},
		},
		{
			Category: model.CategoryTransportation,
			Keywords: []string{"uber", "lyft", "taxi", "gas", "fuel", "parking", "metro", "bus", "train", "airline"},
		},
		{
			Category: model.CategoryShopping,
			Keywords: []string{"amazon", "store", "shop", "mall", "retail", "clothing", "electronics"},
		},
		{
			Category: model.CategoryEntertainment,
			Keywords: []string{"movie", "cinema", "netflix", "spotify", "game", "concert", "theater"},
		},
		{
			Category: model.CategoryBills,
			Keywords: []string{"electric", "water", "internet", "phone", "bill", "utility", "rent", "mortgage"},
		},
		{
			Category: model.CategoryHealthcare,
			Keywords: []string{"hospital", "doctor", "pharmacy", "medical", "health", "clinic", "dental"},
		},
		{
			Category: model.CategoryEducation,
			Keywords: []string{"school", "university", "course", "book", "tuition", "education"},
		},
		{
			Category: model.CategoryTravel,
			Keywords: []string{"hotel", "airbnb", "flight", "booking", "travel", "vacation"},
		},
		{
			Category: model.CategoryIncome,
			Keywords: []string{"salary", "paycheck", "income", "payment received", "deposit"},
		},
		{
			Category: model.CategoryInvestment,
			Keywords: []string{"stock", "crypto", "investment", "dividend", "interest"},
		},
	}
}
