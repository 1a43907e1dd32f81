package macro

import (
	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
)

// Budget is the spendable stock for one tick. Every order placed during the
// tick is deducted so two handlers cannot both spend the same minerals.
type Budget struct {
	Minerals int
	Vespene  int
	Food     int
}

func NewBudget(p model.Player) *Budget {
	return &Budget{
		Minerals: p.Minerals,
		Vespene:  p.Vespene,
		Food:     p.FoodCap - p.FoodUsed,
	}
}

func (b *Budget) CanAfford(c faction.Cost) bool {
	return b.Minerals >= c.Minerals && b.Vespene >= c.Vespene && b.Food >= c.Food
}

// Spend deducts c and reports true, or leaves the budget untouched and
// reports false when c is not affordable.
func (b *Budget) Spend(c faction.Cost) bool {
	if !b.CanAfford(c) {
		return false
	}
	b.Minerals -= c.Minerals
	b.Vespene -= c.Vespene
	b.Food -= c.Food
	return true
}
