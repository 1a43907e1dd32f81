package macro

import (
	"log/slog"
	"math"

	"github.com/Deadjed/blank-bot/economy"
	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
)

func (m *Machine) handleInit(t *tick) {
	slog.Info("macro controller started",
		"faction", m.profile.Name,
		"workers", len(t.snap.Workers),
		"bases", len(t.snap.TownHalls),
	)
}

func (m *Machine) handleEconomy(t *tick) {
	m.trainWorker(t)
	m.buildGas(t)
	m.buildSupply(t)
	m.buildProduction(t)
	m.gatherIdle(t)
}

// trainWorker queues one worker at the first idle, completed town hall.
func (m *Machine) trainWorker(t *tick) {
	if len(t.snap.Workers) >= m.settings.MaxWorkers {
		return
	}
	c := m.profile.Abilities.TrainWorker
	for _, th := range t.snap.TownHalls {
		if !th.IsReady() || !th.IsIdle() || t.cmd.Issued(th.Tag) {
			continue
		}
		if !t.budget.Spend(c.Cost) {
			return
		}
		t.cmd.Submit(model.SelfOrder(th.Tag, c.Ability))
		return
	}
}

// buildGas sends a worker to put a gas structure on a free geyser near one of
// our town halls, one at a time, up to GasPerBase per town hall.
func (m *Machine) buildGas(t *tick) {
	if len(t.snap.Workers) < m.settings.GasMinWorkers {
		return
	}
	c := m.profile.Abilities.BuildGas
	if pendingOrders(t.snap.Workers, c.Ability) > 0 {
		return
	}
	if len(t.snap.GasStructures) >= len(t.snap.TownHalls)*m.settings.GasPerBase {
		return
	}
	if !t.budget.CanAfford(c.Cost) {
		return
	}
	geyser := m.freeGeyser(t.snap)
	if geyser == nil {
		return
	}
	builder := m.findBuilder(t)
	if builder == nil {
		return
	}
	t.budget.Spend(c.Cost)
	t.cmd.Submit(model.UnitOrder(builder.Tag, c.Ability, geyser.Tag))
	slog.Debug("gas structure ordered", "builder", builder.Tag, "geyser", geyser.Tag)
}

// freeGeyser returns the geyser closest to the main base that sits near a
// town hall and has no gas structure on it yet.
func (m *Machine) freeGeyser(snap *faction.ClassifiedSnapshot) *model.Unit {
	var (
		best     *model.Unit
		bestDist = math.Inf(1)
	)
	for _, g := range snap.Geysers {
		if !nearAny(g.Pos, snap.TownHalls, m.settings.GasSearchRadius) {
			continue
		}
		if nearAny(g.Pos, snap.GasStructures, 1) {
			continue
		}
		if d := g.Pos.Dist(m.mainBase); d < bestDist {
			best, bestDist = g, d
		}
	}
	return best
}

// buildSupply places a supply structure when free supply drops to the margin.
func (m *Machine) buildSupply(t *tick) {
	p := t.snap.Player
	if p.FoodCap >= m.profile.SupplyMax || p.FoodUsed < p.FoodCap-m.settings.SupplyMargin {
		return
	}
	c := m.profile.Abilities.BuildSupply
	if pendingOrders(t.snap.Workers, c.Ability) > 0 || underConstruction(t.snap.Bases, c.Types()) > 0 {
		return
	}
	m.build(t, c, m.mainBase, m.settings.SupplyRadius)
}

// buildProduction grows the production building count to ProductionTarget.
func (m *Machine) buildProduction(t *tick) {
	if len(t.snap.Workers) < m.settings.ProductionMinWorkers {
		return
	}
	c := m.profile.Abilities.BuildProduction
	have := len(faction.OfType(t.snap.Production, c.Types()...)) + pendingOrders(t.snap.Workers, c.Ability)
	if have >= m.settings.ProductionTarget {
		return
	}
	anchor, radius, ok := m.productionAnchor(t.snap)
	if !ok {
		slog.Debug("no powered anchor for production")
		return
	}
	m.build(t, c, anchor, radius)
}

// productionAnchor is the main base, or for power factions the completed
// power provider nearest to it with the radius capped to the power field.
func (m *Machine) productionAnchor(snap *faction.ClassifiedSnapshot) (model.Point, float64, bool) {
	pw := m.profile.Power
	if pw == nil || !m.profile.NeedsPower(m.profile.Abilities.BuildProduction.Structure) {
		return m.mainBase, m.settings.ProductionRadius, true
	}
	providers := faction.Ready(faction.OfType(snap.Bases, pw.Provider))
	i := model.Closest(providers, m.mainBase)
	if i < 0 {
		return model.Point{}, 0, false
	}
	return providers[i].Pos, math.Min(m.settings.ProductionRadius, pw.Radius), true
}

// build orders a worker to construct c's structure near anchor.
func (m *Machine) build(t *tick, c faction.Capability, anchor model.Point, radius float64) {
	if !t.budget.CanAfford(c.Cost) {
		return
	}
	builder := m.findBuilder(t)
	if builder == nil {
		slog.Debug("no builder available", "ability", c.Ability)
		return
	}
	site, ok := m.placer.FindPlacement(c.Structure, anchor, radius)
	if !ok {
		slog.Debug("no placement found", "structure", m.profile.TypeName(c.Structure))
		return
	}
	t.budget.Spend(c.Cost)
	t.cmd.Submit(model.PointOrder([]uint64{builder.Tag}, c.Ability, site.Point))
	slog.Info("structure ordered",
		"structure", m.profile.TypeName(c.Structure),
		"builder", builder.Tag,
		"x", site.Point.X,
		"y", site.Point.Y,
	)
}

// gatherIdle sends every idle worker nobody else commanded to its nearest mineral.
func (m *Machine) gatherIdle(t *tick) {
	gather := m.profile.GatherAbility()
	for _, w := range t.snap.Workers {
		if !w.IsIdle() || t.cmd.Issued(w.Tag) {
			continue
		}
		i := model.Closest(t.snap.Minerals, w.Pos)
		if i < 0 {
			return
		}
		t.cmd.Submit(model.UnitOrder(w.Tag, gather, t.snap.Minerals[i].Tag))
	}
}

// findBuilder prefers an idle worker and otherwise takes a mineral gatherer.
// Workers already commanded this tick are never chosen.
func (m *Machine) findBuilder(t *tick) *model.Unit {
	for _, w := range t.snap.Workers {
		if w.IsIdle() && !t.cmd.Issued(w.Tag) {
			return w
		}
	}
	for _, w := range t.snap.Workers {
		if t.cmd.Issued(w.Tag) {
			continue
		}
		if economy.Classify(m.profile, t.snap, w).Kind == economy.Mining {
			return w
		}
	}
	return nil
}

// handleArmy queues army units at every idle, completed producer we can pay for.
func (m *Machine) handleArmy(t *tick) {
	c := m.profile.Abilities.TrainArmy
	producers := faction.Ready(faction.OfType(t.snap.Production, c.Producers...))
	for _, p := range producers {
		if !p.IsIdle() || t.cmd.Issued(p.Tag) {
			continue
		}
		if !t.budget.Spend(c.Cost) {
			return
		}
		t.cmd.Submit(model.SelfOrder(p.Tag, c.Ability))
	}
}

// handleAttack sends the whole army at the enemy base once it is large enough
// and redirects it onto the first visible enemy.
func (m *Machine) handleAttack(t *tick) {
	army := model.Tags(t.snap.Army)
	if len(army) == 0 {
		return
	}
	attack := m.profile.Abilities.Attack
	if len(army) >= m.settings.AttackArmySize && m.located {
		t.cmd.Submit(model.PointOrder(army, attack, m.enemyBase))
	}
	if len(t.snap.Enemies) > 0 {
		t.cmd.Submit(model.Command{Units: army, Ability: attack, TargetTag: t.snap.Enemies[0].Tag})
	}
}

// handleDefend pulls the army back to the main base.
func (m *Machine) handleDefend(t *tick) {
	army := model.Tags(t.snap.Army)
	if len(army) == 0 || !m.located {
		return
	}
	t.cmd.Submit(model.PointOrder(army, m.profile.Abilities.Attack, m.mainBase))
}

// handleScout sends one worker to the enemy base, once per game.
func (m *Machine) handleScout(t *tick) {
	if m.scoutSent || len(t.snap.Workers) <= m.settings.ScoutMinWorkers || !m.located {
		return
	}
	for i := len(t.snap.Workers) - 1; i >= 0; i-- {
		w := t.snap.Workers[i]
		if t.cmd.Issued(w.Tag) {
			continue
		}
		t.cmd.Submit(model.PointOrder([]uint64{w.Tag}, m.profile.Abilities.Move, m.enemyBase))
		m.scoutSent = true
		slog.Info("scout dispatched", "worker", w.Tag, "x", m.enemyBase.X, "y", m.enemyBase.Y)
		return
	}
}

// pendingOrders counts units with ability anywhere in their order queue.
func pendingOrders(units []*model.Unit, ability uint32) int {
	n := 0
	for _, u := range units {
		for _, o := range u.Orders {
			if o.Ability == ability {
				n++
				break
			}
		}
	}
	return n
}

func underConstruction(units []*model.Unit, types []uint32) int {
	n := 0
	for _, u := range faction.OfType(units, types...) {
		if !u.IsReady() {
			n++
		}
	}
	return n
}

func nearAny(p model.Point, units []*model.Unit, radius float64) bool {
	for _, u := range units {
		if u.Pos.Dist(p) <= radius {
			return true
		}
	}
	return false
}
