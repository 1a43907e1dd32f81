package macro

import (
	"log/slog"
	"math"

	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
	"github.com/Deadjed/blank-bot/placement"
	"github.com/Deadjed/blank-bot/rules"
)

// Placer finds build sites for structures.
type Placer interface {
	FindPlacement(structure uint32, anchor model.Point, maxRadius float64) (placement.Site, bool)
}

// Commander receives the orders a handler issues and remembers which units
// were already commanded this tick.
type Commander interface {
	Submit(cmd model.Command)
	Issued(tag uint64) bool
}

// TransitionFunc is called whenever the machine changes mode.
type TransitionFunc func(from, to Mode, rule string)

// Machine is the macro state machine. Each Step runs the handler of the
// current mode, then asks the transition cascade for the next mode.
type Machine struct {
	profile  *faction.Profile
	settings Settings
	cascade  *rules.Engine
	placer   Placer

	mode      Mode
	scoutSent bool

	located   bool
	mainBase  model.Point
	enemyBase model.Point

	OnTransition TransitionFunc
}

func New(profile *faction.Profile, settings Settings, cascade *rules.Engine, placer Placer) *Machine {
	return &Machine{
		profile:  profile,
		settings: settings,
		cascade:  cascade,
		placer:   placer,
		mode:     Init,
	}
}

// SetBases records the main base and the presumed enemy base. Until it is
// called nothing counts as near the base and attacks have no destination.
func (m *Machine) SetBases(main, enemy model.Point) {
	m.mainBase = main
	m.enemyBase = enemy
	m.located = true
}

func (m *Machine) Mode() Mode                { return m.mode }
func (m *Machine) ScoutSent() bool           { return m.scoutSent }
func (m *Machine) MainBase() model.Point     { return m.mainBase }
func (m *Machine) EnemyBase() model.Point    { return m.enemyBase }
func (m *Machine) Profile() *faction.Profile { return m.profile }

// tick carries the per-step state shared by the handlers.
type tick struct {
	snap   *faction.ClassifiedSnapshot
	cmd    Commander
	budget *Budget
}

// Step runs one macro iteration against snap and returns the mode the
// machine is in afterwards.
func (m *Machine) Step(snap *faction.ClassifiedSnapshot, cmd Commander) Mode {
	t := &tick{snap: snap, cmd: cmd, budget: NewBudget(snap.Player)}

	switch m.mode {
	case Init:
		m.handleInit(t)
	case Economy:
		m.handleEconomy(t)
	case Army:
		m.handleArmy(t)
	case Attack:
		m.handleAttack(t)
	case Defend:
		m.handleDefend(t)
	case Scout:
		m.handleScout(t)
	}

	next, rule := m.DetermineNextState(snap)
	if next != m.mode {
		slog.Info("mode transition", "from", m.mode, "to", next, "rule", rule)
		if m.OnTransition != nil {
			m.OnTransition(m.mode, next, rule)
		}
		m.mode = next
	}
	return m.mode
}

// DetermineNextState evaluates the transition cascade for snap without
// changing the machine.
func (m *Machine) DetermineNextState(snap *faction.ClassifiedSnapshot) (Mode, string) {
	d := m.cascade.Evaluate(m.Env(snap))
	next, err := ParseMode(d.Next)
	if err != nil {
		slog.Warn("cascade chose unknown mode", "rule", d.Rule, "next", d.Next)
		return Economy, d.Rule
	}
	return next, d.Rule
}

// Env summarises snap into the variables transition conditions see.
func (m *Machine) Env(snap *faction.ClassifiedSnapshot) rules.Env {
	env := rules.Env{
		Mode:          m.mode.String(),
		Workers:       len(snap.Workers),
		Army:          len(snap.Army),
		Production:    len(snap.ReadyProduction()),
		Bases:         len(snap.TownHalls),
		EnemyDistance: -1,
		ScoutSent:     m.scoutSent,

		Minerals: snap.Player.Minerals,
		Vespene:  snap.Player.Vespene,
		FoodUsed: snap.Player.FoodUsed,
		FoodCap:  snap.Player.FoodCap,

		AttackThreshold:   m.settings.AttackThreshold,
		ArmyMinWorkers:    m.settings.ArmyMinWorkers,
		ArmyMinProduction: m.settings.ArmyMinProduction,
		ScoutMinWorkers:   m.settings.ScoutMinWorkers,
	}

	if m.located && len(snap.Enemies) > 0 {
		nearest := math.Inf(1)
		for _, e := range snap.Enemies {
			nearest = math.Min(nearest, e.Pos.Dist(m.mainBase))
		}
		env.EnemyDistance = nearest
		env.EnemyNearBase = nearest < m.settings.DefendRadius
	}
	return env
}
