package economy

import (
	"log/slog"

	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
)

// Settings tunes the mineral/gas split.
type Settings struct {
	GasPerStructure int `mapstructure:"gas_per_structure"`
	MineralFloor    int `mapstructure:"mineral_floor"`
}

func DefaultSettings() Settings {
	return Settings{GasPerStructure: 3, MineralFloor: 8}
}

// Commander receives the orders the allocator issues.
type Commander interface {
	Submit(cmd model.Command)
}

// Assignment moves one worker from its current task to a new one.
type Assignment struct {
	Worker uint64
	From   Task
	To     Task
}

// Allocator rebalances workers between minerals and gas every tick. It only
// issues orders for workers whose task has to change.
type Allocator struct {
	profile  *faction.Profile
	settings Settings
}

func New(profile *faction.Profile, settings Settings) *Allocator {
	return &Allocator{profile: profile, settings: settings}
}

// Targets splits available workers into gas and mineral targets. When gas
// would take more workers than exist, minerals keep at least MineralFloor
// (or everyone, if fewer) and gas gets the remainder.
func (a *Allocator) Targets(available, gasStructures int) (idealGas, idealMinerals int) {
	idealGas = gasStructures * a.settings.GasPerStructure
	idealMinerals = available - idealGas
	if idealMinerals < 0 {
		idealMinerals = min(a.settings.MineralFloor, available)
		idealGas = available - idealMinerals
	}
	return idealGas, idealMinerals
}

// Plan computes the reassignments for one tick without issuing anything.
func (a *Allocator) Plan(snap *faction.ClassifiedSnapshot, wf *Workforce) []Assignment {
	gas := snap.ReadyGasStructures()
	idealGas, _ := a.Targets(wf.Available(), len(gas))
	delta := idealGas - len(wf.Harvesting)

	var out []Assignment
	idle := wf.Idle

	switch {
	case delta > 0 && len(gas) > 0:
		load := make(map[uint64]int, len(gas))
		for _, g := range gas {
			load[g.Tag] = g.AssignedHarvesters
		}
		pool := append(append([]*model.Unit{}, wf.Idle...), wf.Mining...)
		take := min(delta, len(pool))
		for _, w := range pool[:take] {
			g := leastLoaded(gas, load)
			load[g.Tag]++
			out = append(out, Assignment{
				Worker: w.Tag,
				From:   wf.Task(w.Tag),
				To:     Task{Kind: Harvesting, Target: g.Tag},
			})
		}
		idle = idle[min(take, len(idle)):]

	case delta < 0 && len(snap.Minerals) > 0:
		for _, w := range pickHarvesters(wf, snap, -delta) {
			m := snap.Minerals[model.Closest(snap.Minerals, w.Pos)]
			out = append(out, Assignment{
				Worker: w.Tag,
				From:   wf.Task(w.Tag),
				To:     Task{Kind: Mining, Target: m.Tag},
			})
		}
	}

	if len(snap.Minerals) > 0 {
		for _, w := range idle {
			m := snap.Minerals[model.Closest(snap.Minerals, w.Pos)]
			out = append(out, Assignment{
				Worker: w.Tag,
				From:   Task{Kind: Idle},
				To:     Task{Kind: Mining, Target: m.Tag},
			})
		}
	}
	return out
}

// Run plans the tick's reassignments and submits one gather order per move.
func (a *Allocator) Run(snap *faction.ClassifiedSnapshot, cmd Commander) []Assignment {
	wf := Partition(a.profile, snap)
	plan := a.Plan(snap, wf)
	gather := a.profile.GatherAbility()
	for _, as := range plan {
		cmd.Submit(model.UnitOrder(as.Worker, gather, as.To.Target))
	}

	if len(plan) > 0 {
		idealGas, idealMinerals := a.Targets(wf.Available(), len(snap.ReadyGasStructures()))
		slog.Debug("workers rebalanced",
			"moves", len(plan),
			"idle", len(wf.Idle),
			"mining", len(wf.Mining),
			"harvesting", len(wf.Harvesting),
			"idealGas", idealGas,
			"idealMinerals", idealMinerals,
		)
	}
	return plan
}

// leastLoaded returns the gas structure with the fewest assigned harvesters;
// ties go to the earliest in observation order.
func leastLoaded(gas []*model.Unit, load map[uint64]int) *model.Unit {
	best := gas[0]
	for _, g := range gas[1:] {
		if load[g.Tag] < load[best.Tag] {
			best = g
		}
	}
	return best
}

// pickHarvesters chooses n gas workers to release, taking from the most
// loaded structure each time. Workers walking gas back have no known target
// and are released last.
func pickHarvesters(wf *Workforce, snap *faction.ClassifiedSnapshot, n int) []*model.Unit {
	load := make(map[uint64]int)
	for _, g := range snap.GasStructures {
		load[g.Tag] = g.AssignedHarvesters
	}

	remaining := append([]*model.Unit{}, wf.Harvesting...)
	var out []*model.Unit
	for len(out) < n && len(remaining) > 0 {
		best := 0
		for i, w := range remaining {
			if harvesterLoad(wf, load, w) > harvesterLoad(wf, load, remaining[best]) {
				best = i
			}
		}
		w := remaining[best]
		if t := wf.Task(w.Tag).Target; t != 0 {
			load[t]--
		}
		out = append(out, w)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return out
}

func harvesterLoad(wf *Workforce, load map[uint64]int, w *model.Unit) int {
	t := wf.Task(w.Tag).Target
	if t == 0 {
		return -1
	}
	return load[t]
}
