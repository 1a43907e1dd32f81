package economy

import (
	"fmt"
	"testing"

	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scv         = 45
	refinery    = 20
	mineral     = 341
	gatherAny   = 3666
	returnAny   = 3667
	buildDepot  = 319
	mineralBase = 1000
	gasBase     = 2000
)

// world builds observations for a terran player with a fluent API.
type world struct {
	t   *testing.T
	obs model.Observation
	tag uint64
}

func newWorld(t *testing.T) *world { return &world{t: t, tag: 1} }

func (w *world) add(u model.Unit) uint64 {
	if u.Tag == 0 {
		u.Tag = w.tag
		w.tag++
	}
	if u.BuildProgress == 0 {
		u.BuildProgress = 1
	}
	w.obs.Units = append(w.obs.Units, u)
	return u.Tag
}

func (w *world) minerals(n int) []uint64 {
	var tags []uint64
	for i := 0; i < n; i++ {
		tags = append(tags, w.add(model.Unit{
			Tag: uint64(mineralBase + i), Type: mineral, Alliance: model.Neutral,
			Pos: model.Pt(float64(10+i*2), 10),
		}))
	}
	return tags
}

func (w *world) refineries(n int, progress float64) []uint64 {
	var tags []uint64
	for i := 0; i < n; i++ {
		tags = append(tags, w.add(model.Unit{
			Tag: uint64(gasBase + i), Type: refinery, Alliance: model.Self,
			Pos: model.Pt(float64(30+i*10), 30), BuildProgress: progress, IdealHarvesters: 3,
		}))
	}
	return tags
}

func (w *world) idle(n int) {
	for i := 0; i < n; i++ {
		w.add(model.Unit{Type: scv, Alliance: model.Self, Pos: model.Pt(float64(i), 0)})
	}
}

func (w *world) working(n int, target uint64) {
	for i := 0; i < n; i++ {
		w.add(model.Unit{
			Type: scv, Alliance: model.Self, Pos: model.Pt(float64(i), 5),
			Orders: []model.Order{{Ability: gatherAny, TargetTag: target}},
		})
		w.bump(target, 1)
	}
}

func (w *world) bump(tag uint64, by int) {
	for i := range w.obs.Units {
		if w.obs.Units[i].Tag == tag {
			w.obs.Units[i].AssignedHarvesters += by
		}
	}
}

// apply simulates the engine carrying out a plan.
func (w *world) apply(plan []Assignment) {
	for _, as := range plan {
		for i := range w.obs.Units {
			if w.obs.Units[i].Tag == as.Worker {
				w.obs.Units[i].Orders = []model.Order{{Ability: gatherAny, TargetTag: as.To.Target}}
			}
		}
		if as.From.Target != 0 {
			w.bump(as.From.Target, -1)
		}
		w.bump(as.To.Target, 1)
	}
}

func terran(t *testing.T) *faction.Profile {
	t.Helper()
	p, err := faction.Builtin("terran")
	require.NoError(t, err)
	return p
}

func counts(p *faction.Profile, obs *model.Observation) (idle, mining, harvesting int) {
	wf := Partition(p, p.Snapshot(obs))
	return len(wf.Idle), len(wf.Mining), len(wf.Harvesting)
}

func TestClassifyTask(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	m := w.minerals(1)[0]
	g := w.refineries(1, 1)[0]
	snap := p.Snapshot(&w.obs)

	tests := []struct {
		name   string
		worker model.Unit
		want   Task
	}{
		{"no orders", model.Unit{}, Task{Kind: Idle}},
		{"gathering minerals", model.Unit{Orders: []model.Order{{Ability: gatherAny, TargetTag: m}}}, Task{Kind: Mining, Target: m}},
		{"scv gather ability", model.Unit{Orders: []model.Order{{Ability: 295, TargetTag: m}}}, Task{Kind: Mining, Target: m}},
		{"gathering gas", model.Unit{Orders: []model.Order{{Ability: gatherAny, TargetTag: g}}}, Task{Kind: Harvesting, Target: g}},
		{"returning gas", model.Unit{Orders: []model.Order{{Ability: returnAny}}, Buffs: []uint32{model.BuffCarryGas}}, Task{Kind: Harvesting}},
		{"returning minerals", model.Unit{Orders: []model.Order{{Ability: returnAny}}, Buffs: []uint32{model.BuffCarryMinerals}}, Task{Kind: Mining}},
		{"returning nothing", model.Unit{Orders: []model.Order{{Ability: returnAny}}}, Task{Kind: Other}},
		{"building", model.Unit{Orders: []model.Order{{Ability: buildDepot, TargetPos: &model.Point{X: 5, Y: 5}}}}, Task{Kind: Other}},
		{"gather unseen target", model.Unit{Orders: []model.Order{{Ability: gatherAny, TargetTag: 987654}}}, Task{Kind: Other}},
		{"gather without target", model.Unit{Orders: []model.Order{{Ability: gatherAny}}}, Task{Kind: Other}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			worker := tc.worker
			assert.Equal(t, tc.want, Classify(p, snap, &worker))
		})
	}
}

func TestTargets(t *testing.T) {
	a := New(terran(t), DefaultSettings())

	tests := []struct {
		available, structures int
		wantGas, wantMinerals int
	}{
		{10, 2, 6, 4},
		{10, 0, 0, 10},
		{0, 0, 0, 0},
		{0, 2, 0, 0},
		{12, 4, 12, 0},
		{5, 2, 0, 5},
		{7, 3, 0, 7},
		{11, 4, 3, 8},
		{20, 4, 12, 8},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d workers %d structures", tc.available, tc.structures), func(t *testing.T) {
			gas, minerals := a.Targets(tc.available, tc.structures)
			assert.Equal(t, tc.wantGas, gas, "gas")
			assert.Equal(t, tc.wantMinerals, minerals, "minerals")
			assert.Equal(t, tc.available, gas+minerals)
		})
	}
}

func TestAllocatorFillsGasFromIdleWithoutMinerals(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	gas := w.refineries(2, 1)
	w.idle(10)

	batch := model.NewBatch()
	plan := New(p, DefaultSettings()).Run(p.Snapshot(&w.obs), batch)

	require.Len(t, plan, 6)
	assert.Equal(t, 6, batch.Len())
	perStructure := map[uint64]int{}
	for _, as := range plan {
		assert.Equal(t, Idle, as.From.Kind)
		assert.Equal(t, Harvesting, as.To.Kind)
		perStructure[as.To.Target]++
	}
	assert.Equal(t, map[uint64]int{gas[0]: 3, gas[1]: 3}, perStructure)

	w.apply(plan)
	idle, mining, harvesting := counts(p, &w.obs)
	assert.Equal(t, 4, idle)
	assert.Equal(t, 0, mining)
	assert.Equal(t, 6, harvesting)
}

func TestAllocatorGreedyPrefersLeastLoadedStructure(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	ms := w.minerals(4)
	gas := w.refineries(2, 1)
	w.working(2, gas[0])
	w.working(6, ms[0])
	w.idle(3)

	snap := p.Snapshot(&w.obs)
	plan := New(p, DefaultSettings()).Plan(snap, Partition(p, snap))

	// Ideal gas is 6 with two already on the first refinery. The empty one
	// fills to two before the first gets its third.
	var toGas []uint64
	for _, as := range plan {
		if as.To.Kind == Harvesting {
			toGas = append(toGas, as.To.Target)
		}
	}
	assert.Equal(t, []uint64{gas[1], gas[1], gas[0], gas[1]}, toGas)
}

func TestAllocatorPullsIdleBeforeMiners(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	ms := w.minerals(4)
	w.refineries(2, 1)
	w.idle(2)
	w.working(8, ms[0])

	plan := New(p, DefaultSettings()).Run(p.Snapshot(&w.obs), model.NewBatch())

	require.Len(t, plan, 6)
	assert.Equal(t, Idle, plan[0].From.Kind)
	assert.Equal(t, Idle, plan[1].From.Kind)
	for _, as := range plan[2:] {
		assert.Equal(t, Mining, as.From.Kind)
		assert.Equal(t, Harvesting, as.To.Kind)
	}
}

func TestAllocatorReleasesExcessHarvesters(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	ms := w.minerals(3)
	gas := w.refineries(1, 1)
	w.working(5, gas[0])
	w.working(5, ms[1])

	plan := New(p, DefaultSettings()).Run(p.Snapshot(&w.obs), model.NewBatch())

	require.Len(t, plan, 2)
	for _, as := range plan {
		assert.Equal(t, Harvesting, as.From.Kind)
		assert.Equal(t, Mining, as.To.Kind)
		// Workers sit at x in [0,4], y=5; the nearest field is the first one.
		assert.Equal(t, ms[0], as.To.Target)
	}
}

func TestAllocatorIgnoresUnfinishedGas(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	ms := w.minerals(2)
	w.refineries(2, 0.5)
	w.idle(4)

	plan := New(p, DefaultSettings()).Run(p.Snapshot(&w.obs), model.NewBatch())

	require.Len(t, plan, 4)
	for _, as := range plan {
		assert.Equal(t, Mining, as.To.Kind)
		assert.Contains(t, ms, as.To.Target)
	}
}

func TestAllocatorLeavesOtherWorkersAlone(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	w.minerals(2)
	w.refineries(1, 1)
	builder := w.add(model.Unit{
		Type: scv, Alliance: model.Self,
		Orders: []model.Order{{Ability: buildDepot, TargetPos: &model.Point{X: 3, Y: 3}}},
	})
	w.idle(4)

	plan := New(p, DefaultSettings()).Run(p.Snapshot(&w.obs), model.NewBatch())

	for _, as := range plan {
		assert.NotEqual(t, builder, as.Worker)
	}
}

func TestAllocatorNoWorkersIsNoop(t *testing.T) {
	p := terran(t)
	w := newWorld(t)
	w.minerals(4)
	w.refineries(2, 1)

	batch := model.NewBatch()
	plan := New(p, DefaultSettings()).Run(p.Snapshot(&w.obs), batch)
	assert.Empty(t, plan)
	assert.Zero(t, batch.Len())
}

func TestAllocatorConservesAndConverges(t *testing.T) {
	tests := []struct {
		name                        string
		minerals, gas, idle, miners int
		harvestersOnFirst           int
	}{
		{"fresh base", 8, 0, 12, 0, 0},
		{"first refinery", 8, 1, 0, 14, 0},
		{"two refineries from idle", 8, 2, 10, 6, 0},
		{"oversaturated gas", 8, 1, 2, 2, 6},
		{"gas exceeds workforce", 8, 4, 3, 5, 0},
		{"no minerals", 0, 2, 10, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := terran(t)
			a := New(p, DefaultSettings())
			w := newWorld(t)
			ms := w.minerals(tc.minerals)
			gas := w.refineries(tc.gas, 1)
			w.idle(tc.idle)
			if tc.miners > 0 {
				w.working(tc.miners, ms[0])
			}
			if tc.harvestersOnFirst > 0 {
				w.working(tc.harvestersOnFirst, gas[0])
			}

			i0, m0, h0 := counts(p, &w.obs)
			total := i0 + m0 + h0

			for round := 0; round < 3; round++ {
				plan := a.Run(p.Snapshot(&w.obs), model.NewBatch())
				w.apply(plan)
				i, m, h := counts(p, &w.obs)
				require.Equal(t, total, i+m+h, "round %d", round)
			}

			batch := model.NewBatch()
			assert.Empty(t, a.Run(p.Snapshot(&w.obs), batch), "fixed point reached")
			assert.Zero(t, batch.Len())

			_, _, h := counts(p, &w.obs)
			wantGas, _ := a.Targets(total, tc.gas)
			assert.Equal(t, wantGas, h)
		})
	}
}
