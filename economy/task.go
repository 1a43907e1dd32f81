package economy

import (
	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
)

// TaskKind is what a worker is doing this tick.
type TaskKind uint8

const (
	Idle TaskKind = iota
	Mining
	Harvesting
	Other
)

func (k TaskKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Mining:
		return "mining"
	case Harvesting:
		return "harvesting"
	default:
		return "other"
	}
}

// Task is a worker's inferred job. Target is the resource node or gas
// structure being worked, or 0 when the worker is returning cargo.
type Task struct {
	Kind   TaskKind
	Target uint64
}

// Classify infers a worker's task from the head of its order queue and the
// category of the order's target. Workers walking cargo back are counted
// against the resource they carry.
func Classify(p *faction.Profile, snap *faction.ClassifiedSnapshot, w *model.Unit) Task {
	o := w.FirstOrder()
	if o == nil {
		return Task{Kind: Idle}
	}

	switch {
	case p.IsGather(o.Ability):
		if o.TargetTag == 0 {
			return Task{Kind: Other}
		}
		if snap.CategoryOf(o.TargetTag) == faction.MineralNode {
			return Task{Kind: Mining, Target: o.TargetTag}
		}
		if t, ok := snap.Unit(o.TargetTag); ok && p.IsGasStructure(t.Type) {
			return Task{Kind: Harvesting, Target: o.TargetTag}
		}
	case p.IsReturn(o.Ability):
		if w.CarriesGas() {
			return Task{Kind: Harvesting}
		}
		if w.CarriesMinerals() {
			return Task{Kind: Mining}
		}
	}
	return Task{Kind: Other}
}

// Workforce is the per-tick partition of workers by task.
type Workforce struct {
	Idle       []*model.Unit
	Mining     []*model.Unit
	Harvesting []*model.Unit
	Other      []*model.Unit
	tasks      map[uint64]Task
}

// Partition classifies every worker in the snapshot.
func Partition(p *faction.Profile, snap *faction.ClassifiedSnapshot) *Workforce {
	wf := &Workforce{tasks: make(map[uint64]Task, len(snap.Workers))}
	for _, w := range snap.Workers {
		task := Classify(p, snap, w)
		wf.tasks[w.Tag] = task
		switch task.Kind {
		case Idle:
			wf.Idle = append(wf.Idle, w)
		case Mining:
			wf.Mining = append(wf.Mining, w)
		case Harvesting:
			wf.Harvesting = append(wf.Harvesting, w)
		default:
			wf.Other = append(wf.Other, w)
		}
	}
	return wf
}

// Available is the number of workers the allocator may move.
func (wf *Workforce) Available() int {
	return len(wf.Idle) + len(wf.Mining) + len(wf.Harvesting)
}

// Task returns the inferred task for a worker tag.
func (wf *Workforce) Task(tag uint64) Task { return wf.tasks[tag] }
