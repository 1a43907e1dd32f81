package model

// Command is a single fire-and-forget order for one or more units.
// TargetPos and TargetTag are mutually exclusive; both empty means untargeted.
type Command struct {
	Units     []uint64
	Ability   uint32
	TargetPos *Point
	TargetTag uint64
	Queue     bool
}

// Batch accumulates the commands issued during one tick. It also remembers
// which units already received an order so later steps can leave them alone.
type Batch struct {
	cmds   []Command
	issued map[uint64]bool
}

func NewBatch() *Batch {
	return &Batch{issued: make(map[uint64]bool)}
}

// Submit records cmd. Commands with no units are dropped.
func (b *Batch) Submit(cmd Command) {
	if len(cmd.Units) == 0 {
		return
	}
	b.cmds = append(b.cmds, cmd)
	for _, tag := range cmd.Units {
		b.issued[tag] = true
	}
}

// Issued reports whether tag has already been commanded this tick.
func (b *Batch) Issued(tag uint64) bool { return b.issued[tag] }

// Commands returns the recorded commands in submission order.
func (b *Batch) Commands() []Command { return b.cmds }

func (b *Batch) Len() int { return len(b.cmds) }

// UnitOrder is shorthand for a command targeting another unit.
func UnitOrder(unit uint64, ability uint32, target uint64) Command {
	return Command{Units: []uint64{unit}, Ability: ability, TargetTag: target}
}

// PointOrder is shorthand for a command targeting a world point.
func PointOrder(units []uint64, ability uint32, p Point) Command {
	return Command{Units: units, Ability: ability, TargetPos: &p}
}

// SelfOrder is shorthand for an untargeted command such as training.
func SelfOrder(unit uint64, ability uint32) Command {
	return Command{Units: []uint64{unit}, Ability: ability}
}
