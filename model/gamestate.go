package model

import "math"

// Alliance mirrors the engine's unit ownership relative to this player.
type Alliance string

const (
	Self    Alliance = "self"
	Ally    Alliance = "ally"
	Enemy   Alliance = "enemy"
	Neutral Alliance = "neutral"
)

// Point is a world position in map cells.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Observation is one tick of world state as streamed by the bridge.
// It is rebuilt from scratch every tick and never patched in place.
type Observation struct {
	GameLoop uint32 `json:"game_loop"`
	Player   Player `json:"player"`
	Units    []Unit `json:"units"`
}

type Player struct {
	Minerals int `json:"minerals"`
	Vespene  int `json:"vespene"`
	FoodUsed int `json:"food_used"`
	FoodCap  int `json:"food_cap"`
}

// Order is one entry of a unit's order queue. Either TargetTag or TargetPos
// is set for targeted abilities; both are empty for untargeted ones.
type Order struct {
	Ability   uint32  `json:"ability_id"`
	TargetTag uint64  `json:"target_unit_tag,omitempty"`
	TargetPos *Point  `json:"target_pos,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
}

type Unit struct {
	Tag      uint64   `json:"tag"`
	Type     uint32   `json:"unit_type"`
	Alliance Alliance `json:"alliance"`
	Pos      Point    `json:"pos"`
	Orders   []Order  `json:"orders,omitempty"`
	Buffs    []uint32 `json:"buff_ids,omitempty"`

	BuildProgress      float64 `json:"build_progress"`
	AssignedHarvesters int     `json:"assigned_harvesters,omitempty"`
	IdealHarvesters    int     `json:"ideal_harvesters,omitempty"`
	VespeneContents    int     `json:"vespene_contents,omitempty"`
	IsPowered          bool    `json:"is_powered,omitempty"`
}

// IsIdle reports whether the unit has an empty order queue.
func (u *Unit) IsIdle() bool { return len(u.Orders) == 0 }

// IsReady reports whether construction has finished.
func (u *Unit) IsReady() bool { return u.BuildProgress >= 1 }

// FirstOrder returns the head of the order queue, or nil when idle.
func (u *Unit) FirstOrder() *Order {
	if len(u.Orders) == 0 {
		return nil
	}
	return &u.Orders[0]
}

// HasBuff reports whether any of ids is among the unit's buffs.
func (u *Unit) HasBuff(ids ...uint32) bool {
	for _, b := range u.Buffs {
		for _, id := range ids {
			if b == id {
				return true
			}
		}
	}
	return false
}

// Carry buffs the engine attaches to workers returning cargo.
const (
	BuffCarryMinerals     uint32 = 271
	BuffCarryRichMinerals uint32 = 272
	BuffCarryGas          uint32 = 273
	BuffCarryGasProtoss   uint32 = 274
	BuffCarryGasZerg      uint32 = 275
)

// CarriesGas reports whether the worker is returning vespene.
func (u *Unit) CarriesGas() bool {
	return u.HasBuff(BuffCarryGas, BuffCarryGasProtoss, BuffCarryGasZerg)
}

// CarriesMinerals reports whether the worker is returning minerals.
func (u *Unit) CarriesMinerals() bool {
	return u.HasBuff(BuffCarryMinerals, BuffCarryRichMinerals)
}

// Closest returns the index of the unit in units nearest to p, or -1 if units is empty.
func Closest(units []*Unit, p Point) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, u := range units {
		if d := u.Pos.Dist(p); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Tags collects the tags of units in order.
func Tags(units []*Unit) []uint64 {
	tags := make([]uint64, len(units))
	for i, u := range units {
		tags[i] = u.Tag
	}
	return tags
}
