package placement

import (
	"math"

	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/model"
)

type cell struct{ x, y int }

// GridOracle decides placement legality locally from the match's placement
// grid, the footprints of units already on the map and, for factions that use
// one, the power field. Call Refresh once per tick before querying.
type GridOracle struct {
	profile   *faction.Profile
	info      model.GameInfo
	occupied  map[cell]bool
	providers []model.Point
}

func NewGridOracle(profile *faction.Profile, info model.GameInfo) *GridOracle {
	return &GridOracle{
		profile:  profile,
		info:     info,
		occupied: make(map[cell]bool),
	}
}

// Refresh rebuilds occupancy and power providers from the current units.
func (o *GridOracle) Refresh(units []model.Unit) {
	clear(o.occupied)
	o.providers = o.providers[:0]

	for i := range units {
		u := &units[i]
		cat := o.profile.Classify(u.Type)
		if !cat.IsStructure() && !cat.IsResource() {
			continue
		}
		size, ok := o.profile.Footprint(u.Type)
		if !ok {
			size = [2]int{1, 1}
		}
		forEachCell(u.Pos, size, func(c cell) bool {
			o.occupied[c] = true
			return true
		})

		if p := o.profile.Power; p != nil && u.Alliance == model.Self && u.Type == p.Provider && u.IsReady() {
			o.providers = append(o.providers, u.Pos)
		}
	}
}

// IsPlacementLegal reports whether structure fits with its centre at p.
func (o *GridOracle) IsPlacementLegal(structure uint32, p model.Point) bool {
	size, ok := o.profile.Footprint(structure)
	if !ok {
		return false
	}
	if o.profile.NeedsPower(structure) && !o.powered(p) {
		return false
	}

	grid := o.info.PlacementGrid
	bounded := o.info.PlayableMax != (model.Point{})
	return forEachCell(p, size, func(c cell) bool {
		if o.occupied[c] {
			return false
		}
		if grid != nil {
			return grid.Buildable(c.x, c.y)
		}
		if bounded {
			return o.info.InPlayable(model.Point{X: float64(c.x), Y: float64(c.y)})
		}
		return true
	})
}

func (o *GridOracle) powered(p model.Point) bool {
	for _, src := range o.providers {
		if src.Dist(p) <= o.profile.Power.Radius {
			return true
		}
	}
	return false
}

// PowerProviders returns the completed power providers seen by the last Refresh.
func (o *GridOracle) PowerProviders() []model.Point { return o.providers }

// forEachCell visits the cells covered by a w×h footprint centred on p and
// stops at the first cell fn rejects. Odd sizes centre on a cell middle, even
// sizes on a cell corner, matching how the engine snaps structures.
func forEachCell(p model.Point, size [2]int, fn func(cell) bool) bool {
	x0 := int(math.Floor(p.X - float64(size[0])/2 + 0.5))
	y0 := int(math.Floor(p.Y - float64(size[1])/2 + 0.5))
	for dy := 0; dy < size[1]; dy++ {
		for dx := 0; dx < size[0]; dx++ {
			if !fn(cell{x0 + dx, y0 + dy}) {
				return false
			}
		}
	}
	return true
}
