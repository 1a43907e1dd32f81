package faction

import "github.com/Deadjed/blank-bot/model"

// ClassifiedSnapshot groups one observation's units by alliance and category.
// Slices keep observation order and point into the observation, so a snapshot
// is only valid for the tick it was built in.
type ClassifiedSnapshot struct {
	Player model.Player

	Workers       []*model.Unit
	Army          []*model.Unit
	Production    []*model.Unit
	Tech          []*model.Unit
	Bases         []*model.Unit
	Defensive     []*model.Unit
	TownHalls     []*model.Unit
	GasStructures []*model.Unit
	Enemies       []*model.Unit
	Minerals      []*model.Unit
	Geysers       []*model.Unit
	Unclassified  []*model.Unit

	byTag         map[uint64]*model.Unit
	categoryByTag map[uint64]Category
}

// Snapshot classifies every unit of obs with the profile's table.
func (p *Profile) Snapshot(obs *model.Observation) *ClassifiedSnapshot {
	s := &ClassifiedSnapshot{
		Player:        obs.Player,
		byTag:         make(map[uint64]*model.Unit, len(obs.Units)),
		categoryByTag: make(map[uint64]Category, len(obs.Units)),
	}
	for i := range obs.Units {
		u := &obs.Units[i]
		cat := p.Classify(u.Type)
		s.byTag[u.Tag] = u
		s.categoryByTag[u.Tag] = cat

		switch u.Alliance {
		case model.Enemy:
			s.Enemies = append(s.Enemies, u)
		case model.Neutral:
			switch cat {
			case MineralNode:
				s.Minerals = append(s.Minerals, u)
			case VespeneNode:
				s.Geysers = append(s.Geysers, u)
			}
		case model.Self:
			switch cat {
			case Worker:
				s.Workers = append(s.Workers, u)
			case Army:
				s.Army = append(s.Army, u)
			case ProductionBuilding:
				s.Production = append(s.Production, u)
			case TechBuilding:
				s.Tech = append(s.Tech, u)
			case BaseStructure:
				s.Bases = append(s.Bases, u)
				if p.IsTownHall(u.Type) {
					s.TownHalls = append(s.TownHalls, u)
				}
				if p.IsGasStructure(u.Type) {
					s.GasStructures = append(s.GasStructures, u)
				}
			case DefensiveBuilding:
				s.Defensive = append(s.Defensive, u)
			default:
				s.Unclassified = append(s.Unclassified, u)
			}
		}
	}
	return s
}

// Unit looks a unit up by tag.
func (s *ClassifiedSnapshot) Unit(tag uint64) (*model.Unit, bool) {
	u, ok := s.byTag[tag]
	return u, ok
}

// CategoryOf returns the category of the unit with tag, Unclassified if unseen.
func (s *ClassifiedSnapshot) CategoryOf(tag uint64) Category {
	return s.categoryByTag[tag]
}

// ReadyGasStructures returns completed gas structures.
func (s *ClassifiedSnapshot) ReadyGasStructures() []*model.Unit {
	return Ready(s.GasStructures)
}

// ReadyProduction returns completed production structures.
func (s *ClassifiedSnapshot) ReadyProduction() []*model.Unit {
	return Ready(s.Production)
}

// Ready filters units down to those whose construction has finished.
func Ready(units []*model.Unit) []*model.Unit {
	var out []*model.Unit
	for _, u := range units {
		if u.IsReady() {
			out = append(out, u)
		}
	}
	return out
}

// OfType filters units by type id.
func OfType(units []*model.Unit, types ...uint32) []*model.Unit {
	var out []*model.Unit
	for _, u := range units {
		for _, t := range types {
			if u.Type == t {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
