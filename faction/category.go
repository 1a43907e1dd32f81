package faction

import "fmt"

// Category is the semantic bucket a unit type falls into.
type Category uint8

const (
	Unclassified Category = iota
	Worker
	Army
	ProductionBuilding
	TechBuilding
	BaseStructure
	DefensiveBuilding
	MineralNode
	VespeneNode
)

var categoryNames = map[Category]string{
	Unclassified:       "unclassified",
	Worker:             "worker",
	Army:               "army",
	ProductionBuilding: "production",
	TechBuilding:       "tech",
	BaseStructure:      "base",
	DefensiveBuilding:  "defensive",
	MineralNode:        "mineral",
	VespeneNode:        "vespene",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// IsResource reports whether c is one of the neutral resource node categories.
func (c Category) IsResource() bool { return c == MineralNode || c == VespeneNode }

// IsStructure reports whether c is a building category.
func (c Category) IsStructure() bool {
	switch c {
	case ProductionBuilding, TechBuilding, BaseStructure, DefensiveBuilding:
		return true
	}
	return false
}

// ParseCategory maps a table key such as "production" back to its Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s && c != Unclassified {
			return c, nil
		}
	}
	return Unclassified, fmt.Errorf("unknown category %q", s)
}
