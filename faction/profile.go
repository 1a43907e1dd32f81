package faction

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var builtin embed.FS

const neutralFile = "neutral.yaml"

// ErrUnknownFaction is returned when no profile matches the requested name.
var ErrUnknownFaction = errors.New("unknown faction")

type UnitType struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name"`
}

// Cost is the resource price of a capability.
type Cost struct {
	Minerals int `yaml:"minerals"`
	Vespene  int `yaml:"vespene"`
	Food     int `yaml:"food"`
}

// Capability maps one logical macro action to the faction's ability and unit ids.
// Train capabilities use Unit and Producers; build capabilities use Structure
// (or Structures when several types count, e.g. rich gas variants).
type Capability struct {
	Ability    uint32   `yaml:"ability"`
	Unit       uint32   `yaml:"unit,omitempty"`
	Producers  []uint32 `yaml:"producers,omitempty"`
	Structure  uint32   `yaml:"structure,omitempty"`
	Structures []uint32 `yaml:"structures,omitempty"`
	Cost       `yaml:",inline"`
}

// Types returns every structure type the capability produces.
func (c Capability) Types() []uint32 {
	if c.Structure != 0 {
		return append([]uint32{c.Structure}, c.Structures...)
	}
	return c.Structures
}

type Abilities struct {
	Move            uint32     `yaml:"move"`
	Attack          uint32     `yaml:"attack"`
	Gather          []uint32   `yaml:"gather"`
	Return          []uint32   `yaml:"return"`
	TrainWorker     Capability `yaml:"train_worker"`
	TrainArmy       Capability `yaml:"train_army"`
	BuildSupply     Capability `yaml:"build_supply"`
	BuildGas        Capability `yaml:"build_gas"`
	BuildProduction Capability `yaml:"build_production"`
}

type Footprint struct {
	IDs  []uint32 `yaml:"ids"`
	Size [2]int   `yaml:"size"`
}

// Power describes a pylon-style power field some structures must be placed in.
type Power struct {
	Provider uint32   `yaml:"provider"`
	Radius   float64  `yaml:"radius"`
	Requires []uint32 `yaml:"requires"`
}

// Profile is everything faction-specific the macro core needs: the category
// table, the capability mapping, costs and structure footprints.
type Profile struct {
	Name       string                `yaml:"name"`
	Race       string                `yaml:"race"`
	SupplyMax  int                   `yaml:"supply_max"`
	Categories map[string][]UnitType `yaml:"categories"`
	Abilities  Abilities             `yaml:"abilities"`
	Footprints []Footprint           `yaml:"footprints"`
	Power      *Power                `yaml:"power,omitempty"`

	table      *Table
	footprints map[uint32][2]int
	gas        map[uint32]bool
	townHalls  map[uint32]bool
	gather     map[uint32]bool
	ret        map[uint32]bool
	powered    map[uint32]bool
}

// Builtin returns the embedded profile for name (e.g. "terran", "protoss").
func Builtin(name string) (*Profile, error) {
	data, err := builtin.ReadFile("profiles/" + strings.ToLower(name) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFaction, name)
	}
	return Parse(data)
}

// BuiltinNames lists the embedded faction profiles.
func BuiltinNames() []string {
	entries, _ := builtin.ReadDir("profiles")
	var names []string
	for _, e := range entries {
		if e.Name() == neutralFile {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load returns the profile for name, preferring <dir>/<name>.yaml when dir is
// set and the file exists, and falling back to the embedded profiles.
func Load(dir, name string) (*Profile, error) {
	if dir != "" {
		path := filepath.Join(dir, strings.ToLower(name)+".yaml")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			p, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", path, err)
			}
			return p, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read profile: %w", err)
		}
	}
	return Builtin(name)
}

// Parse decodes a faction profile and merges in the shared neutral resource tables.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	neutralData, err := builtin.ReadFile("profiles/" + neutralFile)
	if err != nil {
		return nil, fmt.Errorf("read neutral table: %w", err)
	}
	var neutral Profile
	if err := yaml.Unmarshal(neutralData, &neutral); err != nil {
		return nil, fmt.Errorf("decode neutral table: %w", err)
	}
	if p.Categories == nil {
		p.Categories = make(map[string][]UnitType)
	}
	for cat, types := range neutral.Categories {
		if _, ok := p.Categories[cat]; !ok {
			p.Categories[cat] = types
		}
	}
	p.Footprints = append(p.Footprints, neutral.Footprints...)

	if err := p.index(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return &p, nil
}

// index builds the lookup tables and validates cross references.
func (p *Profile) index() error {
	if p.Name == "" {
		return errors.New("missing name")
	}
	if p.SupplyMax <= 0 {
		p.SupplyMax = 200
	}

	table, err := NewTable(p.Categories)
	if err != nil {
		return err
	}
	p.table = table

	p.footprints = make(map[uint32][2]int)
	for _, fp := range p.Footprints {
		if fp.Size[0] <= 0 || fp.Size[1] <= 0 {
			return fmt.Errorf("footprint %v: size must be positive", fp.IDs)
		}
		for _, id := range fp.IDs {
			p.footprints[id] = fp.Size
		}
	}

	a := p.Abilities
	if a.Move == 0 || a.Attack == 0 || len(a.Gather) == 0 {
		return errors.New("move, attack and gather abilities are required")
	}

	checks := []struct {
		name  string
		types []uint32
		want  Category
	}{
		{"train_worker.unit", []uint32{a.TrainWorker.Unit}, Worker},
		{"train_worker.producers", a.TrainWorker.Producers, BaseStructure},
		{"train_army.unit", []uint32{a.TrainArmy.Unit}, Army},
		{"train_army.producers", a.TrainArmy.Producers, ProductionBuilding},
		{"build_supply.structure", a.BuildSupply.Types(), BaseStructure},
		{"build_gas.structures", a.BuildGas.Types(), BaseStructure},
		{"build_production.structure", a.BuildProduction.Types(), ProductionBuilding},
	}
	for _, c := range checks {
		if len(c.types) == 0 {
			return fmt.Errorf("%s: no types", c.name)
		}
		for _, id := range c.types {
			if got := table.Classify(id); got != c.want {
				return fmt.Errorf("%s: type %d is %s, want %s", c.name, id, got, c.want)
			}
		}
	}
	for _, id := range append(a.BuildSupply.Types(), a.BuildProduction.Types()...) {
		if _, ok := p.footprints[id]; !ok {
			return fmt.Errorf("structure %d has no footprint", id)
		}
	}

	p.gas = setOf(a.BuildGas.Types())
	p.townHalls = setOf(a.TrainWorker.Producers)
	p.gather = setOf(a.Gather)
	p.ret = setOf(a.Return)
	p.powered = make(map[uint32]bool)
	if p.Power != nil {
		if table.Classify(p.Power.Provider) == Unclassified {
			return fmt.Errorf("power provider %d is not classified", p.Power.Provider)
		}
		if p.Power.Radius <= 0 {
			return errors.New("power radius must be positive")
		}
		p.powered = setOf(p.Power.Requires)
	}
	return nil
}

func setOf(ids []uint32) map[uint32]bool {
	m := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// Classify returns the category of a unit type; unknown types are Unclassified.
func (p *Profile) Classify(typeID uint32) Category { return p.table.Classify(typeID) }

// Table exposes the profile's category table.
func (p *Profile) Table() *Table { return p.table }

// TypeName returns the configured display name of typeID, or its number.
func (p *Profile) TypeName(typeID uint32) string { return p.table.Name(typeID) }

// Footprint returns the cell size of a structure or resource node.
func (p *Profile) Footprint(typeID uint32) ([2]int, bool) {
	fp, ok := p.footprints[typeID]
	return fp, ok
}

func (p *Profile) IsGasStructure(typeID uint32) bool { return p.gas[typeID] }
func (p *Profile) IsTownHall(typeID uint32) bool     { return p.townHalls[typeID] }
func (p *Profile) IsGather(ability uint32) bool      { return p.gather[ability] }
func (p *Profile) IsReturn(ability uint32) bool      { return p.ret[ability] }

// NeedsPower reports whether typeID must be placed inside a power field.
func (p *Profile) NeedsPower(typeID uint32) bool { return p.powered[typeID] }

// GatherAbility is the ability used when ordering workers onto a resource.
func (p *Profile) GatherAbility() uint32 { return p.Abilities.Gather[0] }
