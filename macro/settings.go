package macro

// Settings are the numeric knobs of the macro controller. Field tags match
// the keys under the "macro" section of the config file.
type Settings struct {
	// Economy handler.
	MaxWorkers           int     `mapstructure:"max_workers"`
	GasMinWorkers        int     `mapstructure:"gas_min_workers"`
	GasPerBase           int     `mapstructure:"gas_per_base"`
	GasSearchRadius      float64 `mapstructure:"gas_search_radius"`
	SupplyMargin         int     `mapstructure:"supply_margin"`
	SupplyRadius         float64 `mapstructure:"supply_radius"`
	ProductionMinWorkers int     `mapstructure:"production_min_workers"`
	ProductionTarget     int     `mapstructure:"production_target"`
	ProductionRadius     float64 `mapstructure:"production_radius"`

	// Attack handler.
	AttackArmySize int `mapstructure:"attack_army_size"`

	// Transition cascade.
	AttackThreshold   int     `mapstructure:"attack_threshold"`
	ArmyMinWorkers    int     `mapstructure:"army_min_workers"`
	ArmyMinProduction int     `mapstructure:"army_min_production"`
	ScoutMinWorkers   int     `mapstructure:"scout_min_workers"`
	DefendRadius      float64 `mapstructure:"defend_radius"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxWorkers:           20,
		GasMinWorkers:        12,
		GasPerBase:           2,
		GasSearchRadius:      15,
		SupplyMargin:         5,
		SupplyRadius:         15,
		ProductionMinWorkers: 16,
		ProductionTarget:     2,
		ProductionRadius:     20,

		AttackArmySize: 15,

		AttackThreshold:   20,
		ArmyMinWorkers:    16,
		ArmyMinProduction: 2,
		ScoutMinWorkers:   10,
		DefendRadius:      30,
	}
}
