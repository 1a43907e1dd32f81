package rules

// Env is the snapshot summary rule conditions are evaluated against.
// Field names are the identifiers available inside expr conditions.
type Env struct {
	Mode string

	Workers    int
	Army       int
	Production int
	Bases      int

	EnemyNearBase bool
	EnemyDistance float64 // distance of the closest enemy to the main base; -1 when none visible
	ScoutSent     bool

	Minerals int
	Vespene  int
	FoodUsed int
	FoodCap  int

	AttackThreshold   int
	ArmyMinWorkers    int
	ArmyMinProduction int
	ScoutMinWorkers   int
}

// SupplyLeft is the remaining food before the cap.
func (e Env) SupplyLeft() int { return e.FoodCap - e.FoodUsed }

// EnemyVisible reports whether any enemy unit was seen this tick.
func (e Env) EnemyVisible() bool { return e.EnemyDistance >= 0 }
