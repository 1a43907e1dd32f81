package placement

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/Deadjed/blank-bot/model"
)

const (
	// MaxAttempts bounds the number of oracle queries per search.
	MaxAttempts = 10
	// Shrink is applied to the radius after every rejected sample.
	Shrink = 0.9
)

// Oracle answers whether a structure type may be placed with its centre at p.
type Oracle interface {
	IsPlacementLegal(structure uint32, p model.Point) bool
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(structure uint32, p model.Point) bool

func (f OracleFunc) IsPlacementLegal(structure uint32, p model.Point) bool { return f(structure, p) }

// Site is a point validated for one structure type. It is meant to be used
// by a build command in the same tick and not kept.
type Site struct {
	Structure uint32
	Point     model.Point
}

// Search finds build sites by sampling random points around an anchor.
type Search struct {
	oracle Oracle
	rng    *rand.Rand
}

// NewSearch returns a search validating samples with oracle. rng must not be
// shared with other goroutines.
func NewSearch(oracle Oracle, rng *rand.Rand) *Search {
	return &Search{oracle: oracle, rng: rng}
}

// FindPlacement samples up to MaxAttempts points uniformly inside a disk
// around anchor, starting at maxRadius and shrinking it by Shrink after each
// rejection. It returns the first point the oracle accepts; ok is false when
// every attempt was rejected.
func (s *Search) FindPlacement(structure uint32, anchor model.Point, maxRadius float64) (site Site, ok bool) {
	radius := maxRadius
	for i := 0; i < MaxAttempts; i++ {
		p := s.sample(anchor, radius)
		if s.oracle.IsPlacementLegal(structure, p) {
			slog.Debug("placement found", "structure", structure, "attempt", i+1, "x", p.X, "y", p.Y)
			return Site{Structure: structure, Point: p}, true
		}
		radius *= Shrink
	}
	slog.Debug("no placement found", "structure", structure, "anchor", anchor, "radius", maxRadius)
	return Site{}, false
}

// sample draws a point uniformly from the disk; sqrt(u) keeps the radial
// density flat instead of clustering at the centre.
func (s *Search) sample(center model.Point, radius float64) model.Point {
	angle := s.rng.Float64() * 2 * math.Pi
	dist := radius * math.Sqrt(s.rng.Float64())
	return model.Point{
		X: center.X + math.Cos(angle)*dist,
		Y: center.Y + math.Sin(angle)*dist,
	}
}
