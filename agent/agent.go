package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Deadjed/blank-bot/economy"
	"github.com/Deadjed/blank-bot/faction"
	"github.com/Deadjed/blank-bot/ipc"
	"github.com/Deadjed/blank-bot/macro"
	"github.com/Deadjed/blank-bot/model"
	"github.com/Deadjed/blank-bot/placement"
	"github.com/Deadjed/blank-bot/rules"
	"github.com/google/uuid"
)

// maxMapSize bounds the assumed playable area when the bridge sends no game info.
const maxMapSize = 256

// Options carries the configuration every session starts from.
type Options struct {
	DefaultFaction string
	ProfilesDir    string
	Seed           int64 // 0 seeds from the clock
	Macro          macro.Settings
	Allocator      economy.Settings
	RuleOverrides  map[string]string
}

// Agent owns the decision-making for a single player session.
type Agent struct {
	Conn    *ipc.Connection
	Player  string
	Race    string
	Session string

	opts    Options
	metrics *Metrics
	log     *slog.Logger

	profile   *faction.Profile
	info      model.GameInfo
	oracle    *placement.GridOracle
	allocator *economy.Allocator
	machine   *macro.Machine
	located   bool
	opened    bool

	lastLoop uint32
	last     *faction.ClassifiedSnapshot
}

func New(conn *ipc.Connection, opts Options, metrics *Metrics) *Agent {
	id := uuid.NewString()
	return &Agent{
		Conn:    conn,
		Session: id,
		opts:    opts,
		metrics: metrics,
		log:     slog.With("session", id),
	}
}

// Register installs the session's message handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeObservation, a.HandleObservation)
	a.Conn.RegisterHandler(ipc.TypeGameEnd, a.HandleGameEnd)
}

// Close releases the session once its connection has ended.
func (a *Agent) Close() {
	if a.opened {
		a.metrics.sessionClosed()
		a.opened = false
	}
}

// HandleHello picks the faction profile and builds the per-match pipeline.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	a.Player = hello.Player
	a.Race = hello.Race
	a.Conn.Player = hello.Player
	a.log = slog.With("session", a.Session, "player", a.Player)

	profile, err := a.loadProfile(hello.Race)
	if err != nil {
		return nil, err
	}

	info := model.GameInfo{PlayableMax: model.Pt(maxMapSize, maxMapSize)}
	if hello.GameInfo != nil {
		info = *hello.GameInfo
	}

	cascade, err := rules.NewCascade(a.opts.RuleOverrides)
	if err != nil {
		return nil, fmt.Errorf("build transition cascade: %w", err)
	}

	seed := a.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a.profile = profile
	a.info = info
	a.oracle = placement.NewGridOracle(profile, info)
	a.allocator = economy.New(profile, a.opts.Allocator)
	a.machine = macro.New(profile, a.opts.Macro, cascade, &meteredPlacer{
		search:  placement.NewSearch(a.oracle, rand.New(rand.NewSource(seed))),
		profile: profile,
		metrics: a.metrics,
	})
	a.machine.OnTransition = func(from, to macro.Mode, _ string) {
		a.metrics.transition(from, to)
	}
	a.located = false
	a.last = nil

	if !a.opened {
		a.metrics.sessionOpened()
		a.opened = true
	}
	a.log.Info("player identified",
		"race", hello.Race,
		"faction", profile.Name,
		"map", info.MapName,
		"grid", info.PlacementGrid != nil,
		"seed", seed,
	)
	return ack()
}

func (a *Agent) loadProfile(race string) (*faction.Profile, error) {
	profile, err := faction.Load(a.opts.ProfilesDir, race)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, faction.ErrUnknownFaction) {
		return nil, fmt.Errorf("load faction %q: %w", race, err)
	}

	a.log.Warn("unknown faction, using default", "race", race, "default", a.opts.DefaultFaction)
	profile, err = faction.Load(a.opts.ProfilesDir, a.opts.DefaultFaction)
	if err != nil {
		return nil, fmt.Errorf("load default faction %q: %w", a.opts.DefaultFaction, err)
	}
	return profile, nil
}

// HandleObservation runs one tick: allocate workers, step the macro machine
// and reply with every command issued.
func (a *Agent) HandleObservation(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.machine == nil {
		return nil, errors.New("observation before hello")
	}

	var obs ipc.ObservationMessage
	if err := env.Decode(&obs); err != nil {
		return nil, err
	}
	a.lastLoop = obs.GameLoop

	if !a.located {
		a.locateBases(&obs)
	}
	a.oracle.Refresh(obs.Units)

	snap := a.profile.Snapshot(&obs)
	batch := model.NewBatch()
	a.allocator.Run(snap, batch)
	mode := a.machine.Step(snap, batch)
	a.last = snap

	a.metrics.tick(context.Background(), batch.Commands())
	a.log.Debug("tick",
		"loop", obs.GameLoop,
		"mode", mode,
		"minerals", obs.Player.Minerals,
		"supply", fmt.Sprintf("%d/%d", obs.Player.FoodUsed, obs.Player.FoodCap),
		"workers", len(snap.Workers),
		"army", len(snap.Army),
		"commands", batch.Len(),
	)

	reply, err := ipc.NewEnvelope(ipc.TypeActions, ipc.NewActions(obs.GameLoop, batch.Commands()))
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// locateBases takes the first own town hall as the main base and assumes the
// enemy starts at its mirror image.
func (a *Agent) locateBases(obs *model.Observation) {
	for i := range obs.Units {
		u := &obs.Units[i]
		if u.Alliance != model.Self || !a.profile.IsTownHall(u.Type) {
			continue
		}
		enemy := a.info.MirrorPoint(u.Pos)
		a.machine.SetBases(u.Pos, enemy)
		a.located = true
		a.log.Info("bases located",
			"main_x", u.Pos.X, "main_y", u.Pos.Y,
			"enemy_x", enemy.X, "enemy_y", enemy.Y,
		)
		return
	}
}

// HandleGameEnd logs the outcome and releases the session's metrics slot.
func (a *Agent) HandleGameEnd(env ipc.Envelope) (*ipc.Envelope, error) {
	var end ipc.GameEndMessage
	if err := env.Decode(&end); err != nil {
		return nil, err
	}

	attrs := []any{"result", end.Result, "loop", a.lastLoop}
	if a.machine != nil {
		attrs = append(attrs, "mode", a.machine.Mode(), "scout_sent", a.machine.ScoutSent())
	}
	if a.last != nil {
		attrs = append(attrs, "workers", len(a.last.Workers), "army", len(a.last.Army))
	}
	a.log.Info("game over", attrs...)
	a.Close()
	return ack()
}

func ack() (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// meteredPlacer counts failed placement searches.
type meteredPlacer struct {
	search  *placement.Search
	profile *faction.Profile
	metrics *Metrics
}

func (p *meteredPlacer) FindPlacement(structure uint32, anchor model.Point, maxRadius float64) (placement.Site, bool) {
	site, ok := p.search.FindPlacement(structure, anchor, maxRadius)
	if !ok {
		p.metrics.placementFailed(p.profile.TypeName(structure))
	}
	return site, ok
}
