package agent

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/Deadjed/blank-bot/economy"
	"github.com/Deadjed/blank-bot/ipc"
	"github.com/Deadjed/blank-bot/macro"
	"github.com/Deadjed/blank-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scv           = 45
	commandCenter = 18
	mineralField  = 341
	gatherAbility = 3666
	trainSCV      = 524
)

func testOptions() Options {
	return Options{
		DefaultFaction: "terran",
		Seed:           7,
		Macro:          macro.DefaultSettings(),
		Allocator:      economy.DefaultSettings(),
	}
}

func newMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics()
	require.NoError(t, err)
	return m
}

// session runs an agent behind a net.Pipe and returns the bridge end.
func session(t *testing.T) (*Agent, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	conn := ipc.NewConnection(server, nil)
	a := New(conn, testOptions(), newMetrics(t))
	a.Register()

	done := make(chan struct{})
	go func() {
		conn.ReadLoop()
		a.Close()
		close(done)
	}()
	t.Cleanup(func() {
		client.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("session did not shut down")
		}
	})
	return a, client
}

func exchange(t *testing.T, bridge net.Conn, msgType string, data any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	require.NoError(t, err)
	require.NoError(t, ipc.WriteEnvelope(bridge, env))
	require.NoError(t, bridge.SetReadDeadline(time.Now().Add(2*time.Second)))
	reply, err := ipc.ReadEnvelope(bridge)
	require.NoError(t, err)
	return reply
}

func hello(race string) ipc.HelloMessage {
	return ipc.HelloMessage{
		Player: "blank",
		Race:   race,
		GameInfo: &model.GameInfo{
			MapName:       "Test LE",
			PlayableMin:   model.Pt(0, 0),
			PlayableMax:   model.Pt(64, 64),
			PlacementGrid: model.NewPlacementGrid(64, 64, true),
		},
	}
}

func opening() model.Observation {
	obs := model.Observation{
		GameLoop: 1,
		Player:   model.Player{Minerals: 50, FoodUsed: 12, FoodCap: 15},
	}
	obs.Units = append(obs.Units, model.Unit{
		Tag: 1, Type: commandCenter, Alliance: model.Self, Pos: model.Pt(10, 12), BuildProgress: 1,
	})
	for i := 0; i < 8; i++ {
		obs.Units = append(obs.Units, model.Unit{
			Tag: uint64(100 + i), Type: mineralField, Alliance: model.Neutral,
			Pos: model.Pt(float64(4+i), 20), BuildProgress: 1,
		})
	}
	for i := 0; i < 12; i++ {
		obs.Units = append(obs.Units, model.Unit{
			Tag: uint64(200 + i), Type: scv, Alliance: model.Self,
			Pos: model.Pt(float64(6+i%6), 16), BuildProgress: 1,
		})
	}
	return obs
}

func decodeActions(t *testing.T, env ipc.Envelope) ipc.ActionsMessage {
	t.Helper()
	require.Equal(t, ipc.TypeActions, env.Type)
	var msg ipc.ActionsMessage
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	return msg
}

func TestSessionOpening(t *testing.T) {
	a, bridge := session(t)

	reply := exchange(t, bridge, ipc.TypeHello, hello("terran"))
	assert.Equal(t, ipc.TypeAck, reply.Type)

	// First tick: idle workers go mining, the machine leaves Init.
	actions := decodeActions(t, exchange(t, bridge, ipc.TypeObservation, opening()))
	assert.Equal(t, uint32(1), actions.GameLoop)
	require.Len(t, actions.Commands, 12)
	for _, c := range actions.Commands {
		assert.Equal(t, uint32(gatherAbility), c.AbilityID)
		assert.NotZero(t, c.TargetUnitTag)
	}
	assert.Equal(t, macro.Economy, a.machine.Mode())
	assert.Equal(t, model.Pt(10, 12), a.machine.MainBase())
	assert.Equal(t, model.Pt(54, 52), a.machine.EnemyBase())

	// Second tick: the economy handler trains a worker with the 50 minerals.
	obs := opening()
	obs.GameLoop = 2
	actions = decodeActions(t, exchange(t, bridge, ipc.TypeObservation, obs))
	var trained []ipc.UnitCommand
	for _, c := range actions.Commands {
		if c.AbilityID == trainSCV {
			trained = append(trained, c)
		}
	}
	require.Len(t, trained, 1)
	assert.Equal(t, []uint64{1}, trained[0].UnitTags)

	reply = exchange(t, bridge, ipc.TypeGameEnd, ipc.GameEndMessage{Result: "victory"})
	assert.Equal(t, ipc.TypeAck, reply.Type)
}

func TestObservationBeforeHelloIsRejected(t *testing.T) {
	a, bridge := session(t)

	// No reply for the early observation; the session stays usable.
	env, err := ipc.NewEnvelope(ipc.TypeObservation, opening())
	require.NoError(t, err)
	require.NoError(t, ipc.WriteEnvelope(bridge, env))

	reply := exchange(t, bridge, ipc.TypeHello, hello("terran"))
	assert.Equal(t, ipc.TypeAck, reply.Type)
	assert.Equal(t, "terran", a.profile.Name)
}

func TestUnknownRaceFallsBackToDefault(t *testing.T) {
	a, bridge := session(t)

	reply := exchange(t, bridge, ipc.TypeHello, hello("zerg"))
	assert.Equal(t, ipc.TypeAck, reply.Type)
	assert.Equal(t, "terran", a.profile.Name)
	assert.Equal(t, "zerg", a.Race)
}

func TestHelloSelectsProtoss(t *testing.T) {
	a, bridge := session(t)

	exchange(t, bridge, ipc.TypeHello, hello("Protoss"))
	require.NotNil(t, a.profile)
	assert.Equal(t, "protoss", a.profile.Name)
	assert.NotNil(t, a.profile.Power)
}

func TestHelloWithoutGameInfoAssumesOpenMap(t *testing.T) {
	a, bridge := session(t)

	exchange(t, bridge, ipc.TypeHello, ipc.HelloMessage{Player: "blank", Race: "terran"})
	assert.Equal(t, model.Pt(maxMapSize, maxMapSize), a.info.PlayableMax)
	assert.Nil(t, a.info.PlacementGrid)
}

func TestBadRuleOverrideFailsHello(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	opts := testOptions()
	opts.RuleOverrides = map[string]string{"attack": "Army >="}
	a := New(ipc.NewConnection(server, nil), opts, newMetrics(t))

	env, err := ipc.NewEnvelope(ipc.TypeHello, hello("terran"))
	require.NoError(t, err)
	_, err = a.HandleHello(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cascade")
	assert.Nil(t, a.machine)
}

func TestSessionGaugeTracksOpenSessions(t *testing.T) {
	m := newMetrics(t)
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	a := New(ipc.NewConnection(server, nil), testOptions(), m)
	env, err := ipc.NewEnvelope(ipc.TypeHello, hello("terran"))
	require.NoError(t, err)

	_, err = a.HandleHello(env)
	require.NoError(t, err)
	_, err = a.HandleHello(env)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.active.Load(), "repeated hello keeps one slot")

	a.Close()
	a.Close()
	assert.Equal(t, int64(0), m.active.Load())
}
