package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationDecode(t *testing.T) {
	raw := `{
		"game_loop": 224,
		"player": {"minerals": 75, "vespene": 0, "food_used": 13, "food_cap": 15},
		"units": [
			{"tag": 1, "unit_type": 45, "alliance": "self", "pos": {"x": 30.5, "y": 40},
			 "orders": [{"ability_id": 295, "target_unit_tag": 99}], "build_progress": 1},
			{"tag": 99, "unit_type": 341, "alliance": "neutral", "pos": {"x": 33, "y": 44}, "build_progress": 1}
		]
	}`

	var obs Observation
	require.NoError(t, json.Unmarshal([]byte(raw), &obs))

	assert.Equal(t, uint32(224), obs.GameLoop)
	assert.Equal(t, 13, obs.Player.FoodUsed)
	require.Len(t, obs.Units, 2)

	scv := obs.Units[0]
	assert.Equal(t, Self, scv.Alliance)
	assert.False(t, scv.IsIdle())
	assert.True(t, scv.IsReady())
	assert.Equal(t, uint64(99), scv.FirstOrder().TargetTag)
	assert.Nil(t, scv.FirstOrder().TargetPos)
	assert.Nil(t, obs.Units[1].FirstOrder())
}

func TestUnitCarryBuffs(t *testing.T) {
	u := Unit{Buffs: []uint32{BuffCarryGasProtoss}}
	assert.True(t, u.CarriesGas())
	assert.False(t, u.CarriesMinerals())

	u.Buffs = []uint32{BuffCarryRichMinerals}
	assert.False(t, u.CarriesGas())
	assert.True(t, u.CarriesMinerals())
}

func TestClosest(t *testing.T) {
	units := []*Unit{
		{Tag: 1, Pos: Pt(10, 10)},
		{Tag: 2, Pos: Pt(2, 1)},
		{Tag: 3, Pos: Pt(-5, 0)},
	}
	assert.Equal(t, 1, Closest(units, Pt(0, 0)))
	assert.Equal(t, 0, Closest(units, Pt(9, 9)))
	assert.Equal(t, -1, Closest(nil, Pt(0, 0)))
}

func TestBatchTracksIssuedUnits(t *testing.T) {
	b := NewBatch()
	b.Submit(UnitOrder(7, 295, 99))
	b.Submit(PointOrder([]uint64{1, 2}, 3674, Pt(5, 5)))
	b.Submit(Command{Ability: 16})

	assert.Equal(t, 2, b.Len())
	assert.True(t, b.Issued(7))
	assert.True(t, b.Issued(2))
	assert.False(t, b.Issued(3))

	cmds := b.Commands()
	require.NotNil(t, cmds[1].TargetPos)
	assert.Equal(t, Pt(5, 5), *cmds[1].TargetPos)
}
