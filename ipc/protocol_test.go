package ipc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Deadjed/blank-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(payload string) []byte {
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}

func TestEnvelopeFraming(t *testing.T) {
	env, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, env))

	raw := buf.Bytes()
	length := binary.LittleEndian.Uint32(raw[:4])
	assert.Equal(t, len(raw)-4, int(length))
	assert.JSONEq(t, `{"type":"ack","data":{"status":"ok"}}`, string(raw[4:]))

	got, err := ReadEnvelope(&buf)
	require.NoError(t, err)
	assert.Equal(t, TypeAck, got.Type)

	var ack AckMessage
	require.NoError(t, got.Decode(&ack))
	assert.Equal(t, "ok", ack.Status)
}

func TestReadEnvelopeRejectsBadFrames(t *testing.T) {
	tooLong := make([]byte, 4)
	binary.LittleEndian.PutUint32(tooLong, MaxMessageSize+1)

	tests := []struct {
		name    string
		input   []byte
		wantErr string
	}{
		{"empty stream", nil, "read length"},
		{"zero length", frame(""), "invalid message length: 0"},
		{"oversized", tooLong, "invalid message length"},
		{"truncated payload", frame(`{"type":"ack","data":{}}`)[:10], "read payload"},
		{"not json", frame(`hello`), "unmarshal envelope"},
		{"missing type", frame(`{"data":{}}`), "without type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadEnvelope(bytes.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestObservationDecodes(t *testing.T) {
	payload := `{"type":"observation","data":{
		"game_loop": 224,
		"player": {"minerals": 75, "vespene": 0, "food_used": 13, "food_cap": 15},
		"units": [
			{"tag": 1, "unit_type": 45, "alliance": "self", "pos": {"x": 30.5, "y": 28},
			 "orders": [{"ability_id": 3666, "target_unit_tag": 9}]},
			{"tag": 9, "unit_type": 341, "alliance": "neutral", "pos": {"x": 33, "y": 27}}
		]}}`
	env, err := ReadEnvelope(bytes.NewReader(frame(payload)))
	require.NoError(t, err)

	var obs ObservationMessage
	require.NoError(t, env.Decode(&obs))
	assert.Equal(t, uint32(224), obs.GameLoop)
	assert.Equal(t, 13, obs.Player.FoodUsed)
	require.Len(t, obs.Units, 2)
	assert.Equal(t, uint64(9), obs.Units[0].Orders[0].TargetTag)
}

func TestNewActions(t *testing.T) {
	msg := NewActions(12, nil)
	raw, err := NewEnvelope(TypeActions, msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"game_loop":12,"commands":[]}`, string(raw.Data))

	p := model.Pt(40, 41.5)
	msg = NewActions(13, []model.Command{
		model.PointOrder([]uint64{1, 2}, 3674, p),
		model.UnitOrder(3, 3666, 9),
		model.SelfOrder(4, 524),
	})
	raw, err = NewEnvelope(TypeActions, msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"game_loop":13,"commands":[
		{"unit_tags":[1,2],"ability_id":3674,"target_pos":{"x":40,"y":41.5}},
		{"unit_tags":[3],"ability_id":3666,"target_unit_tag":9},
		{"unit_tags":[4],"ability_id":524}
	]}`, string(raw.Data))
}
