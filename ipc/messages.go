package ipc

import "github.com/Deadjed/blank-bot/model"

// Message types exchanged with the game bridge.
const (
	TypeHello       = "hello"
	TypeAck         = "ack"
	TypeObservation = "observation"
	TypeActions     = "actions"
	TypeGameEnd     = "game_end"
)

// HelloMessage opens a session. GameInfo is optional; without it the agent
// assumes an open map of the largest size the engine supports.
type HelloMessage struct {
	Player   string          `json:"player"`
	Race     string          `json:"race"`
	GameInfo *model.GameInfo `json:"game_info,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// ObservationMessage is one game tick as seen by our player.
type ObservationMessage = model.Observation

type GameEndMessage struct {
	Result   string `json:"result"`
	GameLoop uint32 `json:"game_loop,omitempty"`
}
