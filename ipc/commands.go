package ipc

import "github.com/Deadjed/blank-bot/model"

// UnitCommand is the wire form of model.Command. TargetPos and TargetUnitTag
// are mutually exclusive; both empty means the ability needs no target.
type UnitCommand struct {
	UnitTags      []uint64     `json:"unit_tags"`
	AbilityID     uint32       `json:"ability_id"`
	TargetPos     *model.Point `json:"target_pos,omitempty"`
	TargetUnitTag uint64       `json:"target_unit_tag,omitempty"`
	Queue         bool         `json:"queue,omitempty"`
}

// ActionsMessage answers an observation with the commands for that tick.
type ActionsMessage struct {
	GameLoop uint32        `json:"game_loop"`
	Commands []UnitCommand `json:"commands"`
}

func FromCommand(c model.Command) UnitCommand {
	return UnitCommand{
		UnitTags:      c.Units,
		AbilityID:     c.Ability,
		TargetPos:     c.TargetPos,
		TargetUnitTag: c.TargetTag,
		Queue:         c.Queue,
	}
}

// NewActions converts a tick's commands to their wire form. Commands is never
// nil so an idle tick encodes as an empty list.
func NewActions(gameLoop uint32, cmds []model.Command) ActionsMessage {
	msg := ActionsMessage{GameLoop: gameLoop, Commands: make([]UnitCommand, 0, len(cmds))}
	for _, c := range cmds {
		msg.Commands = append(msg.Commands, FromCommand(c))
	}
	return msg
}
