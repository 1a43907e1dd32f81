package macro

import "fmt"

// Mode is the macro controller's current strategic posture.
type Mode uint8

const (
	Init Mode = iota
	Economy
	Army
	Attack
	Defend
	Scout
)

var modeNames = [...]string{
	Init:    "init",
	Economy: "economy",
	Army:    "army",
	Attack:  "attack",
	Defend:  "defend",
	Scout:   "scout",
}

// String returns the name used in transition rules and logs.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseMode is the inverse of String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
