package celv

import (
	"fmt"
	"strings"

	"celv/internal/filetree"
)

// ActionType tags a recorded history entry.
type ActionType int

const (
	ActionCreateDoc ActionType = iota
	ActionCreateDir
	ActionRemove
	ActionWrite
	ActionMerge
	ActionImport
)

func (t ActionType) String() string {
	switch t {
	case ActionCreateDoc:
		return "CreateDoc"
	case ActionCreateDir:
		return "CreateDir"
	case ActionRemove:
		return "Remove"
	case ActionWrite:
		return "Write"
	case ActionMerge:
		return "Merge"
	case ActionImport:
		return "Import"
	default:
		return "Unknown"
	}
}

// Action is one entry in the engine's append-only history log.
type Action struct {
	Type          ActionType
	Args          []string
	OriginVersion filetree.Version
	NewVersion    filetree.Version
}

// maxArgDisplay is the length past which Render abbreviates an argument
// with an ellipsis between its first and last 10 characters.
const maxArgDisplay = 23

func abbreviate(arg string) string {
	if len(arg) <= maxArgDisplay {
		return arg
	}
	return arg[:10] + "..." + arg[len(arg)-10:]
}

// Render formats an Action the way `celv_historia` prints it.
func (a Action) Render() string {
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = abbreviate(arg)
	}
	return fmt.Sprintf("[v%d -> v%d] %s(%s)", a.OriginVersion, a.NewVersion, a.Type, strings.Join(args, ", "))
}
