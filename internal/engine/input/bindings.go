package input

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Command is a discrete viewer action triggered by a key.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdLightUp
	CmdLightDown
	CmdLightLeft
	CmdLightRight
	CmdObjectLeft
	CmdObjectRight
	CmdObjectUp
	CmdObjectDown
	CmdObjectNear
	CmdObjectFar
	CmdToggleOctree
	CmdScreenshot
)

var commandNames = [...]string{
	CmdNone:         "none",
	CmdQuit:         "quit",
	CmdLightUp:      "light_up",
	CmdLightDown:    "light_down",
	CmdLightLeft:    "light_left",
	CmdLightRight:   "light_right",
	CmdObjectLeft:   "object_left",
	CmdObjectRight:  "object_right",
	CmdObjectUp:     "object_up",
	CmdObjectDown:   "object_down",
	CmdObjectNear:   "object_near",
	CmdObjectFar:    "object_far",
	CmdToggleOctree: "toggle_octree",
	CmdScreenshot:   "screenshot",
}

func (c Command) String() string {
	if int(c) >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Bindings maps keys to commands. A key has at most one command.
type Bindings map[sdl.Scancode]Command

// DefaultBindings is the viewer key map: WASD orbits the light, IJKL and
// U/O move the selected object, T toggles octree drawing and P saves a
// screenshot.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_ESCAPE: CmdQuit,
		sdl.SCANCODE_Q:      CmdQuit,

		sdl.SCANCODE_W: CmdLightUp,
		sdl.SCANCODE_S: CmdLightDown,
		sdl.SCANCODE_A: CmdLightLeft,
		sdl.SCANCODE_D: CmdLightRight,

		sdl.SCANCODE_J: CmdObjectLeft,
		sdl.SCANCODE_L: CmdObjectRight,
		sdl.SCANCODE_I: CmdObjectUp,
		sdl.SCANCODE_K: CmdObjectDown,
		sdl.SCANCODE_U: CmdObjectNear,
		sdl.SCANCODE_O: CmdObjectFar,

		sdl.SCANCODE_T: CmdToggleOctree,
		sdl.SCANCODE_P: CmdScreenshot,
	}
}

// Command returns the command bound to a key press. Key releases and
// unbound keys map to CmdNone. One-shot commands ignore auto-repeat.
func (b Bindings) Command(ev Event) Command {
	if ev.Type != EventKeyDown {
		return CmdNone
	}
	cmd, ok := b[ev.Key]
	if !ok {
		return CmdNone
	}
	if ev.Repeat && cmd.oneShot() {
		return CmdNone
	}
	return cmd
}

func (c Command) oneShot() bool {
	return c == CmdQuit || c == CmdToggleOctree || c == CmdScreenshot
}
