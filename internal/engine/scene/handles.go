package scene

import "github.com/Faultbox/lumen/internal/engine/gpu"

// Slot is a GPU buffer and the size it was allocated with.
type Slot struct {
	Buffer gpu.Handle
	Size   int
}

// Empty reports whether no buffer has been created.
func (s Slot) Empty() bool { return s.Buffer == 0 }

// Handles are the per-scene block buffers. The scene stores them for the
// renderer and never interprets them.
type Handles struct {
	GlobalMatrices    Slot
	DirectionalLights Slot
	PointLights       Slot
	AmbientLight      Slot
}
