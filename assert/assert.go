package assert

import "github.com/voxelforge/voxphys/oerror"

// Enabled toggles contract checking. Violations are caller bugs, not runtime
// conditions; release builds may disable this to keep the hot path branch-free.
var Enabled = true

func IsTrue(ok bool, message string, args ...interface{}) {
	if Enabled && !ok {
		panic(oerror.New(message, args...))
	}
}
