package manifest

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Columns is the manifest header in write order.
var Columns = []string{
	"RGB_im", "depth",
	"f_x", "f_y", "c_x", "c_y",
	"rot_w", "rot_x", "rot_y", "rot_z",
	"trans_x", "trans_y", "trans_z",
}

// Intrinsics holds pinhole camera parameters in pixels.
type Intrinsics struct {
	FX, FY float64
	CX, CY float64
}

// Row is one correlated image/depth/pose sample.
type Row struct {
	RGB         string
	Depth       string
	Intrinsics  Intrinsics
	Rotation    quat.Number
	Translation r3.Vec
}
