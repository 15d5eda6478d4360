// Package manifest reads and writes the tab-separated sample manifest that
// binds each RGB image to its depth map, camera intrinsics and pose.
//
// The column set and numeric formatting are fixed: downstream loaders select
// columns by name and parse the values as float32.
package manifest
