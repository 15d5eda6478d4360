// Package splitgen runs the manifest generation pipeline end to end: parse
// the orientation log, enumerate images, correlate each image with its pose
// and depth map, and write the manifest.
//
// Run takes an immutable Options value; nothing is read from globals. The
// manifest is written to a temporary file and renamed into place, so a failed
// run never leaves a partial manifest behind. An advisory lock next to the
// output serializes concurrent runs targeting the same file.
package splitgen
