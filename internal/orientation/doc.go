// Package orientation parses photogrammetry orientation logs.
//
// Each non-empty, non-comment line carries ten whitespace-separated fields:
// label, X0, Y0, Z0, omega, phi, kappa (degrees), focal length, cx, cy. The
// parser converts the Euler angles into a quaternion at read time and indexes
// records by label. A line with fewer than ten fields aborts the parse.
package orientation
