// Package correlate pairs RGB images with their orientation record and depth
// map.
//
// Pairing is driven by a Strategy that derives, from an image filename, the
// label to look up in the orientation log and the depth-map filename to look
// for on disk. Datasets with different naming conventions plug in their own
// Strategy; "usegeo" and "stem" are built in.
package correlate
