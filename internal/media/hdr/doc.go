// Package hdr detects HDR10 sources and carries their mastering metadata
// into x265.
//
// Classify looks only at the stream's colour space. Extract reads the colour
// description and side data of the first frame, and FormatParams renders
// them as an x265-params string: chromaticities in 1/50000 units, luminance
// in 1/10000 units, always with a 10-bit 4:2:0 pixel format.
package hdr
