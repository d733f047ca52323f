// Package ffprobe wraps the ffprobe binary.
//
// Inspect returns container and stream metadata; FirstFrame reads the first
// video frame with its side data so HDR10 mastering display and content light
// level values can be recovered. Client adapts both to the prober interface
// used by the lifecycle package.
package ffprobe
