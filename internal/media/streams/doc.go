// Package streams classifies ffprobe stream entries into video, audio and
// subtitle records and numbers each kind independently, matching ffmpeg's
// per-type stream specifiers (0:a:N, 0:s:N).
package streams
