// Package encoding turns a stream catalog into an ffmpeg invocation and runs
// it.
//
// Builder is pure: given a catalog, the configured codecs, the audio and
// subtitle selection policies, and optional HDR metadata it returns a Plan
// whose Args fully determine the encode. FFmpeg executes a plan with
// -progress reporting and wraps failures in *EncodeError carrying the
// invocation and the tail of ffmpeg's stderr.
package encoding
