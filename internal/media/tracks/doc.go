// Package tracks picks which audio or subtitle ordinals survive an encode.
//
// A Policy combines a language list with two optional reductions: keep only
// the highest channel count per language, and keep only the first stream per
// language. Select is a pure function of its inputs.
package tracks
