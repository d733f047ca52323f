// Package lifecycle moves one source file through
// discovered -> planning -> encoding -> encoded_temp -> finalized -> archived,
// or into failed with a reason.
//
// Encodes are written to a hidden partial file next to the final path and
// renamed into place only after ffmpeg succeeds; the original is then moved
// into the archive tree. Nothing is ever deleted or overwritten, so a repeated
// run over the same tree either skips (source gone) or fails fast with
// already_exists. Partials left by failed encodes are listed by
// FindStalePartials and removed only on request.
package lifecycle
