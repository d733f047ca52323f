// Package testsupport holds helpers shared by package tests: a config builder
// rooted in a temp directory, sized file writers, and stub executables.
package testsupport
