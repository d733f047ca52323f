// Package language normalizes the language values found in container tags
// and configuration.
//
// Everything is reduced to ISO 639-2/T so that "en", "eng", "English" and a
// bibliographic code such as "fre" all compare equal. A small table covers
// the common cases; golang.org/x/text resolves the rest.
package language
