// Package config defines the instrument settings used by the binaries
// and provides helpers to load, validate and save them in YAML format.
//
// A Config is fixed at controller construction and never mutated
// afterwards; changing settings means constructing a new controller.
package config
