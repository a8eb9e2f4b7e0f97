// Package config provides configuration structures and utilities for dxmanifest.
// It defines the input and output locations of a manifest build, the layout
// of the reference table, and report preferences, and loads named dataset
// configurations from a YAML file.
package config
