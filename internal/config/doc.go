// Package config provides configuration structures and utilities for riskscan.
// It defines the analysis options, the optional YAML configuration file and
// the XDG directories used for run history.
package config
