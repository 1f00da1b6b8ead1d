// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. Every field is optional; missing values fall back to the
// documented defaults, so the daemon also runs with no config file at all.
package config
