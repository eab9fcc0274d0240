// Package config provides YAML configuration for spendguard.
//
// # Overview
//
// The breaker itself takes threshold rules by value on every call and
// owns no configuration format; this package is the caller-side owner
// of the default policy tiers, audit sink settings, retention schedule,
// and logging options.
//
// # Loading
//
// Configuration is loaded from a YAML file, defaults are applied,
// environment variable overrides (SPENDGUARD_SECTION_FIELD) take
// precedence, and the result is validated:
//
//	cfg, err := config.Load("spendguard.yaml")
//
// A Watcher built on fsnotify supports hot reload of the policy file
// without restarting the embedding service.
package config
