// Package config loads, validates and caches board configuration files.
//
// Board configs are JSON files in a single directory, one board per file,
// addressed by their filename without the .json extension. Every file is
// checked against a JSON Schema before decoding, then against the engine's
// own geometry rules, so a config that loads is a config that plays.
//
// The Manager keeps parsed configs in an in-memory cache guarded by a
// read-write mutex; RefreshCache drops the cache so edited files are picked
// up without a restart.
package config
