// Package config loads runtime configuration from multiple sources
// (GRAPHVCS_-prefixed environment variables, an optional .env file, an
// optional YAML file) layered over per-environment profile defaults, with
// precedence: process environment > .env file > YAML config > profile
// defaults. It exposes strongly typed settings and derived repository path
// helpers to the rest of the application.
package config
