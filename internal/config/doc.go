// Package config loads, normalizes, and validates hhapply configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HH_TOKEN and NOTION_TOKEN. The Config type centralizes every knob the CLI
// needs: run-log and artifact directories, hh.ru and Notion credentials,
// blacklists, classification rules, and optional external applier commands.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
