// Package config loads, normalizes, and validates rosa tool configuration.
//
// Configuration lives in a TOML file (rosa.toml in the working directory or
// ~/.config/rosa/config.toml). It names the archive root, the digest
// algorithm used for checksum indexes, the external image tools, and the
// crop fan-out limits. Archive data settings such as supported languages
// are not configured here; they live in each collection's config.properties.
package config
