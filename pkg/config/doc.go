// Package config loads, normalizes, and validates covergen configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// COVERGEN_FONT_PATH and COVERGEN_FOLDER. Render settings convert to a
// caption.Style through Render.Style, and [[override]] tables give single
// videos their own title, font, or size.
//
// Always obtain settings through this package so downstream code receives
// parsed colors, expanded paths, and clear validation errors.
package config
