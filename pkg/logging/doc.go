// Package logging assembles the structured slog loggers used by the covergen
// CLI, batch runs and preview server.
//
// It owns the console and JSON handlers and centralizes level and output
// plumbing. Components tag records with "component"; batch code adds the
// run ID and the item name. NewNop serves tests and wiring code that cannot fail.
package logging
