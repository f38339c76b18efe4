// Package logx is a thin structured-logging layer over zerolog.
//
// It exists so the rest of the bot can log through a small, stable API
// (Logger + Field helpers) while the sink setup (console writer, optional
// JSON file, level) stays in one place and can be re-applied on config
// reload without re-plumbing loggers through every component.
package logx
