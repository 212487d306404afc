// Package logger provides structured JSON logging built on log/slog, with
// a configurable level and helpers for carrying a logger through
// context.Context.
package logger
