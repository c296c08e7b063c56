// Package storage provides ready-made implementations of the engine's
// persisted key-value storage: an in-process memory store for tests and
// single-process tools, and a Redis-backed store for anything that must
// survive a restart.
package storage
