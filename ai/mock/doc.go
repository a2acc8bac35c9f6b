// Package mock provides deterministic test doubles for the ai package
// interfaces. The default behaviors are pure functions of their inputs so
// tests that depend on them are reproducible.
package mock
