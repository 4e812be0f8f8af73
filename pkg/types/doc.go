// Package types defines the Store and ForageableDAO interfaces, the
// Forageable entity, configuration, and standard errors for forage.
package types
