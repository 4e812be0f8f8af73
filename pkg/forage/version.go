// Package forage holds build metadata for the forage module.
package forage

// Version is the release version reported by the CLI.
const Version = "0.1.0"
