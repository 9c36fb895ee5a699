// Package workspace resolves which packages of a cargo workspace a run
// operates on, tagging each with how the orchestrator should treat it.
package workspace
