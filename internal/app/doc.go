// Package app wires the document loader, the composition orchestrator
// and the graph backends into the runnable application.
package app
