// Package cli handles command-line argument parsing and validation for
// the layergraph binary.
package cli
