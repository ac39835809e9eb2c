// Package planner turns one discovered input file into the pair of encodes
// the benchmark runs on it: a constant-bitrate pass and a variable-quality
// pass, each with its own output path and encoder arguments.
package planner
