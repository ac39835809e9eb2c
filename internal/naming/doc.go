// Package naming derives encoded output paths from input files and keeps
// two inputs that share a stem from writing to the same outputs.
package naming
