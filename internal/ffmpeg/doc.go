// Package ffmpeg builds and runs the ffmpeg commands that produce each
// benchmark output, and turns failed runs into errors that say why.
package ffmpeg
