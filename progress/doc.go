// Package progress derives a percentage-complete signal from the read
// telemetry stages publish on a pipeline's notify channel.
//
// A Tracker watches for readsize, readprogress and readcomplete events.
// Once the total size is known, each readprogress is converted to a
// percentage quantized down to a multiple of 5. Only values strictly greater
// than the last reported one are reported, so the reported sequence of one
// pipeline invocation is strictly increasing within [0, 100].
//
// Sizes are handled as arbitrary-precision integers.
package progress
