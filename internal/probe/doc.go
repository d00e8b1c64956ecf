// Package probe runs the external metadata tools used during extraction and
// parses their output.
//
// Four probes are supported, each configured as a shell-quoted command line
// to which the file path is appended:
//
//	mdls                         platform metadata index (key = value lines)
//	xattr -l                     extended attribute dump (kept verbatim)
//	ffprobe -v quiet -print_format json -show_format -show_streams
//	                             container and stream description (JSON)
//	identify -verbose            image inspection text (kept verbatim)
//
// Invocations are synchronous. Runner.Timeout bounds each call when set;
// otherwise a call lasts until the program exits or its context is cancelled.
package probe
