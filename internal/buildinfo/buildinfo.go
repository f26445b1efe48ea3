// Package buildinfo carries build identification stamped via -ldflags.
package buildinfo

var (
	Version   = "dev"
	Revision  = "unknown"
	BuildDate = "unknown"
)
