//go:build !linux && !darwin

package extractor

import (
	"os"
	"time"
)

// fileTimes falls back to the modification time where the platform stat
// structure is not decoded.
func fileTimes(info os.FileInfo) (changed, modified, accessed time.Time) {
	return info.ModTime(), info.ModTime(), info.ModTime()
}
