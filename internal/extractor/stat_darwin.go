//go:build darwin

package extractor

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns change, modification and access times of info.
func fileTimes(info os.FileInfo) (changed, modified, accessed time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime(), info.ModTime()
	}
	changed = time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec)
	accessed = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	return changed, info.ModTime(), accessed
}
