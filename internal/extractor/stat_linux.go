//go:build linux

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
	changed = time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))  //nolint:unconvert // int32 on 32-bit targets
	accessed = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec)) //nolint:unconvert // int32 on 32-bit targets
	return changed, info.ModTime(), accessed
}
