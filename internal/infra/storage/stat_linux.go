//go:build linux

package storage

import (
	"os"
	"syscall"
	"time"
)

// createdAt reports the inode change time, the closest Linux has to a
// creation time for files that are never modified after publishing.
func createdAt(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	}
	return info.ModTime()
}
