//go:build linux

package watcher

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// statfs f_type magic numbers.
const (
	nfsMagic  = 0x6969
	smbMagic  = 0x517b
	smb2Magic = 0xfe534d42
	cifsMagic = 0xff534d42
	fuseMagic = 0x65735546
)

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case nfsMagic:
		return FSTypeNFS
	case smbMagic, smb2Magic, cifsMagic:
		return FSTypeSMB
	case fuseMagic:
		if mountType(path) == "fuse.sshfs" {
			return FSTypeSSHFS
		}
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}

// mountType returns the fstype of the longest mount point containing path.
func mountType(path string) string {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return ""
	}
	defer f.Close()

	best, typ := "", ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mnt := fields[1]
		if !strings.HasPrefix(path, mnt) || len(mnt) < len(best) {
			continue
		}
		if mnt != "/" && len(path) > len(mnt) && path[len(mnt)] != '/' {
			continue
		}
		best, typ = mnt, fields[2]
	}
	return typ
}
