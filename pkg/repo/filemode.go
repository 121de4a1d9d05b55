package repo

import (
	"os"

	"github.com/odvcencio/grit/pkg/object"
)

func normalizeFileMode(mode string) string {
	if mode == object.ModeExecutable {
		return object.ModeExecutable
	}
	return object.ModeFile
}

func filePermFromMode(mode string) os.FileMode {
	if normalizeFileMode(mode) == object.ModeExecutable {
		return 0o755
	}
	return 0o644
}

// modeFromFileInfo picks the tree mode for a file on disk. Executable bits
// only count when the repository tracks them.
func modeFromFileInfo(info os.FileInfo, trackExec bool) string {
	if info.Mode()&os.ModeSymlink != 0 {
		return object.ModeSymlink
	}
	if trackExec && info.Mode()&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeFile
}
