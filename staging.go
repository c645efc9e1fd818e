package provision

import (
	"fmt"
	"os"
)

// stagingArea is a filesystem location, named deterministically from the
// destination path, where an artifact is assembled before being made
// visible. It is owned by exactly one in-flight install.
type stagingArea struct {
	// dir is the staging directory, <dest> + stagingSuffix.
	dir string

	// dest is the final destination the staging area commits to.
	dest string

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// newStagingArea creates a staging area handle for the given destination.
// No filesystem state is touched until create is called.
func newStagingArea(dest string, logger Logger) *stagingArea {
	return &stagingArea{
		dir:    dest + stagingSuffix,
		dest:   dest,
		logger: logger,
	}
}

// create makes a fresh, empty staging directory, removing any stale
// leftover from an interrupted earlier run first.
func (st *stagingArea) create() error {
	if err := os.RemoveAll(st.dir); err != nil {
		return fmt.Errorf("%w: removing stale staging area %s: %v", ErrStorage, st.dir, err)
	}
	if err := os.MkdirAll(st.dir, 0755); err != nil {
		return fmt.Errorf("%w: creating staging area %s: %v", ErrStorage, st.dir, err)
	}
	return nil
}

// commit publishes the staging area at the destination with a single
// rename. An external observer only ever sees the destination absent or
// fully populated. On failure the staging area is left in place for manual
// recovery, since the acquired artifact may be expensive to reacquire.
func (st *stagingArea) commit() error {
	if err := os.Rename(st.dir, st.dest); err != nil {
		return fmt.Errorf("%w: moving %s to %s (staging retained): %v", ErrCommit, st.dir, st.dest, err)
	}
	return nil
}

// cleanup removes the staging area and everything in it. Used on
// acquisition and conversion failures; errors are logged, not returned,
// since cleanup runs on an already-failing path.
func (st *stagingArea) cleanup() {
	if err := os.RemoveAll(st.dir); err != nil && st.logger != nil {
		st.logger.Warn("failed to remove staging area", "path", st.dir, "error", err)
	}
}
