package registry

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// NRetries and WaitInterval mirror zookeeper_connector.py's N_RETRIES and
// WAIT_INTERVAL_SECS: a joining non-root node polls for its parent's path
// this many times, sleeping this long between attempts, before giving up.
var (
	NRetries     = 5
	WaitInterval = 5 * time.Second
)

// RegisterRoot creates the root's own path unconditionally. A failure
// (path already exists) is a fatal precondition violation (spec §7.4).
func RegisterRoot(reg Registry, rootPath string, log *logrus.Entry) error {
	log.Info("registering root node")
	return reg.Create(rootPath)
}

// JoinAsChild polls for parentPath to appear, then registers ownPath
// beneath it. Returns an error (fatal per spec §4.7/§7.4) if the parent
// never appears within NRetries attempts.
func JoinAsChild(reg Registry, parentPath, ownPath string, log *logrus.Entry) error {
	for attempt := 0; attempt < NRetries; attempt++ {
		if reg.Exists(parentPath) {
			return reg.Create(ownPath)
		}
		log.Infof("parent node %s does not exist, retrying...", parentPath)
		time.Sleep(WaitInterval)
	}
	return fmt.Errorf("registry: parent path %q never appeared after %d retries", parentPath, NRetries)
}
