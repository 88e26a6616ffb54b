package registry

import (
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

// ZKRegistry is the production Registry, backed by a real Zookeeper
// ensemble via go-zookeeper/zk — the Go ecosystem's equivalent of the
// original's kazoo.client.KazooClient.
type ZKRegistry struct {
	conn *zk.Conn
}

// NewZK connects to the given Zookeeper ensemble and returns a ready
// ZKRegistry. Fatal at the caller's discretion: a connection failure here
// means the process cannot join the cluster at all.
func NewZK(servers []string, sessionTimeout time.Duration) (*ZKRegistry, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, err
	}
	return &ZKRegistry{conn: conn}, nil
}

func (r *ZKRegistry) Exists(path string) bool {
	ok, _, err := r.conn.Exists(path)
	if err != nil {
		return false
	}
	return ok
}

// Create registers path, creating any missing intermediate parents
// along the way (mirroring the original's makepath=True) — zk.Conn.Create
// itself only creates a single znode and errors if its parent is
// missing, so intermediates are created top-down (shallowest first)
// here before the final path. Fails if path already exists.
func (r *ZKRegistry) Create(path string) error {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	current := ""
	for i, seg := range segments {
		current += "/" + seg
		_, err := r.conn.Create(current, nil, 0, zk.WorldACL(zk.PermAll))
		if err == nil {
			continue
		}
		if err == zk.ErrNodeExists {
			if i == len(segments)-1 {
				return err
			}
			continue
		}
		return err
	}
	return nil
}

// Close releases the underlying Zookeeper session.
func (r *ZKRegistry) Close() {
	r.conn.Close()
}
