package monitor

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

const requestTimeout = 2 * time.Second

// HealthChecker verifies cluster-node health over the same /healthcheck
// endpoint internal/electionapi and internal/kvapi expose — our peers
// speak HTTP, not a bespoke wire protocol.
type HealthChecker struct {
	client *http.Client
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{client: &http.Client{Timeout: requestTimeout}}
}

// IsAlive reports whether host:port answers GET /healthcheck with 200.
func (hc *HealthChecker) IsAlive(host string, port string) bool {
	url := fmt.Sprintf("http://%s/healthcheck", net.JoinHostPort(host, port))

	resp, err := hc.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// CheckTarget represents a cluster peer to monitor, keyed by its
// container name for the leader's restart-on-death action.
type CheckTarget struct {
	Name          string
	Host          string
	Port          string
	ContainerName string
}

// String returns a string representation of the target.
func (t *CheckTarget) String() string {
	return fmt.Sprintf("%s (%s:%s -> container: %s)", t.Name, t.Host, t.Port, t.ContainerName)
}
