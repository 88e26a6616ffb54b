// Package docker provides a minimal Docker Engine API client used by the
// leader's container-restart monitor (internal/monitor, cmd/node).
package docker

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dockerSocket = "/var/run/docker.sock"
	dockerAPI    = "http://localhost"
	dialTimeout  = 10 * time.Second
)

// Client wraps a Docker Engine API connection over the local Unix socket.
type Client struct {
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient dials the Docker daemon's Unix socket and verifies it responds.
func NewClient(log *logrus.Entry) (*Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return net.DialTimeout("unix", dockerSocket, dialTimeout)
			},
		},
		Timeout: dialTimeout,
	}

	resp, err := httpClient.Get(dockerAPI + "/v1.40/_ping")
	if err != nil {
		return nil, fmt.Errorf("connect to docker daemon via %s: %w", dockerSocket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docker daemon ping returned status %d", resp.StatusCode)
	}

	log.Debug("connected to docker daemon")
	return &Client{httpClient: httpClient, log: log}, nil
}

// RestartContainer restarts a container by name or ID via the Engine API.
func (c *Client) RestartContainer(containerNameOrID string) error {
	c.log.Infof("restarting container %s", containerNameOrID)

	url := fmt.Sprintf("%s/v1.40/containers/%s/restart", dockerAPI, containerNameOrID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build restart request for %s: %w", containerNameOrID, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("restart container %s: %w", containerNameOrID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("docker api returned status %d restarting %s", resp.StatusCode, containerNameOrID)
	}

	c.log.Infof("container %s restarted", containerNameOrID)
	return nil
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
