// cmd/node runs one participant of the Bully election / red-green
// coloring cluster, with a signal-driven startup/shutdown sequence:
// load config, start the HTTP transport, wait for it to answer its own
// health check, then run the node loop until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/honzikv/bully-cluster/internal/clusternode"
	"github.com/honzikv/bully-cluster/internal/config"
	"github.com/honzikv/bully-cluster/internal/docker"
	"github.com/honzikv/bully-cluster/internal/electionapi"
	"github.com/honzikv/bully-cluster/internal/inbox"
	"github.com/honzikv/bully-cluster/internal/monitor"
	"github.com/honzikv/bully-cluster/internal/nodelog"
	"github.com/honzikv/bully-cluster/internal/transport"
	"github.com/sirupsen/logrus"
)

const healthCheckPollInterval = 200 * time.Millisecond

func main() {
	nodeAddrFlag := flag.Int("node-addr", -1, "index of this node's address in the local dev address table")
	flag.Parse()

	cfg, err := config.LoadCluster(*nodeAddrFlag, *nodeAddrFlag >= 0)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log, err := nodelog.New(cfg.NodeIdx, cfg.LogFile)
	if err != nil {
		logrus.Fatalf("nodelog: %v", err)
	}
	log.Info("starting node")

	ib := inbox.New(log)

	addrs := make([]string, len(cfg.NodeAddrs))
	for i, a := range cfg.NodeAddrs {
		addrs[i] = "http://" + a
	}
	tr := transport.New(cfg.NodeIdx, addrs, log)

	n := clusternode.New(cfg.NodeIdx, len(cfg.NodeAddrs)-1, ib, tr, log, cfg.Seed)

	router := electionapi.Router(ib, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.APIPort),
		Handler: router,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	awaitSelfHealthy(cfg.APIPort, log)

	stop := make(chan struct{})
	go n.Run(stop)

	if cfg.Docker {
		go runLeaderTriggeredMonitor(n, cfg, log)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received signal %v, shutting down", sig)
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}
}

// awaitSelfHealthy blocks until this node's own /healthcheck endpoint
// answers 200, guaranteeing the inbox is reachable before the driver
// (and therefore any peer) starts relying on it — supplemented from
// api.go's run_node health-check synchronization.
func awaitSelfHealthy(port int, log *logrus.Entry) {
	url := fmt.Sprintf("http://127.0.0.1:%d/healthcheck", port)
	client := &http.Client{Timeout: time.Second}

	for {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				log.Debug("self health check passed, starting driver")
				return
			}
		}
		time.Sleep(healthCheckPollInterval)
	}
}

// buildCheckTargets resolves the peers the leader should health-check.
// When a node manifest file is configured, it is the source of truth for
// container names (an operator-declared mapping, rather than the
// NODE-{idx+1} convention guessed from node_addrs); otherwise targets are
// derived straight from cfg.NodeAddrs.
func buildCheckTargets(cfg *config.ClusterConfig, log *logrus.Entry) []monitor.CheckTarget {
	if cfg.NodeManifestPath != "" {
		manifest, err := config.LoadManifest(cfg.NodeManifestPath)
		if err != nil {
			log.WithError(err).Warnf("failed to load node manifest %q, falling back to node_addrs", cfg.NodeManifestPath)
		} else {
			selfAddr := ""
			if cfg.NodeIdx >= 0 && cfg.NodeIdx < len(cfg.NodeAddrs) {
				selfAddr = cfg.NodeAddrs[cfg.NodeIdx]
			}
			targets := make([]monitor.CheckTarget, 0, len(manifest.Nodes))
			for _, mn := range manifest.Nodes {
				addr := net.JoinHostPort(mn.Host, strconv.Itoa(mn.Port))
				if addr == selfAddr {
					continue
				}
				targets = append(targets, monitor.CheckTarget{
					Name:          mn.Name,
					Host:          mn.Host,
					Port:          strconv.Itoa(mn.Port),
					ContainerName: mn.Name,
				})
			}
			return targets
		}
	}

	targets := make([]monitor.CheckTarget, 0, len(cfg.NodeAddrs))
	for i, addr := range cfg.NodeAddrs {
		if i == cfg.NodeIdx {
			continue
		}
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			log.WithError(err).Warnf("skipping malformed peer address %q", addr)
			continue
		}
		name := fmt.Sprintf("NODE-%d", i+1)
		targets = append(targets, monitor.CheckTarget{
			Name:          name,
			Host:          host,
			Port:          port,
			ContainerName: name,
		})
	}
	return targets
}

// runLeaderTriggeredMonitor polls peer containers and restarts any that
// stop answering health checks. Gated on leadership: only the current
// leader runs this loop.
func runLeaderTriggeredMonitor(n *clusternode.Node, cfg *config.ClusterConfig, log *logrus.Entry) {
	dockerClient, err := docker.NewClient(log)
	if err != nil {
		log.WithError(err).Warn("docker client unavailable, leader-triggered restarts disabled")
		return
	}
	defer dockerClient.Close()

	checker := monitor.NewHealthChecker()
	targets := buildCheckTargets(cfg, log)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if n.CurrentMode() != clusternode.Leader {
			continue
		}
		for _, target := range targets {
			if checker.IsAlive(target.Host, target.Port) {
				continue
			}
			log.Warnf("%s is not responding to health checks, restarting container %s", target.Name, target.ContainerName)
			if err := dockerClient.RestartContainer(target.ContainerName); err != nil {
				log.WithError(err).Errorf("failed to restart container %s", target.ContainerName)
			}
		}
	}
}

