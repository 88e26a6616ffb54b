// Package config loads the two binaries' environment-variable
// configuration surfaces, including the docker-vs-local addressing
// switch used when running a cluster outside of Docker Compose.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// getEnv reads an environment variable, falling back to defaultValue.
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("config: required environment variable %q is not set", key)
	}
	return v, nil
}

func atoiFatal(key, value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.Fatalf("config: invalid integer for %s: %v", key, err)
	}
	return n
}

// ClusterConfig is cmd/node's configuration: the election/coloring cluster.
type ClusterConfig struct {
	NodeIdx          int
	NodeAddrs        []string
	APIPort          int
	LogFile          string
	Docker           bool
	Seed             int64
	NodeManifestPath string
}

// localAddrs is the fixed three-node localhost table used outside Docker,
// mirroring api.py's local_addrs.
var localAddrs = []string{"127.0.0.1:2333", "127.0.0.1:2334", "127.0.0.1:2335"}

// LoadCluster reads cmd/node's configuration. In Docker mode (the
// presence of the "docker" env var switches addressing, per spec §3
// Supplemented Features), node_idx/node_addrs come from the environment;
// otherwise a fixed localhost table plus an explicit --node-addr index is
// used for local development, exactly as the original's api.py does.
func LoadCluster(nodeAddrIdx int, hasNodeAddrFlag bool) (*ClusterConfig, error) {
	if os.Getenv("docker") == "" {
		if !hasNodeAddrFlag {
			return nil, fmt.Errorf("config: --node-addr is required outside docker mode")
		}
		if nodeAddrIdx < 0 || nodeAddrIdx >= len(localAddrs) {
			return nil, fmt.Errorf("config: --node-addr %d out of range [0,%d)", nodeAddrIdx, len(localAddrs))
		}
		return &ClusterConfig{
			NodeIdx:          nodeAddrIdx,
			NodeAddrs:        append([]string(nil), localAddrs...),
			APIPort:          portOf(localAddrs[nodeAddrIdx]),
			LogFile:          fmt.Sprintf("NODE-dev_%d.log", nodeAddrIdx+1),
			Docker:           false,
			Seed:             int64(nodeAddrIdx),
			NodeManifestPath: getEnv("node_manifest", ""),
		}, nil
	}

	nodeIdxStr, err := requireEnv("node_idx")
	if err != nil {
		return nil, err
	}
	nodeIdx := atoiFatal("node_idx", nodeIdxStr)

	addrsStr, err := requireEnv("node_addrs")
	if err != nil {
		return nil, err
	}
	addrs := strings.Split(addrsStr, ",")
	if nodeIdx < 0 || nodeIdx >= len(addrs) {
		return nil, fmt.Errorf("config: node_idx %d out of range for %d addrs", nodeIdx, len(addrs))
	}

	return &ClusterConfig{
		NodeIdx:          nodeIdx,
		NodeAddrs:        addrs,
		APIPort:          portOf(addrs[nodeIdx]),
		LogFile:          fmt.Sprintf("/vagrant/NODE_%d.log", nodeIdx+1),
		Docker:           true,
		Seed:             int64(nodeIdx),
		NodeManifestPath: getEnv("node_manifest", ""),
	}, nil
}

func portOf(addr string) int {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return 0
	}
	p, _ := strconv.Atoi(parts[1])
	return p
}

// StoreConfig is cmd/kvnode's configuration: the hierarchical KV store.
type StoreConfig struct {
	Zookeeper    string
	NodeName     string
	NodeAddress  string
	RootNode     string
	NNodes       int
	APIPort      int
	StartupDelay int
	Debug        bool
}

// LoadStore reads cmd/kvnode's configuration, grounded on
// original_source/ex03/client/src/env.py's required-variable list.
func LoadStore() (*StoreConfig, error) {
	zookeeper := getEnv("zookeeper", "")
	nodeName, err := requireEnv("node_name")
	if err != nil {
		return nil, err
	}
	nodeAddress, err := requireEnv("node_address")
	if err != nil {
		return nil, err
	}
	rootNode, err := requireEnv("root_node")
	if err != nil {
		return nil, err
	}
	nNodesStr, err := requireEnv("n_nodes")
	if err != nil {
		return nil, err
	}
	apiPortStr, err := requireEnv("api_port")
	if err != nil {
		return nil, err
	}

	return &StoreConfig{
		Zookeeper:    zookeeper,
		NodeName:     nodeName,
		NodeAddress:  nodeAddress,
		RootNode:     rootNode,
		NNodes:       atoiFatal("n_nodes", nNodesStr),
		APIPort:      atoiFatal("api_port", apiPortStr),
		StartupDelay: atoiFatal("startup_delay", getEnv("startup_delay", "0")),
		Debug:        getEnv("debug", "") != "",
	}, nil
}

// Dump logs every loaded variable at debug level when Debug is set,
// replacing env.py's conditional print (spec §3 Supplemented Features).
func (c *StoreConfig) Dump(log *logrus.Entry) {
	if !c.Debug {
		return
	}
	log.WithFields(logrus.Fields{
		"zookeeper":     c.Zookeeper,
		"node_name":     c.NodeName,
		"node_address":  c.NodeAddress,
		"root_node":     c.RootNode,
		"n_nodes":       c.NNodes,
		"api_port":      c.APIPort,
		"startup_delay": c.StartupDelay,
	}).Debug("loaded configuration")
}

// ManifestNode is one entry of the node manifest file: a cluster
// member's container name alongside its host/port, used by the
// leader's container-restart monitor to target the right container
// without guessing a naming convention from node_addrs.
type ManifestNode struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Manifest is a docker-compose-shaped declaration of every cluster
// member, loaded by cmd/node when the node_manifest environment
// variable names a file (see buildCheckTargets).
type Manifest struct {
	Nodes []ManifestNode `yaml:"nodes"`
}

// LoadManifest parses a YAML node-manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}
