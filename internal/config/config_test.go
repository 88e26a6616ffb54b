package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadClusterLocalMode(t *testing.T) {
	clearEnv(t, "docker")

	cfg, err := LoadCluster(1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.NodeIdx)
	assert.Equal(t, 2334, cfg.APIPort)
	assert.False(t, cfg.Docker)
}

func TestLoadClusterLocalModeRequiresFlag(t *testing.T) {
	clearEnv(t, "docker")

	_, err := LoadCluster(0, false)
	assert.Error(t, err)
}

func TestLoadClusterDockerMode(t *testing.T) {
	t.Setenv("docker", "1")
	t.Setenv("node_idx", "0")
	t.Setenv("node_addrs", "node-1:8080,node-2:8080")

	cfg, err := LoadCluster(0, false)
	require.NoError(t, err)
	assert.True(t, cfg.Docker)
	assert.Equal(t, []string{"node-1:8080", "node-2:8080"}, cfg.NodeAddrs)
	assert.Equal(t, 8080, cfg.APIPort)
}

func TestLoadStoreRequiresVariables(t *testing.T) {
	clearEnv(t, "node_name", "node_address", "root_node", "n_nodes", "api_port")

	_, err := LoadStore()
	assert.Error(t, err)
}

func TestLoadStoreSucceedsWithAllVariables(t *testing.T) {
	t.Setenv("node_name", "A")
	t.Setenv("node_address", "A:8080")
	t.Setenv("root_node", "R")
	t.Setenv("n_nodes", "5")
	t.Setenv("api_port", "8080")
	t.Setenv("startup_delay", "3")

	cfg, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "A", cfg.NodeName)
	assert.Equal(t, 5, cfg.NNodes)
	assert.Equal(t, 3, cfg.StartupDelay)
}

func TestLoadClusterDockerModePicksUpManifestPath(t *testing.T) {
	t.Setenv("docker", "1")
	t.Setenv("node_idx", "0")
	t.Setenv("node_addrs", "node-1:8080,node-2:8080")
	t.Setenv("node_manifest", "/etc/bully-cluster/nodes.yaml")

	cfg, err := LoadCluster(0, false)
	require.NoError(t, err)
	assert.Equal(t, "/etc/bully-cluster/nodes.yaml", cfg.NodeManifestPath)
}

func TestLoadManifestParsesNodes(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/nodes.yaml"
	require.NoError(t, os.WriteFile(path, []byte(`
nodes:
  - name: NODE-1
    host: node-1
    port: 8080
  - name: NODE-2
    host: node-2
    port: 8080
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, ManifestNode{Name: "NODE-1", Host: "node-1", Port: 8080}, m.Nodes[0])
	assert.Equal(t, ManifestNode{Name: "NODE-2", Host: "node-2", Port: 8080}, m.Nodes[1])
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest("/nonexistent/nodes.yaml")
	assert.Error(t, err)
}
