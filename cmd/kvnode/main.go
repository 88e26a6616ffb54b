// cmd/kvnode runs one node of the hierarchical write-through KV store
// (ex03), grounded on original_source/ex03/client/src/main.go's
// root-vs-non-root startup sequence.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honzikv/bully-cluster/internal/config"
	"github.com/honzikv/bully-cluster/internal/kvapi"
	"github.com/honzikv/bully-cluster/internal/registry"
	"github.com/honzikv/bully-cluster/internal/store"
	"github.com/honzikv/bully-cluster/internal/tree"
	"github.com/honzikv/bully-cluster/internal/workqueue"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadStore()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := newLogger(cfg)
	cfg.Dump(log)

	if cfg.StartupDelay > 0 {
		log.Infof("startup delay: sleeping %ds before joining", cfg.StartupDelay)
		time.Sleep(time.Duration(cfg.StartupDelay) * time.Second)
	}

	reg := newRegistry(cfg, log)

	isRoot := cfg.NodeName == cfg.RootNode
	queue := workqueue.New(log)

	var st *store.Store
	var tr *tree.Tree

	if isRoot {
		rootPath := "/" + cfg.RootNode
		if err := registry.RegisterRoot(reg, rootPath, log); err != nil {
			log.Fatalf("could not register root node: %v", err)
		}
		tr = tree.New(cfg.NNodes, cfg.RootNode)
		st = store.New(nil, queue, log)
	} else {
		// The root node must be reachable before we can ask it for our
		// position; cfg.NodeAddress is irrelevant here since the root is
		// always addressable by its node name (spec §6's node_addrs table).
		rootClient := newTreeClient(cfg.RootNode, cfg.APIPort)
		parentPath, err := rootClient.findParentPath(cfg.NodeName)
		if err != nil {
			log.Fatalf("could not determine parent path: %v", err)
		}

		if err := registry.JoinAsChild(reg, parentPath, parentPath+"/"+cfg.NodeName, log); err != nil {
			log.Fatalf("could not join cluster: %v", err)
		}

		parentName := lastPathSegment(parentPath)
		parentClient := store.NewHTTPParentClient(fmt.Sprintf("http://%s:%d", parentName, cfg.APIPort))
		st = store.New(parentClient, queue, log)
	}

	router := kvapi.Router(st, tr, log)
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received signal %v, shutting down", sig)

	queue.Terminate()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}
}

func newLogger(cfg *config.StoreConfig) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("node_name", cfg.NodeName)
}

func newRegistry(cfg *config.StoreConfig, log *logrus.Entry) registry.Registry {
	if cfg.Zookeeper == "" {
		log.Info("no zookeeper endpoint configured, using in-memory registry")
		return registry.NewMem()
	}

	zk, err := registry.NewZK([]string{cfg.Zookeeper}, 10*time.Second)
	if err != nil {
		log.Fatalf("could not connect to zookeeper at %s: %v", cfg.Zookeeper, err)
	}
	return zk
}

func lastPathSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// treeClient is the thin HTTP client a joining node uses to ask the root
// for its parent path (GET /nodes/parent/{name}), grounded on
// cluster_connector.py's single-purpose root lookup.
type treeClient struct {
	baseURL string
	client  *http.Client
}

func newTreeClient(rootName string, apiPort int) *treeClient {
	return &treeClient{
		baseURL: fmt.Sprintf("http://%s:%d", rootName, apiPort),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *treeClient) findParentPath(nodeName string) (string, error) {
	resp, err := c.client.Get(fmt.Sprintf("%s/nodes/parent/%s", c.baseURL, nodeName))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("root returned status %d", resp.StatusCode)
	}

	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Path, nil
}
