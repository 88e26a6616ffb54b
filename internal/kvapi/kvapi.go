// Package kvapi exposes the per-node KV HTTP surface and the root-only
// tree surface (spec §6), grounded on
// original_source/ex03/client/src/store/store_controller.go and
// cluster/cluster_controller.go.
package kvapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/honzikv/bully-cluster/internal/store"
	"github.com/honzikv/bully-cluster/internal/tree"
	"github.com/sirupsen/logrus"
)

type putRequest struct {
	Value         any  `json:"value"`
	WaitForParent bool `json:"wait_for_parent"`
}

// Router builds the gin engine serving the KV surface. tr is nil for
// non-root nodes, which do not register the tree endpoints.
func Router(st *store.Store, tr *tree.Tree, log *logrus.Entry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/store/:key", func(c *gin.Context) { handleGet(c, st) })
	r.PUT("/store/:key", func(c *gin.Context) { handlePut(c, st, log) })
	r.DELETE("/store/:key", func(c *gin.Context) { handleDelete(c, st, log) })
	r.GET("/store", func(c *gin.Context) { c.JSON(http.StatusOK, st.All()) })

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if tr != nil {
		r.GET("/nodes/parent/:name", func(c *gin.Context) { handleParentLookup(c, tr) })
		r.GET("/nodes/structure", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"structure": tr.GetStructure()})
		})
	}

	return r
}

func handleGet(c *gin.Context, st *store.Store) {
	key := c.Param("key")
	v, err := st.Get(key)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"value": v})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to get key from parent node due to communication issues"})
	}
}

func handlePut(c *gin.Context, st *store.Store, log *logrus.Entry) {
	key := c.Param("key")

	req := putRequest{WaitForParent: true}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := st.Put(key, req.Value, req.WaitForParent); err != nil {
		log.WithError(err).Errorf("failed to put key %q", key)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to update key in parent node due to communication issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

func handleDelete(c *gin.Context, st *store.Store, log *logrus.Entry) {
	key := c.Param("key")

	waitForParent := true
	if v := c.Query("wait_for_parent"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			waitForParent = parsed
		}
	}

	if err := st.Delete(key, waitForParent); err != nil {
		log.WithError(err).Errorf("failed to delete key %q", key)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to delete key from parent node due to communication issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key})
}

func handleParentLookup(c *gin.Context, tr *tree.Tree) {
	name := c.Param("name")
	path, err := tr.FindAbsoluteParentPath(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
