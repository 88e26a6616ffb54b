// Package electionapi exposes the inter-node message surface (spec §6):
// three logical channels, election, heartbeat, color, each a JSON POST
// body {value, sender_id}, plus a health endpoint. Grounded on
// other_examples/manifests/ppriyankuu-godkv's gin.New()+middleware shape
// and original_source/ex02/node/src/api.go's route set.
package electionapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/honzikv/bully-cluster/internal/inbox"
	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/sirupsen/logrus"
)

// Router builds the gin engine serving /election, /heartbeat, /color, and
// /healthcheck for one node.
func Router(ib *inbox.Inbox, log *logrus.Entry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	for _, ch := range []message.Channel{message.ChannelElection, message.ChannelHeartbeat, message.ChannelColor} {
		ch := ch
		r.POST("/"+string(ch), func(c *gin.Context) {
			handleInbound(c, ch, ib, log)
		})
	}

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

type wireBody struct {
	Value    any `json:"value"`
	SenderID int `json:"sender_id"`
}

func handleInbound(c *gin.Context, ch message.Channel, ib *inbox.Inbox, log *logrus.Entry) {
	var body wireBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := message.Parse(ch, body.SenderID, body.Value)
	if err != nil {
		log.WithError(err).Warnf("rejected malformed %s message from sender %d", ch, body.SenderID)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ib.Push(msg)
	c.Status(http.StatusOK)
}
