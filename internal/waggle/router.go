package waggle

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/ravenhall/waggle/internal/waggle/service/daemon"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	agentID    string
	swarm      *swarm.Module
	dispatcher *daemon.Dispatcher
	registry   *hooks.Registry
}

// initRouter installs the read-mostly status API. Coordination itself stays
// on the store-polling path; this surface only observes, plus worker
// dispatch/cancel for operators.
func initRouter(g *gin.Engine, deps *routerDeps) {
	h := &statusHandler{deps: deps}

	apiV1 := g.Group("/v1")
	{
		apiV1.GET("/agents", h.listAgents)
		apiV1.GET("/messages", h.listMessages)
		apiV1.GET("/broadcasts", h.listBroadcasts)
		apiV1.GET("/consensus", h.listPendingConsensus)
		apiV1.GET("/consensus/:id", h.getConsensus)
		apiV1.GET("/handoffs", h.listHandoffs)
		apiV1.GET("/stats", h.stats)
		apiV1.GET("/hooks", h.listHooks)

		apiV1.GET("/workers", h.listWorkers)
		apiV1.POST("/workers", h.dispatchWorker)
		apiV1.DELETE("/workers/:id", h.cancelWorker)

		apiV1.GET("/events", h.eventFeed)
	}

	pprof.Register(g)
}

type statusHandler struct {
	deps *routerDeps
}

func (h *statusHandler) listAgents(c *gin.Context) {
	agents, err := h.deps.swarm.Bus.GetAgents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, agents)
}

func (h *statusHandler) listMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := repo.MessageFilter{
		Agent:      c.Query("agent"),
		From:       c.Query("from"),
		Type:       entity.MessageType(c.Query("type")),
		UnreadOnly: c.Query("unread") == "true",
		Limit:      limit,
	}
	msgs, err := h.deps.swarm.Bus.GetMessages(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *statusHandler) listBroadcasts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	minQuality, _ := strconv.ParseFloat(c.Query("min_quality"), 64)
	bcs, err := h.deps.swarm.Patterns.GetPatternBroadcasts(c.Request.Context(), entity.BroadcastFilter{
		Domain:     c.Query("domain"),
		MinQuality: minQuality,
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bcs)
}

func (h *statusHandler) listPendingConsensus(c *gin.Context) {
	cs, err := h.deps.swarm.Consensus.GetPendingConsensus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *statusHandler) getConsensus(c *gin.Context) {
	res, err := h.deps.swarm.Consensus.GetConsensus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *statusHandler) listHandoffs(c *gin.Context) {
	hs, err := h.deps.swarm.Handoffs.ListHandoffs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hs)
}

func (h *statusHandler) stats(c *gin.Context) {
	stats, err := h.deps.swarm.Stats.Collect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *statusHandler) listHooks(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.registry.List(hooks.ListFilter{}))
}

func (h *statusHandler) listWorkers(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.dispatcher.Status())
}

func (h *statusHandler) dispatchWorker(c *gin.Context) {
	var req struct {
		Type    string            `json:"type" binding:"required"`
		Payload map[string]string `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.deps.dispatcher.Dispatch(daemon.TriggerType(req.Type), req.Payload)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, st)
}

func (h *statusHandler) cancelWorker(c *gin.Context) {
	if !h.deps.dispatcher.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "worker not found or already finished"})
		return
	}
	c.Status(http.StatusNoContent)
}

// eventFeed streams new bus messages as server-sent events. It polls the
// store, mirroring how agents themselves consume the bus.
func (h *statusHandler) eventFeed(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", sse.ContentType)
	c.Writer.Header().Set("Cache-Control", "no-cache")

	lastSeen := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
		msgs, err := h.deps.swarm.Bus.GetMessages(c.Request.Context(), repo.MessageFilter{})
		if err != nil {
			return
		}
		// Newest first; walk backwards so events emit in send order.
		var fresh []*entity.Message
		for _, m := range msgs {
			if m.CreatedAt.After(lastSeen) {
				fresh = append(fresh, m)
			}
		}
		for i := len(fresh) - 1; i >= 0; i-- {
			m := fresh[i]
			if err := sse.Encode(c.Writer, sse.Event{
				Id:    m.ID,
				Event: "message",
				Data:  m,
			}); err != nil {
				return
			}
			if m.CreatedAt.After(lastSeen) {
				lastSeen = m.CreatedAt
			}
		}
		c.Writer.Flush()
	}
}
