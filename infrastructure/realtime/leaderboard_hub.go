package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"creator-contest/domain/model"

	"github.com/gin-gonic/gin"
)

// Hub fans leaderboard events out to SSE subscribers, keyed by contest.
type Hub struct {
	mu       sync.RWMutex
	contests map[string]map[chan model.LeaderboardEvent]struct{}
}

func NewLeaderboardHub() *Hub {
	return &Hub{contests: make(map[string]map[chan model.LeaderboardEvent]struct{})}
}

// Serve streams events for the contest in the :contestId path parameter until the client goes away.
func (h *Hub) Serve(c *gin.Context) {
	contestID := c.Param("contestId")
	if contestID == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := make(chan model.LeaderboardEvent, 8)
	h.subscribe(contestID, ch)
	defer h.unsubscribe(contestID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *Hub) subscribe(contestID string, ch chan model.LeaderboardEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.contests[contestID] == nil {
		h.contests[contestID] = make(map[chan model.LeaderboardEvent]struct{})
	}
	h.contests[contestID][ch] = struct{}{}
}

func (h *Hub) unsubscribe(contestID string, ch chan model.LeaderboardEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.contests[contestID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.contests, contestID)
		}
	}
}

func (h *Hub) Subscribers(contestID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.contests[contestID])
}

// BroadcastLeaderboard never blocks; slow subscribers miss events.
func (h *Hub) BroadcastLeaderboard(evt model.LeaderboardEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.contests[evt.ContestID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
