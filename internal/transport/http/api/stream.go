package api

import (
	"io"

	"sentidash/internal/session"

	"github.com/gin-gonic/gin"
)

type changeEvent struct {
	Target string       `json:"target"`
	Error  string       `json:"error,omitempty"`
	View   session.View `json:"view"`
}

// handleStateStream pushes the view as server-sent events: one "state" event
// on connect and one "change" event per session change. Slow clients miss
// intermediate changes; each event carries the full view.
func (r *Router) handleStateStream(c *gin.Context) {
	changes := make(chan session.Change, 16)
	unsubscribe := r.Session.Subscribe(session.ObserverFunc(func(ch session.Change) {
		select {
		case changes <- ch:
		default:
		}
	}))
	defer unsubscribe()

	c.SSEvent("state", r.Session.View())
	c.Writer.Flush()
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ch := <-changes:
			ev := changeEvent{Target: ch.Target, View: r.Session.View()}
			if ch.Err != nil {
				ev.Error = ch.Err.Error()
			}
			c.SSEvent("change", ev)
			return true
		}
	})
}
