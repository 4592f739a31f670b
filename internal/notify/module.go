package notify

import (
	"github.com/gin-gonic/gin"

	apphttp "localist_backend/internal/http"
	"localist_backend/platform/httpkit"
)

// Module exposes the per-session notification outbox over HTTP. Clients
// poll it and render toasts and haptic pulses locally.
type Module struct {
	outbox *Outbox
}

// NewModule creates the notification module around the shared outbox.
func NewModule(outbox *Outbox) *Module {
	return &Module{outbox: outbox}
}

func (m *Module) Name() string {
	return "notifications"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/notifications", m.drain)
}

// drain returns and clears the session's pending notifications.
func (m *Module) drain(c *gin.Context) {
	httpkit.OK(c, gin.H{"notifications": m.outbox.Drain(httpkit.SessionID(c))})
}

var _ apphttp.Module = (*Module)(nil)
