package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/service/analytics"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/httputil"
)

type Handler struct {
	service *analytics.Service
}

func NewHandler(service *analytics.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/analytics/overview", h.Overview)
}

func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, overview)
}
