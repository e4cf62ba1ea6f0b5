package chat

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/service/chat"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/httputil"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/validator"
)

type Handler struct {
	service   *chat.Service
	validator validator.Validator
}

func NewHandler(service *chat.Service, v validator.Validator) *Handler {
	return &Handler{
		service:   service,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Complete)
}

func (h *Handler) Complete(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	reply, err := h.service.Complete(c.Request.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, chat.ErrNotConfigured) {
			httputil.RespondWithError(c, apperrors.Unavailable("chat assistant is not available", err))
			return
		}
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	httputil.RespondWithSuccess(c, model.ChatReply{Reply: reply})
}
