package messaging

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/service/messaging"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/httputil"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/validator"
)

type Handler struct {
	service   *messaging.Service
	validator validator.Validator
}

func NewHandler(service *messaging.Service, v validator.Validator) *Handler {
	return &Handler{
		service:   service,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.POST("", h.Send)
		messages.GET("/conversation", h.Conversation)
		messages.POST("/read", h.MarkRead)
		messages.GET("/inbox", h.DoctorInbox)
	}
}

func (h *Handler) Send(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), req.SenderID, req.ReceiverID, req.Text)
	if err != nil {
		if errors.Is(err, messaging.ErrEmptyMessage) {
			httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, msg)
}

func (h *Handler) Conversation(c *gin.Context) {
	a, err := uuid.Parse(c.Query("user_a"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user_a", err))
		return
	}
	b, err := uuid.Parse(c.Query("user_b"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user_b", err))
		return
	}

	msgs, err := h.service.Conversation(c.Request.Context(), a, b)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msgs)
}

func (h *Handler) MarkRead(c *gin.Context) {
	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), req.ReaderID, req.PartyID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"marked": true})
}

func (h *Handler) DoctorInbox(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	inbox, err := h.service.DoctorInbox(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, inbox)
}
