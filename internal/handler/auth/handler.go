package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/service/auth"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/httputil"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/validator"
)

type Handler struct {
	service   *auth.Service
	validator validator.Validator
}

func NewHandler(service *auth.Service, v validator.Validator) *Handler {
	return &Handler{
		service:   service,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

// RegisterUserRoutes registers the user lookup endpoints, mounted behind
// the auth middleware.
func (h *Handler) RegisterUserRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/:id", h.GetUser)
		users.GET("/:id/patients", h.GetDoctorPatients)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			httputil.RespondWithError(c, apperrors.Conflict(err.Error(), err))
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid user ID", err))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) GetDoctorPatients(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	patients, err := h.service.GetDoctorPatients(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}
