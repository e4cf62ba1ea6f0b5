package appointment

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/service/appointment"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/httputil"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/validator"
)

type Handler struct {
	service   *appointment.Service
	users     repository.UserRepository
	validator validator.Validator
}

func NewHandler(service *appointment.Service, users repository.UserRepository, v validator.Validator) *Handler {
	return &Handler{
		service:   service,
		users:     users,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.DELETE("/:id", h.Cancel)
	}
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), req.PatientID, req.DoctorID, req.Date, req.Time, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, mapServiceError(err))
		return
	}

	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, mapServiceError(err))
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"cancelled": cancelled})
}

func (h *Handler) GetAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	avail, err := h.service.GetAvailability(c.Request.Context(), doctorID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, mapServiceError(err))
		return
	}

	httputil.RespondWithSuccess(c, avail)
}

// List serves both patient history (?patient_id=) and a doctor's roster
// bookings (?doctor_id=).
func (h *Handler) List(c *gin.Context) {
	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		appointments, err := h.service.ForPatient(c.Request.Context(), patientID)
		if err != nil {
			httputil.RespondWithError(c, mapServiceError(err))
			return
		}
		httputil.RespondWithSuccess(c, appointments)
		return
	}

	raw := c.Query("doctor_id")
	if raw == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("patient_id or doctor_id is required", nil))
		return
	}
	doctorID, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	doctor, err := h.users.Get(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if doctor.Role != model.RoleDoctor {
		httputil.RespondWithError(c, apperrors.NotFound("doctor", nil))
		return
	}

	appointments, err := h.service.ForDoctor(c.Request.Context(), doctor.PatientIDs)
	if err != nil {
		httputil.RespondWithError(c, mapServiceError(err))
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, appointment.ErrSlotTaken),
		errors.Is(err, appointment.ErrSlotContended):
		return apperrors.Conflict(err.Error(), err)
	case errors.Is(err, appointment.ErrInvalidSlot),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrEmptyReason):
		return apperrors.BadRequest(err.Error(), err)
	default:
		return err
	}
}
