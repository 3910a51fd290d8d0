package doctor

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/healthrec/record-api/internal/middleware"
	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/service/assignment"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/httputil"
)

type Handler struct {
	service assignment.Service
}

func NewHandler(service assignment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.POST("/assign", h.AssignDoctor)
		doctors.GET("/my-patients", h.ListMyPatients)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) AssignDoctor(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("authentication required")))
		return
	}

	var req model.AssignDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	patient, err := h.service.AssignDoctor(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) ListMyPatients(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("authentication required")))
		return
	}

	patients, err := h.service.ListMyPatients(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}
