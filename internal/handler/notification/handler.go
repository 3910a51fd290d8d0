package notification

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/middleware"
	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/service/notification"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/httputil"
)

type Handler struct {
	service notification.Service
}

func NewHandler(service notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("authentication required")))
		return
	}

	notifications, err := h.service.List(c.Request.Context(), actor.Account.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("authentication required")))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid notification ID", err))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, actor.Account.ID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"read": true})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("authentication required")))
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), actor.Account.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, model.MarkAllReadResponse{MarkedRead: updated})
}
