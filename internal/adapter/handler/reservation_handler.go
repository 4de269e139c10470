package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
	"github.com/srgjo27/lodging_booking/internal/core/services"
)

type ReservationHandler struct {
	svc    *services.ReservationService
	logger *zap.Logger
}

func NewReservationHandler(svc *services.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, logger: logger}
}

type submitReservationRequest struct {
	ListingID int64  `json:"listing_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

func (h *ReservationHandler) Submit(c *gin.Context) {
	var req submitReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	actor, _ := actorFrom(c)
	reservation, err := h.svc.Submit(c.Request.Context(), actor, services.SubmitReservationRequest{
		ListingID: req.ListingID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newReservationResponse(reservation))
}

func (h *ReservationHandler) ListMine(c *gin.Context) {
	actor, _ := actorFrom(c)
	reservations, err := h.svc.ListForTenant(c.Request.Context(), actor)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	out := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, newReservationResponse(&reservations[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) ListPending(c *gin.Context) {
	actor, _ := actorFrom(c)
	reservations, err := h.svc.ListPendingForOwner(c.Request.Context(), actor)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	out := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		r := newReservationResponse(&reservations[i].Reservation)
		r.ListingName = reservations[i].ListingName
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, h.svc.Confirm)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.svc.Cancel)
}

func (h *ReservationHandler) Reject(c *gin.Context) {
	h.transition(c, h.svc.Reject)
}

type transitionFunc func(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error)

func (h *ReservationHandler) transition(c *gin.Context, apply transitionFunc) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	actor, _ := actorFrom(c)
	reservation, err := apply(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newReservationResponse(reservation))
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidInput)
	}
	return id, nil
}
