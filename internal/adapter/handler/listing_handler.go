package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
	"github.com/srgjo27/lodging_booking/internal/core/services"
)

type ListingHandler struct {
	svc    *services.ListingService
	logger *zap.Logger
}

func NewListingHandler(svc *services.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{svc: svc, logger: logger}
}

type createListingRequest struct {
	Name          string  `json:"name" binding:"required,max=255"`
	Address       string  `json:"address" binding:"required,max=255"`
	City          string  `json:"city" binding:"required,max=100"`
	Region        string  `json:"region" binding:"required,max=100"`
	Description   string  `json:"description"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
	ImagePath     string  `json:"image_path" binding:"max=512"`
	MapLink       string  `json:"map_link" binding:"max=400"`
}

type updateListingRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Address       *string  `json:"address" binding:"omitempty,min=1,max=255"`
	City          *string  `json:"city" binding:"omitempty,min=1,max=100"`
	Region        *string  `json:"region" binding:"omitempty,min=1,max=100"`
	Description   *string  `json:"description"`
	PricePerNight *float64 `json:"price_per_night" binding:"omitempty,gt=0"`
	ImagePath     *string  `json:"image_path" binding:"omitempty,max=512"`
	MapLink       *string  `json:"map_link" binding:"omitempty,max=400"`
}

type searchListingsQuery struct {
	City     string  `form:"city"`
	MaxPrice float64 `form:"max_price" binding:"gte=0"`
	Limit    int     `form:"limit" binding:"gte=0"`
}

func (h *ListingHandler) Create(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	actor, _ := actorFrom(c)
	listing, err := h.svc.Create(c.Request.Context(), actor, services.CreateListingRequest{
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		Region:        req.Region,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		ImagePath:     req.ImagePath,
		MapLink:       req.MapLink,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newListingResponse(listing))
}

func (h *ListingHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	listing, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newListingResponse(listing))
}

func (h *ListingHandler) Search(c *gin.Context) {
	var q searchListingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handleError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	listings, err := h.svc.Search(c.Request.Context(), domain.ListingFilter{
		City:     q.City,
		MaxPrice: q.MaxPrice,
		Limit:    q.Limit,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	out := make([]listingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, newListingResponse(&listings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ListingHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	actor, _ := actorFrom(c)
	listing, err := h.svc.Update(c.Request.Context(), actor, id, services.UpdateListingRequest{
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		Region:        req.Region,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		ImagePath:     req.ImagePath,
		MapLink:       req.MapLink,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newListingResponse(listing))
}

func (h *ListingHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	actor, _ := actorFrom(c)
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
