package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/seeder/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/guide_helper/backend/seeder/internal/seeder"
)

func (h *Handler) URLs(c *gin.Context) {
	strZoom := c.Query("zoom")
	if strZoom == "" {
		h.RespondWithError(c, http.StatusBadRequest, errors.New("zoom is required"))
		return
	}

	zoom, err := strconv.Atoi(strZoom)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errors.New("zoom should be integer"))
		return
	}

	opts := h.defaults.Options
	opts.Zoom = zoom
	// listing never talks to the endpoint
	opts.DryRun = true

	list, err := h.seedUseCase.URLs(opts)
	if err != nil {
		if errors.Is(err, seeder.ErrInvalidConfig) {
			h.RespondWithError(c, http.StatusBadRequest, err)
			return
		}
		h.RespondWithInternalServerError(c, err)
		return
	}

	resp := dto.URLsResponse{
		Layer: list.Layer,
		Zoom:  list.Zoom,
		Count: len(list.URLs),
		URLs:  list.URLs,
	}

	h.RespondWithJSON(c, http.StatusOK, "got urls", resp)
}
