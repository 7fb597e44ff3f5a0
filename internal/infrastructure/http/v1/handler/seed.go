package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/seeder/internal/infrastructure/http/v1/dto"
	"github.com/jaennil/guide_helper/backend/seeder/internal/seeder"
	"github.com/jaennil/guide_helper/backend/seeder/internal/usecase"
	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
)

func (h *Handler) StartSeed(c *gin.Context) {
	l := logger.FromContext(c.Request.Context())

	var req dto.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, errors.New("request body is not valid json"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, err)
		return
	}

	opts, minZoom, maxZoom := req.Options(h.defaults.Options, h.defaults.MinZoom, h.defaults.MaxZoom)

	id, err := h.seedUseCase.Start(opts, minZoom, maxZoom)
	if err != nil {
		if errors.Is(err, seeder.ErrInvalidConfig) || errors.Is(err, usecase.ErrInvalidZoomRange) {
			h.RespondWithError(c, http.StatusUnprocessableEntity, err)
			return
		}
		l.Error("failed to start seed job", "error", err)
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusAccepted, "seed job started", dto.SeedResponse{ID: id})
}

func (h *Handler) SeedStatus(c *gin.Context) {
	status, err := h.seedUseCase.Job(c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			h.RespondWithError(c, http.StatusNotFound, err)
			return
		}
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusOK, "got seed job", status)
}

func (h *Handler) CancelSeed(c *gin.Context) {
	id := c.Param("id")
	if err := h.seedUseCase.Cancel(id); err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			h.RespondWithError(c, http.StatusNotFound, err)
			return
		}
		h.RespondWithInternalServerError(c, err)
		return
	}

	h.RespondWithJSON(c, http.StatusAccepted, "seed job cancelled", dto.SeedResponse{ID: id})
}
