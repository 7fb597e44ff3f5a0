package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/seeder/internal/seeder"
	"github.com/jaennil/guide_helper/backend/seeder/internal/usecase"
)

const (
	internalServerErrorText = "the server encountered an error and could not process your request"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Defaults are the configured seeding values requests fall back to.
type Defaults struct {
	Options seeder.Options
	MinZoom int
	MaxZoom int
}

type Handler struct {
	validate    *validator.Validate
	seedUseCase *usecase.SeedUseCase
	defaults    Defaults
}

func NewHandler(v *validator.Validate, uc *usecase.SeedUseCase, d Defaults) *Handler {
	return &Handler{
		validate:    v,
		seedUseCase: uc,
		defaults:    d,
	}
}

func (h *Handler) RespondWithInternalServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
}

func (h *Handler) RespondWithError(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	h.RespondWithJSON(c, code, err.Error(), nil)
}

func (h *Handler) RespondWithJSON(c *gin.Context, code int, message string, data any) {
	success := code < 400

	r := response{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, r)
}
