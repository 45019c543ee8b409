package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"movie-recap/internal/response"
	"movie-recap/internal/types"
	apperrors "movie-recap/pkg/errors"
)

const maxHistoryLimit = 500

func (h Handler) GetHistory(c *gin.Context) {
	if h.History == nil {
		response.Success(c, []types.MovieRun{})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	rows, err := h.History.History(c.Request.Context(), limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, rows)
}
