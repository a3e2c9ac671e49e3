package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
	"github.com/satriahrh/npctalk/usecase"
)

const (
	mimeNDJSON          = "application/x-ndjson"
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, answers *usecase.AnswerService, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "npctalk",
		})
	})

	e.POST("/ask", func(c echo.Context) error {
		return ask(c, answers, logger)
	})

	e.GET("/exchanges", func(c echo.Context) error {
		return listExchanges(c, answers, logger)
	})

	e.GET("/exchanges/:id", func(c echo.Context) error {
		return getExchange(c, answers, logger)
	})
}

// ask streams the answer as newline-delimited JSON, one line per fragment
func ask(c echo.Context, answers *usecase.AnswerService, logger *zap.Logger) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind ask request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	res := c.Response()
	encoder := json.NewEncoder(res)

	err := answers.Answer(c.Request().Context(), req.Question, func(fragment string) error {
		if !res.Committed {
			res.Header().Set(echo.HeaderContentType, mimeNDJSON)
			res.WriteHeader(http.StatusOK)
		}
		if err := encoder.Encode(AnswerLine{Answer: fragment}); err != nil {
			return err
		}
		res.Flush()
		return nil
	})

	switch {
	case errors.Is(err, usecase.ErrEmptyQuestion):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "RAG chain or question not provided",
			Message: "question is required",
		})
	case err != nil && !res.Committed:
		logger.Error("Failed to answer question", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "answer_failed",
			Message: "Failed to generate an answer",
		})
	case err != nil:
		// Lines already written stay written
		logger.Error("Answer stream interrupted", zap.Error(err))
		return nil
	}

	if !res.Committed {
		res.Header().Set(echo.HeaderContentType, mimeNDJSON)
		res.WriteHeader(http.StatusOK)
	}
	return nil
}

func listExchanges(c echo.Context, answers *usecase.AnswerService, logger *zap.Logger) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a positive integer",
			})
		}
		limit = min(parsed, maxHistoryLimit)
	}

	exchanges, err := answers.Recent(c.Request().Context(), limit)
	if err != nil {
		logger.Error("Failed to list exchanges", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list exchanges",
		})
	}

	response := make([]ExchangeResponse, 0, len(exchanges))
	for _, exchange := range exchanges {
		response = append(response, toExchangeResponse(exchange))
	}

	return c.JSON(http.StatusOK, response)
}

func getExchange(c echo.Context, answers *usecase.AnswerService, logger *zap.Logger) error {
	exchange, err := answers.Get(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, repositories.ErrExchangeNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Exchange not found",
		})
	case err != nil:
		logger.Error("Failed to get exchange", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get exchange",
		})
	}

	return c.JSON(http.StatusOK, toExchangeResponse(exchange))
}

func toExchangeResponse(exchange *entities.Exchange) ExchangeResponse {
	return ExchangeResponse{
		ID:        exchange.ID,
		Question:  exchange.Question,
		Answer:    exchange.Answer,
		Failed:    exchange.Failed,
		Sources:   exchange.Sources,
		CreatedAt: exchange.CreatedAt,
	}
}
