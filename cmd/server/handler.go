package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"

	logcruncher "github.com/baditaflorin/go_log_cruncher"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// CrunchResponse represents a crunch response
type CrunchResponse struct {
	Report         *logcruncher.Report `json:"report"`
	Stats          logcruncher.Stats   `json:"stats"`
	ProcessingTime string              `json:"processing_time"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// handler serves crunch requests with a shared cruncher
type handler struct {
	cruncher       *logcruncher.Cruncher
	logger         ports.Logger
	requestTimeout time.Duration
}

// serve is the main fasthttp request handler
func (h *handler) serve(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "LogCruncher")

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		h.handleHealthCheck(ctx)
	case "/crunch":
		h.handleCrunch(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		h.writeJSONError(ctx, "Not found")
	}

	h.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func (h *handler) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleCrunch crunches the NDJSON request body
func (h *handler) handleCrunch(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		h.writeJSONError(ctx, "Method not allowed")
		return
	}

	body := ctx.PostBody()

	c, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	startTime := time.Now()
	report, stats, err := h.cruncher.CrunchReader(c, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		switch {
		case errors.Is(err, logcruncher.ErrRecordTooLarge):
			ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
		case errors.Is(err, context.DeadlineExceeded):
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		default:
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		}
		h.logger.Warn("Crunch failed", "error", err, "bytes", len(body))
		h.writeJSONError(ctx, err.Error())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, CrunchResponse{
		Report:         report,
		Stats:          stats,
		ProcessingTime: time.Since(startTime).String(),
	})
}

// writeJSONResponse writes a JSON response to the context
func (h *handler) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		h.logger.Error("Error marshaling JSON response", "error", err)
		h.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (h *handler) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		h.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
