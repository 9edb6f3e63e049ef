// Copyright 2024-2026 Aiku AI

// Package listener serves the inbound webhook HTTP endpoint and hands
// decoded calls to the bridge registry.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/aiku/xmppwb/pkg/bridge"
)

// Config holds the listener bind settings.
type Config struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// webhookRequest is the decoded POST / body. Callers may send either JSON
// or a form-encoded body; Echo binds both by content type. Text is not
// required: empty text is acknowledged and dropped, never rejected.
type webhookRequest struct {
	Token    string `json:"token" form:"token" validate:"required"`
	UserName string `json:"user_name" form:"user_name" validate:"required"`
	Text     string `json:"text" form:"text"`
}

// requestValidator adapts validator.Validate to Echo's Validator interface.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Server accepts inbound webhook calls and dispatches them through the
// bridge registry.
type Server struct {
	echo     *echo.Echo
	registry *bridge.Registry
	sender   bridge.ChatSender
	log      zerolog.Logger
}

// New creates the webhook server. It does not start listening.
func New(registry *bridge.Registry, sender bridge.ChatSender, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())

	s := &Server{echo: e, registry: registry, sender: sender, log: log}
	e.POST("/", s.handleWebhook)
	return s
}

// handleWebhook handles POST /. The response is an empty acknowledgement
// regardless of routing outcome; delivery failures are never signaled back
// to the webhook caller. Malformed payloads are logged and dropped without
// touching the routing core.
func (s *Server) handleWebhook(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		s.log.Warn().Err(err).Msg("Dropping malformed webhook payload")
		return c.NoContent(http.StatusBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		s.log.Warn().Err(err).Msg("Dropping webhook payload with missing fields")
		return c.NoContent(http.StatusBadRequest)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		// Empty messages never reach the routing core.
		return c.NoContent(http.StatusOK)
	}

	s.log.Debug().Str("token", req.Token).Str("user_name", req.UserName).Msg("Handling inbound webhook call")
	s.registry.DispatchInboundWebhook(c.Request().Context(), s.sender, req.Token, req.UserName, text)
	return c.NoContent(http.StatusOK)
}

// Start begins serving on addr and blocks until the server is shut down.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("Listening for incoming webhooks")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting new connections and drains in-flight handlers
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
