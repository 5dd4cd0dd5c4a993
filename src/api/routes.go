// Package api wires the HTTP surface: state documents under /api/state
// and the WebSocket notification endpoint under /ws.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/proxydeck/backend/src/bus"
	"github.com/proxydeck/backend/src/notify"
	"github.com/proxydeck/backend/src/store"
)

// Handler owns the route handlers and their collaborators.
type Handler struct {
	hub      *bus.Hub
	notifier *notify.Notifier
	store    store.Store
	logger   zerolog.Logger
}

// New creates the HTTP handler set.
func New(h *bus.Hub, n *notify.Notifier, s store.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      h,
		notifier: n,
		store:    s,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers the REST routes via Fiber. The WebSocket
// upgrade itself uses FastHTTPHandler, registered at the app level since
// Fiber v3 does not expose *fasthttp.RequestCtx.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/ws/info", h.handleInfo)
	app.Get("/api/state/:kind", h.handleGetState)
	app.Put("/api/state/:kind", h.handlePutState)
}

func (h *Handler) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket": true,
		"endpoint":  "/ws",
		"clients":   h.hub.ClientCount(),
		"kinds":     store.Kinds(),
	})
}

func (h *Handler) handleGetState(c fiber.Ctx) error {
	kind := c.Params("kind")

	doc, err := h.store.Load(c.Context(), kind)
	if errors.Is(err, store.ErrUnknownKind) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		h.logger.Error().Err(err).Str("kind", kind).Msg("state load failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "state load failed"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(doc)
}

func (h *Handler) handlePutState(c fiber.Ctx) error {
	kind := c.Params("kind")
	body := c.Body()

	if err := store.ValidateDoc(kind, body); err != nil {
		if errors.Is(err, store.ErrUnknownKind) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	doc, err := h.store.Save(c.Context(), kind, body)
	if err != nil {
		h.logger.Error().Err(err).Str("kind", kind).Msg("state save failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "state save failed"})
	}

	// Notify connected clients only after the mutation has succeeded.
	if err := h.notifier.EmitStateChange(kind); err != nil {
		h.logger.Error().Err(err).Str("kind", kind).Msg("state change emit failed")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(doc)
}
