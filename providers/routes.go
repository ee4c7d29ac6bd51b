// Package providers exposes the dashboard's HTTP surface: the REST API
// served through Fiber and the raw fasthttp WebSocket upgrade handler.
package providers

import (
	"strconv"
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Sahana-1004/HCI-CIA-2/config"
	"github.com/Sahana-1004/HCI-CIA-2/src/hub"
	"github.com/Sahana-1004/HCI-CIA-2/src/storage"
)

// API bundles the HTTP handlers with their collaborators.
type API struct {
	hub      *hub.Hub
	store    storage.Store
	cfg      *config.Config
	upgrader websocket.FastHTTPUpgrader
	logger   zerolog.Logger
}

// New creates the HTTP API over the given hub and store.
func New(h *hub.Hub, store storage.Store, cfg *config.Config, logger zerolog.Logger) *API {
	return &API{
		hub:   h,
		store: store,
		cfg:   cfg,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// The relay has no auth step; every origin's upgrade succeeds.
			CheckOrigin: func(*fasthttp.RequestCtx) bool { return true },
		},
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers the REST surface on the Fiber app. The
// actual WebSocket upgrade uses FastHTTPHandler, registered at the
// server level since Fiber v3 does not expose *fasthttp.RequestCtx.
func (a *API) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")

	api.Get("/users", a.listUsers)
	api.Get("/users/:id", a.getUser)

	api.Get("/conversations", a.listConversations)
	api.Get("/conversations/:id", a.getConversation)
	api.Get("/conversations/:id/messages", a.listMessages)
	api.Post("/conversations", a.createConversation)
	api.Post("/messages", a.createMessage)

	api.Get("/dashboard/stats", a.dashboardStats)
	api.Get("/dashboard/pending-work", a.dashboardPendingWork)
	api.Get("/dashboard/performance", a.dashboardPerformance)
	api.Get("/dashboard/completed-work", a.dashboardCompletedWork)
	api.Get("/dashboard/notifications", a.dashboardNotifications)
	api.Get("/dashboard/project-success", a.dashboardProjectSuccess)
	api.Get("/dashboard/workload", a.dashboardWorkload)

	app.Get("/ws/info", a.handleInfo)
}

func (a *API) listUsers(c fiber.Ctx) error {
	return c.JSON(a.store.AllUsers())
}

func (a *API) getUser(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	user, ok := a.store.GetUser(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(user)
}

func (a *API) listConversations(c fiber.Ctx) error {
	return c.JSON(a.store.AllConversations())
}

func (a *API) getConversation(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	}
	conversation, ok := a.store.GetConversation(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	}
	return c.JSON(conversation)
}

func (a *API) listMessages(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	}
	return c.JSON(a.store.MessagesByConversation(id))
}

func (a *API) createConversation(c fiber.Ctx) error {
	var in storage.InsertConversation
	if err := c.Bind().Body(&in); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}
	conversation, err := a.store.CreateConversation(in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}
	return c.Status(fiber.StatusCreated).JSON(conversation)
}

func (a *API) createMessage(c fiber.Ctx) error {
	var in storage.InsertMessage
	if err := c.Bind().Body(&in); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create message"})
	}
	message, err := a.store.CreateMessage(in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create message"})
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

func (a *API) dashboardStats(c fiber.Ctx) error {
	return c.JSON(a.store.GetDashboardStats())
}

func (a *API) dashboardPendingWork(c fiber.Ctx) error {
	return c.JSON(a.store.GetPendingWork())
}

func (a *API) dashboardPerformance(c fiber.Ctx) error {
	return c.JSON(a.store.GetPerformance())
}

func (a *API) dashboardCompletedWork(c fiber.Ctx) error {
	return c.JSON(a.store.GetCompletedWork())
}

func (a *API) dashboardNotifications(c fiber.Ctx) error {
	return c.JSON(a.store.GetNotifications())
}

func (a *API) dashboardProjectSuccess(c fiber.Ctx) error {
	return c.JSON(a.store.GetProjectSuccess())
}

func (a *API) dashboardWorkload(c fiber.Ctx) error {
	return c.JSON(a.store.GetWorkload())
}

func (a *API) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket":        true,
		"endpoint":         "/ws",
		"clients":          a.hub.ClientCount(),
		"reconnectDelayMs": a.cfg.ReconnectDelay.Milliseconds(),
	})
}

// FastHTTPHandler returns a raw fasthttp handler for WebSocket
// upgrades. Register this on the fasthttp server at the "/ws" path.
func (a *API) FastHTTPHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		upgrade := string(ctx.Request.Header.Peek("Upgrade"))
		if !strings.EqualFold(upgrade, "websocket") {
			ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
			ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
			return
		}

		identity := uuid.New().String()

		err := a.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
			client := hub.NewClient(identity, &serverConn{conn}, a.hub)
			a.hub.Register(client)
			go client.WritePump()
			client.ReadPump()
		})
		if err != nil {
			a.logger.Error().Err(err).Msg("websocket upgrade failed")
		}
	}
}

// serverConn adapts fasthttp/websocket.Conn to types.Conn.
type serverConn struct {
	conn *websocket.Conn
}

func (s *serverConn) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

func (s *serverConn) WriteMessage(data []byte) error {
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *serverConn) Close() error { return s.conn.Close() }
