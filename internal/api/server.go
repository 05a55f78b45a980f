package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/session-broker/internal/broker"
	"github.com/fathima-sithara/session-broker/internal/lingua"
	"github.com/fathima-sithara/session-broker/internal/ws"
)

type Server struct {
	broker *broker.Broker
	lingua *lingua.Client
	log    *zap.SugaredLogger
}

func NewServer(b *broker.Broker, gw *ws.Gateway, lc *lingua.Client, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New()
	app.Use(logger.New())
	s := &Server{broker: b, lingua: lc, log: log}

	api := app.Group("/v1")

	api.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	api.Get("/ws", websocket.New(gw.Handle()))

	api.Get("/rooms/:room_id/members", s.roomMembers)

	api.Post("/detect-and-translate", s.detectAndTranslate)
	api.Post("/summarize-conversation", s.summarizeConversation)

	return app
}

func (s *Server) roomMembers(c *fiber.Ctx) error {
	roomID := c.Params("room_id")
	members := s.broker.Members(roomID)
	if members == nil {
		members = []string{}
	}
	return c.JSON(fiber.Map{"status": "success", "data": members})
}
