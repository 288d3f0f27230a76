// Package server is the thin HTTP facade over the payment core. All
// semantics live in the core packages; handlers only translate requests and
// typed errors.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	tourpay "github.com/vijay-talsangi/tourist-app"
	"github.com/vijay-talsangi/tourist-app/internal/config"
	"github.com/vijay-talsangi/tourist-app/logger"
)

// Server wraps the Fiber application and the payment facade.
type Server struct {
	app *fiber.App
	cfg config.Config
	pay *tourpay.TourPay
	log logger.Logger
}

// New instantiates the HTTP server and wires the routes.
func New(cfg config.Config, pay *tourpay.TourPay, log logger.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	s := &Server{app: app, cfg: cfg, pay: pay, log: log}

	app.Use(requestID())

	app.Get("/healthz", s.handleHealth)
	app.Get("/v1/wallet", s.handleWalletState)

	app.Get("/v1/receivers/:id", s.handleResolveByID)
	app.Get("/v1/receivers", s.handleResolveByAlias)
	app.Post("/v1/receivers", s.handleRegister)

	app.Post("/v1/payments", s.handleRecordPayment)
	app.Post("/v1/payments/link", s.handleComposeLink)
	app.Get("/v1/payments", s.handleHistory)
	app.Get("/v1/payments/of/:address", s.handlePaymentsOf)
	app.Get("/v1/payments/to/:id", s.handlePaymentsTo)

	return s, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestID tags every request for log correlation.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("request_id", id)
		return c.Next()
	}
}
