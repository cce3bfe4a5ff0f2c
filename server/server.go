// Package server exposes the conversational assistant over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tiendita-labs/tiendita/agent/orchestrator"
	"github.com/tiendita-labs/tiendita/agent/state"
)

type Config struct {
	Addr           string        `default:":8080"`
	RequestTimeout time.Duration `split_words:"true" default:"30s"`
}

// Responder answers one customer message. Satisfied by
// orchestrator.Orchestrator.
type Responder interface {
	Respond(ctx context.Context, customerID, text string) (string, error)
	ConfirmPayment(ctx context.Context, orderID string) error
	EndSession(customerID string)
}

type Server struct {
	responder Responder
	engine    *gin.Engine
	timeout   time.Duration
}

func New(responder Responder, cfg Config) *Server {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		responder: responder,
		timeout:   timeout,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", s.handleHealth)
	engine.POST("/v1/messages", s.handleMessage)
	engine.POST("/v1/payments/notifications", s.handlePaymentNotification)
	engine.DELETE("/v1/sessions/:customer_id", s.handleEndSession)
	s.engine = engine

	return s
}

// Handler exposes the router for tests and for embedding in a custom
// http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

type messageRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

type messageResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "customer_id and text are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	reply, err := s.responder.Respond(ctx, req.CustomerID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrInvalidCustomer),
			errors.Is(err, orchestrator.ErrInvalidMessage):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			log.Error().Err(err).Str("customer_id", req.CustomerID).Msg("respond failed")
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, messageResponse{Reply: reply})
}

type paymentNotification struct {
	ExternalReference string `json:"external_reference" binding:"required"`
	Status            string `json:"status"`
}

// handlePaymentNotification receives the payment provider's webhook. The
// external reference carries the order id set at preference creation.
func (s *Server) handlePaymentNotification(c *gin.Context) {
	var req paymentNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "external_reference is required"})
		return
	}
	if req.Status != "" && req.Status != "approved" {
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	if err := s.responder.ConfirmPayment(ctx, req.ExternalReference); err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		case errors.Is(err, state.ErrInvalidTransition):
			c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			log.Error().Err(err).Str("order_id", req.ExternalReference).Msg("confirm payment failed")
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEndSession(c *gin.Context) {
	s.responder.EndSession(c.Param("customer_id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
