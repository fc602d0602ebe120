package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"kilim/internal/domain"
	"kilim/internal/payment"
	"kilim/internal/repository"
	"kilim/internal/service"
)

type Server struct {
	engine   *gin.Engine
	orders   *service.OrderService
	webhooks *service.WebhookService
	provider payment.Provider
	apiKey   string
}

func NewServer(orders *service.OrderService, webhooks *service.WebhookService, provider payment.Provider, apiKey string) *Server {
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())
	s := &Server{engine: r, orders: orders, webhooks: webhooks, provider: provider, apiKey: apiKey}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		checkout := v1.Group("/checkout")
		checkout.POST("/session", RequireAPIKey(s.apiKey), s.createCheckoutSession)
		checkout.POST("/webhook", s.handleWebhook)

		v1.GET("/orders/status", RequireAPIKey(s.apiKey), s.orderStatus)
	}
}

type createCheckoutReq struct {
	Items           []domain.OrderItem     `json:"items"`
	CustomerEmail   string                 `json:"customer_email"`
	CustomerName    string                 `json:"customer_name"`
	CustomerPhone   string                 `json:"customer_phone"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
}

type createCheckoutResp struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
	OrderID     int64  `json:"order_id"`
}

// @Summary Create checkout session
// @Tags checkout
// @Accept json
// @Produce json
// @Param X-API-KEY header string true "API key"
// @Param input body createCheckoutReq true "Checkout"
// @Success 200 {object} createCheckoutResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /checkout/session [post]
func (s *Server) createCheckoutSession(c *gin.Context) {
	var req createCheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := s.orders.CreateCheckout(c, service.CheckoutInput{
		Items:         req.Items,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Shipping:      req.ShippingAddress,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, createCheckoutResp{
		CheckoutURL: res.CheckoutURL,
		SessionID:   res.SessionID,
		OrderID:     res.OrderID,
	})
}

// @Summary Payment provider webhook
// @Tags checkout
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Event signature"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /checkout/webhook [post]
func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}
	ev, err := s.provider.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}
	if err := s.webhooks.HandleEvent(c, ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type orderStatusResp struct {
	OrderID       int64              `json:"order_id"`
	Status        domain.OrderStatus `json:"status"`
	CustomerEmail string             `json:"customer_email"`
	CustomerName  string             `json:"customer_name"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Currency      string             `json:"currency"`
	Items         []domain.OrderItem `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	PaidAt        *time.Time         `json:"paid_at"`
}

// @Summary Get order status
// @Tags orders
// @Produce json
// @Param X-API-KEY header string true "API key"
// @Param session_id query string false "Checkout session reference"
// @Param order_id query int false "Order ID"
// @Success 200 {object} orderStatusResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/status [get]
func (s *Server) orderStatus(c *gin.Context) {
	sessionID := c.Query("session_id")
	orderIDRaw := c.Query("order_id")
	if sessionID == "" && orderIDRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id or order_id required"})
		return
	}

	var (
		o   *domain.Order
		err error
	)
	if sessionID != "" {
		o, err = s.orders.GetOrderBySession(c, sessionID)
	} else {
		var id int64
		id, err = strconv.ParseInt(orderIDRaw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_id"})
			return
		}
		o, err = s.orders.GetOrder(c, id)
	}
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orderStatusResp{
		OrderID:       o.ID,
		Status:        o.Status,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		Items:         o.Items,
		CreatedAt:     o.CreatedAt,
		PaidAt:        o.PaidAt,
	})
}

func mapErrorToStatus(err error) int {
	var pe *payment.ProviderError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
