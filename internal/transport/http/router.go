// Пакет httpapi — HTTP API сервиса заказов на gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/service/orders"
)

// PaymentStatusUpdatedMessage — сообщение ответа на обновление статуса оплаты.
const PaymentStatusUpdatedMessage = "Status de pagamento atualizado com sucesso"

// UseCases — зависимости HTTP-слоя.
type UseCases struct {
	CreateOrder         *orders.CreateOrderUseCase
	GetOrderByID        *orders.GetOrderByIDUseCase
	GetOrdersByStatus   *orders.GetOrdersByStatusUseCase
	UpdatePaymentStatus *orders.UpdateOrderPaymentStatusUseCase
	ChangeStatus        *orders.ChangeOrderStatusUseCase
	GetOrderDetails     *orders.GetOrderDetailsUseCase
	GetOrderTimeline    *orders.GetOrderTimelineUseCase
}

// Server держит gin engine и use case.
type Server struct {
	engine    *gin.Engine
	useCases  UseCases
	validator *validatorv10.Validate
	logger    *log.Entry
}

// NewServer собирает engine с middleware и маршрутами.
func NewServer(useCases UseCases, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(Recovery(logger), RequestLogger(logger))

	s := &Server{
		engine:    engine,
		useCases:  useCases,
		validator: NewValidator(),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

// Handler возвращает http.Handler для http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.POST("/orders", s.createOrder)
	s.engine.GET("/orders", s.listOrders)
	s.engine.GET("/orders/by-status", s.listOrders)
	s.engine.GET("/orders/:id", s.getOrder)
	s.engine.GET("/order/:id", s.getOrder)
	s.engine.GET("/orders/:id/details", s.getOrderDetails)
	s.engine.GET("/orders/:id/timeline", s.getOrderTimeline)
	s.engine.PATCH("/orders/:id/payment-status", s.updatePaymentStatus)
	s.engine.PATCH("/orders/:id/status", s.changeStatus)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route_not_found"})
	})
}

func (s *Server) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := BindAndValidate(c, &req, s.validator); err != nil {
		return
	}

	res, err := s.useCases.CreateOrder.Execute(c.Request.Context(), orders.CreateOrderRequest{
		CustomerID: req.CustomerID,
		ProductIDs: req.ProductIDs,
	}).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": toOrderDTO(res.Order)})
}

func (s *Server) listOrders(c *gin.Context) {
	res, err := s.useCases.GetOrdersByStatus.Execute(c.Request.Context(), orders.GetOrdersByStatusRequest{
		Status:     c.Query("status"),
		CustomerID: c.Query("customerId"),
	}).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderDTOs(res.Orders)})
}

func (s *Server) getOrder(c *gin.Context) {
	res, err := s.useCases.GetOrderByID.Execute(c.Request.Context(), orders.GetOrderByIDRequest{
		ID: c.Param("id"),
	}).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderDTO(res.Order)})
}

func (s *Server) getOrderDetails(c *gin.Context) {
	res, err := s.useCases.GetOrderDetails.Execute(c.Request.Context(), orders.GetOrderDetailsRequest{
		ID: c.Param("id"),
	}).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDetailsDTO(res))
}

func (s *Server) getOrderTimeline(c *gin.Context) {
	events, err := s.useCases.GetOrderTimeline.Execute(c.Request.Context(), c.Param("id")).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTimelineDTOs(events))
}

func (s *Server) updatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := BindAndValidate(c, &req, s.validator); err != nil {
		return
	}

	res, err := s.useCases.UpdatePaymentStatus.Execute(c.Request.Context(), orders.UpdateOrderPaymentStatusRequest{
		ID:            c.Param("id"),
		PaymentStatus: req.PaymentStatus,
	}).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": PaymentStatusUpdatedMessage,
		"order":   toOrderDTO(res.Order),
	})
}

func (s *Server) changeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := BindAndValidate(c, &req, s.validator); err != nil {
		return
	}

	res, err := s.useCases.ChangeStatus.Execute(c.Request.Context(), orders.ChangeOrderStatusRequest{
		ID:     c.Param("id"),
		Status: req.Status,
	}).Unwrap()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderDTO(res.Order)})
}
