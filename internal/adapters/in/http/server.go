// Package http exposes the order lifecycle over a REST API.
// It translates HTTP requests into commands and queries, and domain errors
// back into status codes; no business rules live here.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/payment"
	"orderflow/internal/core/domain/model/stock"
	"orderflow/internal/core/domain/model/task"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// callerHeader carries the authenticated account id. Authentication itself
// happens at the gateway; this service trusts the header.
const callerHeader = "X-User-ID"

// signatureHeader carries the provider's hex HMAC-SHA256 digest of the raw
// webhook body.
const signatureHeader = "X-Signature"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler      commands.CreateOrderCommandHandler
	cancelOrderHandler      commands.CancelOrderCommandHandler
	rateOrderHandler        commands.RateOrderCommandHandler
	initiatePaymentHandler  commands.InitiatePaymentCommandHandler
	reconcilePaymentHandler commands.ReconcilePaymentCommandHandler
	assignCourierHandler    commands.AssignCourierCommandHandler
	advanceDeliveryHandler  commands.AdvanceDeliveryCommandHandler

	getOrderHandler          queries.GetOrderQueryHandler
	getCustomerOrdersHandler queries.GetCustomerOrdersQueryHandler

	webhookVerifier services.WebhookVerifier
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	rateOrderHandler commands.RateOrderCommandHandler,
	initiatePaymentHandler commands.InitiatePaymentCommandHandler,
	reconcilePaymentHandler commands.ReconcilePaymentCommandHandler,
	assignCourierHandler commands.AssignCourierCommandHandler,
	advanceDeliveryHandler commands.AdvanceDeliveryCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getCustomerOrdersHandler queries.GetCustomerOrdersQueryHandler,
	webhookVerifier services.WebhookVerifier,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		cancelOrderHandler:       cancelOrderHandler,
		rateOrderHandler:         rateOrderHandler,
		initiatePaymentHandler:   initiatePaymentHandler,
		reconcilePaymentHandler:  reconcilePaymentHandler,
		assignCourierHandler:     assignCourierHandler,
		advanceDeliveryHandler:   advanceDeliveryHandler,
		getOrderHandler:          getOrderHandler,
		getCustomerOrdersHandler: getCustomerOrdersHandler,
		webhookVerifier:          webhookVerifier,
	}
}

// RegisterRoutes binds all endpoints onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetCustomerOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/orders/:id/rating", s.RateOrder)
	api.POST("/orders/:id/payment", s.InitiatePayment)
	api.POST("/orders/:id/assign", s.AssignCourier)
	api.POST("/orders/:id/progress", s.AdvanceDelivery)
	api.POST("/webhooks/payments/:provider", s.PaymentWebhook)

	e.GET("/health", s.Health)
}

// ErrorResponse is the error body shape for all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderLineRequest is one requested line of a new order.
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the request body for placing an order.
type CreateOrderRequest struct {
	StoreID       string             `json:"store_id"`
	Lines         []OrderLineRequest `json:"lines"`
	PaymentMethod string             `json:"payment_method"`
	AddressLat    float64            `json:"address_lat"`
	AddressLon    float64            `json:"address_lon"`
	AddressText   string             `json:"address_text"`
}

// CreateOrderResponse echoes the placed (or replayed) order.
type CreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

// CreateOrder handles POST /api/v1/orders.
// The Idempotency-Key header makes retried submissions safe: a replay
// returns the order created by the first attempt.
func (s *Server) CreateOrder(ctx echo.Context) error {
	callerID, err := callerFromHeader(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	storeID, err := kernel.UUIDFromString(req.StoreID)
	if err != nil {
		return badRequest(ctx, "invalid store id")
	}

	lines := make([]commands.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, lineErr := kernel.UUIDFromString(line.ProductID)
		if lineErr != nil {
			return badRequest(ctx, "invalid product id")
		}
		lines = append(lines, commands.OrderLine{ProductID: productID, Quantity: line.Quantity})
	}

	location, err := kernel.NewLocation(req.AddressLat, req.AddressLon)
	if err != nil {
		return badRequest(ctx, "invalid delivery location: "+err.Error())
	}
	address, err := order.NewAddress(location, req.AddressText)
	if err != nil {
		return badRequest(ctx, "invalid delivery address: "+err.Error())
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		callerID,
		storeID,
		lines,
		order.PaymentMethod(req.PaymentMethod),
		address,
		ctx.Request().Header.Get("Idempotency-Key"),
	)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	placed, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{
		ID:     placed.ID().String(),
		Status: placed.Status().String(),
		Total:  placed.Total().MinorUnits(),
	})
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	callerID, err := callerFromHeader(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	orderID, err := orderIDFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetOrderQuery(orderID, callerID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCustomerOrders handles GET /api/v1/orders - the caller's order history.
func (s *Server) GetCustomerOrders(ctx echo.Context) error {
	callerID, err := callerFromHeader(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var limit, offset int
	if err := echo.QueryParamsBinder(ctx).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return badRequest(ctx, "invalid pagination parameters")
	}

	query, err := queries.NewGetCustomerOrdersQuery(callerID, limit, offset)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	response, err := s.getCustomerOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// CancelOrderRequest is the request body for cancelling an order.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	callerID, err := callerFromHeader(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	orderID, err := orderIDFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req CancelOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}
	if req.Actor == "" {
		req.Actor = commands.ActorCustomer
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, callerID, req.Reason, req.Actor)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// RateOrderRequest is the request body for rating a delivered order.
type RateOrderRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// RateOrder handles POST /api/v1/orders/:id/rating.
func (s *Server) RateOrder(ctx echo.Context) error {
	callerID, err := callerFromHeader(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	orderID, err := orderIDFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req RateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewRateOrderCommand(orderID, callerID, req.Rating, req.Feedback)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.rateOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// InitiatePaymentRequest is the request body for opening a payment intent.
type InitiatePaymentRequest struct {
	Provider string `json:"provider"`
}

// InitiatePaymentResponse carries the checkout redirect for the customer.
type InitiatePaymentResponse struct {
	PaymentID     string `json:"payment_id"`
	ProviderTxnID string `json:"provider_txn_id"`
	RedirectURL   string `json:"redirect_url"`
}

// InitiatePayment handles POST /api/v1/orders/:id/payment.
func (s *Server) InitiatePayment(ctx echo.Context) error {
	callerID, err := callerFromHeader(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	orderID, err := orderIDFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req InitiatePaymentRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewInitiatePaymentCommand(orderID, callerID, req.Provider)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	intent, err := s.initiatePaymentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, InitiatePaymentResponse{
		PaymentID:     intent.PaymentID.String(),
		ProviderTxnID: intent.ProviderTxnID,
		RedirectURL:   intent.RedirectURL,
	})
}

// AssignCourierRequest is the request body for binding a courier.
type AssignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

// AssignCourier handles POST /api/v1/orders/:id/assign.
func (s *Server) AssignCourier(ctx echo.Context) error {
	orderID, err := orderIDFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req AssignCourierRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	cmd, err := commands.NewAssignCourierCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.assignCourierHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// AdvanceDeliveryRequest is the request body for reporting delivery progress.
type AdvanceDeliveryRequest struct {
	CourierID  string `json:"courier_id"`
	Phase      string `json:"phase"`
	ProofNote  string `json:"proof_note,omitempty"`
	ProofPhoto string `json:"proof_photo,omitempty"`
}

// AdvanceDelivery handles POST /api/v1/orders/:id/progress.
func (s *Server) AdvanceDelivery(ctx echo.Context) error {
	orderID, err := orderIDFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var req AdvanceDeliveryRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	phase, err := order.StatusFromString(req.Phase)
	if err != nil {
		return badRequest(ctx, "invalid phase")
	}

	cmd, err := commands.NewAdvanceDeliveryCommand(orderID, courierID, phase, req.ProofNote, req.ProofPhoto)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.advanceDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// WebhookRequest is the payload payment providers deliver after settling
// or declining a transaction.
type WebhookRequest struct {
	TxnID    string `json:"txn_id"`
	Outcome  string `json:"outcome"`
	Metadata string `json:"metadata,omitempty"`
}

// PaymentWebhook handles POST /api/v1/webhooks/payments/:provider.
// The signature is verified over the exact raw bytes before any parsing.
// A verified payload is always acknowledged with 200, even when it refers
// to an unknown transaction, so providers stop retrying.
func (s *Server) PaymentWebhook(ctx echo.Context) error {
	provider := ctx.Param("provider")

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return badRequest(ctx, "unreadable request body")
	}

	signature := ctx.Request().Header.Get(signatureHeader)
	if err := s.webhookVerifier.Verify(provider, body, signature); err != nil {
		return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "signature verification failed",
		})
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return badRequest(ctx, "invalid webhook payload")
	}

	cmd, err := commands.NewReconcilePaymentCommand(provider, req.TxnID, req.Outcome, req.Metadata)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := s.reconcilePaymentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// mapError translates domain and application errors into status codes.
func (s *Server) mapError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, commands.ErrNotOrderOwner) || errors.Is(err, queries.ErrNotOrderOwner):
		return respondError(ctx, http.StatusForbidden, "caller does not own the order")

	case errors.Is(err, commands.ErrActorNotPermitted):
		return respondError(ctx, http.StatusForbidden, "caller role does not permit this action")

	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, err.Error())

	case errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, order.ErrNotAssignedCourier),
		errors.Is(err, order.ErrNotDelivered),
		errors.Is(err, order.ErrAlreadyRated),
		errors.Is(err, commands.ErrPaymentNotRequired),
		errors.Is(err, payment.ErrPaymentAlreadySettled),
		errors.Is(err, task.ErrTaskIsFinished),
		errors.Is(err, ports.ErrAlreadyExists):
		return respondError(ctx, http.StatusConflict, err.Error())

	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return respondError(ctx, http.StatusBadRequest, err.Error())

	default:
		return respondError(ctx, http.StatusInternalServerError, "internal error")
	}
}

func badRequest(ctx echo.Context, message string) error {
	return respondError(ctx, http.StatusBadRequest, message)
}

func respondError(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, ErrorResponse{Code: code, Message: message})
}

// callerFromHeader resolves the acting account from the identity header.
func callerFromHeader(ctx echo.Context) (kernel.UUID, error) {
	raw := ctx.Request().Header.Get(callerHeader)
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(callerHeader + " header")
	}
	return kernel.UUIDFromString(raw)
}

// orderIDFromPath resolves the order id path parameter.
func orderIDFromPath(ctx echo.Context) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	return id, nil
}
