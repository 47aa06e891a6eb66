package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront-order-service/internal/dto"
	"storefront-order-service/internal/middleware"
	"storefront-order-service/internal/service"

	"github.com/labstack/echo/v4"
)

var errInvalidBody = echo.NewHTTPError(http.StatusBadRequest, "invalid request body")

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// requester picks the authenticated customer over whatever the body claims.
func requester(c echo.Context, bodyUserID string) string {
	if id := middleware.UserID(c); id != "" {
		return id
	}
	return strings.TrimSpace(bodyUserID)
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	req.UserID = requester(c, req.UserID)

	order, err := h.orderService.PlaceOrder(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.PlaceOrderResponse{
		Success: true,
		Message: "Order Placed",
		Order:   order,
	})
}

func (h *OrderHandler) PlaceOrderPaypal(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	req.UserID = requester(c, req.UserID)

	_, checkout, err := h.orderService.PlaceOrderPaypal(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.PaypalOrderResponse{
		Success:     true,
		ID:          checkout.ExternalID,
		ApprovalURL: checkout.ApprovalURL,
	})
}

func (h *OrderHandler) VerifyPaypal(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPaypalRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	order, err := h.orderService.VerifyPaypal(ctx, req.OrderID, requester(c, req.UserID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.VerifyPaypalResponse{
		Success: true,
		Message: "Payment successful",
		Order:   order,
	})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListAll(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OrdersResponse{Success: true, Orders: orders})
}

func (h *OrderHandler) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UserOrdersRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	orders, err := h.orderService.ListByUser(ctx, requester(c, req.UserID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OrdersResponse{Success: true, Orders: orders})
}

func (h *OrderHandler) SingleOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SingleOrderRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	owner := middleware.UserID(c)
	if owner == "" && !middleware.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not Authorized Login Again")
	}

	order, err := h.orderService.GetOrder(ctx, req.OrderID, owner)
	if err != nil {
		return err
	}

	captures, err := h.orderService.ListCaptures(ctx, order)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SingleOrderResponse{Success: true, Order: order, Captures: captures})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if err := h.orderService.UpdateStatus(ctx, req.OrderID, req.Status); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Status Updated"})
}

func (h *OrderHandler) ListFailures(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	failures, err := h.orderService.ListFailures(ctx, c.QueryParam("orderId"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.FailuresResponse{Success: true, Failures: failures})
}
