package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"storefront-order-service/internal/dto"
	"storefront-order-service/internal/model"
	"storefront-order-service/internal/notification"
	"storefront-order-service/internal/repository"
	"storefront-order-service/internal/shipping"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultCountry = "UK"

// Post-commit steps. A failure in any of them is logged and recorded, never
// returned to the caller.
const (
	StepDeductStock   = "deduct_stock"
	StepClearCart     = "clear_cart"
	StepRenderInvoice = "render_invoice"
	StepNotify        = "notify"
)

type Notifier interface {
	Render(user *model.User, order *model.Order) (string, error)
	Send(ctx context.Context, c *notification.Confirmation) error
}

type InvoiceRenderer interface {
	Render(user *model.User, order *model.Order) (string, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req *dto.PlaceOrderRequest) (*model.Order, error)
	PlaceOrderPaypal(ctx context.Context, req *dto.PlaceOrderRequest) (*model.Order, *Checkout, error)
	VerifyPaypal(ctx context.Context, externalID, userID string) (*model.Order, error)
	ListAll(ctx context.Context) ([]*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	// GetOrder returns the order by local id. A non-empty userID restricts the
	// lookup to that owner.
	GetOrder(ctx context.Context, orderID, userID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	// ListCaptures returns the gateway captures recorded against a paid order.
	ListCaptures(ctx context.Context, order *model.Order) ([]*model.PaymentCapture, error)
	// ListFailures returns recent post-commit failures, or all failures of one
	// order when orderID is set.
	ListFailures(ctx context.Context, orderID string, limit int) ([]*model.AncillaryFailure, error)
}

type OrderDeps struct {
	DB            *gorm.DB
	Products      shipping.ProductLookup
	Calculator    *shipping.Calculator
	OrderRepo     repository.OrderRepository
	UserRepo      repository.UserRepository
	InventoryRepo repository.InventoryRepository
	CaptureRepo   repository.CaptureRepository
	FailureRepo   repository.FailureLogRepository
	COD           PaymentStrategy
	Paypal        PaymentStrategy
	Notifier      Notifier
	Invoices      InvoiceRenderer
	Logger        *slog.Logger
}

type orderServiceImpl struct {
	db            *gorm.DB
	products      shipping.ProductLookup
	calculator    *shipping.Calculator
	orderRepo     repository.OrderRepository
	userRepo      repository.UserRepository
	inventoryRepo repository.InventoryRepository
	captureRepo   repository.CaptureRepository
	failureRepo   repository.FailureLogRepository
	cod           PaymentStrategy
	paypal        PaymentStrategy
	notifier      Notifier
	invoices      InvoiceRenderer
	logger        *slog.Logger
}

func NewOrderService(deps OrderDeps) OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &orderServiceImpl{
		db:            deps.DB,
		products:      deps.Products,
		calculator:    deps.Calculator,
		orderRepo:     deps.OrderRepo,
		userRepo:      deps.UserRepo,
		inventoryRepo: deps.InventoryRepo,
		captureRepo:   deps.CaptureRepo,
		failureRepo:   deps.FailureRepo,
		cod:           deps.COD,
		paypal:        deps.Paypal,
		notifier:      deps.Notifier,
		invoices:      deps.Invoices,
		logger:        logger.With("component", "order_service"),
	}
}

func (s *orderServiceImpl) PlaceOrder(ctx context.Context, req *dto.PlaceOrderRequest) (*model.Order, error) {
	order, _, err := s.place(ctx, s.cod, req)
	return order, err
}

func (s *orderServiceImpl) PlaceOrderPaypal(ctx context.Context, req *dto.PlaceOrderRequest) (*model.Order, *Checkout, error) {
	return s.place(ctx, s.paypal, req)
}

func (s *orderServiceImpl) place(ctx context.Context, strategy PaymentStrategy, req *dto.PlaceOrderRequest) (*model.Order, *Checkout, error) {
	order, err := s.buildOrder(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	order.PaymentMethod = strategy.Method()
	checkout, err := strategy.Prepare(ctx, order)
	if err != nil {
		return nil, nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create order: %v", ErrPersistence, err)
	}

	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"payment_method", order.PaymentMethod,
		"total", order.TotalAmount.StringFixed(2),
	)

	// Orders paid on delivery are final now; gateway orders wait for confirm.
	if strategy.DeductsOnPlacement() {
		s.afterCommit(ctx, order, false)
	}

	return order, checkout, nil
}

// buildOrder validates the request against the catalog and prices it. Nothing
// is written.
func (s *orderServiceImpl) buildOrder(ctx context.Context, req *dto.PlaceOrderRequest) (*model.Order, error) {
	if req == nil || strings.TrimSpace(req.UserID) == "" || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: userId and items are required", ErrInvalidRequest)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidRequest)
	}

	lines, err := dto.NormalizeItems(req.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	method, err := parseShippingMethod(req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = strings.TrimSpace(req.Address.Country)
	}
	if country == "" {
		country = defaultCountry
	}

	quantities, err := dto.QuantitiesByProduct(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products, err := s.products.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup products: %v", ErrPersistence, err)
	}

	for _, id := range ids {
		product := products[id]
		if product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if product.Stock < quantities[id] {
			return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, id, product.Stock, quantities[id])
		}
	}

	shippingItems := make([]shipping.Item, 0, len(lines))
	orderItems := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product := products[line.ProductID]
		shippingItems = append(shippingItems, shipping.Item{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
		orderItems = append(orderItems, model.OrderItem{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Name:      product.Name,
			UnitPrice: product.Price,
			Image:     product.FirstImage(),
		})
	}

	shippingCost, err := s.calculator.Price(shippingItems, products, country, method)
	if errors.Is(err, shipping.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("compute shipping: %w", err)
	}

	return &model.Order{
		ID:             uuid.NewString(),
		UserID:         strings.TrimSpace(req.UserID),
		Items:          orderItems,
		BaseAmount:     req.Amount,
		ShippingCost:   shippingCost,
		TotalAmount:    req.Amount.Add(shippingCost).Round(2),
		Address:        req.Address,
		ShippingMethod: method,
		Country:        country,
	}, nil
}

func parseShippingMethod(raw string) (model.ShippingMethod, error) {
	switch model.ShippingMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case "", model.ShippingStandard:
		return model.ShippingStandard, nil
	case model.ShippingNextDay:
		return model.ShippingNextDay, nil
	default:
		return "", fmt.Errorf("%w: unknown shipping method %q", ErrInvalidRequest, raw)
	}
}

func (s *orderServiceImpl) VerifyPaypal(ctx context.Context, externalID, userID string) (*model.Order, error) {
	return s.confirm(ctx, s.paypal, strings.TrimSpace(externalID), strings.TrimSpace(userID))
}

// confirm captures payment for an order created by strategy and flips it to
// paid exactly once. Concurrent or repeated calls for the same external id
// lose the conditional update and get ErrOrderAlreadyProcessed.
func (s *orderServiceImpl) confirm(ctx context.Context, strategy PaymentStrategy, externalID, userID string) (*model.Order, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrInvalidRequest)
	}

	existing, err := s.orderRepo.FindByExternalID(ctx, externalID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order: %v", ErrPersistence, err)
	}
	if existing.Payment {
		return nil, ErrOrderAlreadyProcessed
	}

	confirmation, err := strategy.Confirm(ctx, externalID)
	if err != nil {
		s.logger.WarnContext(ctx, "payment confirmation failed",
			"external_id", externalID,
			"order_id", existing.ID,
			"error", err,
		)
		return nil, err
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.MarkPaid(ctx, tx, externalID, userID)
		if err != nil {
			return err
		}
		return s.captureRepo.Create(ctx, tx, confirmation.Captures)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.missedTransition(ctx, externalID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: mark order paid: %v", ErrPersistence, err)
	}

	s.logger.InfoContext(ctx, "payment captured",
		"order_id", order.ID,
		"external_id", externalID,
		"captures", len(confirmation.Captures),
	)

	s.afterCommit(ctx, order, true)

	return order, nil
}

// missedTransition explains why the conditional paid update matched nothing.
func (s *orderServiceImpl) missedTransition(ctx context.Context, externalID, userID string) error {
	current, err := s.orderRepo.FindByExternalID(ctx, externalID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: find order: %v", ErrPersistence, err)
	}
	if current.Payment {
		return ErrOrderAlreadyProcessed
	}
	return fmt.Errorf("%w: order %s was not updated", ErrPersistence, current.ID)
}

// afterCommit runs the best-effort phase once the order is durable. It is
// detached from the request context so a client disconnect does not cut it
// short.
func (s *orderServiceImpl) afterCommit(ctx context.Context, order *model.Order, withInvoice bool) {
	ctx = context.WithoutCancel(ctx)

	s.deductStock(ctx, order)

	if err := s.userRepo.ClearCart(ctx, order.UserID); err != nil {
		s.recordFailure(ctx, order.ID, StepClearCart, err)
	}

	s.notify(ctx, order, withInvoice)
}

func (s *orderServiceImpl) deductStock(ctx context.Context, order *model.Order) {
	quantities := make(map[string]int, len(order.Items))
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if _, ok := quantities[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	for _, id := range ids {
		if err := s.inventoryRepo.Deduct(ctx, id, quantities[id]); err != nil {
			s.recordFailure(ctx, order.ID, StepDeductStock, fmt.Errorf("product %s: %w", id, err))
		}
	}
}

func (s *orderServiceImpl) notify(ctx context.Context, order *model.Order, withInvoice bool) {
	if s.notifier == nil {
		return
	}

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		s.recordFailure(ctx, order.ID, StepNotify, fmt.Errorf("load user: %w", err))
		return
	}

	var (
		html, invoicePath string
		renderErr, pdfErr error
		g                 errgroup.Group
	)
	g.Go(func() error {
		html, renderErr = s.notifier.Render(user, order)
		return renderErr
	})
	if withInvoice && s.invoices != nil {
		g.Go(func() error {
			invoicePath, pdfErr = s.invoices.Render(user, order)
			return pdfErr
		})
	}
	_ = g.Wait()

	if pdfErr != nil {
		s.recordFailure(ctx, order.ID, StepRenderInvoice, pdfErr)
		invoicePath = ""
	}
	if renderErr != nil {
		s.recordFailure(ctx, order.ID, StepNotify, renderErr)
		return
	}

	err = s.notifier.Send(ctx, &notification.Confirmation{
		User:        user,
		Order:       order,
		HTML:        html,
		InvoicePath: invoicePath,
	})
	if err != nil {
		s.recordFailure(ctx, order.ID, StepNotify, fmt.Errorf("%w: %v", ErrNotification, err))
	}
}

func (s *orderServiceImpl) recordFailure(ctx context.Context, orderID, step string, cause error) {
	s.logger.WarnContext(ctx, "post-commit step failed",
		"order_id", orderID,
		"step", step,
		"error", cause,
	)

	if err := s.failureRepo.Record(ctx, orderID, step, cause); err != nil {
		s.logger.ErrorContext(ctx, "record post-commit failure",
			"order_id", orderID,
			"step", step,
			"error", err,
		)
	}
}

func (s *orderServiceImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrPersistence, err)
	}
	return orders, nil
}

func (s *orderServiceImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidRequest)
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list user orders: %v", ErrPersistence, err)
	}
	return orders, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, userID string) (*model.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrInvalidRequest)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order: %v", ErrPersistence, err)
	}
	if userID != "" && order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID, status string) error {
	orderID, status = strings.TrimSpace(orderID), strings.TrimSpace(status)
	if orderID == "" || status == "" {
		return fmt.Errorf("%w: orderId and status are required", ErrInvalidRequest)
	}

	err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: update status: %v", ErrPersistence, err)
	}

	s.logger.InfoContext(ctx, "order status updated", "order_id", orderID, "status", status)
	return nil
}

func (s *orderServiceImpl) ListCaptures(ctx context.Context, order *model.Order) ([]*model.PaymentCapture, error) {
	if order == nil || order.ExternalPaymentID == nil || *order.ExternalPaymentID == "" {
		return []*model.PaymentCapture{}, nil
	}

	captures, err := s.captureRepo.ListByExternalOrder(ctx, *order.ExternalPaymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: list captures: %v", ErrPersistence, err)
	}
	return captures, nil
}

func (s *orderServiceImpl) ListFailures(ctx context.Context, orderID string, limit int) ([]*model.AncillaryFailure, error) {
	var (
		failures []*model.AncillaryFailure
		err      error
	)
	if orderID = strings.TrimSpace(orderID); orderID != "" {
		failures, err = s.failureRepo.ListByOrder(ctx, orderID)
	} else {
		failures, err = s.failureRepo.List(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list failures: %v", ErrPersistence, err)
	}
	return failures, nil
}
