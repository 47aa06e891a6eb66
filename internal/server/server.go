package server

import (
	"context"
	"log/slog"
	"net/http"

	"storefront-order-service/internal/handler"
	"storefront-order-service/internal/middleware"
	"storefront-order-service/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	auth            *middleware.Authenticator
	orderHandler    *handler.OrderHandler
	productHandler  *handler.ProductHandler
	analysisHandler *handler.AnalysisHandler
}

func NewServer(
	orderService service.OrderService,
	productService service.ProductService,
	analyticsService service.AnalyticsService,
	auth *middleware.Authenticator,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		auth:            auth,
		orderHandler:    handler.NewOrderHandler(orderService),
		productHandler:  handler.NewProductHandler(productService),
		analysisHandler: handler.NewAnalysisHandler(analyticsService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	user := s.auth.User()
	admin := s.auth.Admin()

	// -------- orders --------
	order := api.Group("/order")
	order.POST("/place", s.orderHandler.PlaceOrder, user)
	order.POST("/paypal", s.orderHandler.PlaceOrderPaypal, user)
	order.POST("/verify-paypal", s.orderHandler.VerifyPaypal, user)
	order.POST("/userorders", s.orderHandler.UserOrders, user)
	order.POST("/single", s.orderHandler.SingleOrder, user)

	// -------- products --------
	product := api.Group("/product")
	product.GET("/list", s.productHandler.ListProducts)
	product.POST("/single", s.productHandler.SingleProduct)

	// -------- admin --------
	order.POST("/list", s.orderHandler.ListOrders, admin)
	order.POST("/status", s.orderHandler.UpdateStatus, admin)
	order.GET("/failures", s.orderHandler.ListFailures, admin)
	product.POST("/add", s.productHandler.AddProduct, admin)
	api.GET("/analysis", s.analysisHandler.Summary, admin)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
