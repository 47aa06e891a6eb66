package handler

import (
	"net/http"

	"storefront-order-service/internal/dto"
	"storefront-order-service/internal/service"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddProductRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	product, err := h.productService.AddProduct(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ProductResponse{
		Success: true,
		Message: "Product added",
		Product: product,
	})
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.ListProducts(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ProductsResponse{Success: true, Products: products})
}

func (h *ProductHandler) SingleProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SingleProductRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	product, err := h.productService.GetProduct(ctx, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ProductResponse{Success: true, Product: product})
}
