package service

import "errors"

var (
	ErrInvalidRequest           = errors.New("invalid request")
	ErrProductNotFound          = errors.New("product not found")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrGateway                  = errors.New("payment gateway error")
	ErrGatewayResponseMalformed = errors.New("payment gateway response malformed")
	ErrPaymentNotCompleted      = errors.New("payment not completed")
	ErrOrderNotFound            = errors.New("order not found")
	ErrOrderAlreadyProcessed    = errors.New("order already processed")
	ErrPersistence              = errors.New("persistence error")
	ErrNotification             = errors.New("notification error")
	ErrConfirmNotSupported      = errors.New("payment method has no confirmation step")
)
