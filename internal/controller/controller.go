package controller

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/schoolup-zm/payment-service/internal/dto"
	"github.com/schoolup-zm/payment-service/internal/service"
	pkgdto "github.com/schoolup-zm/payment-service/pkg/dto"
	"github.com/schoolup-zm/payment-service/pkg/errs"
	"github.com/schoolup-zm/payment-service/pkg/response"
	"github.com/schoolup-zm/payment-service/pkg/utils"
)

type Controller struct {
	service service.PaymentService
}

func CreatePaymentController(e *echo.Group, service service.PaymentService, isLoggedIn echo.MiddlewareFunc) {
	c := Controller{
		service: service,
	}

	e.POST("/payments", c.InitiatePayment, isLoggedIn)
	e.POST("/payments/notifications", c.CollectionWebhook)
	e.GET("/payments", c.GetPayments, isLoggedIn)
	e.GET("/students/:id/balance", c.OutstandingBalance, isLoggedIn)
	e.GET("/messages", c.GetMessages, isLoggedIn)
	e.PATCH("/messages/:id/read", c.MarkMessageRead, isLoggedIn)
}

func (c *Controller) InitiatePayment(e echo.Context) error {
	payload := dto.PaymentRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "InitiatePayment").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	resp, err := c.service.InitiatePayment(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "USSD push triggered successfully", resp)
}

// CollectionWebhook receives the aggregator's collection notifications.
// Delivery is at-least-once, so business-level anomalies (duplicate,
// unknown id, amount mismatch) are acknowledged with a 200 to stop the
// sender from retrying against an already-resolved state. Only a
// structurally invalid payload gets a non-2xx.
func (c *Controller) CollectionWebhook(e echo.Context) error {
	payload := dto.CollectionNotification{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "CollectionWebhook").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	if payload.TransactionID == "" || payload.Status == "" {
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	err = c.service.ConfirmPayment(e.Request().Context(), payload)
	switch {
	case err == nil:
		return response.WriteSuccessResponse(e, "notification processed", nil)
	case errors.Is(err, errs.ErrDuplicateConfirmation):
		log.Info().Str("component", "CollectionWebhook").Str("transaction_id", payload.TransactionID).Msg("duplicate notification acknowledged")
		return response.WriteSuccessResponse(e, "notification already processed", nil)
	case errors.Is(err, errs.ErrTransactionNotFound):
		log.Warn().Str("component", "CollectionWebhook").Str("transaction_id", payload.TransactionID).Msg("notification for unknown transaction acknowledged")
		return response.WriteSuccessResponse(e, "notification acknowledged", nil)
	case errors.Is(err, errs.ErrAmountMismatch):
		log.Warn().Str("component", "CollectionWebhook").Str("transaction_id", payload.TransactionID).Msg("amount mismatch, transaction failed")
		return response.WriteSuccessResponse(e, "notification acknowledged", nil)
	case errors.Is(err, errs.ErrValidation):
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	default:
		return response.WriteErrorResponse(e, err, nil)
	}
}

func (c *Controller) GetPayments(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetPayments").Msg("")
	}

	responsePayload, err := c.service.GetPayments(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfully retrieved payment records", responsePayload)
}

func (c *Controller) OutstandingBalance(e echo.Context) error {
	studentID := e.Param("id")

	responsePayload, err := c.service.OutstandingBalance(e.Request().Context(), studentID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", responsePayload)
}

func (c *Controller) GetMessages(e echo.Context) error {
	userID := requestUserID(e)
	if userID == "" {
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	responsePayload, err := c.service.GetMessages(e.Request().Context(), userID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", responsePayload)
}

func (c *Controller) MarkMessageRead(e echo.Context) error {
	messageID := e.Param("id")
	receiverID := requestUserID(e)
	if receiverID == "" {
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	err := c.service.MarkMessageRead(e.Request().Context(), messageID, receiverID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "message marked as read", nil)
}

// requestUserID resolves the acting user from the bearer token, with a
// user_id query parameter override for admin tooling.
func requestUserID(e echo.Context) string {
	if userID := e.QueryParam("user_id"); userID != "" {
		return userID
	}

	userID, _, _ := utils.ExtractTokenUser(e)
	return userID
}
