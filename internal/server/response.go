package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
	"github.com/sheikh-saqib/farmer-portal/internal/controller"
	"github.com/sheikh-saqib/farmer-portal/internal/ledger"
	"github.com/sheikh-saqib/farmer-portal/internal/validation"
)

// Response is the data object of every JSON reply.
type Response map[string]any

const (
	CodeOK                = 0
	CodeInvalidParam      = 40001
	CodeInsufficientFunds = 40201
	CodeNotFound          = 40401
	CodeConflict          = 40901
	CodeServerErr         = 50001
	CodeBackend           = 50201
)

func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error replies with a failure. data may carry the regions and toast the
// failed action left behind.
func Error(c *gin.Context, httpStatus int, code int, msg string, data Response) {
	body := gin.H{
		"code":    code,
		"message": msg,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(httpStatus, body)
}

// Fail maps an action error onto the HTTP status and code.
func Fail(c *gin.Context, err error, data Response) {
	status, code := classify(err)
	Error(c, status, code, err.Error(), data)
}

func classify(err error) (int, int) {
	var verr *validation.ValidationError
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeInvalidParam
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired, CodeInsufficientFunds
	case errors.Is(err, controller.ErrUnknownItem):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, controller.ErrBusy),
		errors.Is(err, controller.ErrPendingRequest),
		errors.Is(err, controller.ErrNoPendingPurchase):
		return http.StatusConflict, CodeConflict
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, CodeBackend
	default:
		return http.StatusInternalServerError, CodeServerErr
	}
}
