package public

import (
	"errors"

	handlershared "github.com/desi-etsy/internal/http/handlers/shared"
	"github.com/desi-etsy/internal/http/response"
	"github.com/desi-etsy/internal/otp"
	"github.com/desi-etsy/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgOTPSent          = "OTP sent successfully"
	msgOTPSendFailed    = "Failed to send OTP"
	msgEmailRequired    = "Email is required"
	msgOTPTooFrequent   = "Please wait before requesting another OTP"
	msgOTPInvalid       = "Invalid or expired OTP"
	msgOTPVerifyFailed  = "Failed to verify OTP"
	msgProductNotFound  = "Product not found"
	msgCatalogFetchFail = "Failed to fetch products"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var otpSendErrorRules = []mappedHandlerError{
	{target: otp.ErrInvalidIdentity, code: response.CodeBadRequest, msg: msgEmailRequired},
	{target: otp.ErrIssueTooFrequent, code: response.CodeTooManyRequests, msg: msgOTPTooFrequent},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: msgProductNotFound},
}

func respondOTPSendError(c *gin.Context, err error) {
	respondWithMappedError(c, err, otpSendErrorRules, response.CodeInternal, msgOTPSendFailed)
}

func respondProductError(c *gin.Context, err error) {
	respondWithMappedError(c, err, productErrorRules, response.CodeInternal, msgCatalogFetchFail)
}
