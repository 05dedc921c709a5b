package public

import (
	"net/http"

	"github.com/desi-etsy/internal/http/response"
	"github.com/desi-etsy/internal/otp"

	"github.com/gin-gonic/gin"
)

// SendEmailOTPRequest 发送验证码请求
type SendEmailOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyEmailOTPRequest 校验验证码请求
type VerifyEmailOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// SendEmailOTP 签发并投递邮箱验证码
func (h *Handler) SendEmailOTP(c *gin.Context) {
	var req SendEmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgEmailRequired, nil)
		return
	}

	if _, err := h.OTPService.Issue(c.Request.Context(), req.Email); err != nil {
		respondOTPSendError(c, err)
		return
	}
	response.Message(c, http.StatusOK, msgOTPSent)
}

// VerifyEmailOTP 校验邮箱验证码，成功即消费
func (h *Handler) VerifyEmailOTP(c *gin.Context) {
	var req VerifyEmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NotVerified(c, response.CodeBadRequest, msgOTPInvalid)
		return
	}

	err := h.OTPService.Verify(c.Request.Context(), req.Email, req.OTP)
	switch {
	case err == nil:
		response.Verified(c)
	case otp.IsVerificationError(err):
		response.NotVerified(c, response.CodeBadRequest, msgOTPInvalid)
	default:
		requestLog(c).Errorw("otp_verify_failed", "error", err)
		response.NotVerified(c, response.CodeInternal, msgOTPVerifyFailed)
	}
}
