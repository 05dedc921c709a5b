package otp

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/desi-etsy/internal/constants"
	"github.com/desi-etsy/internal/mail"
)

var otpEmailTemplate = template.Must(template.New("otp_email").Parse(`<div style="font-family:Arial,sans-serif;font-size:14px;color:#333">
  <p>Your {{.Brand}} verification code is:</p>
  <p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
  <p>This code is valid for {{.Validity}}. Do not share it with anyone.</p>
</div>`))

type otpEmailData struct {
	Brand    string
	Code     string
	Validity string
}

// buildMessage 生成验证码邮件
func buildMessage(from, brand, to, code string, ttl time.Duration) (mail.Message, error) {
	if brand == "" {
		brand = constants.OTPDefaultBrandName
	}
	var body bytes.Buffer
	err := otpEmailTemplate.Execute(&body, otpEmailData{
		Brand:    brand,
		Code:     code,
		Validity: humanizeTTL(ttl),
	})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		From:     from,
		To:       to,
		Subject:  fmt.Sprintf("OTP Verification - %s", brand),
		HTMLBody: body.String(),
	}, nil
}

// humanizeTTL 5m -> "5 minutes"，不足一分钟按秒
func humanizeTTL(ttl time.Duration) string {
	if ttl >= time.Minute && ttl%time.Minute == 0 {
		minutes := int(ttl / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	seconds := int(ttl / time.Second)
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}
