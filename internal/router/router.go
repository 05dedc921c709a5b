package router

import (
	"fmt"
	"net/http"

	"github.com/desi-etsy/internal/cache"
	"github.com/desi-etsy/internal/config"
	publichandlers "github.com/desi-etsy/internal/http/handlers/public"
	"github.com/desi-etsy/internal/logger"
	"github.com/desi-etsy/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	otpRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:otp", cache.Prefix()),
		WindowSeconds: cfg.Security.OTPRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OTPRateLimit.MaxRequests,
	}
	limiter := newRateLimiter()

	// 中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(log))
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group(cfg.Server.BasePath)
	{
		// 邮箱验证码
		api.POST("/send-email-otp", RateLimitMiddleware(limiter, otpRule, KeyByIPAndJSONField("email")), publicHandler.SendEmailOTP)
		api.POST("/verify-email-otp", publicHandler.VerifyEmailOTP)

		// 商品目录
		api.GET("/products", publicHandler.GetProducts)
		api.GET("/products/:id", publicHandler.GetProduct)
		api.GET("/categories", publicHandler.GetCategories)
	}

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func newRateLimiter() RateLimiter {
	if client := cache.Client(); client != nil {
		return NewRedisRateLimiter(client)
	}
	return NewLocalRateLimiter()
}
