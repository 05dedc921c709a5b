package provider

import (
	"time"

	"github.com/desi-etsy/internal/cache"
	"github.com/desi-etsy/internal/config"
	"github.com/desi-etsy/internal/constants"
	"github.com/desi-etsy/internal/logger"
	"github.com/desi-etsy/internal/mail"
	"github.com/desi-etsy/internal/models"
	"github.com/desi-etsy/internal/otp"
	"github.com/desi-etsy/internal/queue"
	"github.com/desi-etsy/internal/repository"
	"github.com/desi-etsy/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Mailer      mail.Mailer

	// Repositories
	ProductRepo repository.ProductRepository

	// OTP
	OTPStore   otp.Store
	OTPSweeper otp.Sweeper
	OTPPurger  otp.Purger

	// Services
	OTPService     *otp.Service
	ProductService *service.ProductService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化邮件与验证码
	c.initMailer()
	c.initOTP(models.DB)

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ProductRepo = repository.NewProductRepository(db)
}

func (c *Container) initMailer() {
	emailCfg := c.Config.Email
	if !emailCfg.Enabled && c.Config.Server.Mode == constants.ServerModeDebug {
		logger.Warnw("provider_mailer_debug_log_only", "reason", "email disabled in debug mode")
		c.Mailer = mail.LogMailer{}
		return
	}
	c.Mailer = mail.NewSMTPMailer(emailCfg)
}

func (c *Container) initOTP(db *gorm.DB) {
	otpCfg := c.Config.OTP
	driver := otpCfg.Store
	if driver == constants.OTPStoreRedis && !cache.Enabled() {
		logger.Warnw("provider_otp_store_fallback", "requested", driver, "actual", constants.OTPStoreMemory, "reason", "redis disabled")
		driver = constants.OTPStoreMemory
	}

	switch driver {
	case constants.OTPStoreRedis:
		c.OTPStore = otp.NewRedisStore(cache.Client(), cache.Prefix(), nil)
		// 键自带过期时间，无需额外清理
		c.OTPPurger = otp.NoopPurger{}
	case constants.OTPStoreDatabase:
		store := repository.NewEmailOTPStore(db)
		c.OTPStore = store
		c.OTPSweeper = store
		if c.QueueClient.Enabled() {
			c.OTPPurger = otp.NewQueuePurger(c.QueueClient)
		} else {
			c.OTPPurger = otp.NewTimerPurger(store)
		}
	default:
		store := otp.NewMemoryStore()
		c.OTPStore = store
		c.OTPSweeper = store
		c.OTPPurger = otp.NewTimerPurger(store)
	}
	logger.Infow("provider_otp_store_ready", "store", driver, "ttl_seconds", otpCfg.TTLSeconds)

	c.OTPService = otp.NewService(c.OTPStore, c.Mailer, c.OTPPurger, otp.Options{
		TTL:          time.Duration(otpCfg.TTLSeconds) * time.Second,
		SendInterval: time.Duration(otpCfg.SendIntervalSeconds) * time.Second,
		From:         c.Config.Email.From,
		BrandName:    otpCfg.BrandName,
	})
}

func (c *Container) initServices() {
	c.ProductService = service.NewProductService(c.ProductRepo, time.Duration(c.Config.Catalog.CacheSeconds)*time.Second)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
