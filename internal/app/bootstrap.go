package app

import (
	"errors"
	"time"

	"github.com/desi-etsy/internal/config"
	"github.com/desi-etsy/internal/constants"
	"github.com/desi-etsy/internal/otp"
	"github.com/desi-etsy/internal/provider"
	"github.com/desi-etsy/internal/router"
	"github.com/desi-etsy/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		httpService := NewHTTPService(cfg.Server.Addr(), engine)
		services = append(services, httpService)

		// 过期验证码清理
		if container.OTPSweeper != nil {
			services = append(services, otp.NewJanitor(container.OTPSweeper, sweepInterval(cfg), nil))
		}
	}

	// 初始化 Worker 服务（仅在队列启用时）
	if (mode == ModeAll && cfg.Queue.Enabled) || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			container.Close()
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.cleanup = container.Close
	return runner, nil
}

func sweepInterval(cfg *config.Config) time.Duration {
	seconds := cfg.OTP.SweepSeconds
	if seconds <= 0 {
		seconds = constants.OTPDefaultSweepSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
