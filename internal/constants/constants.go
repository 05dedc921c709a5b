package constants

// 运行模式常量
const (
	ServerModeDebug   = "debug"
	ServerModeRelease = "release"
)

// OTP 存储驱动常量
const (
	OTPStoreMemory   = "memory"
	OTPStoreRedis    = "redis"
	OTPStoreDatabase = "database"
)

// OTP 默认参数
const (
	OTPDefaultTTLSeconds   = 300
	OTPDefaultSweepSeconds = 60
	OTPDefaultBrandName    = "Desi-Etsy"
)

// 队列常量
const (
	QueueDefault = "default"
	TaskOTPPurge = "otp:purge"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "desi"
)

// 数据库驱动常量
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)
