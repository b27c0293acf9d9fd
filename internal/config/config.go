package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Configuration is the deployment-owned input of the backend, loaded from the
// environment with an optional .env file.
type Configuration struct {
	DatabasePath string

	LogFile    string
	ErrorFile  string
	LogLevel   string
	LogConsole bool

	Owner           string
	Treasury        string
	RewardPool      string
	LotteryAccount  string
	BridgeAccount   string
	FeeTokenAddress string
	TokenAddress    string

	AssetFeedURL     string
	BaseFeedURL      string
	AssetFeedAnswer  string
	BaseFeedAnswer   string
	FeePercent       int64
	DrawCooldown     time.Duration
	LocalChain       uint64
	DestinationChain uint64

	CycleInterval time.Duration
	MetricsAddr   string
}

func Load() *Configuration {

	// a missing .env file is fine in production, the environment is set by
	// the service manager there
	_ = godotenv.Load()

	return &Configuration{
		DatabasePath: getString("DATABASE_PATH", "persistent.db"),

		LogFile:    os.Getenv("LOG_FILE"),
		ErrorFile:  os.Getenv("ERROR_FILE"),
		LogLevel:   getString("LOG_LEVEL", "debug"),
		LogConsole: getBool("LOG_CONSOLE", true),

		Owner:           getString("OWNER_ADDRESS", "owner"),
		Treasury:        getString("TREASURY_ADDRESS", "treasury"),
		RewardPool:      getString("REWARD_POOL_ADDRESS", "reward-pool"),
		LotteryAccount:  getString("LOTTERY_ACCOUNT", "lottery"),
		BridgeAccount:   getString("BRIDGE_ACCOUNT", "bridge"),
		FeeTokenAddress: getString("FEE_TOKEN_ADDRESS", "fee-token"),
		TokenAddress:    getString("TOKEN_ADDRESS", "token"),

		AssetFeedURL:     os.Getenv("ASSET_FEED_URL"),
		BaseFeedURL:      os.Getenv("BASE_FEED_URL"),
		AssetFeedAnswer:  getString("ASSET_FEED_ANSWER", "200000000000"),
		BaseFeedAnswer:   getString("BASE_FEED_ANSWER", "300000000000"),
		FeePercent:       getInt64("FEE_PERCENT", 5),
		DrawCooldown:     getDuration("DRAW_COOLDOWN", 24*time.Hour),
		LocalChain:       uint64(getInt64("LOCAL_CHAIN_ID", 1)),
		DestinationChain: uint64(getInt64("DESTINATION_CHAIN_ID", 2)),

		CycleInterval: getDuration("CYCLE_INTERVAL", time.Minute),
		MetricsAddr:   getString("METRICS_ADDR", ":9090"),
	}
}

func getString(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
