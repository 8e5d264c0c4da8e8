package config

import (
	"log"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Admin   AdminConfig
	Economy EconomyConfig
	Codes   CodesConfig
}

type AppConfig struct {
	Env string
}

type StorageConfig struct {
	DataDir string
}

// AdminConfig is the account created when no users exist
type AdminConfig struct {
	Username string
	Password string
}

type EconomyConfig struct {
	StartingGold  decimal.Decimal
	SellBackRatio decimal.Decimal
	BcryptCost    int
}

type CodesConfig struct {
	Segments      int
	SegmentLength int
	MaxAttempts   int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_PASSWORD", "admin123")
	viper.SetDefault("STARTING_GOLD", "0")
	viper.SetDefault("SELL_BACK_RATIO", "0.5")
	viper.SetDefault("CODE_SEGMENTS", 3)
	viper.SetDefault("CODE_SEGMENT_LENGTH", 4)
	viper.SetDefault("CODE_MAX_ATTEMPTS", 100)
	viper.SetDefault("BCRYPT_COST", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		App: AppConfig{
			Env: viper.GetString("APP_ENV"),
		},
		Storage: StorageConfig{
			DataDir: viper.GetString("DATA_DIR"),
		},
		Admin: AdminConfig{
			Username: viper.GetString("ADMIN_USERNAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Economy: EconomyConfig{
			StartingGold:  getDecimal("STARTING_GOLD", decimal.Zero, isNonNegative),
			SellBackRatio: getDecimal("SELL_BACK_RATIO", decimal.NewFromFloat(0.5), isRatio),
			BcryptCost:    viper.GetInt("BCRYPT_COST"),
		},
		Codes: CodesConfig{
			Segments:      viper.GetInt("CODE_SEGMENTS"),
			SegmentLength: viper.GetInt("CODE_SEGMENT_LENGTH"),
			MaxAttempts:   viper.GetInt("CODE_MAX_ATTEMPTS"),
		},
	}
}

// getDecimal reads a money value, falling back to def when it does not
// parse or is out of range
func getDecimal(key string, def decimal.Decimal, valid func(decimal.Decimal) bool) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s %q, using %s: %v", key, raw, def, err)
		return def
	}
	if !valid(d) {
		log.Printf("Warning: %s %q is out of range, using %s", key, raw, def)
		return def
	}
	return d
}

func isNonNegative(d decimal.Decimal) bool { return !d.IsNegative() }

func isRatio(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
