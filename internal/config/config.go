package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
)

type Config struct {
	AppEnv  string
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	TiersFile   string
	DefaultTier string

	PreclosureChargeRate decimal.Decimal
	PreclosureMinPaid    int
	MinMonthlyIncome     decimal.Decimal
	FOIRLimit            decimal.Decimal
	ActivationGraceDays  int
	UpcomingEMIWindow    time.Duration
	Fees                 amortization.FeePolicy

	CreditCacheTTL      time.Duration
	UserLockTTL         time.Duration
	VerificationTimeout time.Duration
	VerificationLatency time.Duration

	// values that were set but could not be parsed; reported by Validate
	invalid []string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (c *Config) getInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.invalid = append(c.invalid, k)
		return d
	}
	return n
}

func (c *Config) getDecimal(k, d string) decimal.Decimal {
	v := getenv(k, d)
	n, err := decimal.NewFromString(v)
	if err != nil {
		c.invalid = append(c.invalid, k)
		return decimal.RequireFromString(d)
	}
	return n
}

func (c *Config) getDuration(k string, d int, unit time.Duration) time.Duration {
	return time.Duration(c.getInt(k, d)) * unit
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppEnv:    getenv("APP_ENV", "production"),
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "pocketcredit"),
		MySQLUser: getenv("MYSQL_USER", "pocketcredit"),
		MySQLPass: getenv("MYSQL_PASS", "pocketcredit"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TiersFile:   os.Getenv("TIERS_FILE"),
		DefaultTier: getenv("DEFAULT_TIER", "new_member"),
	}
	c.RedisDB = c.getInt("REDIS_DB", 0)
	c.IdempTTLSecs = c.getInt("IDEMPOTENCY_TTL_SECONDS", 300)

	c.PreclosureChargeRate = c.getDecimal("PRECLOSURE_CHARGE_RATE", "0.02")
	c.PreclosureMinPaid = c.getInt("PRECLOSURE_MIN_PAID", 6)
	c.MinMonthlyIncome = c.getDecimal("MIN_MONTHLY_INCOME", "15000")
	c.FOIRLimit = c.getDecimal("FOIR_LIMIT", "0.6")
	c.ActivationGraceDays = c.getInt("ACTIVATION_GRACE_DAYS", 0)
	c.UpcomingEMIWindow = c.getDuration("UPCOMING_EMI_WINDOW_DAYS", 7, 24*time.Hour)
	c.Fees = amortization.FeePolicy{
		ProcessingRate: c.getDecimal("PROCESSING_FEE_RATE", "0.02"),
		ProcessingCap:  c.getDecimal("PROCESSING_FEE_CAP", "10000"),
		GSTRate:        c.getDecimal("GST_RATE", "0.18"),
		InsuranceRate:  c.getDecimal("INSURANCE_RATE", "0.005"),
	}

	c.CreditCacheTTL = c.getDuration("CREDIT_CACHE_TTL_HOURS", 30*24, time.Hour)
	c.UserLockTTL = c.getDuration("USER_LOCK_TTL_SECONDS", 15, time.Second)
	c.VerificationTimeout = c.getDuration("VERIFICATION_TIMEOUT_SECONDS", 5, time.Second)
	c.VerificationLatency = c.getDuration("MOCK_VERIFICATION_LATENCY_MS", 0, time.Millisecond)
	return c
}

func (c *Config) Validate() error {
	if len(c.invalid) > 0 {
		return fmt.Errorf("unparseable config values: %s", strings.Join(c.invalid, ", "))
	}
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch {
	case c.PreclosureChargeRate.IsNegative():
		return errors.New("PRECLOSURE_CHARGE_RATE must not be negative")
	case c.PreclosureMinPaid < 0:
		return errors.New("PRECLOSURE_MIN_PAID must not be negative")
	case c.FOIRLimit.IsNegative() || c.FOIRLimit.GreaterThan(decimal.NewFromInt(1)):
		return errors.New("FOIR_LIMIT must be between 0 and 1")
	case c.ActivationGraceDays < 0:
		return errors.New("ACTIVATION_GRACE_DAYS must not be negative")
	case c.Fees.ProcessingRate.IsNegative() || c.Fees.GSTRate.IsNegative() || c.Fees.InsuranceRate.IsNegative():
		return errors.New("fee rates must not be negative")
	case c.UserLockTTL <= 0 || c.VerificationTimeout <= 0:
		return errors.New("USER_LOCK_TTL_SECONDS and VERIFICATION_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps due-date arithmetic in one zone
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
