package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.AppPort != "8080" || c.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if !c.PreclosureChargeRate.Equal(decimal.RequireFromString("0.02")) {
		t.Fatalf("preclosure rate default = %s", c.PreclosureChargeRate)
	}
	if c.PreclosureMinPaid != 6 || c.IdempotencyTTL() != 300*time.Second {
		t.Fatalf("unexpected defaults: min paid %d ttl %v", c.PreclosureMinPaid, c.IdempotencyTTL())
	}
	if c.CreditCacheTTL != 30*24*time.Hour || c.UpcomingEMIWindow != 7*24*time.Hour {
		t.Fatalf("unexpected durations: %v %v", c.CreditCacheTTL, c.UpcomingEMIWindow)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PRECLOSURE_CHARGE_RATE", "0")
	t.Setenv("FOIR_LIMIT", "0.5")
	t.Setenv("ACTIVATION_GRACE_DAYS", "2")
	t.Setenv("USER_LOCK_TTL_SECONDS", "30")

	c := Load()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.AppPort != "9090" || c.RedisDB != 3 || c.ActivationGraceDays != 2 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if !c.PreclosureChargeRate.IsZero() {
		t.Fatalf("explicit zero charge rate must be kept, got %s", c.PreclosureChargeRate)
	}
	if c.UserLockTTL != 30*time.Second {
		t.Fatalf("lock ttl = %v", c.UserLockTTL)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]string{
		"PRECLOSURE_CHARGE_RATE": "-0.01",
		"FOIR_LIMIT":             "1.5",
		"ACTIVATION_GRACE_DAYS":  "-1",
		"REDIS_DB":               "two",
		"MIN_MONTHLY_INCOME":     "lots",
		"MYSQL_PORT":             "not-a-port",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if err := Load().Validate(); err == nil {
				t.Fatalf("%s=%s should fail validation", k, v)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "x"}
	want := "u:p@tcp(db:3306)/x?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("dsn = %s", got)
	}
}

func TestLoadTiers_Default(t *testing.T) {
	tiers, err := LoadTiers("")
	if err != nil {
		t.Fatalf("LoadTiers: %v", err)
	}
	if len(tiers) != 4 || tiers[0].Name != "new_member" {
		t.Fatalf("unexpected default tiers: %+v", tiers)
	}
}

func TestLoadTiers_File(t *testing.T) {
	tiers, err := LoadTiers(filepath.Join("..", "..", "config", "tiers.yaml"))
	if err != nil {
		t.Fatalf("LoadTiers: %v", err)
	}
	if len(tiers) != 5 {
		t.Fatalf("want 5 tiers, got %d", len(tiers))
	}
	payday := tiers[4]
	if payday.TenureUnit != "day" || !payday.Rate.Equal(decimal.RequireFromString("0.001")) {
		t.Fatalf("payday tier mis-parsed: %+v", payday)
	}
}

func TestLoadTiers_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.yaml":   "tiers: []\n",
		"badrate.yaml": "tiers:\n  - name: x\n    min_amount: \"1\"\n    max_amount: \"2\"\n    max_tenure: 1\n    tenure_unit: month\n    rate: abc\n",
		"badunit.yaml": "tiers:\n  - name: x\n    min_amount: \"1\"\n    max_amount: \"2\"\n    max_tenure: 1\n    tenure_unit: week\n    rate: \"0.1\"\n",
		"noname.yaml":  "tiers:\n  - min_amount: \"1\"\n",
		"garbage.yaml": "tiers: [\n",
	}
	for name, body := range cases {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadTiers(p); err == nil {
			t.Fatalf("%s should fail", name)
		}
	}
	if _, err := LoadTiers(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
