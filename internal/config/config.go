package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/fti/internal/alert"
	"github.com/Veraticus/fti/internal/cache"
	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/recurring"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "~/.local/share/fti/fti.db"

// Config is the fully resolved application configuration.
type Config struct {
	Database   DatabaseConfig
	Logging    LoggingConfig
	Server     ServerConfig
	Categories []classification.Rule
	Alerts     alert.Config
	Engine     engine.Config
	Cache      cache.Config
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                 string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	ShutdownTimeout      time.Duration
	SlowRequestThreshold time.Duration
}

// SetDefaults registers the default value of every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.slow_request_threshold", time.Second)

	cc := cache.DefaultConfig()
	v.SetDefault("cache.enabled", cc.Enabled)
	v.SetDefault("cache.ttl", cc.TTL)
	v.SetDefault("cache.cleanup_interval", cc.CleanupInterval)

	ec := engine.DefaultConfig()
	v.SetDefault("engine.timezone", "UTC")
	v.SetDefault("engine.zero_expense_policy", string(ec.ZeroExpensePolicy))
	v.SetDefault("engine.recurring_mode", string(ec.RecurringMode))
	v.SetDefault("engine.recurring_lookback", ec.RecurringLookback)
	v.SetDefault("engine.timeout", ec.Timeout)
	v.SetDefault("engine.debt_score", ec.DebtScore)
	v.SetDefault("engine.neutral_spending_score", ec.NeutralSpendingScore)
	v.SetDefault("engine.no_goals_score", ec.NoGoalsScore)
	v.SetDefault("engine.zero_expense_cash_flow_score", ec.ZeroExpenseCashFlowScore)
	v.SetDefault("engine.zero_expense_savings_score", ec.ZeroExpenseSavingsScore)
	v.SetDefault("engine.savings_multiplier", ec.SavingsMultiplier)
	v.SetDefault("engine.stability_per_transaction", ec.StabilityPerTransaction)
	v.SetDefault("engine.recent_limit", ec.RecentLimit)
	for name, w := range ec.Weights {
		v.SetDefault("engine.weights."+string(name), w)
	}

	ac := alert.DefaultConfig()
	v.SetDefault("alerts.large_transaction_threshold", ac.LargeTransactionThreshold.String())
	v.SetDefault("alerts.approach_percent", ac.ApproachPercent)
}

// Load resolves the configuration from v, which should already have read its
// config file and environment. Defaults are applied for every unset key.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Server: ServerConfig{
			Addr:                 v.GetString("server.addr"),
			ReadTimeout:          v.GetDuration("server.read_timeout"),
			WriteTimeout:         v.GetDuration("server.write_timeout"),
			ShutdownTimeout:      v.GetDuration("server.shutdown_timeout"),
			SlowRequestThreshold: v.GetDuration("server.slow_request_threshold"),
		},
		Cache: cache.Config{
			Enabled:         v.GetBool("cache.enabled"),
			TTL:             v.GetDuration("cache.ttl"),
			CleanupInterval: v.GetDuration("cache.cleanup_interval"),
		},
	}

	var errs []error

	eng, err := loadEngine(v)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Engine = eng

	alerts, err := loadAlerts(v)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Alerts = alerts

	rules, err := loadCategories(v)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Categories = rules

	if cfg.Database.Path == "" {
		errs = append(errs, fmt.Errorf("%w: database.path", common.ErrMissingConfig))
	}
	if _, err := common.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err))
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: invalid log format: %s", common.ErrInvalidConfig, cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func loadEngine(v *viper.Viper) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	loc, err := time.LoadLocation(v.GetString("engine.timezone"))
	if err != nil {
		return cfg, fmt.Errorf("%w: engine.timezone: %w", common.ErrInvalidConfig, err)
	}
	cfg.Location = loc

	mode, err := recurring.ParseMode(v.GetString("engine.recurring_mode"))
	if err != nil {
		return cfg, fmt.Errorf("%w: engine.recurring_mode: %w", common.ErrInvalidConfig, err)
	}
	cfg.RecurringMode = mode

	cfg.ZeroExpensePolicy = engine.ZeroExpensePolicy(v.GetString("engine.zero_expense_policy"))
	cfg.RecurringLookback = v.GetDuration("engine.recurring_lookback")
	cfg.Timeout = v.GetDuration("engine.timeout")
	cfg.DebtScore = v.GetFloat64("engine.debt_score")
	cfg.NeutralSpendingScore = v.GetFloat64("engine.neutral_spending_score")
	cfg.NoGoalsScore = v.GetFloat64("engine.no_goals_score")
	cfg.ZeroExpenseCashFlowScore = v.GetFloat64("engine.zero_expense_cash_flow_score")
	cfg.ZeroExpenseSavingsScore = v.GetFloat64("engine.zero_expense_savings_score")
	cfg.SavingsMultiplier = v.GetFloat64("engine.savings_multiplier")
	cfg.StabilityPerTransaction = v.GetFloat64("engine.stability_per_transaction")
	cfg.RecentLimit = v.GetInt("engine.recent_limit")

	cfg.Weights = make(map[model.ComponentName]float64, len(model.ComponentNames()))
	for _, name := range model.ComponentNames() {
		cfg.Weights[name] = v.GetFloat64("engine.weights." + string(name))
	}

	return cfg, cfg.Validate()
}

func loadAlerts(v *viper.Viper) (alert.Config, error) {
	cfg := alert.DefaultConfig()

	threshold, err := decimal.NewFromString(v.GetString("alerts.large_transaction_threshold"))
	if err != nil {
		return cfg, fmt.Errorf("%w: alerts.large_transaction_threshold: %w", common.ErrInvalidConfig, err)
	}
	cfg.LargeTransactionThreshold = threshold
	cfg.ApproachPercent = v.GetInt("alerts.approach_percent")

	return cfg, cfg.Validate()
}

// loadCategories reads categories.rules, falling back to the built-in keyword table.
func loadCategories(v *viper.Viper) ([]classification.Rule, error) {
	if !v.IsSet("categories.rules") {
		return classification.DefaultRules(), nil
	}

	var rules []classification.Rule
	if err := v.UnmarshalKey("categories.rules", &rules); err != nil {
		return nil, fmt.Errorf("%w: categories.rules: %w", common.ErrInvalidConfig, err)
	}
	if _, err := classification.NewClassifier(rules); err != nil {
		return nil, fmt.Errorf("%w: categories.rules: %w", common.ErrInvalidConfig, err)
	}
	return rules, nil
}
