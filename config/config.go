// Package config loads engine configuration from a file with viper and
// materializes it into the typed structures the launchpad packages consume.
package config

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/krazyTry/launchpad-go/bonding_curve"
	"github.com/krazyTry/launchpad-go/fees"
	"github.com/krazyTry/launchpad-go/shared"
)

type EngineConfig struct {
	QuoteMint        string `mapstructure:"quote_mint"`
	LeftoverReceiver string `mapstructure:"leftover_receiver"`
}

type FeesConfig struct {
	BondingFeeBps           uint64 `mapstructure:"bonding_fee_bps"`
	GraduationFeeBps        uint64 `mapstructure:"graduation_fee_bps"`
	CreatorGraduationFeeBps uint64 `mapstructure:"creator_graduation_fee_bps"`
	PolBps                  uint64 `mapstructure:"pol_bps"`
	ProtocolTreasury        string `mapstructure:"protocol_treasury"`
	FactoryCreator          string `mapstructure:"factory_creator"`
}

type CalibrationConfig struct {
	QuarticRatio         string `mapstructure:"quartic_ratio"`
	CubicRatio           string `mapstructure:"cubic_ratio"`
	QuadraticRatio       string `mapstructure:"quadratic_ratio"`
	InitialPriceShareBps uint64 `mapstructure:"initial_price_share_bps"`
	ToleranceBps         uint64 `mapstructure:"tolerance_bps"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Engine      EngineConfig      `mapstructure:"engine"`
	Fees        FeesConfig        `mapstructure:"fees"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

const (
	DefaultBondingFeeBps           = 100
	DefaultGraduationFeeBps        = 200
	DefaultCreatorGraduationFeeBps = 50
	DefaultPolBps                  = 100
	DefaultLogLevel                = "info"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"fees.bonding_fee_bps":                DefaultBondingFeeBps,
		"fees.graduation_fee_bps":             DefaultGraduationFeeBps,
		"fees.creator_graduation_fee_bps":     DefaultCreatorGraduationFeeBps,
		"fees.pol_bps":                        DefaultPolBps,
		"calibration.quartic_ratio":           "2.25",
		"calibration.cubic_ratio":             "1",
		"calibration.quadratic_ratio":         "1.5",
		"calibration.initial_price_share_bps": bonding_curve.DefaultInitialPriceShareBps,
		"calibration.tolerance_bps":           shared.DefaultToleranceBps,
		"logging.level":                       DefaultLogLevel,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if _, err := cfg.FeeConfig(); err != nil {
		return err
	}
	if _, err := cfg.CurveShape(); err != nil {
		return err
	}
	if _, err := cfg.EngineKeys(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return shared.ConfigErrf("config.Validate", "unknown log level %q", cfg.Logging.Level)
	}
	return nil
}

// FeeConfig materializes the fee schedule, parsing the treasury and creator
// addresses and checking every rate against its cap.
func (c *Config) FeeConfig() (*fees.FeeConfig, error) {
	const op = "config.FeeConfig"
	treasury, err := parseKey(op, "fees.protocol_treasury", c.Fees.ProtocolTreasury)
	if err != nil {
		return nil, err
	}
	creator, err := parseKey(op, "fees.factory_creator", c.Fees.FactoryCreator)
	if err != nil {
		return nil, err
	}
	fc := &fees.FeeConfig{
		BondingFeeBps:           c.Fees.BondingFeeBps,
		GraduationFeeBps:        c.Fees.GraduationFeeBps,
		CreatorGraduationFeeBps: c.Fees.CreatorGraduationFeeBps,
		PolBps:                  c.Fees.PolBps,
		ProtocolTreasury:        treasury,
		FactoryCreator:          creator,
	}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return fc, nil
}

// CurveShape materializes the calibration ratios for BuildCurveParams.
func (c *Config) CurveShape() (*bonding_curve.CurveShape, error) {
	const op = "config.CurveShape"
	quartic, err := parseRatio(op, "calibration.quartic_ratio", c.Calibration.QuarticRatio)
	if err != nil {
		return nil, err
	}
	cubic, err := parseRatio(op, "calibration.cubic_ratio", c.Calibration.CubicRatio)
	if err != nil {
		return nil, err
	}
	quadratic, err := parseRatio(op, "calibration.quadratic_ratio", c.Calibration.QuadraticRatio)
	if err != nil {
		return nil, err
	}
	if c.Calibration.InitialPriceShareBps > shared.MaxBasisPoint {
		return nil, shared.ConfigErrf(op, "initial price share %d exceeds %d bps", c.Calibration.InitialPriceShareBps, shared.MaxBasisPoint)
	}
	return &bonding_curve.CurveShape{
		QuarticRatio:         quartic,
		CubicRatio:           cubic,
		QuadraticRatio:       quadratic,
		InitialPriceShareBps: c.Calibration.InitialPriceShareBps,
	}, nil
}

// EngineKeys parses the engine-level addresses. Empty strings stay the zero
// key, which the engine reads as "native quote" and "no sweep receiver".
func (c *Config) EngineKeys() (quoteMint, leftoverReceiver solana.PublicKey, err error) {
	const op = "config.EngineKeys"
	if quoteMint, err = parseKey(op, "engine.quote_mint", c.Engine.QuoteMint); err != nil {
		return
	}
	leftoverReceiver, err = parseKey(op, "engine.leftover_receiver", c.Engine.LeftoverReceiver)
	return
}

// BuildLogger builds a production zap logger at the configured level.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, shared.ConfigErrf("config.BuildLogger", "unknown log level %q", c.Logging.Level)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func parseKey(op, key, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, nil
	}
	pub, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, shared.ConfigErrf(op, "%s: invalid base58 key %q", key, value)
	}
	return pub, nil
}

func parseRatio(op, key, value string) (decimal.Decimal, error) {
	ratio, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, shared.ConfigErrf(op, "%s: invalid ratio %q", key, value)
	}
	if ratio.IsNegative() {
		return decimal.Decimal{}, shared.ConfigErrf(op, "%s: ratio must not be negative", key)
	}
	return ratio, nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if treasury := v.GetString("PROTOCOL_TREASURY"); treasury != "" {
		cfg.Fees.ProtocolTreasury = treasury
	}
	if creator := v.GetString("FACTORY_CREATOR"); creator != "" {
		cfg.Fees.FactoryCreator = creator
	}
	if quote := v.GetString("QUOTE_MINT"); quote != "" {
		cfg.Engine.QuoteMint = quote
	}
}
