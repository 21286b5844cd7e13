package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

var validConfigYAML = `
engine:
  quote_mint: ""
  leftover_receiver: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
fees:
  bonding_fee_bps: 150
  graduation_fee_bps: 300
  creator_graduation_fee_bps: 80
  pol_bps: 200
  protocol_treasury: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
  factory_creator: "So11111111111111111111111111111111111111112"
calibration:
  quartic_ratio: "3"
  cubic_ratio: "0.5"
  quadratic_ratio: "1.25"
  initial_price_share_bps: 1500
  tolerance_bps: 50
logging:
  level: "debug"
`

func setupTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	configPath := filepath.Join(tmpDir, name)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func cleanupTestConfig(configPath string) {
	os.RemoveAll(filepath.Dir(configPath))
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name:    "Valid config",
			content: validConfigYAML,
			wantErr: false,
			check: func(cfg *Config) bool {
				return cfg.Fees.BondingFeeBps == 150 &&
					cfg.Fees.GraduationFeeBps == 300 &&
					cfg.Fees.CreatorGraduationFeeBps == 80 &&
					cfg.Fees.PolBps == 200 &&
					cfg.Calibration.InitialPriceShareBps == 1500 &&
					cfg.Logging.Level == "debug"
			},
		},
		{
			name:    "Invalid treasury key",
			content: "fees:\n  protocol_treasury: \"not-base58!!\"\n",
			wantErr: true,
		},
		{
			name:    "Invalid curve ratio",
			content: "calibration:\n  quartic_ratio: \"abc\"\n",
			wantErr: true,
		},
		{
			name:    "Negative curve ratio",
			content: "calibration:\n  cubic_ratio: \"-1\"\n",
			wantErr: true,
		},
		{
			name:    "Unknown log level",
			content: "logging:\n  level: \"verbose\"\n",
			wantErr: true,
		},
		{
			name:    "Bonding fee over cap",
			content: "fees:\n  bonding_fee_bps: 2500\n",
			wantErr: true,
		},
		{
			name:    "Initial price share over cap",
			content: "calibration:\n  initial_price_share_bps: 10001\n",
			wantErr: true,
		},
		{
			name:    "Invalid YAML syntax",
			content: "fees: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := setupTestConfig(t, "config.yaml", tt.content)
			defer cleanupTestConfig(configPath)

			cfg, err := LoadConfig(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.check != nil {
				if !tt.check(cfg) {
					t.Error("LoadConfig() returned invalid configuration")
				}
			}
		})
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	configPath := setupTestConfig(t, "config.yaml", "{}\n")
	defer cleanupTestConfig(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Fees.BondingFeeBps != DefaultBondingFeeBps {
		t.Errorf("Expected default BondingFeeBps %d, got %d", DefaultBondingFeeBps, cfg.Fees.BondingFeeBps)
	}
	if cfg.Fees.GraduationFeeBps != DefaultGraduationFeeBps {
		t.Errorf("Expected default GraduationFeeBps %d, got %d", DefaultGraduationFeeBps, cfg.Fees.GraduationFeeBps)
	}
	if cfg.Fees.CreatorGraduationFeeBps != DefaultCreatorGraduationFeeBps {
		t.Errorf("Expected default CreatorGraduationFeeBps %d, got %d", DefaultCreatorGraduationFeeBps, cfg.Fees.CreatorGraduationFeeBps)
	}
	if cfg.Fees.PolBps != DefaultPolBps {
		t.Errorf("Expected default PolBps %d, got %d", DefaultPolBps, cfg.Fees.PolBps)
	}
	if cfg.Calibration.QuarticRatio != "2.25" {
		t.Errorf("Expected default QuarticRatio 2.25, got %s", cfg.Calibration.QuarticRatio)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Expected default log level %s, got %s", DefaultLogLevel, cfg.Logging.Level)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	configPath := setupTestConfig(t, "config.json", `{"fees": {"bonding_fee_bps": 500}}`)
	defer cleanupTestConfig(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Fees.BondingFeeBps != 500 {
		t.Errorf("Expected BondingFeeBps 500, got %d", cfg.Fees.BondingFeeBps)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestMaterializers(t *testing.T) {
	configPath := setupTestConfig(t, "config.yaml", validConfigYAML)
	defer cleanupTestConfig(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	fc, err := cfg.FeeConfig()
	if err != nil {
		t.Fatalf("FeeConfig() error = %v", err)
	}
	wantTreasury := solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	if !fc.ProtocolTreasury.Equals(wantTreasury) {
		t.Errorf("ProtocolTreasury = %s, want %s", fc.ProtocolTreasury, wantTreasury)
	}
	wantCreator := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	if !fc.FactoryCreator.Equals(wantCreator) {
		t.Errorf("FactoryCreator = %s, want %s", fc.FactoryCreator, wantCreator)
	}

	shape, err := cfg.CurveShape()
	if err != nil {
		t.Fatalf("CurveShape() error = %v", err)
	}
	if !shape.QuarticRatio.Equal(decimal.NewFromInt(3)) {
		t.Errorf("QuarticRatio = %s, want 3", shape.QuarticRatio)
	}
	if !shape.QuadraticRatio.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("QuadraticRatio = %s, want 1.25", shape.QuadraticRatio)
	}
	if shape.InitialPriceShareBps != 1500 {
		t.Errorf("InitialPriceShareBps = %d, want 1500", shape.InitialPriceShareBps)
	}

	quoteMint, receiver, err := cfg.EngineKeys()
	if err != nil {
		t.Fatalf("EngineKeys() error = %v", err)
	}
	if !quoteMint.IsZero() {
		t.Errorf("quoteMint = %s, want zero key", quoteMint)
	}
	wantReceiver := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	if !receiver.Equals(wantReceiver) {
		t.Errorf("leftoverReceiver = %s, want %s", receiver, wantReceiver)
	}

	logger, err := cfg.BuildLogger()
	if err != nil {
		t.Fatalf("BuildLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("BuildLogger() returned nil logger")
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("LAUNCHPAD_PROTOCOL_TREASURY", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	configPath := setupTestConfig(t, "config.yaml", "fees:\n  protocol_treasury: \"\"\n")
	defer cleanupTestConfig(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Fees.ProtocolTreasury != "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA" {
		t.Errorf("Expected treasury from env var, got %s", cfg.Fees.ProtocolTreasury)
	}
}
