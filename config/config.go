package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Deadjed/blank-bot/economy"
	"github.com/Deadjed/blank-bot/macro"
	"github.com/spf13/viper"
)

const (
	fileName  = "blankbot"
	envPrefix = "BLANKBOT"

	TransportUnix      = "unix"
	TransportWebSocket = "websocket"
)

type Config struct {
	Log       LogConfig        `mapstructure:"log"`
	Bridge    BridgeConfig     `mapstructure:"bridge"`
	Faction   FactionConfig    `mapstructure:"faction"`
	Placement PlacementConfig  `mapstructure:"placement"`
	Macro     macro.Settings   `mapstructure:"macro"`
	Allocator economy.Settings `mapstructure:"allocator"`
	Rules     RulesConfig      `mapstructure:"rules"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// BridgeConfig selects how the game bridge reaches the agent.
type BridgeConfig struct {
	Transport  string `mapstructure:"transport"`
	SocketPath string `mapstructure:"socket_path"`
	ListenAddr string `mapstructure:"listen_addr"`
	WSPath     string `mapstructure:"ws_path"`
}

type FactionConfig struct {
	Default     string `mapstructure:"default"`
	ProfilesDir string `mapstructure:"profiles_dir"`
}

// PlacementConfig seeds the placement search. Zero picks a time-based seed.
type PlacementConfig struct {
	Seed int64 `mapstructure:"seed"`
}

// RulesConfig replaces transition conditions by rule name.
type RulesConfig struct {
	Overrides map[string]string `mapstructure:"overrides"`
}

// Load sets defaults and reads <configDir>/blankbot.yaml when present.
// Environment variables prefixed BLANKBOT_ override both, e.g.
// BLANKBOT_LOG_LEVEL=debug.
func Load(configDir string) error {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("bridge.transport", TransportUnix)
	viper.SetDefault("bridge.socket_path", "/tmp/blankbot.sock")
	viper.SetDefault("bridge.listen_addr", "127.0.0.1:8765")
	viper.SetDefault("bridge.ws_path", "/bridge")

	viper.SetDefault("faction.default", "terran")
	viper.SetDefault("faction.profiles_dir", "")

	viper.SetDefault("placement.seed", 0)

	m := macro.DefaultSettings()
	viper.SetDefault("macro.max_workers", m.MaxWorkers)
	viper.SetDefault("macro.gas_min_workers", m.GasMinWorkers)
	viper.SetDefault("macro.gas_per_base", m.GasPerBase)
	viper.SetDefault("macro.gas_search_radius", m.GasSearchRadius)
	viper.SetDefault("macro.supply_margin", m.SupplyMargin)
	viper.SetDefault("macro.supply_radius", m.SupplyRadius)
	viper.SetDefault("macro.production_min_workers", m.ProductionMinWorkers)
	viper.SetDefault("macro.production_target", m.ProductionTarget)
	viper.SetDefault("macro.production_radius", m.ProductionRadius)
	viper.SetDefault("macro.attack_army_size", m.AttackArmySize)
	viper.SetDefault("macro.attack_threshold", m.AttackThreshold)
	viper.SetDefault("macro.army_min_workers", m.ArmyMinWorkers)
	viper.SetDefault("macro.army_min_production", m.ArmyMinProduction)
	viper.SetDefault("macro.scout_min_workers", m.ScoutMinWorkers)
	viper.SetDefault("macro.defend_radius", m.DefendRadius)

	a := economy.DefaultSettings()
	viper.SetDefault("allocator.gas_per_structure", a.GasPerStructure)
	viper.SetDefault("allocator.mineral_floor", a.MineralFloor)

	viper.SetDefault("rules.overrides", map[string]string{})

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configDir == "" {
		configDir = "."
	}
	viper.SetConfigName(fileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Info("no config file found, using defaults", "dir", configDir)
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	slog.Info("config loaded", "file", viper.ConfigFileUsed())
	return nil
}

// Get decodes the loaded settings into a Config and validates them.
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Bridge.Transport {
	case TransportUnix:
		if c.Bridge.SocketPath == "" {
			return errors.New("bridge.socket_path is required for the unix transport")
		}
	case TransportWebSocket:
		if c.Bridge.ListenAddr == "" {
			return errors.New("bridge.listen_addr is required for the websocket transport")
		}
	default:
		return fmt.Errorf("bridge.transport: unknown transport %q", c.Bridge.Transport)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Allocator.GasPerStructure < 0 || c.Allocator.MineralFloor < 0 {
		return errors.New("allocator settings must not be negative")
	}
	return nil
}

// ParseLevel maps a log.level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
