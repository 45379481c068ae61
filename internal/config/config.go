package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/audiolibrelab/tunebuddy/internal/combo"

	"github.com/spf13/viper"
)

// Input backends
const (
	InputGPIO  = "gpio"
	InputStdin = "stdin"
)

// Audio backends
const (
	AudioAuto = "auto"
	AudioBeep = "beep"
	AudioExec = "exec"
)

// Highest BCM pin number on the Raspberry Pi 40-pin header
const maxPin = 27

type GlobalsConfig struct {
	ClipsDirectory string `mapstructure:"clips_directory" yaml:"clips_directory"`
}

type RootConfig struct {
	ActiveConfig string             `mapstructure:"active_config" yaml:"active_config"`
	Globals      *GlobalsConfig     `mapstructure:"globals,omitempty" yaml:"globals,omitempty"`
	Configs      map[string]*Config `mapstructure:"configs" yaml:"configs"`
}

type Config struct {
	Input        InputConfig   `mapstructure:"input" yaml:"input"`
	Audio        AudioConfig   `mapstructure:"audio" yaml:"audio"`
	Clips        ClipsConfig   `mapstructure:"clips" yaml:"clips"`
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// Profile the config was resolved from, for display only
	Profile string `mapstructure:"-" yaml:"-"`

	// explicit zero durations in a profile still override the base
	debounceSet     bool
	pollIntervalSet bool
}

type InputConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // "gpio", "stdin"

	// ActiveLow wires buttons between pin and ground with the internal pull-up
	ActiveLow *bool          `mapstructure:"active_low,omitempty" yaml:"active_low,omitempty"`
	Pins      map[string]int `mapstructure:"pins" yaml:"pins"`
}

type AudioConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"` // "beep", "exec", "auto"
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	Player     string `mapstructure:"player" yaml:"player"` // exec backend only
}

type ClipsConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// DefaultPins is the BCM wiring of the reference build
var DefaultPins = map[string]int{
	"pop": 4, "country": 17, "jazz": 22, "classic": 27,
	"saxophone": 5, "piano": 6, "guitar": 13, "drums": 26,
	"jolly": 23, "gloomy": 24, "suspenseful": 25, "calm": 12,
	"stop": 16, "generate": 20,
}

// Default returns the built-in configuration used when no config file exists
func Default() *Config {
	activeLow := true
	pins := make(map[string]int, len(DefaultPins))
	for k, v := range DefaultPins {
		pins[k] = v
	}
	return &Config{
		Input: InputConfig{
			Backend:   InputGPIO,
			ActiveLow: &activeLow,
			Pins:      pins,
		},
		Audio: AudioConfig{
			Backend:    AudioAuto,
			SampleRate: 44100,
		},
		Clips: ClipsConfig{
			Directory: filepath.Join(os.Getenv("HOME"), "Tunebuddy"),
		},
		Debounce: 300 * time.Millisecond,
		Profile:  "default",
	}
}

// IsActiveLow reports the input polarity, defaulting to active-low
func (c *Config) IsActiveLow() bool {
	return c.Input.ActiveLow == nil || *c.Input.ActiveLow
}

// ClipPath resolves a clip reference against the clips directory
func (c *Config) ClipPath(ref string) string {
	return filepath.Join(c.Clips.Directory, ref)
}

// Pin returns the BCM pin of an identifier
func (c *Config) Pin(id combo.Identifier) (int, bool) {
	p, ok := c.Input.Pins[string(id)]
	return p, ok
}

// LoadWithProfile loads configFile and resolves the named profile, falling
// back to active_config and then "default". A missing file that was not
// explicitly requested yields Default().
func LoadWithProfile(configFile, profile string, explicit bool) (*Config, error) {
	if configFile == "" {
		return nil, fmt.Errorf("no config file specified, use --config flag")
	}

	if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) && !explicit {
		if profile != "" && profile != "default" {
			return nil, fmt.Errorf("configuration profile '%s' not found: %s does not exist", profile, configFile)
		}
		cfg := Default()
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	rootConfig, err := ValidateConfigurationFormat(configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	configName := profile
	if configName == "" {
		configName = rootConfig.ActiveConfig
	}
	if configName == "" {
		configName = "default"
	}

	selected, exists := rootConfig.Configs[configName]
	if !exists {
		return nil, fmt.Errorf("configuration profile '%s' not found", configName)
	}

	// Built-in defaults sit under the file's default profile
	base := Default()
	if def, ok := rootConfig.Configs["default"]; ok && configName != "default" {
		base = mergeConfigs(base, def)
	}
	cfg := mergeConfigs(base, selected)
	cfg.Profile = configName

	// Global clips directory takes priority over profile-specific directory
	if rootConfig.Globals != nil && rootConfig.Globals.ClipsDirectory != "" {
		cfg.Clips.Directory = rootConfig.Globals.ClipsDirectory
	}
	cfg.Clips.Directory = expandPath(cfg.Clips.Directory)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// UpdateActiveConfig updates the active_config field in the config file
func UpdateActiveConfig(configFile, newActiveConfig string) error {
	if configFile == "" {
		return fmt.Errorf("no config file specified")
	}

	// Separate instance so the global viper state is left alone
	v := viper.New()
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var root RootConfig
	if err := v.Unmarshal(&root); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	if _, ok := root.Configs[newActiveConfig]; !ok {
		return fmt.Errorf("configuration profile '%s' not found", newActiveConfig)
	}

	v.Set("active_config", newActiveConfig)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configFile, err)
	}
	return nil
}

// ValidateConfigurationFormat reads the config file and checks its structure
func ValidateConfigurationFormat(configFile string) (*RootConfig, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("TUNEBUDDY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var rootConfig RootConfig
	if err := v.Unmarshal(&rootConfig); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(rootConfig.Configs) == 0 {
		return nil, fmt.Errorf("configs section cannot be empty")
	}
	for name, profile := range rootConfig.Configs {
		if profile == nil {
			return nil, fmt.Errorf("config '%s' is empty", name)
		}
		if err := validatePins(profile.Input.Pins); err != nil {
			return nil, fmt.Errorf("invalid config '%s': %w", name, err)
		}
		profile.debounceSet = v.IsSet("configs." + name + ".debounce")
		profile.pollIntervalSet = v.IsSet("configs." + name + ".poll_interval")
	}

	return &rootConfig, nil
}

// mergeConfigs layers profile over base; zero values in profile inherit
// unless the key was present in the file. A profile pins map replaces
// individual entries, not the whole map.
func mergeConfigs(base, profile *Config) *Config {
	merged := *base

	if profile.Input.Backend != "" {
		merged.Input.Backend = profile.Input.Backend
	}
	if profile.Input.ActiveLow != nil {
		v := *profile.Input.ActiveLow
		merged.Input.ActiveLow = &v
	}
	merged.Input.Pins = make(map[string]int, len(base.Input.Pins))
	for k, v := range base.Input.Pins {
		merged.Input.Pins[k] = v
	}
	for k, v := range profile.Input.Pins {
		merged.Input.Pins[strings.ToLower(k)] = v
	}

	if profile.Audio.Backend != "" {
		merged.Audio.Backend = profile.Audio.Backend
	}
	if profile.Audio.SampleRate != 0 {
		merged.Audio.SampleRate = profile.Audio.SampleRate
	}
	if profile.Audio.Player != "" {
		merged.Audio.Player = profile.Audio.Player
	}

	if profile.Clips.Directory != "" {
		merged.Clips.Directory = profile.Clips.Directory
	}
	if profile.Debounce != 0 || profile.debounceSet {
		merged.Debounce = profile.Debounce
	}
	if profile.PollInterval != 0 || profile.pollIntervalSet {
		merged.PollInterval = profile.PollInterval
	}

	return &merged
}

// Validate checks a resolved configuration
func Validate(cfg *Config) error {
	switch cfg.Input.Backend {
	case InputGPIO:
		if err := validatePins(cfg.Input.Pins); err != nil {
			return err
		}
		for _, id := range combo.Identifiers() {
			if _, ok := cfg.Input.Pins[string(id)]; !ok {
				return fmt.Errorf("input.pins: no pin for '%s'", id)
			}
		}
	case InputStdin:
	default:
		return fmt.Errorf("input.backend must be '%s' or '%s', got: %s", InputGPIO, InputStdin, cfg.Input.Backend)
	}

	switch cfg.Audio.Backend {
	case AudioAuto, AudioBeep, AudioExec:
	default:
		return fmt.Errorf("audio.backend must be '%s', '%s' or '%s', got: %s", AudioAuto, AudioBeep, AudioExec, cfg.Audio.Backend)
	}
	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be > 0, got: %d", cfg.Audio.SampleRate)
	}

	if cfg.Clips.Directory == "" {
		return fmt.Errorf("clips.directory is required")
	}
	if cfg.Debounce < 0 {
		return fmt.Errorf("debounce must be >= 0, got: %s", cfg.Debounce)
	}
	if cfg.PollInterval < 0 {
		return fmt.Errorf("poll_interval must be >= 0, got: %s", cfg.PollInterval)
	}
	return nil
}

func validatePins(pins map[string]int) error {
	owner := make(map[int]string)
	for name, pin := range pins {
		id := combo.Identifier(strings.ToLower(name))
		if _, ok := combo.LabelFor(id); !ok {
			return fmt.Errorf("input.pins: unknown button '%s'", name)
		}
		if pin < 0 || pin > maxPin {
			return fmt.Errorf("input.pins.%s: pin must be between 0 and %d, got: %d", name, maxPin, pin)
		}
		if other, taken := owner[pin]; taken {
			return fmt.Errorf("input.pins: pin %d assigned to both '%s' and '%s'", pin, other, name)
		}
		owner[pin] = name
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
