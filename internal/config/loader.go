package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, applies environment
// overrides and returns a validated [Config]. A missing file is not an
// error: the daemon then runs on defaults plus environment variables. An
// empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Info("config: file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		default:
			defer f.Close()
			if err := decodeInto(cfg, f); err != nil {
				return nil, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. Environment overrides are not applied. Useful in
// tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeInto(cfg, r); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeInto(cfg *Config, r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty file decodes to io.EOF; that just means all defaults.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// applyEnv overrides cfg fields from environment variables. The short names
// predate this daemon's config file and are kept so existing hotkey scripts
// keep working.
func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("FIFO_PATH", &cfg.Control.FIFOPath)
	setString("WHISPER_MODEL", &cfg.Whisper.Model)
	setString("WHISPER_DEVICE", &cfg.Whisper.Device)
	setString("WHISPER_COMPUTE", &cfg.Whisper.Compute)
	setString("WHISPER_LANG", &cfg.Whisper.Language)
	setString("OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	setString("PTT_LISTEN_ADDR", &cfg.Server.ListenAddr)

	if v := os.Getenv("WHISPER_BEAM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("config: WHISPER_BEAM is not an integer, ignoring", "value", v)
		} else {
			cfg.Whisper.BeamSize = n
		}
	}
	if v := os.Getenv("PTT_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = LogLevel(v)
	}
	if v := os.Getenv("PTT_OUTPUT_MODE"); v != "" {
		cfg.Output.Mode = OutputMode(v)
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found. Recoverable oddities
// are corrected in place with a warning instead of failing startup.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Control.FIFOPath == "" {
		errs = append(errs, errors.New("control.fifo_path is required"))
	}

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	if cfg.Audio.BlockMs < 10 || cfg.Audio.BlockMs > 1000 {
		errs = append(errs, fmt.Errorf("audio.block_ms %d is out of range [10, 1000]", cfg.Audio.BlockMs))
	}
	if cfg.Audio.Channels < 1 {
		errs = append(errs, fmt.Errorf("audio.channels %d must be at least 1", cfg.Audio.Channels))
	}

	if cfg.Whisper.Model == "" && cfg.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("whisper.model or openai.api_key is required; no transcription backend configured"))
	}
	if cfg.Whisper.BeamSize < 5 {
		slog.Warn("config: beam size below 5 degrades accuracy, raising",
			"configured", cfg.Whisper.BeamSize)
		cfg.Whisper.BeamSize = 5
	}

	if cfg.Output.Mode != "" && !cfg.Output.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("output.mode %q is invalid; valid values: keyboard, stdout", cfg.Output.Mode))
	}

	return errors.Join(errs...)
}
