// Package config provides the configuration schema and loader for the
// dictation daemon.
//
// Configuration is read from a YAML file, then overridden by environment
// variables so the daemon can be driven entirely from a desktop autostart
// entry without a config file at all.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// OutputMode selects where recognised text is delivered.
type OutputMode string

const (
	// OutputKeyboard injects text into the focused window via a synthetic
	// paste.
	OutputKeyboard OutputMode = "keyboard"

	// OutputStdout prints text to standard output.
	OutputStdout OutputMode = "stdout"
)

// IsValid reports whether m is a recognised output mode.
func (m OutputMode) IsValid() bool {
	return m == OutputKeyboard || m == OutputStdout
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Control    ControlConfig    `yaml:"control"`
	Audio      AudioConfig      `yaml:"audio"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Output     OutputConfig     `yaml:"output"`
	Debug      DebugConfig      `yaml:"debug"`
}

// ServerConfig holds network and logging settings for the HTTP sidecar
// (health, metrics, WebSocket control).
type ServerConfig struct {
	// ListenAddr is the TCP address the sidecar listens on. Empty disables
	// the HTTP server entirely.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ControlConfig holds settings for the primary control channel.
type ControlConfig struct {
	// FIFOPath is the named pipe commands are read from. Created on startup
	// when absent.
	FIFOPath string `yaml:"fifo_path"`
}

// AudioConfig holds microphone capture settings.
type AudioConfig struct {
	// SampleRate in Hz. Whisper models expect 16000.
	SampleRate int `yaml:"sample_rate"`

	// BlockMs is the capture callback period in milliseconds.
	BlockMs int `yaml:"block_ms"`

	// Channels is the number of capture channels. Only the first channel is
	// kept.
	Channels int `yaml:"channels"`
}

// WhisperConfig selects and tunes the local whisper model.
type WhisperConfig struct {
	// Model is the path to the ggml model file. Required unless an OpenAI
	// key is configured.
	Model string `yaml:"model"`

	// Device and Compute describe the inference placement. They are
	// recorded in the startup log for operator visibility; the bundled
	// whisper build picks its own backend.
	Device  string `yaml:"device"`
	Compute string `yaml:"compute"`

	// Language is the transcription language hint.
	Language string `yaml:"language"`

	// BeamSize is the decoder beam width. Values below 5 are raised to 5.
	BeamSize int `yaml:"beam_size"`
}

// OpenAIConfig configures the cloud transcription fallback. The fallback is
// active only when APIKey is set.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// TranscriptConfig tunes post-processing of recognised text.
type TranscriptConfig struct {
	// Dictionary lists domain terms (possibly multi-word) that transcripts
	// are phonetically corrected towards.
	Dictionary []string `yaml:"dictionary"`
}

// OutputConfig selects the text delivery path.
type OutputConfig struct {
	// Mode is "keyboard" or "stdout".
	Mode OutputMode `yaml:"mode"`

	// Notify enables desktop notifications on session transitions.
	Notify bool `yaml:"notify"`
}

// DebugConfig holds development aids.
type DebugConfig struct {
	// DumpWAV, when non-empty, writes each session's raw audio to this path
	// before transcription.
	DumpWAV string `yaml:"dump_wav"`
}

// Default returns a Config with all defaults applied. The whisper model
// path has no default and must come from the file, the environment, or the
// OpenAI fallback.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8090",
			LogLevel:   LogInfo,
		},
		Control: ControlConfig{
			FIFOPath: "/tmp/dictation_ctl",
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			BlockMs:    200,
			Channels:   1,
		},
		Whisper: WhisperConfig{
			Device:   "auto",
			Compute:  "default",
			Language: "en",
			BeamSize: 5,
		},
		OpenAI: OpenAIConfig{
			Model: "whisper-1",
		},
		Output: OutputConfig{
			Mode:   OutputKeyboard,
			Notify: true,
		},
	}
}

// BlockFrames returns the number of frames per capture block.
func (a AudioConfig) BlockFrames() int {
	return a.SampleRate * a.BlockMs / 1000
}
