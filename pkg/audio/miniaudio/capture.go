// Package miniaudio implements the [audio.Capture] interface on top of the
// miniaudio library via the malgo bindings.
//
// The miniaudio context is created once in [New] and reused across capture
// sessions; only the device is opened and closed on Start/Stop. Blocks are
// delivered on miniaudio's own callback thread, decoded from interleaved
// F32LE to mono float32 with only the first channel retained.
package miniaudio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/hummat/fifo-whisper-ptt/pkg/audio"
)

// Compile-time assertion that Capture satisfies audio.Capture.
var _ audio.Capture = (*Capture)(nil)

// Config describes the fixed audio format for a [Capture]. All fields are
// required.
type Config struct {
	// SampleRate is the capture sample rate in Hz (e.g., 16000).
	SampleRate int

	// Channels is the number of device channels to request. Only channel 0
	// is delivered to the handler.
	Channels int

	// BlockFrames is the number of frames per delivered block (the device
	// period size). 3200 frames is 200 ms at 16 kHz.
	BlockFrames int
}

// Capture is a microphone capture channel backed by a miniaudio capture
// device. Safe for concurrent use.
type Capture struct {
	cfg Config
	ctx *malgo.AllocatedContext

	mu      sync.Mutex
	device  *malgo.Device
	handler audio.BlockHandler
}

// New initialises the miniaudio context. The context stays open for the
// process lifetime; call Close when the capture channel is no longer needed.
func New(cfg Config) (*Capture, error) {
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.BlockFrames <= 0 {
		return nil, errors.New("miniaudio: sample rate, channels, and block frames must be positive")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("miniaudio: init context: %w", err)
	}

	return &Capture{cfg: cfg, ctx: ctx}, nil
}

// Start opens the capture device and begins delivering blocks to h.
// Idempotent: if the device is already open, Start returns nil and the
// original handler stays in place.
func (c *Capture) Start(h audio.BlockHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return nil
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(c.cfg.Channels)
	deviceConfig.SampleRate = uint32(c.cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(c.cfg.BlockFrames)
	deviceConfig.Alsa.NoMMap = 1

	c.handler = h
	callbacks := malgo.DeviceCallbacks{
		Data: c.onBlock,
		Stop: func() {
			slog.Debug("miniaudio device stopped")
		},
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		c.handler = nil
		return fmt.Errorf("miniaudio: init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		c.handler = nil
		return fmt.Errorf("miniaudio: start device: %w", err)
	}

	c.device = device
	slog.Info("audio capture started",
		"sample_rate", c.cfg.SampleRate,
		"channels", c.cfg.Channels,
		"block_frames", c.cfg.BlockFrames,
	)
	return nil
}

// Stop halts delivery and releases the capture device. Idempotent. A failure
// to stop the device cleanly is logged but the channel is still recorded as
// inactive.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		slog.Warn("miniaudio: device stop error", "err", err)
	}
	c.device.Uninit()
	c.device = nil
	c.handler = nil
	slog.Info("audio capture stopped")
	return nil
}

// Active reports whether the capture device is currently open.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil
}

// Close stops any active capture and releases the miniaudio context.
func (c *Capture) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}
	if err := c.ctx.Uninit(); err != nil {
		return fmt.Errorf("miniaudio: uninit context: %w", err)
	}
	c.ctx.Free()
	return nil
}

// onBlock runs on miniaudio's callback thread for every device period.
func (c *Capture) onBlock(_, input []byte, frameCount uint32) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h == nil {
		return
	}

	samples := audio.DecodeF32LE(input)
	if len(samples) != int(frameCount)*c.cfg.Channels {
		slog.Warn("miniaudio: short block, dropping",
			"got_samples", len(samples),
			"want_frames", frameCount,
		)
		return
	}
	h(audio.FirstChannel(samples, c.cfg.Channels))
}
