package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavBitDepth is the sample bit depth used for all WAV output.
const wavBitDepth = 16

// EncodeWAV writes samples as a mono 16-bit PCM WAV stream to ws.
func EncodeWAV(ws io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(ws, sampleRate, wavBitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           float32ToPCM16(samples),
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalise wav: %w", err)
	}
	return nil
}

// WriteWAVFile writes samples as a mono 16-bit PCM WAV file at path,
// truncating any existing file.
func WriteWAVFile(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %q: %w", path, err)
	}
	if err := EncodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audio: close %q: %w", path, err)
	}
	return nil
}
