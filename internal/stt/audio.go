package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pion/opus"
	"github.com/pion/opus/pkg/oggreader"
	. "github.com/roelfdiedericks/voicetools/internal/logging"
	"github.com/zeozeozeo/gomplerate"
)

const (
	targetSampleRate = 16000 // Whisper.cpp requires 16kHz
	maxFrameSize     = 5760  // Max Opus frame size (120ms at 48kHz)
)

// ConvertToFloat32 converts an audio file to 16kHz mono float32 samples,
// the input format of whisper.cpp.
//
// ffmpeg handles everything when installed. Without it, 16-bit PCM WAV and
// OGG/Opus are decoded in pure Go; browser recordings (webm) need ffmpeg.
func ConvertToFloat32(ctx context.Context, filePath string) ([]float32, error) {
	if ffmpegAvailable() {
		L_debug("stt: using ffmpeg", "file", filePath)
		return convertWithFFmpeg(ctx, filePath)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav":
		return convertWAV(filePath)
	case ".ogg", ".opus", ".oga":
		samples, err := convertOggOpusSafe(filePath)
		if err != nil {
			return nil, fmt.Errorf("OGG decoding failed (%v) - install ffmpeg for reliable audio conversion", err)
		}
		return samples, nil
	}

	return nil, fmt.Errorf("unsupported audio format %s (install ffmpeg for non-WAV/OGG input)", filepath.Ext(filePath))
}

// convertWAV decodes a 16-bit PCM WAV file.
func convertWAV(filePath string) ([]float32, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	pcm, sampleRate, channels, err := parseWAV(data)
	if err != nil {
		return nil, err
	}
	return normalize(pcm, sampleRate, channels), nil
}

// parseWAV walks the RIFF chunks of a WAV file and returns its 16-bit samples.
func parseWAV(data []byte) (samples []int16, sampleRate, channels int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var haveFmt bool
	var bitsPerSample int
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8:]
		if size < len(body) {
			body = body[:size]
		}

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, 0, 0, fmt.Errorf("short fmt chunk")
			}
			if format := binary.LittleEndian.Uint16(body[0:2]); format != 1 {
				return nil, 0, 0, fmt.Errorf("unsupported WAV encoding %d (only PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			if bitsPerSample != 16 {
				return nil, 0, 0, fmt.Errorf("unsupported WAV bit depth %d (only 16-bit)", bitsPerSample)
			}
			if channels < 1 {
				return nil, 0, 0, fmt.Errorf("invalid channel count %d", channels)
			}
			samples = make([]int16, len(body)/2)
			if err := binary.Read(bytes.NewReader(body[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
				return nil, 0, 0, fmt.Errorf("read samples: %w", err)
			}
			return samples, sampleRate, channels, nil
		}

		// Chunks are word-aligned
		pos += 8 + size + size%2
	}

	return nil, 0, 0, fmt.Errorf("no data chunk in WAV file")
}

// convertOggOpusSafe wraps convertOggOpus with panic recovery.
// The pion/opus decoder panics on some streams.
func convertOggOpusSafe(filePath string) (samples []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			L_warn("stt: pure Go decoder panicked, recovered", "panic", r)
			err = fmt.Errorf("decoder panic: %v", r)
			samples = nil
		}
	}()
	return convertOggOpus(filePath)
}

// convertOggOpus decodes OGG/Opus to 16kHz mono float32 using pure Go.
func convertOggOpus(filePath string) ([]float32, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	ogg, header, err := oggreader.NewWith(file)
	if err != nil {
		return nil, fmt.Errorf("parse OGG container: %w", err)
	}

	sampleRate := int(header.SampleRate)
	channels := int(header.Channels)
	L_debug("stt: OGG header", "sampleRate", sampleRate, "channels", channels)

	decoder := opus.NewDecoder()
	outBuf := make([]byte, maxFrameSize*channels*2)

	var all []int16
	for {
		segments, _, err := ogg.ParseNextPage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse OGG page: %w", err)
		}

		for _, segment := range segments {
			if len(segment) == 0 {
				continue
			}
			_, isStereo, err := decoder.Decode(segment, outBuf)
			if err != nil {
				L_trace("stt: skipping packet", "error", err, "len", len(segment))
				continue
			}
			frameChannels := 1
			if isStereo {
				frameChannels = 2
			}
			all = append(all, bytesToInt16(outBuf, frameChannels)...)
		}
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no audio samples decoded from %s", filePath)
	}
	return normalize(all, sampleRate, channels), nil
}

// normalize downmixes, resamples to 16kHz and scales to [-1, 1].
func normalize(samples []int16, sampleRate, channels int) []float32 {
	if channels > 1 {
		samples = toMono(samples, channels)
	}
	if sampleRate != targetSampleRate {
		L_debug("stt: resampling", "from", sampleRate, "to", targetSampleRate)
		samples = resampleInt16(samples, sampleRate, targetSampleRate)
	}
	return int16ToFloat32(samples)
}

// bytesToInt16 converts a byte buffer to int16 samples (little-endian),
// stopping at trailing zero padding.
func bytesToInt16(buf []byte, channels int) []int16 {
	end := len(buf) - len(buf)%2
	for end > 2 && buf[end-1] == 0 && buf[end-2] == 0 {
		end -= 2
	}
	// Keep whole frames
	end -= end % (2 * channels)

	samples := make([]int16, end/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2])) // #nosec G115 - audio sample reinterpretation
	}
	return samples
}

// toMono converts multi-channel audio to mono by averaging channels.
func toMono(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}

	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(samples[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels)) // #nosec G115 - average stays in range
	}
	return mono
}

// resampleInt16 converts audio from one sample rate to another using gomplerate.
func resampleInt16(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || fromRate <= 0 {
		return samples
	}

	resampler, err := gomplerate.NewResampler(1, fromRate, toRate)
	if err != nil {
		L_warn("stt: resampler creation failed, skipping resample", "error", err)
		return samples
	}
	return resampler.ResampleInt16(samples)
}

// int16ToFloat32 converts int16 samples to float32 normalized to [-1, 1].
func int16ToFloat32(samples []int16) []float32 {
	result := make([]float32, len(samples))
	for i, s := range samples {
		result[i] = float32(s) / 32768.0
	}
	return result
}

// ffmpegAvailable checks if ffmpeg is installed.
func ffmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// convertWithFFmpeg pipes the file through ffmpeg as raw 16kHz mono s16le.
func convertWithFFmpeg(ctx context.Context, inputPath string) ([]float32, error) {
	// #nosec G204 - inputPath is an artifact path we created
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-nostdin",
		"-loglevel", "error",
		"-i", inputPath,
		"-ar", strconv.Itoa(targetSampleRate),
		"-ac", "1",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		L_debug("stt: ffmpeg output", "stderr", stderr.String())
		return nil, fmt.Errorf("ffmpeg conversion failed: %w", err)
	}

	raw := stdout.Bytes()
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2])) // #nosec G115 - audio sample reinterpretation
	}
	return int16ToFloat32(samples), nil
}
