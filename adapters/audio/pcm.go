// Package audio provides microphone capture and speaker playback on top of
// PortAudio, plus the PCM helpers shared by the speech adapters.
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// DefaultSampleRate is the capture rate expected by the transcribers
	DefaultSampleRate = 16000

	// DefaultFramesPerBuffer is the default PortAudio buffer size
	DefaultFramesPerBuffer = 512

	bitsPerSample = 16
)

// Int16ToBytes serializes samples as 16-bit signed little-endian PCM
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToInt16 parses 16-bit signed little-endian PCM. A trailing odd byte is dropped.
func BytesToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// Duration returns how long a 16-bit PCM buffer plays for
func Duration(pcm []byte, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	frames := len(pcm) / (channels * bitsPerSample / 8)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// EncodeWAV wraps 16-bit signed little-endian PCM in a RIFF/WAV container
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}
