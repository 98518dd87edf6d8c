package candle

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const wavHeaderSize = 44

// encodeWAV wraps mono float samples in [-1, 1] as a 16-bit PCM RIFF/WAV
// file. Out-of-range samples are clipped and NaN becomes silence.
func encodeWAV(samples []float32, sampleRate int) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, wavHeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		if math.IsNaN(v) {
			v = 0
		}
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+2*i:], uint16(int16(math.Round(v*math.MaxInt16))))
	}
	return buf
}

// writeTempWAV stores samples in a temporary WAV file. The caller removes it.
func writeTempWAV(samples []float32, sampleRate int) (string, error) {
	f, err := os.CreateTemp("", "genai-candle-*.wav")
	if err != nil {
		return "", fmt.Errorf("candle: temp wav: %w", err)
	}
	if _, err := f.Write(encodeWAV(samples, sampleRate)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("candle: write wav: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
