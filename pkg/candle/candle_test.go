package candle

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

func TestVersion(t *testing.T) {
	requireLibrary(t)
	v := Version()
	if v == "" || v == "unknown" {
		t.Errorf("expected valid version, got %q", v)
	}
	t.Logf("candle binding version: %s", v)
}

func TestLoadMissingLibrary(t *testing.T) {
	if Loaded() {
		t.Skip("library already loaded")
	}
	t.Setenv(EnvLibPath, filepath.Join(t.TempDir(), "missing.so"))
	err1 := Init()
	err2 := Init()
	if err1 == nil || err2 == nil {
		t.Fatalf("expected errors, got %v / %v", err1, err2)
	}
	if !errors.Is(err1, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err1)
	}
	if Version() != "unknown" {
		t.Errorf("Version() before load = %q", Version())
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := []float32{0, 1, -1, 2, float32(math.NaN()), 0.5}
	buf := encodeWAV(samples, genai.SampleRate)

	if len(buf) != wavHeaderSize+2*len(samples) {
		t.Fatalf("len = %d", len(buf))
	}
	if string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" || string(buf[36:40]) != "data" {
		t.Fatalf("bad header %q", buf[:44])
	}
	if got := binary.LittleEndian.Uint32(buf[24:28]); got != genai.SampleRate {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != uint32(36+2*len(samples)) {
		t.Errorf("riff size = %d", got)
	}

	want := []int16{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16, 0, 16384}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(buf[wavHeaderSize+2*i:]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestWriteTempWAV(t *testing.T) {
	path, err := writeTempWAV(sineSamples(0.1), genai.SampleRate)
	if err != nil {
		t.Fatalf("writeTempWAV: %v", err)
	}
	defer os.Remove(path)
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(wavHeaderSize+2*1600) {
		t.Errorf("size = %d", fi.Size())
	}
}

func TestWriteGunzipped(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	w.Write([]byte("library bytes"))
	w.Close()

	dest := filepath.Join(t.TempDir(), "lib.so")
	if err := writeGunzipped(&gz, dest); err != nil {
		t.Fatalf("writeGunzipped: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil || string(got) != "library bytes" {
		t.Fatalf("content = %q, %v", got, err)
	}

	bad := filepath.Join(t.TempDir(), "bad.so")
	if err := writeGunzipped(strings.NewReader("not gzip"), bad); err == nil {
		t.Error("expected gzip error")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("failed write left a library behind")
	}
}

func TestDownloadLibraryCached(t *testing.T) {
	if _, err := libraryName(); err != nil {
		t.Skip(err)
	}
	dir := t.TempDir()
	name, _ := libraryName()
	cached := filepath.Join(dir, name+"-basic."+libraryExtension())
	if err := os.WriteFile(cached, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := DownloadLibrary(context.Background(), "", dir)
	if err != nil || got != cached {
		t.Fatalf("DownloadLibrary = %q, %v", got, err)
	}
}

func TestDeviceName(t *testing.T) {
	for in, want := range map[string]string{"CPU": "cpu", "gpu": "cuda", "AUTO": ""} {
		got, err := deviceName(in)
		if err != nil || got != want {
			t.Errorf("deviceName(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := deviceName("NPU"); !errors.Is(err, genai.ErrUnsupportedDevice) {
		t.Errorf("NPU: err = %v", err)
	}
}

func TestModelID(t *testing.T) {
	for in, want := range map[string]string{
		"openai/whisper-tiny":            "openai/whisper-tiny",
		"hf://HuggingFaceTB/SmolLM-135M": "HuggingFaceTB/SmolLM-135M",
	} {
		if got, err := modelID(in); err != nil || got != want {
			t.Errorf("modelID(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := modelID("hf://"); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestChatPrompt(t *testing.T) {
	if got := chatPrompt([]genai.Message{{Role: genai.RoleUser, Content: "The capital of France is"}}); got != "The capital of France is" {
		t.Errorf("plain prompt = %q", got)
	}
	got := chatPrompt([]genai.Message{
		{Role: genai.RoleSystem, Content: "Be brief."},
		{Role: genai.RoleUser, Content: "Hi"},
	})
	want := "<|im_start|>system\nBe brief.<|im_end|>\n<|im_start|>user\nHi<|im_end|>\n<|im_start|>assistant\n"
	if got != want {
		t.Errorf("chat prompt = %q", got)
	}
}

func TestGenerateOpts(t *testing.T) {
	c := genai.DefaultGenerationConfig()
	o := generateOpts(c, 5, 7)
	if o.MaxTokens != 0 || o.Temperature != 0 || o.Seed != 7 || o.RepeatPenalty != 1 {
		t.Errorf("greedy opts = %+v", o)
	}
	c.DoSample = true
	c.Temperature = 0.5
	c.MaxLength = 20
	o = generateOpts(c, 5, 0)
	if o.MaxTokens != 15 || o.Temperature != 0.5 || o.TopP != 1 {
		t.Errorf("sampling opts = %+v", o)
	}
}

func TestFactoryRejectsDeviceBeforeLoad(t *testing.T) {
	t.Setenv(EnvLibPath, filepath.Join(t.TempDir(), "missing.so"))
	_, err := NewSpeechEngine(context.Background(), genai.ModelSpec{Path: "openai/whisper-tiny", Device: "NPU"})
	if !errors.Is(err, genai.ErrUnsupportedDevice) {
		t.Errorf("err = %v, want ErrUnsupportedDevice", err)
	}
}

func TestFactoryRejectsMissingLocalModel(t *testing.T) {
	t.Setenv(EnvLibPath, filepath.Join(t.TempDir(), "missing.so"))
	missing := filepath.Join(t.TempDir(), "not-a-model")
	_, err := NewTextEngine(context.Background(), genai.ModelSpec{Path: missing, Device: "CPU"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
	for in, want := range map[string]bool{
		"/models/llama":             true,
		"./llama":                   true,
		"HuggingFaceTB/SmolLM-135M": false,
		"hf://org/repo":             false,
	} {
		if got := isLocalPath(in); got != want {
			t.Errorf("isLocalPath(%q) = %v", in, got)
		}
	}
}

func TestTextGeneration(t *testing.T) {
	requireLibrary(t)

	pipeline, err := NewTextGenerationPipeline(TextGenerationConfig{ModelID: "HuggingFaceTB/SmolLM-135M"})
	if err != nil {
		t.Fatalf("NewTextGenerationPipeline failed: %v", err)
	}
	defer pipeline.Close()

	text, err := pipeline.Generate("The capital of France is", GenerateOpts{MaxTokens: 20})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text == "" {
		t.Error("generated text is empty")
	}
	t.Logf("Generated: %s", text)

	pipeline.Close()
	if _, err := pipeline.Generate("again", GenerateOpts{}); err == nil {
		t.Error("expected error after Close")
	}
}

func TestWhisperEngine(t *testing.T) {
	requireLibrary(t)

	ctx := context.Background()
	pipe, err := genai.NewWhisperPipeline(ctx, "openai/whisper-tiny", "CPU", nil, genai.WithBackend(Name))
	if err != nil {
		t.Fatalf("NewWhisperPipeline: %v", err)
	}
	defer pipe.Close()

	cfg := pipe.GenerationConfig()
	cfg.ReturnTimestamps = true
	res, err := pipe.Generate(ctx, sineSamples(2), &cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// A tone has no words; only check the pipeline ran end to end.
	t.Logf("Transcription: %q, chunks: %d", res.Texts[0], len(res.Chunks))
	if res.PerfMetrics.FeaturesExtractionDuration.Mean <= 0 {
		t.Errorf("features extraction = %v", res.PerfMetrics.FeaturesExtractionDuration)
	}
}
