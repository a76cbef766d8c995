package whisperx

import "strings"

// VAD back ends accepted by --vad_method.
const (
	VADSilero   = "silero"
	VADPyannote = "pyannote"
)

const (
	defaultLauncher = "uvx"
	defaultModel    = "large-v3"

	pypiIndex = "https://pypi.org/simple"
	cudaIndex = "https://download.pytorch.org/whl/cu128"
)

// Config captures runtime settings for WhisperX operations.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is VADSilero (default) or VADPyannote. Pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// Binary launches the WhisperX package, normally uvx.
	Binary string
}

func (c Config) withDefaults() Config {
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = defaultModel
	}
	if strings.TrimSpace(c.Binary) == "" {
		c.Binary = defaultLauncher
	}
	switch strings.ToLower(strings.TrimSpace(c.VADMethod)) {
	case VADPyannote:
		c.VADMethod = VADPyannote
	default:
		c.VADMethod = VADSilero
	}
	return c
}

// decodeFlags are tuned for sung vocals: short chunks, a sensitive VAD and
// greedy sampling keep word timings tight around sustained notes.
var decodeFlags = []string{
	"--batch_size", "4",
	"--chunk_size", "15",
	"--vad_onset", "0.08",
	"--vad_offset", "0.07",
	"--beam_size", "5",
	"--temperature", "0.0",
	"--segment_resolution", "sentence",
	"--output_format", "json",
}

// device returns the --device flags for the configured hardware.
func (c Config) device() []string {
	if c.CUDAEnabled {
		return []string{"--device", "cuda"}
	}
	return []string{"--device", "cpu", "--compute_type", "float32"}
}

// indexes returns the uvx package index flags. CUDA builds of torch come from
// the PyTorch index with PyPI as the fallback.
func (c Config) indexes() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", cudaIndex, "--extra-index-url", pypiIndex}
	}
	return []string{"--index-url", pypiIndex}
}
