package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"karaoke/internal/config"
)

// Requirement is an external program the pipeline shells out to.
type Requirement struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	// Optional tools only serve some jobs; yt-dlp is skipped for local sources.
	Optional bool `json:"optional"`
}

// Status is a Requirement plus the result of looking it up on PATH.
type Status struct {
	Requirement
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Requirements lists the collaborator binaries normal-mode jobs need, using
// the commands configured in cfg.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: cfg.Download.Binary, Description: "downloads media from URL sources", Optional: true},
		{Name: "demucs", Command: cfg.Separation.Binary, Description: "separates vocals from the instrumental"},
		{Name: "whisperx", Command: cfg.WhisperXBinary(), Description: "launches WhisperX transcription and alignment"},
		{Name: "ffmpeg", Command: cfg.Render.FFmpegBinary, Description: "renders the karaoke video"},
	}
}

// CheckBinaries resolves every requirement, in order.
func CheckBinaries(requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		out[i] = check(req)
	}
	return out
}

func check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	st := Status{Requirement: req}
	if req.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return st
	}
	st.Available, st.Path = true, path
	return st
}

// Missing names the required tools that are unavailable.
func Missing(statuses []Status) []string {
	var names []string
	for _, st := range statuses {
		if !st.Available && !st.Optional {
			names = append(names, st.Name)
		}
	}
	return names
}
