package downloader

import (
	"time"

	"gtkup/repository"
)

// Result describes one successful pipeline run
type Result struct {
	Target   repository.Target `json:"target"`
	Archive  string            `json:"archive"`
	Bytes    int64             `json:"bytes"`
	Duration time.Duration     `json:"duration"`
}

// Report summarizes an orchestrator run
type Report struct {
	Selector string              `json:"selector"`
	BaseDir  string              `json:"gtk_dir"`
	Targets  []repository.Target `json:"targets"`
	Results  []*Result           `json:"results,omitempty"`
	Path     string              `json:"path,omitempty"`
	Errors   []string            `json:"errors,omitempty"`
}
