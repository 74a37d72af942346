package common

import (
	"time"

	"github.com/branchguard/branchguard/internal/divergence"
)

// DivergenceResponse mirrors divergence.Report.
type DivergenceResponse struct {
	BranchA string                `json:"branch_a"`
	BranchB string                `json:"branch_b"`
	Window  int                   `json:"window"`
	Files   map[string]FileRecord `json:"files"`
}

type FileTouch struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"short_hash"`
	When      time.Time `json:"when"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
}

type FileRecord struct {
	Path       string          `json:"path"`
	Kind       divergence.Kind `json:"kind"`
	A          *FileTouch      `json:"a,omitempty"`
	B          *FileTouch      `json:"b,omitempty"`
	MoreRecent divergence.Side `json:"more_recent,omitempty"`
	OnlyIn     divergence.Side `json:"only_in,omitempty"`
	GapSeconds float64         `json:"gap_seconds"`
}

func NewDivergenceResponse(report divergence.Report) DivergenceResponse {
	files := make(map[string]FileRecord, len(report.Files))
	for path, record := range report.Files {
		files[path] = FileRecord{
			Path:       record.Path,
			Kind:       record.Kind,
			A:          newFileTouch(record.A),
			B:          newFileTouch(record.B),
			MoreRecent: record.MoreRecent,
			OnlyIn:     record.OnlyIn,
			GapSeconds: record.Gap.Seconds(),
		}
	}

	return DivergenceResponse{
		BranchA: report.BranchA,
		BranchB: report.BranchB,
		Window:  report.Window,
		Files:   files,
	}
}

func newFileTouch(touch *divergence.FileTouch) *FileTouch {
	if touch == nil {
		return nil
	}

	return &FileTouch{
		Hash:      touch.Hash,
		ShortHash: touch.ShortHash,
		When:      touch.When,
		Author:    touch.Author,
		Message:   touch.Message,
	}
}
