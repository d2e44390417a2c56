package service

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/variantlab/codesim/domain"
)

// ProgressBarReporter renders a terminal progress bar over the pair loop
type ProgressBarReporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewProgressBarReporter creates a progress bar reporter
func NewProgressBarReporter(writer io.Writer) *ProgressBarReporter {
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressBarReporter{writer: writer}
}

// StartProgress starts progress reporting for the given number of pairs
func (p *ProgressBarReporter) StartProgress(totalPairs int) {
	if totalPairs <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(totalPairs,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetDescription("comparing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// UpdateProgress advances the bar to the completed pair count
func (p *ProgressBarReporter) UpdateProgress(completed, total int) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(completed)
}

// FinishProgress finishes progress reporting
func (p *ProgressBarReporter) FinishProgress() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

// NoOpProgressReporter is a progress reporter that does nothing
type NoOpProgressReporter struct{}

// NewNoOpProgressReporter creates a no-op progress reporter
func NewNoOpProgressReporter() *NoOpProgressReporter {
	return &NoOpProgressReporter{}
}

func (n *NoOpProgressReporter) StartProgress(totalPairs int)        {}
func (n *NoOpProgressReporter) UpdateProgress(completed, total int) {}
func (n *NoOpProgressReporter) FinishProgress()                     {}

// CreateProgressReporter picks a reporter for the run. Progress renders only
// on an interactive terminal and never when explicitly disabled.
func CreateProgressReporter(writer io.Writer, disabled bool) domain.ProgressReporter {
	if disabled || !isTerminal(writer) {
		return NewNoOpProgressReporter()
	}
	return NewProgressBarReporter(writer)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
