package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"k8s.io/klog/v2"

	"github.com/born-ml/minigrad/internal/nn"
	"github.com/born-ml/minigrad/internal/train"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	bestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// progress shows per-epoch progress: a single line rewritten in place when the
// output is a terminal, one log line per epoch otherwise.
type progress struct {
	w           io.Writer
	interactive bool
	epochs      int
}

func newProgress(w io.Writer, epochs int) *progress {
	interactive := false
	if f, ok := w.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &progress{w: w, interactive: interactive, epochs: epochs}
}

// Update reports a finished epoch.
func (p *progress) Update(s train.EpochStats) {
	if !p.interactive {
		// Fit already logs every epoch.
		return
	}
	const width = 30
	done := width * s.Epoch / p.epochs
	bar := strings.Repeat("█", done) + strings.Repeat("░", width-done)
	_, _ = fmt.Fprintf(p.w, "\r%s epoch %d/%d  loss %.4f", bar, s.Epoch, p.epochs, s.Loss)
}

// Done terminates the progress line.
func (p *progress) Done() {
	if p.interactive {
		_, _ = fmt.Fprintln(p.w)
	}
	klog.Flush()
}

// renderReport formats the training history as a styled table.
func renderReport(model *nn.Sequential, f *trainFlags, history []train.EpochStats) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("minigrad training report"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "model:  %s\n", model)
	fmt.Fprintf(&sb, "loss:   %s, lr=%g, momentum=%g, batch=%d\n\n", f.loss, f.train.LR, f.train.Momentum, f.train.BatchSize)

	if len(history) == 0 {
		sb.WriteString("no epoch completed")
		return boxStyle.Render(sb.String())
	}

	best := 0
	for i, s := range history {
		if s.EvalAccuracy > history[best].EvalAccuracy {
			best = i
		}
	}

	sb.WriteString(headerStyle.Render(fmt.Sprintf("%5s  %10s  %9s  %10s  %9s  %8s",
		"epoch", "train loss", "train acc", "eval loss", "eval acc", "time")))
	for i, s := range history {
		row := fmt.Sprintf("%5d  %10.4f  %8.2f%%  %10.4f  %8.2f%%  %8s",
			s.Epoch, s.Loss, 100*s.Accuracy, s.EvalLoss, 100*s.EvalAccuracy, s.Duration.Round(time.Millisecond))
		if i == best {
			row = bestStyle.Render(row)
		}
		sb.WriteString("\n")
		sb.WriteString(row)
	}
	return boxStyle.Render(sb.String())
}
