package main

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"mediabatch/internal/batch"
	"mediabatch/internal/migration"
	"mediabatch/internal/transfer"
)

// progressObserver draws a scan spinner and a copy bar on an interactive terminal.
type progressObserver struct {
	out  io.Writer
	mu   sync.Mutex
	scan *progressbar.ProgressBar
	copy *progressbar.ProgressBar
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newProgressObserver returns a drawing observer when out is a terminal and
// enabled is set, otherwise a no-op observer.
func newProgressObserver(out io.Writer, enabled bool) migration.Observer {
	if !enabled || !isTerminal(out) {
		return migration.NopObserver{}
	}
	return &progressObserver{out: out}
}

func (p *progressObserver) FileScanned(string, int64) {
	p.mu.Lock()
	if p.scan == nil {
		p.scan = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	bar := p.scan
	p.mu.Unlock()
	_ = bar.Add(1)
}

func (p *progressObserver) Planned(plan batch.Plan) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scan != nil {
		_ = p.scan.Finish()
	}
	if plan.Files() == 0 {
		return
	}
	p.copy = progressbar.NewOptions(plan.Files(),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Copying"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progressObserver) FileCopied(transfer.Outcome) {
	p.mu.Lock()
	bar := p.copy
	p.mu.Unlock()
	if bar != nil {
		_ = bar.Add(1)
	}
}

// finishProgress clears any bar still on screen.
func finishProgress(obs migration.Observer) {
	p, ok := obs.(*progressObserver)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.copy != nil {
		_ = p.copy.Finish()
	}
}

// finishScan clears the scan spinner when no plan follows.
func finishScan(obs migration.Observer) {
	p, ok := obs.(*progressObserver)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scan != nil {
		_ = p.scan.Finish()
	}
}
