package service

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ludo-technologies/variscan/domain"
)

const progressDescription = "Loading variants"

// ProgressManagerImpl shows a file counter while both variants are parsed.
// Updates arrive from loader goroutines in any order, so the bar only ever
// moves forward.
type ProgressManagerImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	bar         *progressbar.ProgressBar
	interactive bool
	total       int
	loaded      int
}

// NewProgressManager creates a progress manager writing to stderr
func NewProgressManager() domain.ProgressManager {
	return &ProgressManagerImpl{
		writer:      os.Stderr,
		interactive: IsInteractiveEnvironment(),
	}
}

// Initialize sets the number of files of both variants together
func (pm *ProgressManagerImpl) Initialize(maxValue int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.total = maxValue
	pm.loaded = 0
}

// Start shows the bar in interactive sessions
func (pm *ProgressManagerImpl) Start() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureBar()
}

// Complete finishes the bar, or clears it when loading failed
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.bar == nil {
		return
	}
	if success {
		_ = pm.bar.Finish()
	} else {
		_ = pm.bar.Exit()
	}
	pm.bar = nil
}

// Update records that processed of total files are loaded
func (pm *ProgressManagerImpl) Update(processed, total int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if total != pm.total {
		pm.total = total
		if pm.bar != nil {
			pm.bar.ChangeMax(total)
		}
	}
	if processed <= pm.loaded {
		return
	}
	pm.loaded = processed

	pm.ensureBar()
	if pm.bar != nil {
		_ = pm.bar.Set(processed)
	}
}

// SetWriter redirects the bar. Only terminals get a bar.
func (pm *ProgressManagerImpl) SetWriter(writer io.Writer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.writer = writer
	file, ok := writer.(*os.File)
	pm.interactive = ok && term.IsTerminal(int(file.Fd()))
}

// IsInteractive returns true if progress bars should be shown
func (pm *ProgressManagerImpl) IsInteractive() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.interactive
}

// Close clears a bar left open
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.bar != nil {
		_ = pm.bar.Exit()
		pm.bar = nil
	}
}

// Loaded returns the highest file count reported so far
func (pm *ProgressManagerImpl) Loaded() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.loaded
}

// ensureBar must be called with mu held
func (pm *ProgressManagerImpl) ensureBar() {
	if pm.bar != nil || !pm.interactive {
		return
	}

	writer := pm.writer
	if writer == nil {
		writer = io.Discard
	}
	pm.bar = progressbar.NewOptions(pm.total,
		progressbar.OptionSetDescription(progressDescription),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
}

// IsInteractiveEnvironment reports whether stderr is a terminal and the
// environment does not ask for plain output
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
