// Package rollover restamps stored time states when the calendar day changes
// while the application is running.
package rollover

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/timestate"
)

// Restamper rewrites stale time states and reports how many changed.
type Restamper interface {
	Restamp(ctx context.Context) (int, error)
}

// DayChangedMsg is a tea.Msg sent after a restamp pass.
type DayChangedMsg struct {
	Day       time.Time
	Restamped int
	Err       error
}

// restampTimeout bounds a single restamp pass.
const restampTimeout = 30 * time.Second

// Watcher polls the classifier's clock and restamps once per new day.
type Watcher struct {
	target     Restamper
	classifier *timestate.Classifier
	interval   time.Duration
	log        *zap.Logger

	resultCh  chan DayChangedMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	done      chan struct{}

	mu      gosync.Mutex
	running bool
	stopped bool
	lastDay time.Time
}

// New creates a Watcher. A non-positive interval defaults to one minute.
func New(target Restamper, c *timestate.Classifier, interval time.Duration, log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		target:     target,
		classifier: c,
		interval:   interval,
		log:        log,
		resultCh:   make(chan DayChangedMsg, 4),
		triggerCh:  make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that waits for
// the first result. A restamp runs immediately so entries written on an
// earlier day are re-bucketed on launch.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	go w.loop()

	return w.waitForResult()
}

// Stop halts the polling goroutine and waits for it to exit. Pending
// waiters receive nil.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	<-w.done
}

// Check asks for an immediate day check without blocking.
func (w *Watcher) Check() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.resultCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(true)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check(false)
		case <-w.triggerCh:
			w.check(false)
		}
	}
}

// check restamps when the day differs from the last one seen, or always
// when force is set.
func (w *Watcher) check(force bool) {
	y, m, d := w.classifier.Today().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	w.mu.Lock()
	same := day.Equal(w.lastDay)
	w.lastDay = day
	w.mu.Unlock()
	if same && !force {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), restampTimeout)
	defer cancel()

	n, err := w.target.Restamp(ctx)
	if err != nil {
		w.log.Warn("restamping entries", zap.Error(err))
	} else {
		w.log.Debug("day rollover", zap.Time("day", day), zap.Int("restamped", n))
	}
	w.sendResult(DayChangedMsg{Day: day, Restamped: n, Err: err})
}

// sendResult delivers msg without blocking the loop.
func (w *Watcher) sendResult(msg DayChangedMsg) {
	select {
	case w.resultCh <- msg:
	default:
	}
}

func (w *Watcher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-w.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next restamp result.
// Call it after handling a DayChangedMsg to keep listening.
func (w *Watcher) WaitForNextResult() tea.Cmd {
	return w.waitForResult()
}
