package tui

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
)

const reloadDebounce = 250 * time.Millisecond

// RunBoard opens the dashboard. Changes to dbPath made by other processes
// trigger a reload; an empty dbPath disables watching.
func RunBoard(ctx context.Context, svc *engine.Service, dbPath string, out io.Writer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newBoardModel(ctx, svc, svc.Bus().Stream(ctx, 16))
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))

	if dbPath != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("db watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
			if err := w.Add(filepath.Dir(dbPath)); err != nil {
				log.Warn("watch db dir", zap.String("path", dbPath), zap.Error(err))
			} else {
				go watchDB(ctx, w, dbPath, func() { p.Send(dbChangedMsg{}) }, log)
			}
		}
	}

	_, err := p.Run()
	return err
}

// watchDB calls notify once per burst of writes to the database or its WAL.
func watchDB(ctx context.Context, w *fsnotify.Watcher, dbPath string, notify func(), log *zap.Logger) {
	base := filepath.Base(dbPath)
	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Debug("db watcher error", zap.Error(err))
		case <-timer.C:
			notify()
		}
	}
}
