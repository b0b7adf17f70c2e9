package registry

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"benchopt/internal/common/fsutil"
	"benchopt/pkg/types"
)

// Live serves the most recent successful load of a manifest directory. A
// reload that fails keeps the previous registry.
type Live struct {
	dir      string
	cur      atomic.Pointer[Registry]
	log      zerolog.Logger
	Debounce time.Duration
}

// NewLive loads dir once. The initial load must succeed.
func NewLive(dir string, log zerolog.Logger) (*Live, error) {
	l := &Live{dir: dir, log: log, Debounce: 200 * time.Millisecond}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Live) Current() *Registry { return l.cur.Load() }

func (l *Live) List() []types.Model { return l.cur.Load().List() }

func (l *Live) Find(id string) (types.Model, bool) { return l.cur.Load().Find(id) }

// Reload re-reads the directory and swaps the registry in on success.
func (l *Live) Reload() error {
	reg, err := LoadDir(l.dir)
	if err != nil {
		return err
	}
	l.cur.Store(reg)
	return nil
}

// Watch reloads on manifest changes until ctx is done. Bursts of events are
// coalesced into one reload after Debounce.
func (l *Live) Watch(ctx context.Context) error {
	dir, err := fsutil.ExpandHome(l.dir)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}
	go l.loop(ctx, w)
	return nil
}

func (l *Live) loop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !isManifest(ev.Name) || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(l.Debounce)
		case <-timer.C:
			if err := l.Reload(); err != nil {
				l.log.Warn().Err(err).Str("dir", l.dir).Msg("models reload failed, keeping previous set")
				continue
			}
			l.log.Info().Str("dir", l.dir).Int("models", l.Current().Len()).Msg("models reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.log.Warn().Err(err).Msg("watch models")
		}
	}
}

func isManifest(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range manifestExts {
		if ext == e {
			return true
		}
	}
	return false
}
