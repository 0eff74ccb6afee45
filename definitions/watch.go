package definitions

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow is how long repeated writes to the same file are coalesced
// into one change event. Editors tend to fire several writes per save.
const DebounceWindow = 100 * time.Millisecond

// ChangeKind distinguishes what a change event invalidates: a definition edit
// requires a full session rebuild, a script edit only a recompile of the
// running automation.
type ChangeKind uint8

const (
	ChangeDefinition ChangeKind = iota
	ChangeScript
)

func (k ChangeKind) String() string {
	if k == ChangeScript {
		return "script"
	}
	return "definition"
}

// Change is one debounced edit to a watched file.
type Change struct {
	Path string
	Kind ChangeKind
}

// Watcher reports edits to baked definition files and automation scripts so a
// running preview can rebuild its session. The Events and Errors channels are
// owned by the watch loop: it alone closes them, after Close has been
// observed, so a Close during an event burst never races a pending send.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching. Safe to call more than once. Events and Errors are
// closed by the watch loop once it winds down, so receivers may keep ranging
// until the channels report closed.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)

	lastSeen := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind, watched := classifyChange(event.Name)
			if !watched {
				continue
			}
			now := time.Now()
			if t, seen := lastSeen[event.Name]; seen && now.Sub(t) < DebounceWindow {
				continue
			}
			lastSeen[event.Name] = now
			select {
			case w.Events <- Change{Path: event.Name, Kind: kind}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func classifyChange(path string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ChangeDefinition, true
	case ".tengo":
		return ChangeScript, true
	default:
		return 0, false
	}
}
