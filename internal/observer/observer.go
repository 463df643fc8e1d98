package observer

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"editwatch/internal/event"
	"editwatch/internal/fsevent"
	"editwatch/internal/fsutil"
	"editwatch/internal/ignore"
	"editwatch/internal/logging"
	"editwatch/internal/metrics"
)

const (
	// DefaultDebounceWindow is the quiet period after the last raw event for
	// a path before its coalesced change is committed.
	DefaultDebounceWindow = 100 * time.Millisecond
	// DefaultRenameWindow bounds how far apart a delete and a
	// content-identical create may be and still count as one rename.
	DefaultRenameWindow = 100 * time.Millisecond
)

// Config holds the construction-time options of an Observer. Immutable after
// construction.
type Config struct {
	// Directory is the root to watch. Resolved to an absolute path.
	Directory string
	// Recursive selects whether subdirectories are watched. Defaults to true
	// at the configuration layer; the zero value here means non-recursive.
	Recursive bool
	// IncludePatterns restricts watching to matching paths. Empty means
	// everything not ignored.
	IncludePatterns []string
	// IgnorePatterns are explicit ignore globs, unioned with the metadata
	// directory exclusion and the loaded ignore-file rules.
	IgnorePatterns []string

	DebounceWindow time.Duration
	RenameWindow   time.Duration

	// Synchronous commits every event inline with no scheduling delay.
	// Used by tests that need deterministic ordering.
	Synchronous bool
}

// Options wires an Observer to its collaborators.
type Options struct {
	Config   Config
	Logger   *logging.Logger
	Registry *metrics.Registry
	Bus      *event.Bus[event.Observation]
	Sink     event.Sink
}

type recentDelete struct {
	content   string
	deletedAt time.Time
}

// Observer is the correlation, debounce, and diff engine. One instance owns
// all per-path state for one watched directory tree.
type Observer struct {
	config   Config
	policy   *ignore.Policy
	logger   *logging.Logger
	registry *metrics.Registry
	bus      *event.Bus[event.Observation]
	sink     event.Sink

	mutex         sync.Mutex
	contents      map[string]string
	pending       map[string]struct{}
	timers        map[string]*time.Timer
	recentDeletes map[string]recentDelete
	deleteTimers  map[string]*time.Timer
	closed        bool

	// tasks tracks outstanding timer callbacks so Stop can join them.
	tasks sync.WaitGroup

	source *fsevent.Source
}

// New creates an Observer and seeds its content cache from the directory
// tree, so the first observed modification diffs against a real baseline.
func New(options Options) (*Observer, error) {
	if options.Config.Directory == "" {
		return nil, errors.New("observer: directory is required")
	}
	directory, err := filepath.Abs(options.Config.Directory)
	if err != nil {
		return nil, err
	}

	config := options.Config
	config.Directory = directory
	if config.DebounceWindow <= 0 {
		config.DebounceWindow = DefaultDebounceWindow
	}
	if config.RenameWindow <= 0 {
		config.RenameWindow = DefaultRenameWindow
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil)
	}
	registry := options.Registry
	if registry == nil {
		registry = metrics.Default
	}

	observer := &Observer{
		config:   config,
		logger:   logger.With(map[string]string{"category": "observer"}),
		registry: registry,
		bus:      options.Bus,
		sink:     options.Sink,
		policy: ignore.NewPolicy(ignore.Config{
			Root:            directory,
			IncludePatterns: config.IncludePatterns,
			IgnorePatterns:  config.IgnorePatterns,
			IgnoreFileRules: ignore.LoadIgnoreFile(directory),
		}),
		contents:      make(map[string]string),
		pending:       make(map[string]struct{}),
		timers:        make(map[string]*time.Timer),
		recentDeletes: make(map[string]recentDelete),
		deleteTimers:  make(map[string]*time.Timer),
	}
	observer.seed()
	return observer, nil
}

// Policy exposes the ignore policy, mainly for the notification source's
// directory pruning.
func (observer *Observer) Policy() *ignore.Policy {
	if observer == nil {
		return nil
	}
	return observer.policy
}

// Start begins consuming raw notifications from the filesystem.
func (observer *Observer) Start() error {
	if observer == nil {
		return errors.New("observer: observer is nil")
	}

	observer.mutex.Lock()
	if observer.closed {
		observer.mutex.Unlock()
		return errors.New("observer: already stopped")
	}
	if observer.source != nil {
		observer.mutex.Unlock()
		return errors.New("observer: already started")
	}
	observer.mutex.Unlock()

	source, err := fsevent.New(fsevent.Options{
		Root:      observer.config.Directory,
		Recursive: observer.config.Recursive,
		Handler:   observer.handleRaw,
		SkipDir:   observer.policy.ShouldIgnore,
		Logger:    observer.logger,
		Registry:  observer.registry,
	})
	if err != nil {
		return err
	}
	if err := source.Start(); err != nil {
		_ = source.Close()
		return err
	}

	observer.mutex.Lock()
	observer.source = source
	observer.mutex.Unlock()

	observer.logger.Info("watching", map[string]string{
		"directory": observer.config.Directory,
	})
	return nil
}

// Stop cancels all outstanding timers and halts the notification source.
// When it returns, no further observation can be emitted.
func (observer *Observer) Stop() error {
	if observer == nil {
		return nil
	}

	observer.mutex.Lock()
	if observer.closed {
		observer.mutex.Unlock()
		return nil
	}
	observer.closed = true
	for _, timer := range observer.timers {
		if timer.Stop() {
			observer.tasks.Done()
		}
	}
	observer.timers = make(map[string]*time.Timer)
	observer.pending = make(map[string]struct{})
	for _, timer := range observer.deleteTimers {
		if timer.Stop() {
			observer.tasks.Done()
		}
	}
	observer.deleteTimers = make(map[string]*time.Timer)
	observer.recentDeletes = make(map[string]recentDelete)
	source := observer.source
	observer.mutex.Unlock()

	var closeErr error
	if source != nil {
		closeErr = source.Close()
	}
	observer.tasks.Wait()
	return closeErr
}

func (observer *Observer) handleRaw(raw fsevent.Event) {
	switch raw.Op {
	case fsevent.OpCreate:
		observer.HandleCreated(raw.Path, raw.IsDir)
	case fsevent.OpWrite:
		observer.HandleModified(raw.Path, raw.IsDir)
	case fsevent.OpRemove:
		observer.HandleDeleted(raw.Path, raw.IsDir)
	case fsevent.OpRename:
		// fsnotify reports only the source side of a rename; the delete
		// path plus the create correlation reconstructs the pair.
		observer.HandleDeleted(raw.Path, raw.IsDir)
	case fsevent.OpChmod:
		// Metadata-only; a content change would surface as a write.
	}
}

// readContent resolves any read failure to empty content; unreadable and
// missing files are treated alike.
func (observer *Observer) readContent(path string) string {
	content, ok := fsutil.ReadText(path)
	if !ok {
		observer.registry.IncReadFailures()
		return ""
	}
	return content
}
