package fsevent

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"editwatch/internal/logging"
	"editwatch/internal/metrics"
)

// Op classifies a raw notification.
type Op uint8

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	case OpChmod:
		return "chmod"
	default:
		return "unknown"
	}
}

// Event is a single raw filesystem notification.
type Event struct {
	Path      string
	Op        Op
	IsDir     bool
	Timestamp time.Time
}

// Options controls a Source.
type Options struct {
	// Root is the directory to watch. Required.
	Root string
	// Recursive registers every non-skipped subdirectory, including ones
	// created after Start.
	Recursive bool
	// Handler receives every raw event, on the source's delivery goroutine.
	Handler func(Event)
	// SkipDir prunes directories from recursive registration.
	SkipDir  func(path string) bool
	Logger   *logging.Logger
	Registry *metrics.Registry
}

// Source is the fsnotify-backed notification source.
type Source struct {
	watcher   *fsnotify.Watcher
	mutex     sync.Mutex
	handler   func(Event)
	skipDir   func(string) bool
	events    chan fsnotify.Event
	errors    chan error
	done      chan struct{}
	closed    bool
	logger    *logging.Logger
	registry  *metrics.Registry
	root      string
	recursive bool
	watched   map[string]struct{}

	loops sync.WaitGroup

	restartMutex    sync.Mutex
	restartAttempts int
	restartTimer    *time.Timer
}
