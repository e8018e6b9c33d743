// Package uploader pushes documents to the cosmo server for indexing.
//
// The pool decouples file discovery from the HTTP uploads so a directory of
// documents is ingested with bounded concurrency, and Watch keeps a
// directory synced by uploading files as they appear or change.
package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/logger"
)

var (
	defaultNumWorkers   uint = 4
	defaultJobQueueSize uint = 256
)

// supportedExt mirrors the server's accepted document types.
var supportedExt = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
}

// Supported reports whether path has a document extension the server indexes.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// Job is one file to upload.
type Job struct {
	Path  string
	Force bool
}

// Result is the outcome of one upload.
type Result struct {
	Path          string
	ChunksIndexed int
	Err           error
}

// Config is the configuration options for the upload pool.
type Config struct {
	// Client performs the actual uploads.
	Client *api.Client

	// NumWorkers is the number of concurrent uploads (defaults to 4).
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// OnResult, when set, is invoked for every finished upload. Calls are
	// serialized.
	OnResult func(Result)

	// Logger is the provided slog logger.
	Logger *slog.Logger
}

// Pool uploads documents concurrently via a worker pool.
type Pool struct {
	config   *Config
	queue    chan Job
	wg       sync.WaitGroup
	logger   *slog.Logger
	resultMu sync.Mutex
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("uploader requires a client")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a file for upload.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("upload queued", "path", job.Path, "force", job.Force)
		return true
	default:
		p.logger.Error("upload not queued, queue full, job dropped", "path", job.Path)
		return false
	}
}

// Close signals workers to stop and waits for in-flight uploads to drain.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker continuously pulls jobs off the queue.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("upload worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("upload worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	result := Result{Path: job.Path}

	upload, err := p.config.Client.Upload(ctx, job.Path, job.Force)
	if err != nil {
		p.logger.Error("upload failed", "path", job.Path, "error", err)
		result.Err = err
	} else {
		p.logger.Info("document uploaded",
			"path", job.Path,
			"chunks_indexed", upload.ChunksIndexed,
		)
		result.ChunksIndexed = upload.ChunksIndexed
	}

	if p.config.OnResult != nil {
		p.resultMu.Lock()
		p.config.OnResult(result)
		p.resultMu.Unlock()
	}
}

// Discover walks dir and returns the supported document paths in sorted
// order. Hidden directories are skipped.
func Discover(dir string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// UploadDir discovers documents under dir and enqueues them all.
// Returns the number of files enqueued.
func (p *Pool) UploadDir(dir string, force bool) (int, error) {
	paths, err := Discover(dir)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, path := range paths {
		if p.Enqueue(Job{Path: path, Force: force}) {
			enqueued++
		}
	}

	return enqueued, nil
}
