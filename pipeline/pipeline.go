// Package pipeline drives per-file extraction across many feed files,
// sequentially or with a bounded worker pool, and composes the update and
// baseline sources into one stream. The same path is never scheduled
// twice within a run; concurrent processing of distinct files needs no
// further coordination, since each file has its own cache artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/miku/pubmedkit/cache"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Mode selects the processing strategy.
type Mode string

const (
	// ModeSequential processes files in input order; output preserves
	// file order and within-file order.
	ModeSequential Mode = "sequential"
	// ModeStream uses a bounded worker pool and yields single records
	// incrementally; output order across files is not defined.
	ModeStream Mode = "stream"
	// ModeBatch also uses a bounded worker pool but hands over whole
	// per-file batches, trading memory and ordering precision for
	// throughput. Memory stays bounded by workers times file size.
	ModeBatch Mode = "batch"
)

// Pipeline orchestrates multi-file processing.
type Pipeline struct {
	Cache   *cache.FileCache
	Mode    Mode
	Workers int
	runID   string
}

// New returns a pipeline around a file cache.
func New(c *cache.FileCache, mode Mode, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		Cache:   c,
		Mode:    mode,
		Workers: workers,
		runID:   uuid.NewString(),
	}
}

func (p *Pipeline) log() *logrus.Entry {
	return logrus.WithField("run", p.runID)
}

// uniquePaths drops repeated paths, keeping first occurrence order.
// Processing the same uncached file from two workers is undefined, so it
// is never scheduled.
func uniquePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var result []string
	for _, p := range paths {
		if seen[p] {
			logrus.Warnf("ignoring duplicate path: %s", p)
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}

// Each processes all paths and calls fn once per article, from a single
// goroutine. A malformed file is skipped with a warning; any other error
// aborts the run.
func (p *Pipeline) Each(ctx context.Context, paths []string, fn func(article.Article) error) error {
	paths = uniquePaths(paths)
	switch p.Mode {
	case ModeStream, ModeBatch:
		return p.eachParallel(ctx, paths, fn)
	default:
		return p.eachSequential(ctx, paths, fn)
	}
}

func (p *Pipeline) eachSequential(ctx context.Context, paths []string, fn func(article.Article) error) error {
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs, err := p.processFile(path, i+1, len(paths))
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := fn(doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// processFile runs the cache for one path, mapping malformed files to an
// empty result with a warning.
func (p *Pipeline) processFile(path string, done, total int) ([]article.Article, error) {
	docs, err := p.Cache.Process(path)
	if err != nil {
		if errors.Is(err, cache.ErrMalformed) {
			p.log().Warnf("skipping file: %v", err)
			return nil, nil
		}
		return nil, err
	}
	p.log().Infof("processed %d/%d: %s (%d records)", done, total, path, len(docs))
	return docs, nil
}

// eachParallel fans paths out to a bounded worker pool. In stream mode
// workers emit one record at a time on an unbuffered channel; in batch
// mode they emit whole per-file slices on a buffered channel. fn runs in
// the calling goroutine either way.
func (p *Pipeline) eachParallel(ctx context.Context, paths []string, fn func(article.Article) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		records = make(chan article.Article)
		batches = make(chan []article.Article, p.Workers)
	)
	g, ctx := errgroup.WithContext(ctx)
	pathC := make(chan string)
	g.Go(func() error {
		defer close(pathC)
		for _, path := range paths {
			select {
			case pathC <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i := 0; i < p.Workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for path := range pathC {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				docs, err := p.processFile(path, n, len(paths))
				if err != nil {
					return err
				}
				if p.Mode == ModeBatch {
					select {
					case batches <- docs:
					case <-ctx.Done():
						return ctx.Err()
					}
					continue
				}
				for _, doc := range docs {
					select {
					case records <- doc:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(records)
		close(batches)
	}()
	var ferr error
	consume := func(doc article.Article) {
		if ferr != nil {
			return
		}
		if ferr = fn(doc); ferr != nil {
			cancel()
		}
	}
	if p.Mode == ModeBatch {
		for docs := range batches {
			for _, doc := range docs {
				consume(doc)
			}
		}
	} else {
		for doc := range records {
			consume(doc)
		}
	}
	gerr := g.Wait()
	if ferr != nil {
		return ferr
	}
	return gerr
}

// Articles composes the two sources, updates strictly before baseline. No
// identifier based deduplication happens here; a record amended by an
// update is emitted once per source. Wrap fn in DedupeByID for first
// occurrence wins semantics.
func (p *Pipeline) Articles(ctx context.Context, updates, baseline []string, fn func(article.Article) error) error {
	if err := p.Each(ctx, updates, fn); err != nil {
		return fmt.Errorf("updates: %w", err)
	}
	if err := p.Each(ctx, baseline, fn); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	return nil
}

// DedupeByID wraps fn so that only the first article per identifier
// passes through. With updates ordered before baseline, first wins is
// latest wins.
func DedupeByID(fn func(article.Article) error) func(article.Article) error {
	seen := make(map[int]bool)
	return func(a article.Article) error {
		if seen[a.PMID] {
			return nil
		}
		seen[a.PMID] = true
		return fn(a)
	}
}
