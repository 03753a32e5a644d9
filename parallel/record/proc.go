package record

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxBufferSize = 1 << 24 // 16MB, soft limit
	defaultMaxTokenSize  = 1 << 26 // 64MB, hard limit
)

// ProcessFunc transforms one batch of records into output bytes. A nil
// result writes nothing.
type ProcessFunc func([]byte) ([]byte, error)

// Processor reads batches from a reader, transforms them in parallel and
// writes results, in arbitrary order, to a writer.
type Processor struct {
	r             io.Reader
	w             io.Writer
	processFunc   ProcessFunc
	splitFunc     bufio.SplitFunc
	NumWorkers    int
	MaxBufferSize int
	MaxTokenSize  int
}

// NewProcessor creates a processor that by default splits on lines.
func NewProcessor(r io.Reader, w io.Writer, f ProcessFunc) *Processor {
	return &Processor{
		r:             r,
		w:             w,
		processFunc:   f,
		splitFunc:     bufio.ScanLines,
		NumWorkers:    runtime.NumCPU(),
		MaxBufferSize: defaultMaxBufferSize,
		MaxTokenSize:  defaultMaxTokenSize,
	}
}

// Split sets the split function.
func (p *Processor) Split(f bufio.SplitFunc) {
	p.splitFunc = f
}

// Run processes the whole stream.
func (p *Processor) Run() error {
	return p.RunContext(context.Background())
}

// RunContext processes the whole stream, stopping early when ctx is
// cancelled.
func (p *Processor) RunContext(ctx context.Context) error {
	bw := bufio.NewWriter(p.w)
	defer bw.Flush()
	scanner := bufio.NewScanner(bufio.NewReader(p.r))
	scanner.Split(p.splitFunc)
	scanner.Buffer(make([]byte, 0, p.MaxBufferSize), p.MaxTokenSize)
	var (
		workC   = make(chan []byte, p.NumWorkers*2)
		writeMu sync.Mutex
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(workC)
		for scanner.Scan() {
			token := scanner.Bytes()
			data := make([]byte, len(token))
			copy(data, token)
			select {
			case workC <- data:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})
	for i := 0; i < p.NumWorkers; i++ {
		g.Go(func() error {
			for data := range workC {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				result, err := p.processFunc(data)
				if err != nil {
					return err
				}
				if result == nil {
					continue
				}
				writeMu.Lock()
				_, err = bw.Write(result)
				writeMu.Unlock()
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
