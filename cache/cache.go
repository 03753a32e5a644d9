// Package cache memoizes per-file extraction results. Each source file
// gets a sibling artifact with the extracted articles as compressed JSON,
// keyed by a content fingerprint of the source, so an in-place change of
// the source invalidates the artifact. A corrupt or stale artifact is a
// cache miss, never an error.
package cache

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/miku/pubmedkit/atomicfile"
	"github.com/miku/pubmedkit/extract"
	"github.com/miku/pubmedkit/ground"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
)

// ErrMalformed marks a source file that cannot be parsed as a record set
// at all. Callers skip such files and continue.
var ErrMalformed = errors.New("malformed source file")

// FileCache processes single feed files with memoization.
type FileCache struct {
	Grounders ground.Services
	// Force reprocesses even when a valid artifact exists.
	Force bool
}

// ArtifactPath returns the cache artifact location for a source file,
// substituting the source extension: x.xml.gz -> x.json.gz.
func ArtifactPath(filename string) string {
	base := strings.TrimSuffix(filename, ".gz")
	base = strings.TrimSuffix(base, ".xml")
	return base + ".json.gz"
}

// Fingerprint hashes the source file content.
func Fingerprint(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// artifact is the serialized cache entry.
type artifact struct {
	Fingerprint string            `json:"fingerprint"`
	Articles    []article.Article `json:"articles,omitempty"`
}

// Process returns all articles of one source file, from the cache when a
// valid artifact exists, else by extracting and then persisting the
// result.
func (c *FileCache) Process(filename string) ([]article.Article, error) {
	fingerprint, err := Fingerprint(filename)
	if err != nil {
		return nil, err
	}
	cachePath := ArtifactPath(filename)
	if !c.Force {
		if docs, ok := c.load(cachePath, fingerprint); ok {
			return docs, nil
		}
	}
	docs, err := c.parse(filename)
	if err != nil {
		return nil, err
	}
	if err := c.store(cachePath, fingerprint, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// load reads an artifact; any failure, from a missing file to garbled
// JSON to a fingerprint mismatch, means miss.
func (c *FileCache) load(cachePath, fingerprint string) ([]article.Article, bool) {
	f, err := os.Open(cachePath)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		logrus.Warnf("unreadable cache artifact, reprocessing: %s: %v", cachePath, err)
		return nil, false
	}
	defer zr.Close()
	var a artifact
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		logrus.Warnf("corrupt cache artifact, reprocessing: %s: %v", cachePath, err)
		return nil, false
	}
	if a.Fingerprint != fingerprint {
		logrus.Infof("stale cache artifact, reprocessing: %s", cachePath)
		return nil, false
	}
	return a.Articles, true
}

func (c *FileCache) parse(filename string) ([]article.Article, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filename, err)
		}
		defer zr.Close()
		r = zr
	}
	docs, err := extract.File(r, c.Grounders)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filename, err)
	}
	return docs, nil
}

func (c *FileCache) store(cachePath, fingerprint string, docs []article.Article) error {
	f, err := atomicfile.New(cachePath)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	if err := enc.Encode(artifact{Fingerprint: fingerprint, Articles: docs}); err != nil {
		f.Abort()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}
