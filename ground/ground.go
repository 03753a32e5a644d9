// Package ground resolves free text, like funder names or descriptor
// labels, to canonical references via prebuilt name indices. Indices are
// built once per run and are immutable afterwards, so they can be shared
// across workers without locking.
package ground

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/miku/pubmedkit/normal"
	"github.com/miku/pubmedkit/schema/article"
)

// Grounder resolves a piece of free text to a best matching canonical
// reference, or nil if nothing matches.
type Grounder interface {
	BestMatch(s string) *article.Reference
}

// Index is a read-only name to identifier map under a fixed prefix.
type Index struct {
	prefix string
	names  map[string]string
}

// NewIndex builds an index from name to identifier pairs.
func NewIndex(prefix string, pairs map[string]string) *Index {
	names := make(map[string]string, len(pairs))
	for name, id := range pairs {
		names[normal.LookupKey(name)] = id
	}
	return &Index{prefix: prefix, names: names}
}

// BestMatch implements Grounder.
func (ix *Index) BestMatch(s string) *article.Reference {
	if ix == nil {
		return nil
	}
	id, ok := ix.names[normal.LookupKey(s)]
	if !ok {
		return nil
	}
	return &article.Reference{Prefix: ix.prefix, Identifier: id}
}

// Len returns the number of indexed names.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.names)
}

// LoadTSV reads an identifier-name dump, one "id<TAB>name" pair per line,
// synonyms as extra lines. Files ending in .gz are decompressed on the
// fly.
func LoadTSV(prefix, filename string) (*Index, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	names := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	var i int
	for scanner.Scan() {
		i++
		line := scanner.Text()
		if line == "" {
			continue
		}
		id, name, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected two tab separated columns", filename, i)
		}
		names[normal.LookupKey(name)] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Index{prefix: prefix, names: names}, nil
}

// Services bundles the grounding domains the extractor knows about. Any
// field may be nil, in which case the corresponding reference fields stay
// unset.
type Services struct {
	// Funder resolves funding body names, e.g. against ROR.
	Funder Grounder
	// Mesh resolves descriptor labels to MeSH identifiers.
	Mesh Grounder
	// AuthorID resolves contributor names to identity references.
	AuthorID Grounder
}
