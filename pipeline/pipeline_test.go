package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	gzip "github.com/klauspost/pgzip"
	"github.com/miku/pubmedkit/cache"
	"github.com/miku/pubmedkit/schema/article"
)

func record(pmid int) string {
	return fmt.Sprintf(`
  <PubmedArticle>
    <MedlineCitation>
      <PMID>%d</PMID>
      <Article><ArticleTitle>Title %d</ArticleTitle></Article>
      <MedlineJournalInfo><NlmUniqueID>0410462</NlmUniqueID></MedlineJournalInfo>
    </MedlineCitation>
    <PubmedData></PubmedData>
  </PubmedArticle>`, pmid, pmid)
}

// writeFeedFile creates a compressed single-set feed file with one record
// per given identifier.
func writeFeedFile(t *testing.T, dir, name string, pmids ...int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><PubmedArticleSet>`)
	for _, pmid := range pmids {
		sb.WriteString(record(pmid))
	}
	sb.WriteString(`</PubmedArticleSet>`)
	filename := filepath.Join(dir, name)
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(sb.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return filename
}

func collect(t *testing.T, p *Pipeline, updates, baseline []string) []int {
	t.Helper()
	var pmids []int
	err := p.Articles(context.Background(), updates, baseline, func(a article.Article) error {
		pmids = append(pmids, a.PMID)
		return nil
	})
	if err != nil {
		t.Fatalf("Articles: %v", err)
	}
	return pmids
}

func TestSequentialOrder(t *testing.T) {
	dir := t.TempDir()
	u := writeFeedFile(t, dir, "u0001.xml.gz", 10, 11)
	b1 := writeFeedFile(t, dir, "b0001.xml.gz", 1, 2)
	b2 := writeFeedFile(t, dir, "b0002.xml.gz", 3)
	p := New(&cache.FileCache{}, ModeSequential, 1)
	got := collect(t, p, []string{u}, []string{b1, b2})
	want := []int{10, 11, 1, 2, 3}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNoImplicitDedup(t *testing.T) {
	dir := t.TempDir()
	u := writeFeedFile(t, dir, "u0001.xml.gz", 99)
	b := writeFeedFile(t, dir, "b0001.xml.gz", 99)
	p := New(&cache.FileCache{}, ModeSequential, 1)
	got := collect(t, p, []string{u}, []string{b})
	if len(got) != 2 || got[0] != 99 || got[1] != 99 {
		t.Errorf("got %v, want [99 99]", got)
	}
}

func TestDedupeByID(t *testing.T) {
	dir := t.TempDir()
	u := writeFeedFile(t, dir, "u0001.xml.gz", 99, 100)
	b := writeFeedFile(t, dir, "b0001.xml.gz", 99, 101)
	p := New(&cache.FileCache{}, ModeSequential, 1)
	var pmids []int
	fn := DedupeByID(func(a article.Article) error {
		pmids = append(pmids, a.PMID)
		return nil
	})
	if err := p.Articles(context.Background(), []string{u}, []string{b}, fn); err != nil {
		t.Fatal(err)
	}
	want := []int{99, 100, 101}
	if fmt.Sprint(pmids) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", pmids, want)
	}
}

func TestParallelModes(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	var want []int
	for i := 0; i < 5; i++ {
		paths = append(paths, writeFeedFile(t, dir, fmt.Sprintf("b%04d.xml.gz", i), i*2, i*2+1))
		want = append(want, i*2, i*2+1)
	}
	for _, mode := range []Mode{ModeStream, ModeBatch} {
		t.Run(string(mode), func(t *testing.T) {
			p := New(&cache.FileCache{}, mode, 3)
			got := collect(t, p, nil, paths)
			sort.Ints(got)
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestDuplicatePathScheduledOnce(t *testing.T) {
	dir := t.TempDir()
	b := writeFeedFile(t, dir, "b0001.xml.gz", 7)
	p := New(&cache.FileCache{}, ModeSequential, 1)
	got := collect(t, p, nil, []string{b, b})
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("got %v, want [7]", got)
	}
}

func TestMalformedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.xml.gz")
	if err := os.WriteFile(broken, []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}
	ok := writeFeedFile(t, dir, "b0001.xml.gz", 5)
	p := New(&cache.FileCache{}, ModeSequential, 1)
	got := collect(t, p, nil, []string{broken, ok})
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("got %v, want [5]", got)
	}
}

func TestCallbackErrorAborts(t *testing.T) {
	dir := t.TempDir()
	b := writeFeedFile(t, dir, "b0001.xml.gz", 1, 2, 3)
	sentinel := errors.New("stop")
	for _, mode := range []Mode{ModeSequential, ModeStream, ModeBatch} {
		t.Run(string(mode), func(t *testing.T) {
			p := New(&cache.FileCache{}, mode, 2)
			err := p.Each(context.Background(), []string{b}, func(a article.Article) error {
				return sentinel
			})
			if !errors.Is(err, sentinel) {
				t.Errorf("got %v, want sentinel", err)
			}
		})
	}
}

func TestMissingFileFails(t *testing.T) {
	p := New(&cache.FileCache{}, ModeSequential, 1)
	err := p.Each(context.Background(), []string{"/nonexistent/file.xml.gz"}, func(article.Article) error {
		return nil
	})
	if err == nil {
		t.Error("expected error for missing file")
	}
}
