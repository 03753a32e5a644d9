// Package feeds acquires the raw PubMed baseline and update files: it
// lists the FTP HTML index, downloads files that are not on disk yet and
// hands ordered local paths to the processing side.
package feeds

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adrg/xdg"
	"github.com/araddon/dateparse"
	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/atomicfile"
	"github.com/sethgrid/pester"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	BaselineURL = "https://ftp.ncbi.nlm.nih.gov/pubmed/baseline/"
	UpdatesURL  = "https://ftp.ncbi.nlm.nih.gov/pubmed/updatefiles/"

	DefaultCacheTTL = 24 * time.Hour
)

// Source names a file class of the feed.
type Source string

const (
	SourceBaseline Source = "baseline"
	SourceUpdates  Source = "updates"
)

// URL returns the index location for a source.
func (s Source) URL() (string, error) {
	switch s {
	case SourceBaseline:
		return BaselineURL, nil
	case SourceUpdates:
		return UpdatesURL, nil
	default:
		return "", fmt.Errorf("invalid source: %s", s)
	}
}

// File represents metadata for one remote feed file, cf.
// https://ftp.ncbi.nlm.nih.gov/pubmed/updatefiles/.
type File struct {
	Filename     string
	URL          string
	LastModified time.Time
	Size         string
}

// Fetcher lists and downloads the files of one source class.
type Fetcher struct {
	BaseURL  string
	CacheTTL time.Duration
	DataDir  string
	Client   *pester.Client
	// Workers bounds concurrent downloads.
	Workers int
}

// NewFetcher creates a fetcher for a source with directories under the
// user data dir.
func NewFetcher(source Source) (*Fetcher, error) {
	baseURL, err := source.URL()
	if err != nil {
		return nil, err
	}
	dataDir, err := xdg.CacheFile(filepath.Join(pubmedkit.AppName, string(source)))
	if err != nil {
		return nil, err
	}
	return NewFetcherDir(baseURL, dataDir)
}

// NewFetcherDir creates a fetcher with an explicit data directory.
func NewFetcherDir(baseURL, dataDir string) (*Fetcher, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	client := pester.New()
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialBackoff
	client.SetRetryOnHTTP429(true)
	return &Fetcher{
		BaseURL:  baseURL,
		CacheTTL: DefaultCacheTTL,
		DataDir:  dataDir,
		Client:   client,
		Workers:  4,
	}, nil
}

func (f *Fetcher) indexPath() string {
	return filepath.Join(f.DataDir, "index.html")
}

// cachedIndex returns the cached listing if it exists and is not expired.
func (f *Fetcher) cachedIndex() ([]byte, error) {
	info, err := os.Stat(f.indexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Since(info.ModTime()) > f.CacheTTL {
		return nil, nil
	}
	return os.ReadFile(f.indexPath())
}

// fetchIndex fetches the listing, or uses the cached copy if fresh enough
// and force is not set.
func (f *Fetcher) fetchIndex(force bool) ([]byte, error) {
	if !force {
		b, err := f.cachedIndex()
		if err != nil {
			return nil, err
		}
		if b != nil {
			return b, nil
		}
	}
	req, err := http.NewRequest("GET", f.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pubmedkit.UserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", f.BaseURL, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(f.indexPath(), b, 0644); err != nil {
		return nil, err
	}
	return b, nil
}

var xmlPattern = regexp.MustCompile(`^pubmed\d+n\d+\.xml\.gz$`)

// Files retrieves and parses the file listing, sorted by filename.
func (f *Fetcher) Files(force bool) ([]File, error) {
	b, err := f.fetchIndex(force)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	var files []File
	doc.Find("pre a").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !xmlPattern.MatchString(href) {
			return
		}
		file := File{
			Filename: href,
			URL:      f.BaseURL + href,
		}
		// The listing puts "2025-01-10 14:05 83M" after the link text.
		parts := strings.Fields(s.Parent().Text())
		for j, part := range parts {
			if part != href || j+3 >= len(parts) {
				continue
			}
			if t, err := dateparse.ParseAny(parts[j+1] + " " + parts[j+2]); err == nil {
				file.LastModified = t
			}
			file.Size = parts[j+3]
			break
		}
		files = append(files, file)
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

// Filter returns files for which fn returns true.
func Filter(files []File, fn func(File) bool) (result []File) {
	for _, f := range files {
		if fn(f) {
			result = append(result, f)
		}
	}
	return
}

// ensure downloads one file, unless it is already on disk. The write is
// atomic, an interrupted download never leaves a partial file under the
// final name.
func (f *Fetcher) ensure(file File) (string, error) {
	dst := filepath.Join(f.DataDir, file.Filename)
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}
	req, err := http.NewRequest("GET", file.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", pubmedkit.UserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s, status code: %d", file.URL, resp.StatusCode)
	}
	w, err := atomicfile.New(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Abort()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	logrus.Infof("downloaded %s", file.Filename)
	return dst, nil
}

// EnsureFiles lists the source and downloads anything missing, with a few
// downloads in flight at a time. Returns local paths ordered by filename;
// every path exists and is readable. Any listing or download failure
// fails the whole operation.
func (f *Fetcher) EnsureFiles(force bool) ([]string, error) {
	files, err := f.Files(force)
	if err != nil {
		return nil, err
	}
	return f.EnsureList(files)
}

// EnsureList downloads the given files, skipping those already on disk.
func (f *Fetcher) EnsureList(files []File) ([]string, error) {
	workers := f.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	paths := make([]string, len(files))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			path, err := f.ensure(file)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// LocalFiles returns already downloaded files, without touching the
// network.
func (f *Fetcher) LocalFiles() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(f.DataDir, "*.xml.gz"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
