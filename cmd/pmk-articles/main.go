// pmk-articles runs the whole pipeline: ensure feed files are on disk,
// extract or load cached records, write canonical articles as JSON lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/cache"
	"github.com/miku/pubmedkit/config"
	"github.com/miku/pubmedkit/feeds"
	"github.com/miku/pubmedkit/pipeline"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/segmentio/encoding/json"
)

var docs = strings.TrimLeft(`
# pmk-articles - canonical article stream

Downloads anything missing, processes update files before baseline files
through the per-file cache and writes one canonical article JSON document
per line. The same identifier may appear in both sources; pass -u to keep
only the first occurrence (updates win).

$ pmk-articles > articles.jsonl
$ pmk-articles -m batch -w 8 -u -o articles.jsonl.zst

## flags

`, "\n")

var (
	configFile   = flag.String("C", "", "optional YAML config file")
	mode         = flag.String("m", "", "processing mode: sequential, stream, batch")
	workers      = flag.Int("w", 0, "number of workers for stream and batch modes")
	forceProcess = flag.Bool("f", false, "reprocess even when cache artifacts exist")
	forceListing = flag.Bool("F", false, "refresh remote file listings")
	localOnly    = flag.Bool("local", false, "use already downloaded files, no network")
	dedupe       = flag.Bool("u", false, "emit only the first article per identifier")
	output       = flag.String("o", "", "output file, default stdout; .zst compresses")
	showVersion  = flag.Bool("version", false, "show version")
)

func ensure(source feeds.Source, forceListing, localOnly bool) ([]string, error) {
	fetcher, err := feeds.NewFetcher(source)
	if err != nil {
		return nil, err
	}
	if localOnly {
		return fetcher.LocalFiles()
	}
	return fetcher.EnsureFiles(forceListing)
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, docs)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(pubmedkit.Version)
		os.Exit(0)
	}
	conf := config.Default()
	if *configFile != "" {
		var err error
		if conf, err = config.Load(*configFile); err != nil {
			log.Fatal(err)
		}
	}
	if *mode != "" {
		conf.Mode = *mode
	}
	if *workers > 0 {
		conf.Workers = *workers
	}
	grounders, err := conf.Grounders()
	if err != nil {
		log.Fatal(err)
	}
	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
		if strings.HasSuffix(*output, ".zst") {
			zw, err := zstd.NewWriter(f)
			if err != nil {
				log.Fatal(err)
			}
			defer zw.Close()
			w = zw
		}
	}
	updates, err := ensure(feeds.SourceUpdates, *forceListing, *localOnly)
	if err != nil {
		log.Fatal(err)
	}
	baseline, err := ensure(feeds.SourceBaseline, *forceListing, *localOnly)
	if err != nil {
		log.Fatal(err)
	}
	p := pipeline.New(&cache.FileCache{
		Grounders: grounders,
		Force:     *forceProcess,
	}, pipeline.Mode(conf.Mode), conf.Workers)
	enc := json.NewEncoder(w)
	fn := func(a article.Article) error {
		return enc.Encode(a)
	}
	if *dedupe {
		fn = pipeline.DedupeByID(fn)
	}
	if err := p.Articles(context.Background(), updates, baseline, fn); err != nil {
		log.Fatal(err)
	}
}
