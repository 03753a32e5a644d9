// pmk-convert reads raw PubMed XML on stdin and writes canonical article
// JSON lines to stdout, processing batches of records in parallel.
//
// $ zstdcat pubmed.xml.zst | pmk-convert > articles.jsonl
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/config"
	"github.com/miku/pubmedkit/extract"
	"github.com/miku/pubmedkit/ground"
	"github.com/miku/pubmedkit/parallel/record"
	"github.com/miku/pubmedkit/schema/pubmed"
	"github.com/miku/pubmedkit/xmlstream"
	"github.com/segmentio/encoding/json"
)

var docs = strings.TrimLeft(`
# pmk-convert - raw XML to canonical articles

Streams records from stdin, no file cache involved. For the cached,
multi-file path use pmk-articles.

$ gunzip -c pubmed25n0001.xml.gz | pmk-convert

## flags

`, "\n")

var (
	configFile     = flag.String("C", "", "optional YAML config file, for grounding indices")
	maxBytesApprox = flag.Uint("x", 1048576, "max bytes per batch")
	numWorkers     = flag.Int("w", runtime.NumCPU(), "number of workers")
	showVersion    = flag.Bool("version", false, "show version")
)

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
	var grounders ground.Services
	if *configFile != "" {
		conf, err := config.Load(*configFile)
		if err != nil {
			log.Fatal(err)
		}
		if grounders, err = conf.Grounders(); err != nil {
			log.Fatal(err)
		}
	}
	proc := record.NewProcessor(os.Stdin, os.Stdout, func(p []byte) ([]byte, error) {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		scanner := xmlstream.NewScanner(bytes.NewReader(p), new(pubmed.PubmedArticle))
		for scanner.Scan() {
			doc, ok := scanner.Element().(*pubmed.PubmedArticle)
			if !ok {
				continue
			}
			a, err := extract.Record(doc, grounders)
			if err != nil {
				log.Printf("dropping record: %v", err)
				continue
			}
			if a == nil {
				continue
			}
			if err := enc.Encode(a); err != nil {
				return nil, err
			}
		}
		if scanner.Err() != nil {
			return nil, scanner.Err()
		}
		return buf.Bytes(), nil
	})
	proc.NumWorkers = *numWorkers
	ts := &record.TagSplitter{Tag: "PubmedArticle", MaxBytesApprox: *maxBytesApprox}
	proc.Split(ts.Split)
	if err := proc.Run(); err != nil {
		log.Fatal(err)
	}
}
