// pmk-feed lists and downloads PubMed baseline and update files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/dateutil"
	"github.com/miku/pubmedkit/feeds"
)

var docs = strings.TrimLeft(`
# pmk-feed - fetch pubmed data feeds

Lists the NLM file server index and downloads baseline or update files
into a local data directory.

## list remote files

$ pmk-feed -s updates -l

## fetch a source

$ pmk-feed -s baseline
$ pmk-feed -s updates -t 2025-01-01

## flags

`, "\n")

var (
	source       = flag.String("s", "updates", "source to fetch: baseline, updates")
	dir          = flag.String("d", "", "data directory, empty for the default cache dir")
	listOnly     = flag.Bool("l", false, "only list remote files, do not download")
	forceListing = flag.Bool("f", false, "refresh the file listing even if cached")
	sinceStr     = flag.String("t", "", "only files modified on or after a given date (YYYY-MM-DD)")
	showVersion  = flag.Bool("version", false, "show version")
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
	var (
		fetcher *feeds.Fetcher
		err     error
	)
	if *dir != "" {
		baseURL, berr := feeds.Source(*source).URL()
		if berr != nil {
			log.Fatal(berr)
		}
		fetcher, err = feeds.NewFetcherDir(baseURL, *dir)
	} else {
		fetcher, err = feeds.NewFetcher(feeds.Source(*source))
	}
	if err != nil {
		log.Fatal(err)
	}
	files, err := fetcher.Files(*forceListing)
	if err != nil {
		log.Fatal(err)
	}
	if *sinceStr != "" {
		since, err := dateutil.ParseDay(*sinceStr)
		if err != nil {
			log.Fatal(err)
		}
		files = feeds.Filter(files, func(f feeds.File) bool {
			return !f.LastModified.Before(since)
		})
	}
	if *listOnly {
		for _, f := range files {
			fmt.Printf("%s\t%s\t%s\n", f.Filename, f.LastModified.Format("2006-01-02 15:04"), f.Size)
		}
		return
	}
	paths, err := fetcher.EnsureList(files)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}
