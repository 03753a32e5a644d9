// pmk-edges projects canonical articles onto graph statements.
//
// $ pmk-articles -u | pmk-edges -o edges.tsv -S
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/edges"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/segmentio/encoding/json"
)

var docs = strings.TrimLeft(`
# pmk-edges - graph statement export

Reads canonical article JSON lines on stdin and writes one statement per
line: subject, predicate, object, tab separated CURIEs.

$ pmk-articles -u | pmk-edges -o edges.tsv -S
$ pmk-articles -u | pmk-edges -x > articles.sssom.tsv

## flags

`, "\n")

var (
	output      = flag.String("o", "", "output file, default stdout")
	sortOutput  = flag.Bool("S", false, "sort -u the output file, requires -o")
	exactOnly   = flag.Bool("x", false, "exact match statements only")
	showVersion = flag.Bool("version", false, "show version")
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
	if *sortOutput && *output == "" {
		log.Fatal("-S requires -o")
	}
	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	project := edges.Triples
	if *exactOnly {
		project = edges.ExactMatches
	}
	var (
		ew      = edges.NewWriter(w)
		scanner = bufio.NewScanner(os.Stdin)
	)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<26)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var a article.Article
		if err := json.Unmarshal(scanner.Bytes(), &a); err != nil {
			log.Fatal(err)
		}
		if err := ew.Write(project(&a)); err != nil {
			log.Fatal(err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
	if err := ew.Flush(); err != nil {
		log.Fatal(err)
	}
	if *sortOutput {
		if err := edges.SortFile(*output); err != nil {
			log.Fatal(err)
		}
	}
}
