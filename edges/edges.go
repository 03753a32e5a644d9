// Package edges projects canonical articles onto subject predicate
// object statements for graph export. The predicate vocabulary is a small
// fixed set; projection is pure and never fails for a valid article.
package edges

import (
	"bufio"
	"fmt"
	"io"

	"github.com/miku/clam"
	"github.com/miku/pubmedkit/schema/article"
)

// Predicate vocabulary.
var (
	RDFType        = article.Reference{Prefix: "rdf", Identifier: "type"}
	HasTopic       = article.Reference{Prefix: "biolink", Identifier: "has_topic"}
	PublishedIn    = article.Reference{Prefix: "uniprot.core", Identifier: "publishedIn"}
	HasContributor = article.Reference{Prefix: "dcterms", Identifier: "contributor"}
	Cites          = article.Reference{Prefix: "cito", Identifier: "cites"}
	ExactMatch     = article.Reference{Prefix: "skos", Identifier: "exactMatch"}
)

// Triple is one statement.
type Triple struct {
	Subject   article.Reference
	Predicate article.Reference
	Object    article.Reference
}

func subject(a *article.Article) article.Reference {
	return article.Reference{Prefix: "pubmed", Identifier: fmt.Sprintf("%d", a.PMID)}
}

// Triples derives all statements for one article: a type assertion per
// classification code, a topic assertion per heading, exactly one journal
// membership, an attribution per contributor with a resolved identity (a
// contributor without one is not assertable as a graph node and is
// omitted), a citation per cited identifier and an exact match per cross
// reference.
func Triples(a *article.Article) []Triple {
	s := subject(a)
	var result []Triple
	for _, ui := range a.TypeMeshIDs {
		result = append(result, Triple{s, RDFType, article.Reference{Prefix: "mesh", Identifier: ui}})
	}
	for _, h := range a.Headings {
		result = append(result, Triple{s, HasTopic, article.Reference{Prefix: "mesh", Identifier: h.Descriptor}})
	}
	result = append(result, Triple{s, PublishedIn, article.Reference{Prefix: "nlm", Identifier: a.Journal.NlmCatalogID}})
	for _, c := range a.Contribs {
		switch c.Kind {
		case article.KindPerson:
			if c.Person != nil && c.Person.ORCID != "" {
				result = append(result, Triple{s, HasContributor, article.Reference{Prefix: "orcid", Identifier: c.Person.ORCID}})
			}
		case article.KindCollective:
			if c.Collective != nil && c.Collective.Reference != nil {
				result = append(result, Triple{s, HasContributor, *c.Collective.Reference})
			}
		}
	}
	for _, pmid := range a.CitesPMIDs {
		result = append(result, Triple{s, Cites, article.Reference{Prefix: "pubmed", Identifier: pmid}})
	}
	for _, xref := range a.Xrefs {
		result = append(result, Triple{s, ExactMatch, xref})
	}
	return result
}

// ExactMatches projects only the cross reference statements, for mapping
// exports.
func ExactMatches(a *article.Article) []Triple {
	s := subject(a)
	var result []Triple
	for _, xref := range a.Xrefs {
		result = append(result, Triple{s, ExactMatch, xref})
	}
	return result
}

// Writer writes triples as tab separated CURIEs, one statement per line.
type Writer struct {
	bw *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

func (w *Writer) Write(ts []Triple) error {
	for _, t := range ts {
		if _, err := fmt.Fprintf(w.bw, "%s\t%s\t%s\n",
			t.Subject.CURIE(), t.Predicate.CURIE(), t.Object.CURIE()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// SortFile sorts an exported statement file in place, dropping exact
// duplicate lines. Requires sort.
func SortFile(filename string) error {
	output, err := clam.RunOutput("sort -u {{ input }} > {{ output }}", clam.Map{"input": filename})
	if err != nil {
		return err
	}
	return clam.Run("mv {{ input }} {{ output }}", clam.Map{"input": output, "output": filename})
}
