// Package extract converts raw PubMed feed records into canonical article
// values, tolerating the many tagging inconsistencies of the feed. A
// record either extracts to an article, is skipped deliberately, or fails
// with a structural error; a structural error never aborts sibling
// records of the same file.
package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/miku/pubmedkit/ground"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/miku/pubmedkit/schema/pubmed"
	"github.com/sirupsen/logrus"
)

// Structural errors: the feed violated its minimal contract for a record.
var (
	ErrMissingCitation   = errors.New("missing MedlineCitation tag")
	ErrMissingPMID       = errors.New("missing PMID tag")
	ErrEmptyPMID         = errors.New("empty PMID tag")
	ErrMissingArticle    = errors.New("missing Article tag")
	ErrMissingTitle      = errors.New("missing ArticleTitle tag")
	ErrMissingPubmedData = errors.New("missing PubmedData tag")
)

// skipXrefPrefixes filters cross references that would only restate the
// record's own identifier.
var skipXrefPrefixes = map[string]bool{
	"pubmed": true,
}

// Record extracts one feed record. Returns (nil, nil) for records that
// cannot be meaningfully represented, like an empty title; these are
// logged and skipped.
func Record(rec *pubmed.PubmedArticle, g ground.Services) (*article.Article, error) {
	mc := rec.MedlineCitation
	if mc == nil {
		return nil, ErrMissingCitation
	}
	if mc.PMID == nil {
		return nil, ErrMissingPMID
	}
	pmidText := strings.TrimSpace(mc.PMID.Text)
	if pmidText == "" {
		return nil, ErrEmptyPMID
	}
	pmid, err := strconv.Atoi(pmidText)
	if err != nil {
		return nil, fmt.Errorf("invalid pmid %q: %w", pmidText, err)
	}
	a := mc.Article
	if a == nil {
		return nil, fmt.Errorf("[pubmed:%d] %w", pmid, ErrMissingArticle)
	}
	if a.ArticleTitle == nil {
		return nil, fmt.Errorf("[pubmed:%d] %w", pmid, ErrMissingTitle)
	}
	title := strings.TrimSpace(a.ArticleTitle.Text)
	if title == "" {
		logrus.Debugf("[pubmed:%d] has an empty ArticleTitle tag", pmid)
		return nil, nil
	}
	pd := rec.PubmedData
	if pd == nil {
		return nil, fmt.Errorf("[pubmed:%d] %w", pmid, ErrMissingPubmedData)
	}
	if mc.JournalInfo == nil || strings.TrimSpace(mc.JournalInfo.NlmUniqueID) == "" {
		logrus.Debugf("[pubmed:%d] missing MedlineJournalInfo section", pmid)
		return nil, nil
	}
	var types []string
	for _, pt := range a.PublicationTypeList.PublicationType {
		if pt.UI != "" {
			types = append(types, pt.UI)
		}
	}
	sort.Strings(types)
	var headings []article.Heading
	for _, mh := range mc.MeshHeadingList.MeshHeading {
		h, err := parseHeading(mh, g.Mesh)
		if err != nil {
			logrus.Warnf("[pubmed:%d] dropping heading: %v", pmid, err)
			continue
		}
		headings = append(headings, h)
	}
	var (
		issns []article.ISSN
		issue article.JournalIssue
	)
	if a.Journal != nil {
		for _, issn := range a.Journal.ISSN {
			if issn.Text == "" {
				continue
			}
			issns = append(issns, article.ISSN{Value: issn.Text, Type: issn.IssnType})
		}
		issue = article.JournalIssue{
			Volume:    a.Journal.JournalIssue.Volume,
			Issue:     a.Journal.JournalIssue.Issue,
			Published: parsePubDate(a.Journal.JournalIssue.PubDate),
		}
	}
	journal := article.Journal{
		ISSNLinking:  strings.TrimSpace(mc.JournalInfo.ISSNLinking),
		NlmCatalogID: strings.TrimSpace(mc.JournalInfo.NlmUniqueID),
		ISSNs:        issns,
	}
	var abstract []article.AbstractText
	for _, at := range a.Abstract.AbstractText {
		text := strings.TrimSpace(at.Text)
		if text == "" {
			continue
		}
		abstract = append(abstract, article.AbstractText{
			Text:     text,
			Label:    at.Label,
			Category: at.NlmCategory,
		})
	}
	var contribs []article.Contributor
	for _, author := range a.AuthorList.Author {
		if c := parseAuthor(pmid, author, g); c != nil {
			contribs = append(contribs, *c)
		}
	}
	var grants []article.Grant
	for _, grant := range a.GrantList.Grant {
		if parsed := parseGrant(grant, g.Funder); parsed != nil {
			grants = append(grants, *parsed)
		}
	}
	var cites []string
	var walk func(lists []pubmed.ReferenceList)
	walk = func(lists []pubmed.ReferenceList) {
		for _, rl := range lists {
			for _, ref := range rl.Reference {
				if id := parseCitedPMID(ref); id != "" {
					cites = append(cites, id)
				}
			}
			walk(rl.ReferenceList)
		}
	}
	walk(pd.ReferenceList)
	var xrefs []article.Reference
	for _, aid := range pd.ArticleIdList.ArticleId {
		if aid.Text == "" || skipXrefPrefixes[aid.IdType] {
			continue
		}
		xrefs = append(xrefs, article.Reference{Prefix: aid.IdType, Identifier: aid.Text})
	}
	var history []article.History
	for _, h := range pd.History.PubMedPubDate {
		if parsed := parseHistory(h); parsed != nil {
			history = append(history, *parsed)
		}
	}
	return &article.Article{
		PMID:          pmid,
		Title:         title,
		DateCompleted: parseDate(mc.DateCompleted),
		DateRevised:   parseDate(mc.DateRevised),
		TypeMeshIDs:   types,
		Headings:      headings,
		Journal:       journal,
		JournalIssue:  issue,
		Abstract:      abstract,
		Contribs:      contribs,
		CitesPMIDs:    cites,
		Xrefs:         xrefs,
		History:       history,
		Grants:        grants,
	}, nil
}

// File parses a whole feed file from r and extracts every record.
// Structural record errors are logged and the record dropped; a document
// that does not parse at all is an error for the caller to handle.
func File(r io.Reader, g ground.Services) ([]article.Article, error) {
	var set pubmed.ArticleSet
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	var result []article.Article
	for i := range set.Article {
		a, err := Record(&set.Article[i], g)
		if err != nil {
			logrus.Warnf("dropping record: %v", err)
			continue
		}
		if a == nil {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}
