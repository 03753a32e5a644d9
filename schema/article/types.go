// Package article contains the canonical article model extracted from the
// PubMed feed. Values are built once by the extractor and never mutated
// afterwards; the JSON form doubles as the cache artifact format, with
// defaults omitted, so absent and zero mean the same thing on read.
package article

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference is a compact identifier, a prefix plus a local identifier.
type Reference struct {
	Prefix     string `json:"prefix"`
	Identifier string `json:"identifier"`
}

// CURIE renders the reference in prefix:identifier notation.
func (r Reference) CURIE() string {
	return r.Prefix + ":" + r.Identifier
}

// PartialDate is a calendar date with a required year and independently
// optional month and day (zero means absent). The feed frequently ships
// year-only publication dates, which must not be padded to a full date.
type PartialDate struct {
	Year  int
	Month int
	Day   int
}

func (d PartialDate) IsZero() bool { return d.Year == 0 }

func (d PartialDate) String() string {
	switch {
	case d.Year == 0:
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// ParsePartialDate parses "2006", "2006-01" and "2006-01-02" forms.
func ParsePartialDate(s string) (PartialDate, error) {
	var d PartialDate
	if s == "" {
		return d, nil
	}
	parts := strings.SplitN(s, "-", 3)
	fields := []*int{&d.Year, &d.Month, &d.Day}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return PartialDate{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		*fields[i] = v
	}
	if d.Year == 0 {
		return PartialDate{}, fmt.Errorf("invalid date %q: year required", s)
	}
	return d, nil
}

func (d PartialDate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *PartialDate) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	v, err := ParsePartialDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ISSN types, as tagged in the feed.
const (
	ISSNPrint      = "Print"
	ISSNElectronic = "Electronic"
)

// ISSN is a serial number annotated with its medium.
type ISSN struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Journal is a reference to the publication venue; full journal metadata
// lives in the NLM catalog and is loaded elsewhere.
type Journal struct {
	// ISSNLinking is the ISSN used for linking, since there may be many.
	ISSNLinking  string `json:"issn,omitempty"`
	NlmCatalogID string `json:"nlm_catalog_id"`
	ISSNs        []ISSN `json:"issns,omitempty"`
}

// JournalIssue locates the article within a venue.
type JournalIssue struct {
	Volume    string       `json:"volume,omitempty"`
	Issue     string       `json:"issue,omitempty"`
	Published *PartialDate `json:"published,omitempty"`
}

// AbstractText is one abstract segment; concatenating segments in order
// reconstructs the full abstract.
type AbstractText struct {
	Text     string `json:"text"`
	Label    string `json:"label,omitempty"`
	Category string `json:"category,omitempty"`
}

// Qualifier refines a heading, e.g. mesh:Q000235 (genetics).
type Qualifier struct {
	MeSH  string `json:"mesh"`
	Major bool   `json:"major,omitempty"`
}

// Heading is a controlled vocabulary subject annotation. Qualifiers stays
// nil, not empty, when the heading has none.
type Heading struct {
	Descriptor string      `json:"descriptor"`
	Major      bool        `json:"major,omitempty"`
	Qualifiers []Qualifier `json:"qualifiers,omitempty"`
}

// Contributor kinds.
const (
	KindPerson     = "person"
	KindCollective = "collective"
)

// Contributor is a tagged union over person and collective authorship.
// Exactly one of Person and Collective is set, matching Kind.
type Contributor struct {
	Kind       string      `json:"kind"`
	Person     *Person     `json:"person,omitempty"`
	Collective *Collective `json:"collective,omitempty"`
}

// Person is an individual contributor. At least one of Name and ORCID is
// set.
type Person struct {
	Name         string   `json:"name,omitempty"`
	Valid        bool     `json:"valid"`
	Affiliations []string `json:"affiliations,omitempty"`
	ORCID        string   `json:"orcid,omitempty"`
}

// Collective is a group authorship, e.g. a consortium.
type Collective struct {
	Name      string     `json:"name"`
	Reference *Reference `json:"reference,omitempty"`
}

// History statuses form a closed set; entries with any other status are
// dropped during extraction.
const (
	StatusReceived     = "received"
	StatusAccepted     = "accepted"
	StatusPubmed       = "pubmed"
	StatusMedline      = "medline"
	StatusEntrez       = "entrez"
	StatusPMCRelease   = "pmc-release"
	StatusRevised      = "revised"
	StatusAheadOfPrint = "aheadofprint"
	StatusRetracted    = "retracted"
	StatusEcollection  = "ecollection"
)

// History is one status transition of the record. Duplicate entries are
// kept as shipped.
type History struct {
	Status string      `json:"status"`
	Date   PartialDate `json:"date"`
}

// Grant is a funding acknowledgement. Agency is free text from the feed,
// AgencyReference is set when that text grounded to a funder registry.
type Grant struct {
	ID              string     `json:"id,omitempty"`
	Acronym         string     `json:"acronym,omitempty"`
	Agency          string     `json:"agency"`
	AgencyReference *Reference `json:"agency_reference,omitempty"`
	Country         string     `json:"country,omitempty"`
}

// RetractedTypeID is the publication type descriptor for retractions, cf.
// https://www.ncbi.nlm.nih.gov/mesh/68016441.
const RetractedTypeID = "D016441"

// Article is the canonical record.
type Article struct {
	PMID          int           `json:"pmid"`
	Title         string        `json:"title"`
	DateCompleted *PartialDate  `json:"date_completed,omitempty"`
	DateRevised   *PartialDate  `json:"date_revised,omitempty"`
	// TypeMeshIDs are descriptor identifiers for article types, sorted,
	// duplicates kept.
	TypeMeshIDs  []string       `json:"type_mesh_ids,omitempty"`
	Headings     []Heading      `json:"headings,omitempty"`
	Journal      Journal        `json:"journal"`
	JournalIssue JournalIssue   `json:"journal_issue"`
	Abstract     []AbstractText `json:"abstract,omitempty"`
	Contribs     []Contributor  `json:"contribs,omitempty"`
	CitesPMIDs   []string       `json:"cites_pmids,omitempty"`
	Xrefs        []Reference    `json:"xrefs,omitempty"`
	History      []History      `json:"history,omitempty"`
	Grants       []Grant        `json:"grants,omitempty"`
}

// DatePublished returns the publication date from the journal issue, if
// any.
func (a *Article) DatePublished() *PartialDate {
	return a.JournalIssue.Published
}

// AbstractString joins all abstract segments in order.
func (a *Article) AbstractString() string {
	var parts []string
	for _, t := range a.Abstract {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// IsRetracted reports whether the article carries the retraction type.
func (a *Article) IsRetracted() bool {
	for _, id := range a.TypeMeshIDs {
		if id == RetractedTypeID {
			return true
		}
	}
	return false
}
