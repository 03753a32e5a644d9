package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/miku/pubmedkit/ground"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/miku/pubmedkit/schema/pubmed"
	"github.com/sirupsen/logrus"
)

// orcidPrefixes are URL prefix variants observed in the wild, typos
// included.
var orcidPrefixes = []string{
	"https://orcid.org/",
	"http://orcid.org/",
	"https//orcid.org/",
	"https/orcid.org/",
	"http//orcid.org/",
	"http/orcid.org/",
	"orcid.org/",
	"https://orcid.org",
	"https://orcid.org-",
	"http://orcid/",
	"https://orcid.org ",
	"https://www.orcid.org/",
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func insertDashes(s string) string {
	return s[:4] + "-" + s[4:8] + "-" + s[8:12] + "-" + s[12:]
}

// CleanORCID repairs a raw identity identifier from the feed, best effort.
// Returns the empty string for anything it cannot repair; never fails.
func CleanORCID(s string) string {
	for _, p := range orcidPrefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	switch {
	case len(s) == 19:
		return s
	case len(s) == 18:
		// malformed, someone forgot the last value
		return ""
	case len(s) == 16 && isDigits(s):
		// malformed, forgot dashes
		return insertDashes(s)
	case len(s) == 17 && !isDigits(s[:1]) && isDigits(s[1:]):
		// one stray leading character
		return insertDashes(s[1:])
	case len(s) == 20:
		// extra character got OCR'd, mostly from linking to affiliations
		return s[:20]
	default:
		logrus.Warnf("unhandled orcid: %q", s)
		return ""
	}
}

var errInvalidFlag = errors.New("expected Y or N")

func parseYN(s string) (bool, error) {
	switch s {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	default:
		return false, fmt.Errorf("%w, got %q", errInvalidFlag, s)
	}
}

func parseDate(d *pubmed.Date) *article.PartialDate {
	if d == nil {
		return nil
	}
	return parseDateParts(d.Year, d.Month, d.Day)
}

// parseDateParts turns raw year, month and day tag contents into a partial
// date. A date needs a year; month and day are optional, a day without a
// month is ignored.
func parseDateParts(year, month, day string) *article.PartialDate {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y == 0 {
		return nil
	}
	d := article.PartialDate{Year: y}
	if m := parseMonth(month); m > 0 {
		d.Month = m
		if v, err := strconv.Atoi(strings.TrimSpace(day)); err == nil && v >= 1 && v <= 31 {
			d.Day = v
		}
	}
	return &d
}

// parseMonth accepts numeric months as well as the "Jan" and "January"
// tokens the PubDate element uses.
func parseMonth(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		if v >= 1 && v <= 12 {
			return v
		}
		return 0
	}
	if t, err := time.Parse("Jan", s); err == nil {
		return int(t.Month())
	}
	if t, err := time.Parse("January", s); err == nil {
		return int(t.Month())
	}
	return 0
}

var yearPattern = regexp.MustCompile(`\b1[5-9][0-9][0-9]\b|\b20[0-9][0-9]\b`)

// parsePubDate handles the journal issue publication date, which besides
// Year/Month/Day may only carry a free form MedlineDate like "1998
// Mar-Apr", from which we keep the year.
func parsePubDate(pd *pubmed.PubDate) *article.PartialDate {
	if pd == nil {
		return nil
	}
	if d := parseDateParts(pd.Year, pd.Month, pd.Day); d != nil {
		return d
	}
	if m := yearPattern.FindString(pd.MedlineDate); m != "" {
		y, _ := strconv.Atoi(m)
		return &article.PartialDate{Year: y}
	}
	return nil
}

const meshURIPrefix = "https://id.nlm.nih.gov/mesh/"

var errMissingDescriptor = errors.New("missing DescriptorName tag")

// parseHeading extracts one subject annotation. The descriptor identifier
// comes from the UI attribute, else from the URI attribute, else from
// grounding the descriptor label; absent all three, the heading fails.
func parseHeading(h pubmed.MeshHeading, mesh ground.Grounder) (article.Heading, error) {
	d := h.DescriptorName
	if d == nil {
		return article.Heading{}, errMissingDescriptor
	}
	var id string
	switch {
	case d.UI != "":
		id = d.UI
	case d.URI != "":
		id = strings.TrimPrefix(d.URI, meshURIPrefix)
	default:
		if mesh != nil {
			if ref := mesh.BestMatch(d.Text); ref != nil {
				id = ref.Identifier
			}
		}
		if id == "" {
			return article.Heading{}, fmt.Errorf("unable to get descriptor id for %q", d.Text)
		}
	}
	major, err := parseYN(d.MajorTopicYN)
	if err != nil {
		return article.Heading{}, fmt.Errorf("descriptor %s major topic flag: %w", id, err)
	}
	var qualifiers []article.Qualifier
	for _, q := range h.QualifierName {
		qmajor, err := parseYN(q.MajorTopicYN)
		if err != nil {
			return article.Heading{}, fmt.Errorf("qualifier %s major topic flag: %w", q.UI, err)
		}
		qualifiers = append(qualifiers, article.Qualifier{MeSH: q.UI, Major: qmajor})
	}
	return article.Heading{Descriptor: id, Major: major, Qualifiers: qualifiers}, nil
}

// parseAuthor turns one author element into a contributor, or nil if the
// element has no usable name or identity.
func parseAuthor(pmid int, a pubmed.Author, g ground.Services) *article.Contributor {
	if a.CollectiveName != nil {
		name := strings.TrimSpace(a.CollectiveName.Text)
		logrus.Debugf("[pubmed:%d] collective name: %s", pmid, name)
		c := &article.Collective{Name: name}
		if g.Funder != nil {
			c.Reference = g.Funder.BestMatch(name)
		}
		return &article.Contributor{Kind: article.KindCollective, Collective: c}
	}
	valid := true
	if a.ValidYN != "" {
		v, err := parseYN(a.ValidYN)
		if err != nil {
			logrus.Warnf("[pubmed:%d] author validity flag: %v", pmid, err)
			return nil
		}
		valid = v
	}
	var affiliations []string
	for _, ai := range a.AffiliationInfo {
		if s := strings.TrimSpace(ai.Affiliation); s != "" {
			affiliations = append(affiliations, s)
		}
	}
	var orcid string
	for _, id := range a.Identifier {
		if id.Source != "ORCID" {
			logrus.Warnf("unhandled identifier source: %s", id.Source)
			continue
		}
		if id.Text == "" {
			continue
		}
		orcid = CleanORCID(id.Text)
	}
	var name string
	if a.LastName != nil {
		switch {
		case a.ForeName != nil:
			name = fmt.Sprintf("%s %s", a.ForeName.Text, a.LastName.Text)
		case a.Initials != nil:
			name = fmt.Sprintf("%s %s", a.Initials.Text, a.LastName.Text)
		}
	}
	if name == "" {
		if orcid != "" {
			return &article.Contributor{
				Kind: article.KindPerson,
				Person: &article.Person{
					Valid:        valid,
					Affiliations: affiliations,
					ORCID:        orcid,
				},
			}
		}
		logrus.Warnf("[pubmed:%d] dropping author without name or identity", pmid)
		return nil
	}
	person := &article.Person{
		Name:         name,
		Valid:        valid,
		Affiliations: affiliations,
		ORCID:        orcid,
	}
	if person.ORCID == "" && g.AuthorID != nil {
		if ref := g.AuthorID.BestMatch(name); ref != nil && ref.Prefix == "orcid" {
			person.ORCID = ref.Identifier
		}
	}
	return &article.Contributor{Kind: article.KindPerson, Person: person}
}

// parseGrant keeps everything optional but the agency text, which is also
// run through the funder grounder when one is available.
func parseGrant(g pubmed.Grant, funder ground.Grounder) *article.Grant {
	agency := strings.TrimSpace(g.Agency)
	if agency == "" {
		logrus.Debugf("skipping grant without agency: %s", g.GrantID)
		return nil
	}
	grant := &article.Grant{
		ID:      strings.TrimSpace(g.GrantID),
		Acronym: strings.TrimSpace(g.Acronym),
		Agency:  agency,
		Country: strings.TrimSpace(g.Country),
	}
	if funder != nil {
		grant.AgencyReference = funder.BestMatch(agency)
	}
	return grant
}

var historyStatus = map[string]bool{
	article.StatusReceived:     true,
	article.StatusAccepted:     true,
	article.StatusPubmed:       true,
	article.StatusMedline:      true,
	article.StatusEntrez:       true,
	article.StatusPMCRelease:   true,
	article.StatusRevised:      true,
	article.StatusAheadOfPrint: true,
	article.StatusRetracted:    true,
	article.StatusEcollection:  true,
}

// parseHistory returns nil for entries with an unknown status or an
// unparsable date; those are dropped, not fatal.
func parseHistory(p pubmed.PubMedPubDate) *article.History {
	if p.PubStatus == "" {
		logrus.Warnf("missing status in history entry")
		return nil
	}
	if !historyStatus[p.PubStatus] {
		logrus.Warnf("invalid history status: %s", p.PubStatus)
		return nil
	}
	d := parseDateParts(p.Year, p.Month, p.Day)
	if d == nil {
		return nil
	}
	return &article.History{Status: p.PubStatus, Date: *d}
}

// parseCitedPMID digs the pubmed identifier out of a citation block, if
// there is one.
func parseCitedPMID(ref pubmed.Reference) string {
	for _, id := range ref.ArticleIdList.ArticleId {
		if id.IdType == "pubmed" && id.Text != "" {
			return id.Text
		}
	}
	return ""
}
