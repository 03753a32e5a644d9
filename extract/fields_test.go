package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/pubmedkit/ground"
	"github.com/miku/pubmedkit/schema/article"
	"github.com/miku/pubmedkit/schema/pubmed"
)

func TestCleanORCID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"https prefix", "https://orcid.org/0000-0003-4423-4370", "0000-0003-4423-4370"},
		{"http prefix", "http://orcid.org/0000-0003-4423-4370", "0000-0003-4423-4370"},
		{"typo missing colon", "https//orcid.org/0000-0003-4423-4370", "0000-0003-4423-4370"},
		{"typo missing slash", "http/orcid.org/0000-0003-4423-4370", "0000-0003-4423-4370"},
		{"www prefix", "https://www.orcid.org/0000-0003-4423-4370", "0000-0003-4423-4370"},
		{"bare, well formed", "0000-0003-4423-4370", "0000-0003-4423-4370"},
		{"18 chars, truncated", "0000-0003-4423-437", ""},
		{"18 chars, any content", "XXXXXXXXXXXXXXXXXX", ""},
		{"16 digits, missing dashes", "0000000344234370", "0000-0003-4423-4370"},
		{"17 chars, stray head", "s0000000344234370", "0000-0003-4423-4370"},
		{"20 chars", "0000-0003-4423-4370X", "0000-0003-4423-4370X"},
		{"garbage", "not-an-identifier-at-all", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanORCID(tt.input); got != tt.want {
				t.Errorf("CleanORCID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseYN(t *testing.T) {
	if v, err := parseYN("Y"); err != nil || !v {
		t.Errorf("parseYN(Y) = %v, %v", v, err)
	}
	if v, err := parseYN("N"); err != nil || v {
		t.Errorf("parseYN(N) = %v, %v", v, err)
	}
	for _, s := range []string{"", "yes", "y", "X"} {
		if _, err := parseYN(s); err == nil {
			t.Errorf("parseYN(%q): expected error", s)
		}
	}
}

func TestParseDateParts(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day string
		want             *article.PartialDate
	}{
		{"full", "2001", "12", "31", &article.PartialDate{Year: 2001, Month: 12, Day: 31}},
		{"year only", "2001", "", "", &article.PartialDate{Year: 2001}},
		{"year and month", "2001", "06", "", &article.PartialDate{Year: 2001, Month: 6}},
		{"month name", "2001", "Jan", "15", &article.PartialDate{Year: 2001, Month: 1, Day: 15}},
		{"long month name", "2001", "January", "", &article.PartialDate{Year: 2001, Month: 1}},
		{"day without month ignored", "2001", "", "15", &article.PartialDate{Year: 2001}},
		{"no year", "", "12", "31", nil},
		{"bad year", "20o1", "", "", nil},
		{"month out of range", "2001", "13", "", &article.PartialDate{Year: 2001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDateParts(tt.year, tt.month, tt.day)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseDateParts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePubDate(t *testing.T) {
	pd := &pubmed.PubDate{MedlineDate: "1998 Mar-Apr"}
	got := parsePubDate(pd)
	if got == nil || got.Year != 1998 || got.Month != 0 {
		t.Errorf("parsePubDate(medline date) = %v", got)
	}
	if got := parsePubDate(nil); got != nil {
		t.Errorf("parsePubDate(nil) = %v", got)
	}
	if got := parsePubDate(&pubmed.PubDate{Season: "Winter"}); got != nil {
		t.Errorf("parsePubDate(season only) = %v", got)
	}
}

func TestParseHeading(t *testing.T) {
	h := pubmed.MeshHeading{
		DescriptorName: &pubmed.Descriptor{Text: "Anticoagulants", UI: "D001943", MajorTopicYN: "Y"},
		QualifierName: []pubmed.Qualifier{
			{Text: "genetics", UI: "Q000235", MajorTopicYN: "N"},
		},
	}
	got, err := parseHeading(h, nil)
	if err != nil {
		t.Fatalf("parseHeading: %v", err)
	}
	want := article.Heading{
		Descriptor: "D001943",
		Major:      true,
		Qualifiers: []article.Qualifier{{MeSH: "Q000235", Major: false}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("heading mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHeadingURIFallback(t *testing.T) {
	h := pubmed.MeshHeading{
		DescriptorName: &pubmed.Descriptor{
			URI:          "https://id.nlm.nih.gov/mesh/D001943",
			MajorTopicYN: "N",
		},
	}
	got, err := parseHeading(h, nil)
	if err != nil {
		t.Fatalf("parseHeading: %v", err)
	}
	if got.Descriptor != "D001943" || got.Major {
		t.Errorf("got %+v", got)
	}
	if got.Qualifiers != nil {
		t.Errorf("want nil qualifiers for heading without any, got %v", got.Qualifiers)
	}
}

func TestParseHeadingErrors(t *testing.T) {
	if _, err := parseHeading(pubmed.MeshHeading{}, nil); err == nil {
		t.Error("expected error for missing descriptor")
	}
	noID := pubmed.MeshHeading{
		DescriptorName: &pubmed.Descriptor{Text: "Anticoagulants", MajorTopicYN: "N"},
	}
	if _, err := parseHeading(noID, nil); err == nil {
		t.Error("expected error for descriptor without identifier")
	}
	badFlag := pubmed.MeshHeading{
		DescriptorName: &pubmed.Descriptor{UI: "D001943", MajorTopicYN: "maybe"},
	}
	if _, err := parseHeading(badFlag, nil); err == nil {
		t.Error("expected error for invalid major topic token")
	}
}

func TestParseHeadingGrounded(t *testing.T) {
	mesh := ground.NewIndex("mesh", map[string]string{"Anticoagulants": "D001943"})
	h := pubmed.MeshHeading{
		DescriptorName: &pubmed.Descriptor{Text: "Anticoagulants", MajorTopicYN: "N"},
	}
	got, err := parseHeading(h, mesh)
	if err != nil {
		t.Fatalf("parseHeading: %v", err)
	}
	if got.Descriptor != "D001943" {
		t.Errorf("got descriptor %q", got.Descriptor)
	}
}

func TestParseAuthor(t *testing.T) {
	var g ground.Services
	author := pubmed.Author{
		ValidYN:  "Y",
		LastName: &pubmed.TextElement{Text: "Doe"},
		ForeName: &pubmed.TextElement{Text: "Jane"},
		Identifier: []pubmed.Identifier{
			{Source: "ORCID", Text: "https://orcid.org/0000-0003-4423-4370"},
		},
		AffiliationInfo: []struct {
			Affiliation string `xml:"Affiliation"`
		}{
			{Affiliation: "Example University"},
		},
	}
	got := parseAuthor(1, author, g)
	if got == nil || got.Kind != article.KindPerson {
		t.Fatalf("got %+v", got)
	}
	p := got.Person
	if p.Name != "Jane Doe" || !p.Valid || p.ORCID != "0000-0003-4423-4370" {
		t.Errorf("got person %+v", p)
	}
	if len(p.Affiliations) != 1 || p.Affiliations[0] != "Example University" {
		t.Errorf("got affiliations %v", p.Affiliations)
	}
}

func TestParseAuthorInitials(t *testing.T) {
	author := pubmed.Author{
		LastName: &pubmed.TextElement{Text: "Doe"},
		Initials: &pubmed.TextElement{Text: "J"},
	}
	got := parseAuthor(1, author, ground.Services{})
	if got == nil || got.Person == nil || got.Person.Name != "J Doe" {
		t.Errorf("got %+v", got)
	}
	if !got.Person.Valid {
		t.Error("missing ValidYN should default to valid")
	}
}

func TestParseAuthorIdentityOnly(t *testing.T) {
	author := pubmed.Author{
		Identifier: []pubmed.Identifier{{Source: "ORCID", Text: "0000-0003-4423-4370"}},
	}
	got := parseAuthor(1, author, ground.Services{})
	if got == nil || got.Person == nil {
		t.Fatalf("got %+v", got)
	}
	if got.Person.Name != "" || got.Person.ORCID != "0000-0003-4423-4370" {
		t.Errorf("got person %+v", got.Person)
	}
}

func TestParseAuthorDropped(t *testing.T) {
	if got := parseAuthor(1, pubmed.Author{}, ground.Services{}); got != nil {
		t.Errorf("expected nil for author without name or identity, got %+v", got)
	}
	lastOnly := pubmed.Author{LastName: &pubmed.TextElement{Text: "Doe"}}
	if got := parseAuthor(1, lastOnly, ground.Services{}); got != nil {
		t.Errorf("expected nil for author with last name only, got %+v", got)
	}
}

func TestParseAuthorCollective(t *testing.T) {
	funder := ground.NewIndex("ror", map[string]string{"Example Consortium": "02mhbdp94"})
	author := pubmed.Author{
		CollectiveName: &pubmed.TextElement{Text: "Example Consortium"},
	}
	got := parseAuthor(1, author, ground.Services{Funder: funder})
	if got == nil || got.Kind != article.KindCollective {
		t.Fatalf("got %+v", got)
	}
	c := got.Collective
	if c.Name != "Example Consortium" {
		t.Errorf("got name %q", c.Name)
	}
	if c.Reference == nil || c.Reference.CURIE() != "ror:02mhbdp94" {
		t.Errorf("got reference %v", c.Reference)
	}
}

func TestParseGrant(t *testing.T) {
	funder := ground.NewIndex("ror", map[string]string{
		"National Institutes of Health": "01cwqze88",
	})
	g := pubmed.Grant{
		GrantID: "R01 CA123456",
		Acronym: "CA",
		Agency:  "National Institutes of Health",
		Country: "United States",
	}
	got := parseGrant(g, funder)
	if got == nil {
		t.Fatal("expected grant")
	}
	if got.AgencyReference == nil || got.AgencyReference.CURIE() != "ror:01cwqze88" {
		t.Errorf("got agency reference %v", got.AgencyReference)
	}
	if got := parseGrant(pubmed.Grant{GrantID: "X"}, nil); got != nil {
		t.Errorf("expected nil for grant without agency, got %+v", got)
	}
}

func TestParseHistory(t *testing.T) {
	ok := pubmed.PubMedPubDate{PubStatus: "received", Year: "2020", Month: "5", Day: "4"}
	got := parseHistory(ok)
	if got == nil || got.Status != article.StatusReceived {
		t.Fatalf("got %+v", got)
	}
	if got.Date != (article.PartialDate{Year: 2020, Month: 5, Day: 4}) {
		t.Errorf("got date %v", got.Date)
	}
	if parseHistory(pubmed.PubMedPubDate{PubStatus: "frobnicated", Year: "2020"}) != nil {
		t.Error("expected nil for unknown status")
	}
	if parseHistory(pubmed.PubMedPubDate{PubStatus: "received"}) != nil {
		t.Error("expected nil for missing date")
	}
	if parseHistory(pubmed.PubMedPubDate{Year: "2020"}) != nil {
		t.Error("expected nil for missing status")
	}
}

func TestParseCitedPMID(t *testing.T) {
	ref := pubmed.Reference{
		Citation: "Some paper. 1999.",
		ArticleIdList: pubmed.ArticleIdList{
			ArticleId: []pubmed.ArticleId{
				{IdType: "doi", Text: "10.1000/x"},
				{IdType: "pubmed", Text: "99"},
			},
		},
	}
	if got := parseCitedPMID(ref); got != "99" {
		t.Errorf("got %q", got)
	}
	if got := parseCitedPMID(pubmed.Reference{Citation: "no ids"}); got != "" {
		t.Errorf("got %q", got)
	}
}
