// Package pubmed contains structs mapping the PubMed XML feed format, cf.
// https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_250101.dtd. Only the parts
// the extractor looks at are mapped; everything else is ignored by the
// decoder.
package pubmed

import "encoding/xml"

// ArticleSet is the document root of one baseline or update file.
type ArticleSet struct {
	XMLName xml.Name        `xml:"PubmedArticleSet"`
	Article []PubmedArticle `xml:"PubmedArticle"`
	Deleted *DeleteCitation `xml:"DeleteCitation"`
}

// DeleteCitation lists PMIDs retracted from the feed in an update file.
type DeleteCitation struct {
	PMID []PMID `xml:"PMID"`
}

// PubmedArticle is one record, a citation plus feed-level bookkeeping.
type PubmedArticle struct {
	XMLName         xml.Name         `xml:"PubmedArticle"`
	MedlineCitation *MedlineCitation `xml:"MedlineCitation"`
	PubmedData      *PubmedData      `xml:"PubmedData"`
}

// PMID is the record identifier tag. Version counts revisions of the same
// citation, it is not part of the identifier.
type PMID struct {
	Text    string `xml:",chardata"` // 12345, 27575455, ...
	Version string `xml:"Version,attr"`
}

type MedlineCitation struct {
	Status          string       `xml:"Status,attr"` // MEDLINE, In-Process, ...
	Owner           string       `xml:"Owner,attr"`
	PMID            *PMID        `xml:"PMID"`
	DateCompleted   *Date        `xml:"DateCompleted"`
	DateRevised     *Date        `xml:"DateRevised"`
	Article         *Article     `xml:"Article"`
	JournalInfo     *JournalInfo `xml:"MedlineJournalInfo"`
	MeshHeadingList struct {
		MeshHeading []MeshHeading `xml:"MeshHeading"`
	} `xml:"MeshHeadingList"`
}

// Date covers the fixed Year/Month/Day date tags. Month may be numeric or a
// three letter token ("Jan"), depending on where the date appears.
type Date struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type Article struct {
	PubModel     string        `xml:"PubModel,attr"`
	Journal      *Journal      `xml:"Journal"`
	ArticleTitle *ArticleTitle `xml:"ArticleTitle"`
	Abstract     struct {
		AbstractText []AbstractText `xml:"AbstractText"`
	} `xml:"Abstract"`
	AuthorList struct {
		CompleteYN string   `xml:"CompleteYN,attr"`
		Author     []Author `xml:"Author"`
	} `xml:"AuthorList"`
	GrantList struct {
		CompleteYN string  `xml:"CompleteYN,attr"`
		Grant      []Grant `xml:"Grant"`
	} `xml:"GrantList"`
	PublicationTypeList struct {
		PublicationType []PublicationType `xml:"PublicationType"`
	} `xml:"PublicationTypeList"`
}

// ArticleTitle needs its own type, since we distinguish a missing tag from
// a present but empty one. Chardata flattens inline markup (<i>, <sub>).
type ArticleTitle struct {
	Text string `xml:",chardata"`
}

type Journal struct {
	ISSN []ISSN `xml:"ISSN"`
	JournalIssue struct {
		CitedMedium string   `xml:"CitedMedium,attr"`
		Volume      string   `xml:"Volume"`
		Issue       string   `xml:"Issue"`
		PubDate     *PubDate `xml:"PubDate"`
	} `xml:"JournalIssue"`
	Title           string `xml:"Title"`
	ISOAbbreviation string `xml:"ISOAbbreviation"`
}

type ISSN struct {
	Text     string `xml:",chardata"` // 0028-0836, 1476-4687, ...
	IssnType string `xml:"IssnType,attr"`
}

// PubDate allows, besides Year/Month/Day, the free form variants the feed
// uses for older records.
type PubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"` // 01, Jan, ...
	Day         string `xml:"Day"`
	Season      string `xml:"Season"`      // Winter, ...
	MedlineDate string `xml:"MedlineDate"` // 1998 Mar-Apr, ...
}

type AbstractText struct {
	Text        string `xml:",chardata"`
	Label       string `xml:"Label,attr"`       // BACKGROUND, METHODS, ...
	NlmCategory string `xml:"NlmCategory,attr"` // UNASSIGNED, RESULTS, ...
}

type Author struct {
	ValidYN         string       `xml:"ValidYN,attr"`
	LastName        *TextElement `xml:"LastName"`
	ForeName        *TextElement `xml:"ForeName"`
	Initials        *TextElement `xml:"Initials"`
	CollectiveName  *TextElement `xml:"CollectiveName"`
	Identifier      []Identifier `xml:"Identifier"`
	AffiliationInfo []struct {
		Affiliation string `xml:"Affiliation"`
	} `xml:"AffiliationInfo"`
}

// TextElement distinguishes a missing name part tag from an empty one.
type TextElement struct {
	Text string `xml:",chardata"`
}

type Identifier struct {
	Text   string `xml:",chardata"`
	Source string `xml:"Source,attr"` // ORCID, GRID, ISNI, RINGGOLD, ...
}

type Grant struct {
	GrantID string `xml:"GrantID"`
	Acronym string `xml:"Acronym"`
	Agency  string `xml:"Agency"`
	Country string `xml:"Country"`
}

type PublicationType struct {
	Text string `xml:",chardata"` // Journal Article, Review, ...
	UI   string `xml:"UI,attr"`   // D016428, D016454, ...
}

type JournalInfo struct {
	Country     string `xml:"Country"`
	MedlineTA   string `xml:"MedlineTA"`
	NlmUniqueID string `xml:"NlmUniqueID"` // 0410462, 100973270, ...
	ISSNLinking string `xml:"ISSNLinking"`
}

type MeshHeading struct {
	DescriptorName *Descriptor `xml:"DescriptorName"`
	QualifierName  []Qualifier `xml:"QualifierName"`
}

type Descriptor struct {
	Text         string `xml:",chardata"`
	UI           string `xml:"UI,attr"`
	URI          string `xml:"URI,attr"`
	MajorTopicYN string `xml:"MajorTopicYN,attr"`
}

type Qualifier struct {
	Text         string `xml:",chardata"`
	UI           string `xml:"UI,attr"`
	MajorTopicYN string `xml:"MajorTopicYN,attr"`
}

type PubmedData struct {
	History struct {
		PubMedPubDate []PubMedPubDate `xml:"PubMedPubDate"`
	} `xml:"History"`
	PublicationStatus string          `xml:"PublicationStatus"` // ppublish, epublish, ...
	ArticleIdList     ArticleIdList   `xml:"ArticleIdList"`
	ReferenceList     []ReferenceList `xml:"ReferenceList"`
}

type PubMedPubDate struct {
	PubStatus string `xml:"PubStatus,attr"` // received, accepted, medline, ...
	Year      string `xml:"Year"`
	Month     string `xml:"Month"`
	Day       string `xml:"Day"`
}

type ArticleIdList struct {
	ArticleId []ArticleId `xml:"ArticleId"`
}

type ArticleId struct {
	Text   string `xml:",chardata"`
	IdType string `xml:"IdType,attr"` // pubmed, doi, pmc, pii, mid, ...
}

// ReferenceList holds cited works. Lists may nest one level for articles
// with per-section bibliographies.
type ReferenceList struct {
	Reference     []Reference     `xml:"Reference"`
	ReferenceList []ReferenceList `xml:"ReferenceList"`
}

type Reference struct {
	Citation      string        `xml:"Citation"`
	ArticleIdList ArticleIdList `xml:"ArticleIdList"`
}
