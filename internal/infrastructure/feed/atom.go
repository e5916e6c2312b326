package feed

import "encoding/xml"

// Atom 1.0 document shape.
type atomFeedDoc struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// alternate returns the entry's canonical link: rel="alternate" when
// present, otherwise the first link.
func (e atomEntry) alternate() string {
	for _, link := range e.Links {
		if link.Rel == "alternate" {
			return link.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

// parseAtom decodes an Atom payload into schema-independent entries.
func parseAtom(payload []byte) (string, []feedEntry, error) {
	var doc atomFeedDoc
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return "", nil, err
	}

	entries := make([]feedEntry, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		excerpt := entry.Summary
		if excerpt == "" {
			excerpt = entry.Content
		}
		published := entry.Updated
		if published == "" {
			published = entry.Published
		}
		entries = append(entries, feedEntry{
			Title:     entry.Title,
			Link:      entry.alternate(),
			Excerpt:   excerpt,
			Published: published,
		})
	}
	return doc.Title, entries, nil
}
