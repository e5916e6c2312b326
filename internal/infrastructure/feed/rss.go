package feed

import "encoding/xml"

// RSS 2.0 document shape, including the dc/content extensions feeds
// commonly mix in.
type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Encoded     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PubDate     string `xml:"pubDate"`
	DCDate      string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

// parseRSS decodes an RSS 2.0 payload into schema-independent entries.
func parseRSS(payload []byte) (string, []feedEntry, error) {
	var doc rssDocument
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return "", nil, err
	}

	entries := make([]feedEntry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		excerpt := item.Description
		if excerpt == "" {
			excerpt = item.Encoded
		}
		published := item.PubDate
		if published == "" {
			published = item.DCDate
		}
		entries = append(entries, feedEntry{
			Title:     item.Title,
			Link:      item.Link,
			Excerpt:   excerpt,
			Published: published,
		})
	}
	return doc.Channel.Title, entries, nil
}
