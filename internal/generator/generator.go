// Package generator renders a digest into its rich and plain
// representations. Rendering is pure: no network, no randomness, no clock
// reads, and identical input yields byte-identical output.
package generator

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	texttemplate "text/template"

	"dailybrief/internal/domain"
)

const (
	subjectPrefix   = "Your Daily Brief"
	dateLabelLayout = "Monday, January 2, 2006"
	itemDateLayout  = "Jan 02, 2006"
	quickHitSummary = 160
	insideTitleMax  = 72
)

// Input is everything one rendering needs. Items must contain only
// statuses succeeded and fallback-used.
type Input struct {
	RecipientName  string
	Intro          string
	DateLabel      string
	Items          []domain.SummarizedItem
	UnsubscribeURL string
}

// Generator renders digests, splitting items into top stories and quick
// hits at a fixed boundary.
type Generator struct {
	topStories int
	html       *htmltemplate.Template
	plain      *texttemplate.Template
}

// New parses the embedded templates once. topStories bounds the card
// section; remaining items render as quick hits.
func New(topStories int) (*Generator, error) {
	if topStories <= 0 {
		topStories = 5
	}

	html, err := htmltemplate.New("digest").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	plain, err := texttemplate.New("digest").Parse(plainTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse plain template: %w", err)
	}

	return &Generator{topStories: topStories, html: html, plain: plain}, nil
}

// Subject builds the digest subject line for a date label.
func Subject(dateLabel string) string {
	return subjectPrefix + " — " + dateLabel
}

// Render produces both representations. Both contain the same items in
// the same order.
func (g *Generator) Render(in Input) (htmlBody, plainBody string, err error) {
	for _, item := range in.Items {
		if item.Status == domain.StatusExcluded {
			return "", "", fmt.Errorf("excluded item %q reached the generator", item.Title)
		}
	}

	view := g.buildView(in)

	var htmlBuf bytes.Buffer
	if err := g.html.Execute(&htmlBuf, view); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	var plainBuf bytes.Buffer
	if err := g.plain.Execute(&plainBuf, view); err != nil {
		return "", "", fmt.Errorf("render plain: %w", err)
	}
	return htmlBuf.String(), plainBuf.String(), nil
}

type itemView struct {
	Index    int
	Title    string
	URL      string
	Source   string
	Category string
	Date     string
	Hook     string
	Summary  string
	Takeaway string
}

type digestView struct {
	RecipientName  string
	Intro          string
	DateLabel      string
	Year           string
	TopStories     []itemView
	QuickHits      []itemView
	InsideTitles   []string
	Sources        []string
	UnsubscribeURL string
}

func (g *Generator) buildView(in Input) digestView {
	view := digestView{
		RecipientName:  in.RecipientName,
		Intro:          in.Intro,
		DateLabel:      in.DateLabel,
		UnsubscribeURL: in.UnsubscribeURL,
	}
	if idx := strings.LastIndex(in.DateLabel, " "); idx >= 0 {
		view.Year = in.DateLabel[idx+1:]
	}

	sourceSet := map[string]struct{}{}
	for i, item := range in.Items {
		iv := itemView{
			Index:    i + 1,
			Title:    item.Title,
			URL:      item.URL,
			Source:   item.SourceName,
			Category: domain.CategoryName(item.Category),
			Hook:     item.Synopsis.Hook,
			Summary:  item.Synopsis.Summary,
			Takeaway: item.Synopsis.Takeaway,
		}
		if !item.PublishedAt.IsZero() {
			iv.Date = item.PublishedAt.Format(itemDateLayout)
		}
		if item.SourceName != "" {
			sourceSet[item.SourceName] = struct{}{}
		}

		if i < g.topStories {
			view.TopStories = append(view.TopStories, iv)
			if len(view.InsideTitles) < 3 {
				view.InsideTitles = append(view.InsideTitles, shorten(item.Title, insideTitleMax))
			}
		} else {
			iv.Summary = shorten(iv.Summary, quickHitSummary)
			view.QuickHits = append(view.QuickHits, iv)
		}
	}

	view.Sources = make([]string, 0, len(sourceSet))
	for name := range sourceSet {
		view.Sources = append(view.Sources, name)
	}
	sort.Strings(view.Sources)

	return view
}

func shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
