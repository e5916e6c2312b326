package domain

import "strings"

// Recipient is a digest subscriber. Account management is external; the
// pipeline only reads these fields.
type Recipient struct {
	ID         string
	Email      string
	Name       string
	Active     bool
	Subscribed bool
	Interests  []string
}

// Eligible reports whether the recipient should receive scheduled digests.
func (r Recipient) Eligible() bool {
	return r.Active && r.Subscribed
}

// FirstName returns the leading name token used in greetings.
func (r Recipient) FirstName() string {
	fields := strings.Fields(r.Name)
	if len(fields) == 0 {
		return r.Name
	}
	return fields[0]
}

// categoryNames maps interest slugs to their display labels.
var categoryNames = map[string]string{
	"technology":  "Technology",
	"business":    "Business & Finance",
	"science":     "Science & Research",
	"world-news":  "World News",
	"ai-ml":       "AI & Machine Learning",
	"health":      "Health & Wellness",
	"startups":    "Startups",
	"environment": "Climate & Environment",
	"sports":      "Sports",
	"culture":     "Arts & Culture",
	"politics":    "Politics",
	"space":       "Space & Astronomy",
}

// CategoryName resolves a category slug to its display label, title-casing
// unknown slugs instead of failing.
func CategoryName(slug string) string {
	if name, ok := categoryNames[slug]; ok {
		return name
	}
	if slug == "" {
		return ""
	}
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
