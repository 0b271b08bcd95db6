// Package feed assembles the RSS 2.0 document for published photos.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/ceephoto/photohost/pkg/photohost"
)

// Config identifies the channel. SiteURL is used for item links and GUIDs.
type Config struct {
	Title       string
	SiteURL     string
	Description string
	GUIDHost    string
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	GUID        guid      `xml:"guid"`
	PubDate     string    `xml:"pubDate"`
	Description string    `xml:"description"`
	Enclosure   enclosure `xml:"enclosure"`
}

type guid struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// Build renders the feed for the given published photos. Photos without a
// posted-at timestamp are skipped; lastBuildDate is the newest posted-at, or
// now when nothing is published yet.
func Build(cfg Config, photos []*photohost.Photo, now time.Time) ([]byte, error) {
	var items []item
	var lastBuild time.Time

	for _, p := range photos {
		if p.PostedAt == nil {
			continue
		}
		if p.PostedAt.After(lastBuild) {
			lastBuild = *p.PostedAt
		}

		title := p.PostTitle
		if title == "" {
			title = p.Title
		}
		if title == "" {
			title = p.Name
		}

		// Prefer the medium rendition; fall back to the original.
		enclosureURL := p.MediumURL
		if enclosureURL == "" {
			enclosureURL = p.OriginalURL
		}

		items = append(items, item{
			Title:       title,
			Link:        fmt.Sprintf("%s/p/%s", cfg.SiteURL, p.ID),
			GUID:        guid{IsPermaLink: "false", Value: fmt.Sprintf("%s:photo:%s", cfg.GUIDHost, p.ID)},
			PubDate:     rfc2822(*p.PostedAt),
			Description: p.PostSummary,
			Enclosure:   enclosure{URL: enclosureURL, Type: "image/jpeg"},
		})
	}

	if lastBuild.IsZero() {
		lastBuild = now
	}

	doc := rss{
		Version: "2.0",
		Channel: channel{
			Title:         cfg.Title,
			Link:          cfg.SiteURL + "/",
			Description:   cfg.Description,
			LastBuildDate: rfc2822(lastBuild),
			Items:         items,
		},
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// rfc2822 formats a timestamp the way RSS readers expect. Naive values are
// treated as UTC.
func rfc2822(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 +0000")
}
