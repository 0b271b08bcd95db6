package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceephoto/photohost/pkg/photohost"
)

func testConfig() Config {
	return Config{
		Title:       "My Photos",
		SiteURL:     "https://photos.example.com",
		Description: "Latest photos",
		GUIDHost:    "photos.example.com",
	}
}

func TestBuildEmptyFeed(t *testing.T) {
	now := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	out, err := Build(testConfig(), nil, now)
	require.NoError(t, err)

	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "<title>My Photos</title>")
	assert.Contains(t, doc, "Thu, 15 Jun 2023 12:00:00 +0000")
	assert.NotContains(t, doc, "<item>")
}

func TestBuildSkipsUnpublished(t *testing.T) {
	photos := []*photohost.Photo{
		{ID: uuid.New(), Name: "draft.jpg"},
	}
	out, err := Build(testConfig(), photos, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<item>")
}

func TestBuildItems(t *testing.T) {
	posted := time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC)
	older := posted.Add(-24 * time.Hour)
	id := uuid.New()

	photos := []*photohost.Photo{
		{
			ID:          id,
			Name:        "harbor.jpg",
			PostTitle:   "Harbor at dawn",
			PostSummary: "First light over the water.",
			MediumURL:   "https://cdn.example.com/medium/harbor.jpg",
			OriginalURL: "https://cdn.example.com/full/harbor.jpg",
			PostedAt:    &posted,
		},
		{
			ID:          uuid.New(),
			Name:        "alley.jpg",
			Title:       "Alley",
			OriginalURL: "https://cdn.example.com/full/alley.jpg",
			PostedAt:    &older,
		},
	}

	out, err := Build(testConfig(), photos, time.Now())
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "<title>Harbor at dawn</title>")
	assert.Contains(t, doc, "https://photos.example.com/p/"+id.String())
	assert.Contains(t, doc, "photos.example.com:photo:"+id.String())
	assert.Contains(t, doc, `isPermaLink="false"`)
	assert.Contains(t, doc, "Thu, 15 Jun 2023 09:30:00 +0000")
	assert.Contains(t, doc, "First light over the water.")

	// Enclosure prefers the medium rendition, falls back to the original.
	assert.Contains(t, doc, `url="https://cdn.example.com/medium/harbor.jpg"`)
	assert.Contains(t, doc, `url="https://cdn.example.com/full/alley.jpg"`)

	// Item title falls back to metadata title, then file name.
	assert.Contains(t, doc, "<title>Alley</title>")

	// lastBuildDate is the newest posted-at.
	assert.Contains(t, doc, "<lastBuildDate>Thu, 15 Jun 2023 09:30:00 +0000</lastBuildDate>")
}

func TestBuildTitleFallsBackToName(t *testing.T) {
	posted := time.Now().UTC()
	photos := []*photohost.Photo{
		{ID: uuid.New(), Name: "nameless.jpg", OriginalURL: "u", PostedAt: &posted},
	}
	out, err := Build(testConfig(), photos, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<title>nameless.jpg</title>")
}
