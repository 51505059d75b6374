package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebFetchURLSlug(t *testing.T) {
	fetcher := &mockContentFetcher{text: strings.Repeat("Berkshire history. ", 20)}
	w := NewWebFetcher(fetcher, "https://en.wikipedia.org/")

	got := w.Fetch(context.Background(), "Berkshire Hathaway ")

	assert.False(t, got.Degraded)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Berkshire_Hathaway", fetcher.lastURL)
	assert.True(t, strings.HasPrefix(got.Value, "Source: https://en.wikipedia.org/wiki/Berkshire_Hathaway\n"))
}

func TestWebFetchDegrades(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{name: "extraction error", err: errors.New("status 404")},
		{name: "content too short", text: "Stub article."},
		{name: "whitespace only", text: "   \n\t "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockContentFetcher{text: tt.text, err: tt.err}
			w := NewWebFetcher(fetcher, "https://en.wikipedia.org")

			got := w.Fetch(context.Background(), "Apple")

			assert.True(t, got.Degraded)
			assert.Equal(t, NoWebContent, got.Value)
		})
	}
}

func TestWebFetchTruncatesLongContent(t *testing.T) {
	fetcher := &mockContentFetcher{text: strings.Repeat("a", 5000)}
	w := NewWebFetcher(fetcher, "https://en.wikipedia.org")

	got := w.Fetch(context.Background(), "Apple")

	assert.False(t, got.Degraded)
	assert.True(t, strings.HasSuffix(got.Value, "..."))
	// Source line plus the capped body plus the ellipsis.
	body := got.Value[strings.Index(got.Value, "\n")+1:]
	assert.Len(t, body, maxContentLen+3)
}
