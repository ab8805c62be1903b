package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/pulsefeed/pulsefeed/internal/common"
)

const frontPageHTML = `<html><body><table>
<tr class="athing" id="1">
  <td class="title"><span class="rank">1.</span></td>
  <td class="title"><span class="titleline">
    <a href="https://example.com/post-one">First Post</a>
    <span class="sitebit"> (<a href="from?site=example.com"><span class="sitestr">example.com</span></a>)</span>
  </span></td>
</tr>
<tr><td class="subtext">
  <span class="score">142 points</span> by <a class="hnuser">alice</a>
  <a href="item?id=1">96 comments</a>
</td></tr>
<tr class="athing" id="2">
  <td class="title"><span class="titleline">
    <a href="item?id=2">Ask: second post</a>
  </span></td>
</tr>
<tr><td class="subtext">
  <span class="score">9 points</span> by <a class="hnuser">bob</a>
  <a href="item?id=2">discuss</a>
</td></tr>
<tr class="athing" id="3">
  <td class="title"><span class="titleline"></span></td>
</tr>
<tr><td class="subtext"></td></tr>
</table></body></html>`

func newFrontPageConfig(url string) common.FrontPageSourceConfig {
	return common.FrontPageSourceConfig{
		URL:            url,
		UserAgent:      "pulsefeed-test/1.0",
		RequestTimeout: "5s",
	}
}

func TestFrontPageFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(frontPageHTML))
	}))
	defer srv.Close()

	client := NewFrontPageClient(newFrontPageConfig(srv.URL), arbor.NewLogger())
	articles, err := client.Fetch(context.Background())
	require.NoError(t, err)

	// The third block has no title link and is skipped, not fatal
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "First Post", first.Title)
	assert.Equal(t, "https://example.com/post-one", first.Link)
	assert.Equal(t, "alice", first.Author)
	assert.Equal(t, 142, first.Score)
	assert.Equal(t, 96, first.Comments)
	assert.Equal(t, "example.com", first.Site)
	assert.Equal(t, 1, first.Position)
	assert.False(t, first.CapturedAt.IsZero())

	// Relative links resolve against the page origin
	second := articles[1]
	assert.Equal(t, "Ask: second post", second.Title)
	assert.Equal(t, srv.URL+"/item?id=2", second.Link)
	assert.Equal(t, "bob", second.Author)
	assert.Equal(t, 9, second.Score)
	assert.Equal(t, 0, second.Comments)
	assert.Equal(t, 2, second.Position)
}

func TestFrontPageFetchNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewFrontPageClient(newFrontPageConfig(srv.URL), arbor.NewLogger())
	_, err := client.Fetch(context.Background())

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, "frontpage", fetchErr.Source)
}

func TestFrontPageFetchEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer srv.Close()

	client := NewFrontPageClient(newFrontPageConfig(srv.URL), arbor.NewLogger())
	articles, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"142 points", 142},
		{"1 point", 1},
		{"discuss", 0},
		{"", 0},
		{"  7 comments ", 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leadingInt(tt.in), "leadingInt(%q)", tt.in)
	}
}
