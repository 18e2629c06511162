package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsmill/newsmill/internal/domain"
)

func TestScraper_SuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		total      int
		successful int
		want       float64
	}{
		{name: "no runs yet", total: 0, successful: 0, want: 0},
		{name: "all successful", total: 10, successful: 10, want: 100},
		{name: "partial", total: 10, successful: 3, want: 30},
		{name: "all failed", total: 5, successful: 0, want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sc := &domain.Scraper{
				TotalRuns:      tt.total,
				SuccessfulRuns: tt.successful,
			}
			assert.InDelta(t, tt.want, sc.SuccessRate(), 0.001)
		})
	}
}

func TestScrapedArticle_CanRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     domain.TaskStatus
		retryCount int
		maxRetries int
		want       bool
	}{
		{name: "failed with attempts left", status: domain.StatusFailed, retryCount: 0, maxRetries: 3, want: true},
		{name: "failed at final attempt", status: domain.StatusFailed, retryCount: 2, maxRetries: 3, want: true},
		{name: "failed and exhausted", status: domain.StatusFailed, retryCount: 3, maxRetries: 3, want: false},
		{name: "successful record", status: domain.StatusSuccess, retryCount: 0, maxRetries: 3, want: false},
		{name: "in progress record", status: domain.StatusInProgress, retryCount: 0, maxRetries: 3, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := &domain.ScrapedArticle{
				Status:     tt.status,
				RetryCount: tt.retryCount,
				MaxRetries: tt.maxRetries,
			}
			assert.Equal(t, tt.want, a.CanRetry())
		})
	}
}

func TestCanonicalizeURL(t *testing.T) {
	t.Parallel()

	t.Run("strips query and fragment", func(t *testing.T) {
		t.Parallel()

		canonical, params, err := domain.CanonicalizeURL(
			"https://example.com/story?utm_source=feed&id=7#comments",
		)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/story", canonical)
		require.NotNil(t, params)
		assert.Equal(t, "utm_source=feed&id=7", *params)
	})

	t.Run("plain url is unchanged", func(t *testing.T) {
		t.Parallel()

		canonical, params, err := domain.CanonicalizeURL("https://example.com/story")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/story", canonical)
		assert.Nil(t, params)
	})

	t.Run("tracking variants collapse to one canonical form", func(t *testing.T) {
		t.Parallel()

		first, _, err := domain.CanonicalizeURL("https://example.com/story?utm_source=a")
		require.NoError(t, err)
		second, _, err := domain.CanonicalizeURL("https://example.com/story?utm_source=b")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("malformed url returns error", func(t *testing.T) {
		t.Parallel()

		_, _, err := domain.CanonicalizeURL("://not-a-url")
		require.Error(t, err)
	})
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{
			name: "relative path",
			base: "https://example.com/section/",
			ref:  "/story/1",
			want: "https://example.com/story/1",
		},
		{
			name: "already absolute",
			base: "https://example.com/",
			ref:  "https://other.com/story",
			want: "https://other.com/story",
		},
		{
			name: "protocol relative",
			base: "https://example.com/",
			ref:  "//cdn.example.com/img.jpg",
			want: "https://cdn.example.com/img.jpg",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ResolveURL(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSite_Valid(t *testing.T) {
	t.Parallel()

	for _, site := range domain.Sites {
		assert.True(t, site.Valid(), "site %s should be valid", site)
	}
	assert.False(t, domain.Site("unknown.news").Valid())
}
