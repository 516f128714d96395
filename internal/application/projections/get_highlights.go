package projections

import (
	"bytes"
	"log/slog"
	"sort"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in the article text is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// HighlightEntry is one card on the highlight wall.
type HighlightEntry struct {
	StudentName string
	Day         day.Day
	Highlight   string
	Method      string
	Article     string // raw article text as submitted
	ArticleHTML string // markdown-rendered, safe to embed
	Message     string
}

// GetHighlightsQuery carries input for the highlight wall projection.
type GetHighlightsQuery struct {
	Day day.Day // usually today; zero means today
}

// HighlightsResult is the wall for one day.
type HighlightsResult struct {
	Day     day.Day
	Entries []HighlightEntry
}

// QueryGetHighlights collects the eligible records for one day that carry
// any shared text, rendering article bodies from Markdown.
func QueryGetHighlights(ds *snapshot.Dataset, query GetHighlightsQuery) HighlightsResult {
	target := query.Day
	if target.IsZero() {
		target = ds.Clock.Today()
	}
	today := ds.Clock.Today()

	result := HighlightsResult{Day: target}
	for _, rec := range ds.Records {
		if !rec.Eligible(today) || rec.Day != target {
			continue
		}
		if rec.HighlightText == "" && rec.ArticleText == "" && rec.MessageToPeers == "" {
			continue
		}
		entry := HighlightEntry{
			StudentName: rec.StudentName,
			Day:         rec.Day,
			Highlight:   rec.HighlightText,
			Method:      rec.ExtractionMethod,
			Article:     rec.ArticleText,
			Message:     rec.MessageToPeers,
		}
		if rec.ArticleText != "" {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(rec.ArticleText), &buf); err != nil {
				slog.Warn("highlight_article_render_failed", "student", rec.StudentName, "error", err)
			} else {
				entry.ArticleHTML = buf.String()
			}
		}
		result.Entries = append(result.Entries, entry)
	}

	// Stable name order so repeated renders of the wall do not shuffle.
	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].StudentName < result.Entries[j].StudentName
	})
	return result
}
