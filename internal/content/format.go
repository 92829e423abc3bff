package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

const (
	wordsPerMinute   = 200
	practiceMinutes  = 15
	reviewingMinutes = 10
)

// FormatCourse renders the course body as Markdown.
func FormatCourse(c *models.GeneratedCourse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "## Introduction\n%s\n\n", c.Content.Introduction)
	for _, s := range c.Content.Sections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", s.Title, s.Content)
		if len(s.Examples) > 0 {
			b.WriteString("### Exemples\n")
			for _, ex := range s.Examples {
				fmt.Fprintf(&b, "- %s\n", ex)
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "## Résumé\n%s\n\n", c.Content.Summary)
	fmt.Fprintf(&b, "## Applications pratiques\n%s", c.Content.RealWorldApplications)
	return b.String()
}

// CalculateStudyTime estimates minutes of study: reading time at 200 words per minute,
// plus practice and review.
func CalculateStudyTime(text string) int {
	words := len(strings.Fields(text))
	reading := (words + wordsPerMinute - 1) / wordsPerMinute
	return reading + practiceMinutes + reviewingMinutes
}

var videoSearches = []string{
	"explication simple",
	"cours complet",
	"exercices corrigés",
	"animation pédagogique",
}

// FindEducationalVideos returns YouTube search links for topic. It makes no network call.
func FindEducationalVideos(topic string) []models.Video {
	videos := make([]models.Video, 0, len(videoSearches))
	for i, suffix := range videoSearches {
		videos = append(videos, models.Video{
			ID:          fmt.Sprintf("video-%d", i),
			Title:       "Vidéo sur " + topic,
			Description: "Explication vidéo de " + topic,
			URL:         "https://www.youtube.com/results?search_query=" + url.QueryEscape(topic+" "+suffix),
			Duration:    "5-10 minutes",
			Source:      "YouTube",
			Rating:      4.5,
		})
	}
	return videos
}
