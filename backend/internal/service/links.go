package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/itchan-dev/postmove/shared/domain"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	linkTextEscaper  = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)
)

// Slug turns a title into the url segment of a topic. Titles without any
// latin letters or digits get "topic".
func Slug(title domain.TopicTitle) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "topic"
	}
	return slug
}

func TopicURL(baseURL string, topic domain.Topic) string {
	return fmt.Sprintf("%s/t/%s/%d", strings.TrimRight(baseURL, "/"), Slug(topic.Title), topic.Id)
}

// TopicLink renders a markdown link to the topic.
func TopicLink(baseURL string, topic domain.Topic) string {
	return fmt.Sprintf("[%s](%s)", linkTextEscaper.Replace(topic.Title), TopicURL(baseURL, topic))
}
