package record

import (
	"regexp"
	"strings"
)

var (
	boldTag      = regexp.MustCompile(`\[b\](.*?)\[/b\]`)
	italicTag    = regexp.MustCompile(`\[i\](.*?)\[/i\]`)
	artistRef    = regexp.MustCompile(`\[a=[^\]]+\]`)
	bracketTag   = regexp.MustCompile(`\[.*?\]`)
	parenthetic  = regexp.MustCompile(`\(.*?\)`)
	multiSpace   = regexp.MustCompile(`\s{2,}`)
	youtubeVideo = regexp.MustCompile(`(?:v=|youtu\.be/)([^&#?/]+)`)
)

// EscapeQuotes escapes double quotes for front-matter embedding and drops the
// cataloging source's "(N)" name disambiguators.
func EscapeQuotes(text string) string {
	text = strings.ReplaceAll(text, `"`, `\"`)
	return parenNumber.ReplaceAllString(text, "")
}

// TidyText converts the cataloging source's bbcode-flavored profile text to
// markdown and strips everything that does not survive the conversion.
func TidyText(text string) string {
	text = strings.ReplaceAll(text, `"`, `\"`)
	text = boldTag.ReplaceAllString(text, "**$1**")
	text = italicTag.ReplaceAllString(text, "*$1*")
	text = artistRef.ReplaceAllString(text, "")
	text = bracketTag.ReplaceAllString(text, "")
	text = parenthetic.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// FlattenNotes collapses free-text notes to a single line.
func FlattenNotes(notes string) string {
	notes = strings.ReplaceAll(notes, "\r", " ")
	notes = strings.ReplaceAll(notes, "\n", " ")
	return strings.TrimSpace(notes)
}

// YouTubeID extracts the video identifier from a YouTube URL, or returns ""
// when the URL does not look like one.
func YouTubeID(url string) string {
	match := youtubeVideo.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}
