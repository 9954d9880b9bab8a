package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/findexa/finharvest/internal/model"
)

// circularNumberRes match regulatory reference numbers such as
// "Circular No. SEBI/HO/IMD/DF3/CIR/P/2025/100". Tried in order, most
// explicit first.
var circularNumberRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)circular\s+no\.?\s*([a-z0-9/\-]+)`),
	regexp.MustCompile(`(?i)notification\s+no\.?\s*([a-z0-9/\-]+)`),
	regexp.MustCompile(`(?i)circular\s+([a-z0-9/\-]+)`),
	regexp.MustCompile(`(?i)no\.?\s*([a-z0-9/\-]+)`),
}

// CircularNumber extracts a circular or notification reference number
// from text. Returns an empty string when none is found.
func CircularNumber(text string) string {
	for _, re := range circularNumberRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	return ""
}

// topicKeywords maps each topic tag to the keywords that trigger it.
// Order is fixed so that tagging is deterministic when more topics
// match than the tag limit allows.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"mutual_funds", []string{"mutual fund", "mf", "nav", "amc", "sip"}},
	{"equity", []string{"equity", "stock", "share", "nse", "bse", "sensex", "nifty"}},
	{"taxation", []string{"tax", "income tax", "gst", "tds", "itr", "assessment"}},
	{"gold", []string{"gold", "sgb", "sovereign gold bond", "precious metal"}},
	{"insurance", []string{"insurance", "policy", "premium", "claim"}},
	{"banking", []string{"bank", "rbi", "loan", "credit", "deposit"}},
	{"regulatory", []string{"sebi", "rbi", "circular", "regulation", "compliance"}},
	{"education", []string{"education", "awareness", "investor", "guide", "handbook"}},
}

// TopicTags classifies a document by keyword match against its title
// and text, returning at most model.MaxTopicTags tags.
func TopicTags(title, text string) []string {
	content := strings.ToLower(title + " " + text)

	var tags []string
	for _, entry := range topicKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(content, keyword) {
				tags = append(tags, entry.topic)
				break
			}
		}
		if len(tags) >= model.MaxTopicTags {
			break
		}
	}

	return tags
}

const maxShortTitleLen = 50

var (
	fileExtRe    = regexp.MustCompile(`\.[^.]+$`)
	nonWordRe    = regexp.MustCompile(`[^\w\s\-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ShortTitleFromURL derives a filesystem-friendly short title from the
// last path segment of a URL. Falls back to "document" when the URL has
// no usable segment.
func ShortTitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}

	name := "document"
	if p := strings.Trim(u.Path, "/"); p != "" {
		segments := strings.Split(p, "/")
		name = segments[len(segments)-1]
	}

	name = fileExtRe.ReplaceAllString(name, "")
	name = nonWordRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, "_")

	if len(name) > maxShortTitleLen {
		name = name[:maxShortTitleLen]
	}
	if name == "" {
		name = "document"
	}

	return name
}
