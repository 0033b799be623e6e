// Package markup turns highlight snippets into terminal text. Body snippets
// may mix HTML and Markdown; images in either form become plain labelled
// links so nothing remote is ever fetched.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultImageLabel is the link text that replaces images unless
// WithImageLabel says otherwise.
const DefaultImageLabel = "Image"

var (
	mdImage = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	mdLink  = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	htmlTag = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?/?>`)
	spaces  = regexp.MustCompile(`\s+`)

	// blockTag marks a snippet as an HTML document rather than Markdown
	// with a few inline tags.
	blockTag = regexp.MustCompile(`(?i)</?(p|div|ul|ol|li|h[1-6]|table|thead|tbody|tr|td|th|pre|blockquote|section|article|hr|dl|dt|dd|script|style|iframe|object)\b[^>]*>`)

	imgTag       = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	srcAttr      = regexp.MustCompile(`(?i)\bsrc\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	hrefAttr     = regexp.MustCompile(`(?i)\bhref\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	anchorTag    = regexp.MustCompile(`(?is)<a\b([^>]*)>(.*?)</a>`)
	emphasisTag  = regexp.MustCompile(`(?is)<(?:em|i)\b[^>]*>(.*?)</(?:em|i)>`)
	strongTag    = regexp.MustCompile(`(?is)<(?:strong|b|mark)\b[^>]*>(.*?)</(?:strong|b|mark)>`)
	codeTag      = regexp.MustCompile(`(?is)<code\b[^>]*>(.*?)</code>`)
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
)

var strict = bluemonday.StrictPolicy()

// Renderer converts body snippets to Markdown and renders them with
// glamour. The terminal renderer is rebuilt only when the width changes.
type Renderer struct {
	mu     sync.Mutex
	style  string
	conv   *converter.Converter
	policy *bluemonday.Policy
	term   *glamour.TermRenderer
	width  int
	image  string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle selects a glamour standard style such as "dark", "light" or
// "notty". The default picks one from the terminal background.
func WithStyle(style string) Option {
	return func(r *Renderer) {
		r.style = style
	}
}

// WithImageLabel sets the link text that replaces images.
func WithImageLabel(label string) Option {
	return func(r *Renderer) {
		if label != "" {
			r.image = label
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: bluemonday.UGCPolicy(),
		image:  DefaultImageLabel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetImageLabel replaces the image link text, for instance after the
// display language changed. An empty label is ignored.
func (r *Renderer) SetImageLabel(label string) {
	if label == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.image = label
}

// ImageLabel returns the current image link text.
func (r *Renderer) ImageLabel() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.image
}

// ToMarkdown normalizes body to Markdown with every image replaced by a
// link. Snippets with block-level HTML are sanitized and converted; Markdown
// carrying only inline tags (typically highlighted matches) keeps its
// Markdown structure and has just those tags rewritten.
func (r *Renderer) ToMarkdown(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	label := r.ImageLabel()
	if !htmlTag.MatchString(body) {
		return replaceImages(body, label), nil
	}
	if !blockTag.MatchString(body) {
		return replaceImages(inlineToMarkdown(body, label), label), nil
	}

	// Markdown images are turned into anchors first so they survive the
	// HTML round trip.
	mixed := mdImage.ReplaceAllStringFunc(body, func(m string) string {
		src := mdImage.FindStringSubmatch(m)[1]
		return imageAnchor(src, label)
	})

	linked, err := replaceImageTags(mixed, label)
	if err != nil {
		return "", err
	}
	clean := r.policy.Sanitize(linked)

	md, err := r.conv.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return replaceImages(strings.TrimSpace(md), label), nil
}

// inlineToMarkdown rewrites the inline tags of a Markdown snippet in place
// and drops any other tag. Text outside tags is left untouched.
func inlineToMarkdown(body, label string) string {
	out := imgTag.ReplaceAllStringFunc(body, func(tag string) string {
		src := attr(srcAttr, tag)
		if src == "" {
			return ""
		}
		return "[" + label + "](" + src + ")"
	})
	out = anchorTag.ReplaceAllStringFunc(out, func(m string) string {
		parts := anchorTag.FindStringSubmatch(m)
		href := attr(hrefAttr, parts[1])
		text := htmlTag.ReplaceAllString(parts[2], "")
		if href == "" {
			return text
		}
		return "[" + text + "](" + href + ")"
	})
	out = strongTag.ReplaceAllString(out, "**$1**")
	out = emphasisTag.ReplaceAllString(out, "*$1*")
	out = codeTag.ReplaceAllString(out, "`$1`")
	out = lineBreakTag.ReplaceAllString(out, "  \n")
	return strings.TrimSpace(htmlTag.ReplaceAllString(out, ""))
}

func attr(re *regexp.Regexp, tag string) string {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return html.UnescapeString(strings.TrimSpace(m[1] + m[2]))
}

// Render converts body and renders it for a terminal of the given width.
func (r *Renderer) Render(body string, width int) (string, error) {
	md, err := r.ToMarkdown(body)
	if err != nil {
		return "", err
	}
	if md == "" {
		return "", nil
	}

	term, err := r.renderer(width)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := term.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

func (r *Renderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width < 20 {
		width = 20
	}
	if r.term != nil && r.width == width {
		return r.term, nil
	}

	style := glamour.WithAutoStyle()
	if r.style != "" {
		style = glamour.WithStandardStyle(r.style)
	}
	term, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.term = term
	r.width = width
	return term, nil
}

// Links lists the link targets in Markdown text in order of appearance,
// without repeats.
func Links(markdown string) []string {
	var out []string
	for _, m := range mdLink.FindAllStringSubmatch(markdown, -1) {
		if !slices.Contains(out, m[1]) {
			out = append(out, m[1])
		}
	}
	return out
}

// PlainText strips every tag from s, unescapes entities and collapses
// whitespace.
func PlainText(s string) string {
	text := html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}

func replaceImages(md, label string) string {
	return mdImage.ReplaceAllStringFunc(md, func(m string) string {
		return "[" + label + "](" + mdImage.FindStringSubmatch(m)[1] + ")"
	})
}

func imageAnchor(src, label string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(src), html.EscapeString(label))
}

func replaceImageTags(fragment, label string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml(imageAnchor(src, label))
	})
	return doc.Find("body").Html()
}
