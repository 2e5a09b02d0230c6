package navigation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// sanitizer strips active content. UGC policy plus structural tags keeps the
// document renderable while removing everything executable.
var sanitizer = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("html", "head", "body", "title", "header", "footer", "nav", "main", "section", "article", "aside", "form", "label", "input", "button", "select", "option", "textarea")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
	return p
}

// Sanitize rewrites fetched HTML into a form safe to hand a content surface:
// scripts and inline event handlers removed, relative URLs resolved against
// base, then the whole document run through the HTML sanitizer.
func Sanitize(html string, base *url.URL) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := doc.Find("title").First().Text()
	if title == "" {
		title = base.Host
	}

	doc.Find("script").Remove()
	doc.Find("iframe").Remove()
	doc.Find("object, embed").Remove()

	// Inline handlers survive tag-level sanitizing, drop them explicitly.
	for _, attr := range []string{"onclick", "onload", "onerror", "onsubmit", "onmouseover", "onfocus"} {
		doc.Find("[" + attr + "]").RemoveAttr(attr)
	}

	resolveURLs(doc, base)

	rendered, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	return &Page{
		Title: title,
		HTML:  sanitizer.Sanitize(rendered),
	}, nil
}

// resolveURLs makes links and image sources absolute so the surface does not
// resolve them against the host's own origin.
func resolveURLs(doc *goquery.Document, base *url.URL) {
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if absolute := resolveURL(href, base); absolute != "" {
			s.SetAttr("href", absolute)
		} else {
			s.RemoveAttr("href")
		}
	})

	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		if absolute := resolveURL(src, base); absolute != "" {
			s.SetAttr("src", absolute)
		} else {
			s.RemoveAttr("src")
		}
	})
}

// resolveURL converts a relative reference to absolute, refusing schemes that
// smuggle script or data.
func resolveURL(href string, base *url.URL) string {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range []string{"javascript:", "data:", "vbscript:", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
