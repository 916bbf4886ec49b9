package parser

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/link-preview/fetch"
)

// oEmbed discovery link types, per the oEmbed spec's discovery section.
var oembedLinkTypes = map[string]struct{}{
	"application/json+oembed": {},
	"text/xml+oembed":         {},
}

// metaTag is one head meta tag in document order. OpenGraph group
// parsing depends on that order; the tags cannot be bucketed up front.
type metaTag struct {
	property string
	content  string
}

// parseHTML extracts the html and opengraph sources from one document
// and collects oEmbed discovery links for the caller to enqueue.
func (p *Parser) parseHTML(ctx context.Context, resp fetch.Response) Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return emptyResult()
	}

	metas := collectMetaTags(doc)
	opengraph := p.parseOpenGraph(ctx, metas)
	html := parsePlainHTML(doc)

	return Result{
		Sources: map[string]Properties{
			SourceOpenGraph: opengraph,
			SourceHTML:      html,
		},
		DiscoveredURIs: findOEmbedLinks(doc),
	}
}

// findOEmbedLinks scans head alternate links for oEmbed endpoints.
func findOEmbedLinks(doc *goquery.Document) []string {
	var discovered []string
	doc.Find("head link[rel='alternate']").Each(func(_ int, sel *goquery.Selection) {
		linkType, _ := sel.Attr("type")
		if _, ok := oembedLinkTypes[strings.ToLower(linkType)]; !ok {
			return
		}
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			discovered = append(discovered, href)
		}
	})
	return discovered
}

// parsePlainHTML reads the non-OpenGraph fallbacks: document title,
// meta description and rel-tag anchors.
func parsePlainHTML(doc *goquery.Document) Properties {
	props := Properties{}

	if title := doc.Find("head title").First(); title.Length() > 0 {
		setIfAbsent(props, "title", title.Text())
	}

	doc.Find("head meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name, _ := sel.Attr("name")
		if !strings.EqualFold(name, "description") {
			return true
		}
		content, _ := sel.Attr("content")
		if strings.TrimSpace(content) == "" {
			return true
		}
		props["description"] = content
		return false
	})

	var tags []string
	doc.Find("a[rel='tag']").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			tags = append(tags, text)
		}
	})
	if len(tags) > 0 {
		props["tags"] = tags
	}

	return props
}

func collectMetaTags(doc *goquery.Document) []metaTag {
	var metas []metaTag
	doc.Find("head meta").Each(func(_ int, sel *goquery.Selection) {
		property, ok := sel.Attr("property")
		if !ok || property == "" {
			return
		}
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		metas = append(metas, metaTag{
			property: strings.ToLower(property),
			content:  content,
		})
	})
	return metas
}

// parseOpenGraph reads the og namespace. Scalar fields take the first
// non-blank occurrence. Image and video tags repeat in groups; image
// fields come from the first group, video fields from the first group
// that describes a direct asset rather than an embeddable player page.
// A player-page group instead triggers the nested embed capture.
func (p *Parser) parseOpenGraph(ctx context.Context, metas []metaTag) Properties {
	props := Properties{}

	for _, meta := range metas {
		switch meta.property {
		case "og:title", "og:description", "og:tag", "og:url", "og:type", "og:site_name":
			setIfAbsent(props, strings.TrimPrefix(meta.property, "og:"), meta.content)
		}
	}

	if imageGroups := collectGroups(metas, "image"); len(imageGroups) > 0 {
		emitGroup(props, imageGroups[0])
	}

	videoGroups := collectGroups(metas, "video")
	for _, group := range videoGroups {
		if group["video_type"] == "text/html" {
			continue
		}
		emitGroup(props, group)
		break
	}

	if !p.cfg.IgnoreVideoTypeHTML {
		for _, group := range videoGroups {
			if group["video_type"] != "text/html" {
				continue
			}
			if embed := p.captureVideoEmbed(ctx, group); embed != "" {
				setIfAbsent(props, "html", embed)
				// The player page's advertised dimensions size the embed.
				setIfAbsent(props, "video_width", group["video_width"])
				setIfAbsent(props, "video_height", group["video_height"])
			}
			break
		}
	}

	return props
}

// collectGroups walks the og:<kind> tags in document order. Each
// og:<kind> or og:<kind>:url tag starts a new group; subordinate
// og:<kind>:* tags attach to the group in flight. Subordinate tags seen
// before any delimiter have no group and are dropped.
func collectGroups(metas []metaTag, kind string) []map[string]string {
	primary := "og:" + kind
	prefix := primary + ":"

	var groups []map[string]string
	var current map[string]string
	for _, meta := range metas {
		key := ""
		delimiter := false
		switch {
		case meta.property == primary:
			key = kind
			delimiter = true
		case meta.property == primary+":url":
			key = kind + "_url"
			delimiter = true
		case strings.HasPrefix(meta.property, prefix):
			key = kind + "_" + strings.TrimPrefix(meta.property, prefix)
		default:
			continue
		}
		if delimiter {
			current = map[string]string{}
			groups = append(groups, current)
		}
		if current == nil {
			continue
		}
		if _, exists := current[key]; !exists {
			current[key] = meta.content
		}
	}
	return groups
}

func emitGroup(props Properties, group map[string]string) {
	for key, value := range group {
		setIfAbsent(props, key, value)
	}
}

// captureVideoEmbed fetches an HTML-typed video group's player page and
// returns its body as literal embeddable markup. This is a synchronous
// side fetch, not frontier work: the target only exists inside the
// response being parsed right now.
func (p *Parser) captureVideoEmbed(ctx context.Context, group map[string]string) string {
	if p.cfg.Client == nil {
		return ""
	}
	target := group["video_secure_url"]
	if target == "" {
		target = group["video"]
	}
	if target == "" {
		target = group["video_url"]
	}
	if target == "" {
		return ""
	}
	resp := p.cfg.Client.Get(ctx, target, fetch.RequestOptions{
		Width:  p.cfg.Options.Width,
		Height: p.cfg.Options.Height,
	})
	if !resp.Success() || len(resp.Body) == 0 {
		return ""
	}
	return string(resp.Body)
}
