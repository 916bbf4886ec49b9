package parser

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/internal/metadata"
)

// parseOEmbed reads a structured oEmbed payload, JSON or XML by
// content-type. The response's effective URL is folded back in as the
// url key so the permalink survives even when the fetched resource was
// the provider endpoint rather than the content page.
func (p *Parser) parseOEmbed(resp fetch.Response) Result {
	contentType := strings.ToLower(resp.ContentType())

	var props Properties
	switch {
	case strings.Contains(contentType, "xml"):
		props = parseOEmbedXML(resp.Body)
	case strings.Contains(contentType, "json"):
		props = parseOEmbedJSON(resp.Body)
	}
	if props == nil {
		p.sink.RecordError("parser", "Parser.parseOEmbed", metadata.CauseContentInvalid,
			"malformed oembed payload", resp.URL)
		props = Properties{}
	}

	if contentURL := p.contentURLOf(resp); contentURL != "" {
		props["url"] = contentURL
	}
	return Result{Sources: map[string]Properties{SourceOEmbed: props}}
}

func parseOEmbedJSON(body []byte) Properties {
	var props Properties
	if err := json.Unmarshal(body, &props); err != nil {
		return nil
	}
	return props
}

// parseOEmbedXML flattens the children of the root element one level
// deep: each child element becomes a key holding its character data.
// Nested structure beyond that is not part of the oEmbed XML shape and
// is ignored.
func parseOEmbedXML(body []byte) Properties {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	props := Properties{}
	depth := 0
	key := ""
	var value strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch tok := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				key = tok.Name.Local
				value.Reset()
			}
		case xml.CharData:
			if depth == 2 && key != "" {
				value.Write(tok)
			}
		case xml.EndElement:
			if depth == 2 && key != "" {
				if _, exists := props[key]; !exists {
					props[key] = value.String()
				}
				key = ""
			}
			depth--
		}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}
