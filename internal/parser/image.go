package parser

import (
	"strings"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/internal/uri"
)

// parseImage turns an image response into the image source: the bytes
// themselves plus enough header-derived metadata to attach the picture
// to a preview later.
func (p *Parser) parseImage(resp fetch.Response) Result {
	props := Properties{}
	setIfAbsent(props, "image_url", resp.URL)
	setIfAbsent(props, "image_content_type", resp.ContentType())
	if len(resp.Body) > 0 {
		data := make([]byte, len(resp.Body))
		copy(data, resp.Body)
		props["image_data"] = data
	}
	setIfAbsent(props, "image_file_name", p.imageFileName(resp))

	return Result{Sources: map[string]Properties{SourceImage: props}}
}

// imageFileName picks a filename for the fetched image: the
// content-disposition filename when present, else the last URL path
// segment, else the host with dots flattened to underscores.
func (p *Parser) imageFileName(resp fetch.Response) string {
	if name := contentDispositionFilename(resp.Header("content-disposition")); name != "" {
		return name
	}
	if resp.URL == "" {
		return ""
	}
	parsed, err := uri.Parse(resp.URL, p.cfg.Options)
	if err != nil {
		return ""
	}
	segments := strings.Split(parsed.Path(), "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	return strings.ReplaceAll(parsed.Host(), ".", "_")
}

// contentDispositionFilename extracts the filename parameter of a
// content-disposition header, stripped of surrounding quotes.
func contentDispositionFilename(header string) string {
	marker := "filename="
	idx := strings.LastIndex(header, marker)
	if idx < 0 {
		return ""
	}
	name := header[idx+len(marker):]
	return strings.Trim(name, `'"`)
}
