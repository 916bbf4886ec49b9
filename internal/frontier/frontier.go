/*
Frontier Responsibilities
- Maintain priority-bucket ordering over candidate URIs
- Deduplicate URIs against pending and already-issued work
- Enforce the per-session request ceiling
- Track issue outcomes for the success signal
- Knows nothing about:
	- fetching
	- parsing
	- property resolution

It is a data structure + admission policy module, not a pipeline
executor.
*/
package frontier

import (
	"github.com/rohmanhakim/link-preview/internal/metadata"
	"github.com/rohmanhakim/link-preview/internal/uri"
	"github.com/rohmanhakim/link-preview/providers"
)

// Frontier is the crawl-state contract of the resolution engine.
//
// A single Enqueue may admit more than one URI: a content URI with a
// known oEmbed form is admitted in both shapes. Dequeue drains buckets
// in the caller's preferred order. MarkIssued must be called exactly
// once per dequeued URI with the fetch outcome.
type Frontier interface {
	Enqueue(rawurl string, bucket string)
	Dequeue(order []string) (string, bool)
	MarkIssued(uri string, status int)
	Finished() bool
	Full() bool
	Succeeded() bool
}

// CrawlFrontier is the live Frontier. It admits at most maxRequests+1
// URIs per session counting pending and issued together, so a session
// can never grow its request count past the ceiling by re-discovering
// URIs it has already seen.
type CrawlFrontier struct {
	maxRequests int
	directory   providers.Directory
	opts        uri.Options
	sink        metadata.Sink

	buckets     map[string]*FIFOQueue[string]
	bucketOrder []string
	pending     Set[string]
	issued      map[string]int
}

func NewCrawlFrontier(maxRequests int, directory providers.Directory, opts uri.Options, sink metadata.Sink) *CrawlFrontier {
	if sink == nil {
		sink = metadata.NewRecorder(nil)
	}
	return &CrawlFrontier{
		maxRequests: maxRequests,
		directory:   directory,
		opts:        opts,
		sink:        sink,
		buckets:     make(map[string]*FIFOQueue[string]),
		pending:     NewSet[string](),
		issued:      make(map[string]int),
	}
}

// Enqueue admits rawurl into the given bucket. If the URI has an oEmbed
// form it is also admitted into the oembed bucket, so the cheaper
// structured source is tried before the content page itself. Unparseable
// input is dropped silently; over-ceiling admissions are dropped and
// recorded, so an abandoned discovery branch is still observable.
func (c *CrawlFrontier) Enqueue(rawurl string, bucket string) {
	if c.Full() {
		c.recordCapacityDrop(rawurl)
		return
	}
	parsed, err := uri.Parse(rawurl, c.opts)
	if err != nil {
		return
	}
	if oembedForm := parsed.AsOEmbedURI(c.directory); oembedForm != nil {
		c.admit(oembedForm.String(), BucketOEmbed)
	}
	if contentForm := parsed.AsContentURI(); contentForm != nil {
		c.admit(contentForm.String(), bucket)
	}
}

func (c *CrawlFrontier) admit(uriString string, bucket string) {
	if c.Full() {
		c.recordCapacityDrop(uriString)
		return
	}
	if c.pending.Contains(uriString) {
		return
	}
	if _, issued := c.issued[uriString]; issued {
		return
	}
	queue, ok := c.buckets[bucket]
	if !ok {
		queue = NewFIFOQueue[string]()
		c.buckets[bucket] = queue
		c.bucketOrder = append(c.bucketOrder, bucket)
	}
	queue.Enqueue(uriString)
	c.pending.Add(uriString)
}

func (c *CrawlFrontier) recordCapacityDrop(uriString string) {
	c.sink.RecordError("frontier", "CrawlFrontier.Enqueue",
		metadata.CauseCapacityExhausted, "request ceiling reached, discovery dropped", uriString)
}

// Dequeue pops the next URI, trying each bucket named in order first and
// then any remaining buckets in the order they were created. The second
// return is false when every bucket is empty.
func (c *CrawlFrontier) Dequeue(order []string) (string, bool) {
	for _, bucket := range order {
		if next, ok := c.pop(bucket); ok {
			return next, true
		}
	}
	for _, bucket := range c.bucketOrder {
		if next, ok := c.pop(bucket); ok {
			return next, true
		}
	}
	return "", false
}

func (c *CrawlFrontier) pop(bucket string) (string, bool) {
	queue, ok := c.buckets[bucket]
	if !ok {
		return "", false
	}
	next, ok := queue.Dequeue()
	if !ok {
		return "", false
	}
	c.pending.Remove(next)
	return next, true
}

// MarkIssued records the fetch outcome for a dequeued URI. An issued URI
// is never admitted again, whatever its status.
func (c *CrawlFrontier) MarkIssued(uri string, status int) {
	c.issued[uri] = status
}

// Finished reports whether no pending work remains.
func (c *CrawlFrontier) Finished() bool {
	return c.pending.Size() == 0
}

// Full reports whether the session has hit its request ceiling, counting
// both pending and issued URIs.
func (c *CrawlFrontier) Full() bool {
	return c.pending.Size()+len(c.issued) > c.maxRequests
}

// Succeeded reports whether any issued fetch came back 200.
func (c *CrawlFrontier) Succeeded() bool {
	for _, status := range c.issued {
		if status == 200 {
			return true
		}
	}
	return false
}

// InertFrontier is the Frontier used when network activity is disabled.
// It admits nothing, is always finished, and reports success so that
// preloaded content stands on its own.
type InertFrontier struct{}

func NewInertFrontier() InertFrontier {
	return InertFrontier{}
}

func (InertFrontier) Enqueue(string, string) {}

func (InertFrontier) Dequeue([]string) (string, bool) {
	return "", false
}

func (InertFrontier) MarkIssued(string, int) {}

func (InertFrontier) Finished() bool { return true }

func (InertFrontier) Full() bool { return true }

func (InertFrontier) Succeeded() bool { return true }
