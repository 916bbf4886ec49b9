package frontier

// Bucket names used by the resolution engine. Callers may enqueue under
// any name; buckets are created on first use and drained in the order a
// dequeue call asks for, falling back to bucket creation order.
const (
	BucketDefault   = "default"
	BucketOEmbed    = "oembed"
	BucketImage     = "image"
	BucketHTML      = "html"
	BucketOpenGraph = "opengraph"
)
