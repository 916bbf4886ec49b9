package frontier_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/link-preview/internal/frontier"
	"github.com/rohmanhakim/link-preview/internal/metadata"
	"github.com/rohmanhakim/link-preview/internal/uri"
	"github.com/rohmanhakim/link-preview/providers"
)

// stubProvider always rewrites to a fixed oEmbed endpoint.
type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Build(rawurl string) (string, error) {
	return "http://provider.example.com/oembed?format=json&url=" + rawurl, nil
}

// stubDirectory matches only URLs under watch.example.com.
type stubDirectory struct{}

func (stubDirectory) Find(rawurl string) providers.Provider {
	if len(rawurl) >= 25 && rawurl[:25] == "http://watch.example.com/" {
		return stubProvider{}
	}
	return nil
}

// recordingSink captures recorded error causes for assertions.
type recordingSink struct {
	causes []metadata.ErrorCause
}

func (*recordingSink) RecordFetch(string, int, time.Duration, string, string) {}

func (*recordingSink) RecordParse(string, []string, int) {}

func (s *recordingSink) RecordError(_ string, _ string, cause metadata.ErrorCause, _ string, _ string) {
	s.causes = append(s.causes, cause)
}

func newFrontierForTest(maxRequests int) *frontier.CrawlFrontier {
	return frontier.NewCrawlFrontier(maxRequests, stubDirectory{}, uri.Options{}, nil)
}

func drain(f frontier.Frontier, order []string) []string {
	var out []string
	for {
		next, ok := f.Dequeue(order)
		if !ok {
			return out
		}
		out = append(out, next)
	}
}

func TestEnqueueAdmitsPlainURIOnce(t *testing.T) {
	f := newFrontierForTest(10)

	f.Enqueue("http://example.com/page", frontier.BucketDefault)
	f.Enqueue("http://example.com/page", frontier.BucketDefault)
	f.Enqueue("http://EXAMPLE.com/page", frontier.BucketHTML)

	drained := drain(f, nil)
	assert.Equal(t, []string{"http://example.com/page"}, drained)
	assert.True(t, f.Finished())
}

func TestEnqueueAdmitsOEmbedFormAlongsideContentForm(t *testing.T) {
	f := newFrontierForTest(10)

	f.Enqueue("http://watch.example.com/v/123", frontier.BucketDefault)

	first, ok := f.Dequeue([]string{frontier.BucketOEmbed})
	require.True(t, ok)
	assert.Contains(t, first, "provider.example.com/oembed")

	second, ok := f.Dequeue(nil)
	require.True(t, ok)
	assert.Equal(t, "http://watch.example.com/v/123", second)
}

func TestDequeueHonorsPriorityOrderThenInsertionOrder(t *testing.T) {
	f := newFrontierForTest(10)

	f.Enqueue("http://example.com/a", frontier.BucketDefault)
	f.Enqueue("http://example.com/b", frontier.BucketImage)
	f.Enqueue("http://example.com/c", frontier.BucketHTML)

	// html is preferred even though it was enqueued last.
	next, ok := f.Dequeue([]string{frontier.BucketHTML, frontier.BucketOEmbed})
	require.True(t, ok)
	assert.Equal(t, "http://example.com/c", next)

	// No preferred bucket has entries left; fall back to the order the
	// buckets were created in, not the caller's list.
	next, ok = f.Dequeue([]string{frontier.BucketHTML, frontier.BucketOEmbed})
	require.True(t, ok)
	assert.Equal(t, "http://example.com/a", next)

	next, ok = f.Dequeue(nil)
	require.True(t, ok)
	assert.Equal(t, "http://example.com/b", next)
}

func TestIssuedURIsAreNeverReadmitted(t *testing.T) {
	f := newFrontierForTest(10)

	f.Enqueue("http://example.com/page", frontier.BucketDefault)
	next, ok := f.Dequeue(nil)
	require.True(t, ok)
	f.MarkIssued(next, 200)

	f.Enqueue("http://example.com/page", frontier.BucketDefault)
	_, ok = f.Dequeue(nil)
	assert.False(t, ok)
	assert.True(t, f.Finished())
}

func TestCapacityIsEnforcedAtEnqueue(t *testing.T) {
	f := newFrontierForTest(2)

	f.Enqueue("http://example.com/1", frontier.BucketDefault)
	f.Enqueue("http://example.com/2", frontier.BucketDefault)
	f.Enqueue("http://example.com/3", frontier.BucketDefault)
	f.Enqueue("http://example.com/4", frontier.BucketDefault)
	f.Enqueue("http://example.com/5", frontier.BucketDefault)

	drained := drain(f, nil)
	assert.Len(t, drained, 3, "ceiling of 2 admits at most 3 URIs total")
}

func TestCapacityDropsAreRecorded(t *testing.T) {
	sink := &recordingSink{}
	f := frontier.NewCrawlFrontier(1, stubDirectory{}, uri.Options{}, sink)

	f.Enqueue("http://example.com/1", frontier.BucketDefault)
	f.Enqueue("http://example.com/2", frontier.BucketDefault)
	require.Empty(t, sink.causes, "admissions under the ceiling are not drops")

	f.Enqueue("http://example.com/3", frontier.BucketDefault)
	require.Len(t, sink.causes, 1)
	assert.Equal(t, metadata.CauseCapacityExhausted, sink.causes[0])
}

func TestSucceededRequiresA200(t *testing.T) {
	f := newFrontierForTest(10)
	assert.False(t, f.Succeeded())

	f.MarkIssued("http://example.com/bad", 500)
	assert.False(t, f.Succeeded())

	f.MarkIssued("http://example.com/good", 200)
	assert.True(t, f.Succeeded())
}

func TestInertFrontierDoesNothing(t *testing.T) {
	f := frontier.NewInertFrontier()

	f.Enqueue("http://example.com/page", frontier.BucketDefault)
	_, ok := f.Dequeue(nil)

	assert.False(t, ok)
	assert.True(t, f.Finished())
	assert.True(t, f.Full())
	assert.True(t, f.Succeeded())
}
