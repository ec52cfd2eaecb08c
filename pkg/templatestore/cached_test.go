package templatestore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/templatestore"
)

type countingStore struct {
	templatestore.Store
	templates atomic.Int32
	partials  atomic.Int32
	delay     time.Duration
}

func (c *countingStore) Template(ctx context.Context, ref templatestore.Ref) (string, error) {
	c.templates.Add(1)
	time.Sleep(c.delay)
	return c.Store.Template(ctx, ref)
}

func (c *countingStore) Partials(ctx context.Context) ([]mailer.Partial, error) {
	c.partials.Add(1)
	return c.Store.Partials(ctx)
}

func newCounting(t *testing.T) (*countingStore, *templatestore.Memory) {
	t.Helper()

	m := templatestore.NewMemory()
	require.NoError(t, m.PutTemplate(templatestore.Template{Name: "welcome", Language: "en", Body: "hello"}))
	require.NoError(t, m.PutPartial(templatestore.Partial{Name: "footer", Language: "en", Body: "bye"}))
	require.NoError(t, m.PutPartial(templatestore.Partial{Name: "footer", Language: "de", Body: "tschüss"}))
	return &countingStore{Store: m}, m
}

func TestCached_Template(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next, mem := newCounting(t)
	store := templatestore.NewCached(next, templatestore.NewMemoryCache(100), time.Minute)

	for range 3 {
		body, err := store.Template(ctx, templatestore.Ref{Name: "welcome", Language: "en"})
		require.NoError(t, err)
		assert.Equal(t, "hello", body)
	}
	assert.Equal(t, int32(1), next.templates.Load())

	// Missing templates are looked up every time.
	for range 2 {
		_, err := store.Template(ctx, templatestore.Ref{Name: "missing"})
		require.ErrorIs(t, err, templatestore.ErrNotFound)
	}
	assert.Equal(t, int32(3), next.templates.Load())

	require.NoError(t, mem.PutTemplate(templatestore.Template{Name: "welcome", Language: "en", Body: "hello v2"}))
	body, err := store.Template(ctx, templatestore.Ref{Name: "welcome", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "hello", body, "stale until invalidated")

	require.NoError(t, store.Invalidate(ctx))
	body, err = store.Template(ctx, templatestore.Ref{Name: "welcome", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "hello v2", body)
}

func TestCached_ConcurrentMissesHitStoreOnce(t *testing.T) {
	t.Parallel()

	next, _ := newCounting(t)
	next.delay = 50 * time.Millisecond
	store := templatestore.NewCached(next, templatestore.NewMemoryCache(100), 0)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Template(context.Background(), templatestore.Ref{Name: "welcome"})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, next.templates.Load(), int32(2))
}

func TestCached_PartialsFollowRequestContext(t *testing.T) {
	t.Parallel()

	next, _ := newCounting(t)
	store := templatestore.NewCached(next, templatestore.NewMemoryCache(100), time.Minute)

	de := notify.WithRequestContext(context.Background(), notify.RequestContext{LanguageCode: "de"})
	got, err := store.Partials(de)
	require.NoError(t, err)
	assert.Equal(t, []mailer.Partial{{Name: "footer", Body: "tschüss"}}, got)

	got, err = store.Partials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []mailer.Partial{{Name: "footer", Body: "bye"}}, got)
}

func TestCached_EditedPartialVisibleOnNextRender(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next, mem := newCounting(t)
	store := templatestore.NewCached(next, templatestore.NewMemoryCache(100), time.Hour)
	gen := mailer.NewTemplateGenerator(mailer.WithPartials(store))
	require.NoError(t, gen.OnInit(ctx))

	out, err := gen.Generate(ctx, "", "s", `{{ template "footer" . }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "bye", out.HTML)

	require.NoError(t, mem.PutPartial(templatestore.Partial{Name: "footer", Language: "en", Body: "see you"}))

	out, err = gen.Generate(ctx, "", "s", `{{ template "footer" . }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "see you", out.HTML)
	assert.Equal(t, int32(3), next.partials.Load())
}
