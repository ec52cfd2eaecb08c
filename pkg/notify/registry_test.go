package notify_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/notify"
)

type orderPlaced struct {
	Code  string
	Email string
	State string
	Total int64
}

type userSignedUp struct {
	Email string
}

type carriedEvent struct {
	Email string
	rc    notify.RequestContext
}

func (e carriedEvent) RequestContext() notify.RequestContext { return e.rc }

func orderDefinition(code string) notify.Definition[orderPlaced, notify.NoData] {
	return notify.On[orderPlaced](code).
		SetRecipient(func(p notify.Payload[orderPlaced, notify.NoData]) string { return p.Event.Email }).
		SetSubject("Order {{ .code }}").
		SetTemplateVars(func(p notify.Payload[orderPlaced, notify.NoData], _ map[string]any) map[string]any {
			return map[string]any{"code": p.Event.Code, "total": p.Event.Total}
		})
}

func TestRegistry_Dispatch_OneJobPerPassingDefinition(t *testing.T) {
	t.Parallel()

	settled := orderDefinition("order-settled").
		Filter(func(e orderPlaced) bool { return e.State == "PaymentSettled" })
	always := orderDefinition("order-any")
	other := notify.On[userSignedUp]("welcome").
		SetRecipient(func(p notify.Payload[userSignedUp, notify.NoData]) string { return p.Event.Email }).
		SetSubject("Welcome")

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(settled, always, other))

	jobs, err := reg.Dispatch(context.Background(), orderPlaced{
		Code:  "A1",
		Email: "alice@example.com",
		State: "PaymentSettled",
		Total: 2550,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "order-settled", jobs[0].Type)
	assert.Equal(t, "order-any", jobs[1].Type)
	assert.Equal(t, "alice@example.com", jobs[0].Recipient)
	assert.Equal(t, "order-settled", jobs[0].TemplateFile)
	assert.Equal(t, "A1", jobs[0].TemplateVars["code"])
}

func TestRegistry_Dispatch_FilterRejects(t *testing.T) {
	t.Parallel()

	var loaderCalls atomic.Int32
	def := notify.Define[orderPlaced, string]("order-settled").
		Filter(func(e orderPlaced) bool { return e.State == "PaymentSettled" }).
		LoadData(func(context.Context, orderPlaced) (string, error) {
			loaderCalls.Add(1)
			return "", nil
		}).
		SetRecipient(func(p notify.Payload[orderPlaced, string]) string { return p.Event.Email }).
		SetSubject("Order")

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(def))

	jobs, err := reg.Dispatch(context.Background(), orderPlaced{Email: "a@example.com", State: "Modifying"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, loaderCalls.Load())
}

func TestRegistry_Dispatch_FiltersShortCircuit(t *testing.T) {
	t.Parallel()

	var secondCalled atomic.Bool
	def := orderDefinition("order").
		Filter(func(orderPlaced) bool { return false }).
		Filter(func(orderPlaced) bool {
			secondCalled.Store(true)
			return true
		})

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(def))

	jobs, err := reg.Dispatch(context.Background(), orderPlaced{Email: "a@example.com"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.False(t, secondCalled.Load())
}

func TestRegistry_Dispatch_PointerEventMatchesValueDefinition(t *testing.T) {
	t.Parallel()

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(orderDefinition("order")))

	jobs, err := reg.Dispatch(context.Background(), &orderPlaced{Code: "P1", Email: "p@example.com"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "P1", jobs[0].TemplateVars["code"])
}

func TestRegistry_Dispatch_UnknownEventType(t *testing.T) {
	t.Parallel()

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(orderDefinition("order")))

	jobs, err := reg.Dispatch(context.Background(), userSignedUp{Email: "x@example.com"})
	require.NoError(t, err)
	assert.Empty(t, jobs)

	_, err = reg.Dispatch(context.Background(), nil)
	require.ErrorIs(t, err, notify.ErrNilEvent)
}

func TestRegistry_Dispatch_FailureIsolated(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("database unavailable")
	failing := notify.Define[orderPlaced, int]("order-failing").
		LoadData(func(context.Context, orderPlaced) (int, error) { return 0, loadErr }).
		SetRecipient(func(p notify.Payload[orderPlaced, int]) string { return p.Event.Email }).
		SetSubject("Failing")
	panicking := orderDefinition("order-panicking").
		SetRecipient(func(notify.Payload[orderPlaced, notify.NoData]) string { panic("boom") })
	healthy := orderDefinition("order-healthy")

	reg := notify.NewRegistry(notify.WithConcurrency(1))
	require.NoError(t, reg.Register(failing, panicking, healthy))

	jobs, err := reg.Dispatch(context.Background(), orderPlaced{Email: "a@example.com"})
	require.Error(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "order-healthy", jobs[0].Type)

	require.ErrorIs(t, err, loadErr)
	require.ErrorIs(t, err, notify.ErrPanic)

	var he *notify.HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "order-failing", he.Code)
	assert.Equal(t, notify.StageLoad, he.Stage)
}

func TestRegistry_Dispatch_EmptyRecipient(t *testing.T) {
	t.Parallel()

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(orderDefinition("order")))

	jobs, err := reg.Dispatch(context.Background(), orderPlaced{Email: "  "})
	require.ErrorIs(t, err, notify.ErrNoRecipient)
	assert.Empty(t, jobs)
}

func TestRegistry_Dispatch_TemplateVarLayers(t *testing.T) {
	t.Parallel()

	def := orderDefinition("order").
		SetTemplateVars(func(p notify.Payload[orderPlaced, notify.NoData], globals map[string]any) map[string]any {
			globals["leak"] = true
			return map[string]any{"shared": "handler", "code": p.Event.Code}
		})

	reg := notify.NewRegistry(
		notify.WithGlobalTemplateVars(map[string]any{"shared": "global", "fromAddress": "shop@example.com", "brand": "Shop"}),
		notify.WithCustomTemplateVars(map[string]any{"brand": "Custom"}),
	)
	require.NoError(t, reg.Register(def))

	jobs, err := reg.Dispatch(context.Background(), orderPlaced{Code: "C1", Email: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	vars := jobs[0].TemplateVars
	assert.Equal(t, "handler", vars["shared"])
	assert.Equal(t, "Custom", vars["brand"])
	assert.Equal(t, "shop@example.com", vars["fromAddress"])
	assert.NotContains(t, reg.TemplateVars(), "leak")
}

func TestRegistry_Dispatch_RequestContext(t *testing.T) {
	t.Parallel()

	t.Run("from context", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		require.NoError(t, reg.Register(orderDefinition("order")))

		ctx := notify.WithRequestContext(context.Background(), notify.RequestContext{Channel: "eu", LanguageCode: "de"})
		jobs, err := reg.Dispatch(ctx, orderPlaced{Email: "a@example.com"})
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		rc, err := jobs[0].RequestContext()
		require.NoError(t, err)
		assert.Equal(t, "eu", rc.Channel)
		assert.Equal(t, "de", rc.LanguageCode)
	})

	t.Run("carried by event wins", func(t *testing.T) {
		t.Parallel()

		def := notify.On[carriedEvent]("carried").
			SetRecipient(func(p notify.Payload[carriedEvent, notify.NoData]) string { return p.Event.Email }).
			SetSubject("Hi")
		reg := notify.NewRegistry()
		require.NoError(t, reg.Register(def))

		ctx := notify.WithRequestContext(context.Background(), notify.RequestContext{Channel: "ignored"})
		jobs, err := reg.Dispatch(ctx, carriedEvent{Email: "a@example.com", rc: notify.RequestContext{Channel: "us", LanguageCode: "en-US"}})
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		rc, err := jobs[0].RequestContext()
		require.NoError(t, err)
		assert.Equal(t, "us", rc.Channel)
	})

	t.Run("invalid language fails the definition", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		require.NoError(t, reg.Register(orderDefinition("order")))

		ctx := notify.WithRequestContext(context.Background(), notify.RequestContext{LanguageCode: "not a language"})
		_, err := reg.Dispatch(ctx, orderPlaced{Email: "a@example.com"})
		require.ErrorIs(t, err, notify.ErrInvalidContext)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("duplicate code", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		require.NoError(t, reg.Register(orderDefinition("order")))
		err := reg.Register(orderDefinition("other"), orderDefinition("order"))
		require.ErrorIs(t, err, notify.ErrDuplicateHandler)
		assert.Len(t, reg.Handlers(), 1)
	})

	t.Run("duplicate within one call", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		err := reg.Register(orderDefinition("order"), orderDefinition("order"))
		require.ErrorIs(t, err, notify.ErrDuplicateHandler)
		assert.Empty(t, reg.Handlers())
	})

	t.Run("incomplete definition", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		err := reg.Register(notify.On[orderPlaced]("order"))
		require.ErrorIs(t, err, notify.ErrIncompleteDefinition)
	})

	t.Run("lookup by code", func(t *testing.T) {
		t.Parallel()

		reg := notify.NewRegistry()
		require.NoError(t, reg.Register(orderDefinition("order")))
		h, ok := reg.Handler("order")
		require.True(t, ok)
		assert.Equal(t, "order", h.Code())
		_, ok = reg.Handler("missing")
		assert.False(t, ok)
	})
}

func TestRegistry_Preview(t *testing.T) {
	t.Parallel()

	withMock := orderDefinition("order").
		SetMockEvent(orderPlaced{Code: "MOCK", Email: "mock@example.com", State: "PaymentSettled"})
	rejecting := withMock.SetTemplateFile("other").
		Filter(func(e orderPlaced) bool { return e.State == "Shipped" })

	reg := notify.NewRegistry()
	require.NoError(t, reg.Register(withMock, orderDefinition("no-mock")))

	job, err := reg.Preview(context.Background(), "order")
	require.NoError(t, err)
	assert.Equal(t, "mock@example.com", job.Recipient)
	assert.Equal(t, "MOCK", job.TemplateVars["code"])

	_, err = reg.Preview(context.Background(), "no-mock")
	require.ErrorIs(t, err, notify.ErrNoMockEvent)

	_, err = reg.Preview(context.Background(), "missing")
	require.ErrorIs(t, err, notify.ErrUnknownHandler)

	other := notify.NewRegistry()
	require.NoError(t, other.Register(rejecting))
	_, err = other.Preview(context.Background(), "order")
	require.ErrorIs(t, err, notify.ErrFilterMismatch)
}
