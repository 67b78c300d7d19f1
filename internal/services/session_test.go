package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fi-advisor-backend/internal/models"
)

// recordingPublisher captures every event in publish order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) ofType(eventType string) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// blockingProvider holds every call until release is closed.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
	reply   string
	err     error
}

func newBlockingProvider(reply string, err error) *blockingProvider {
	return &blockingProvider{started: make(chan struct{}, 1), release: make(chan struct{}), reply: reply, err: err}
}

func (b *blockingProvider) Generate(ctx context.Context, _ string) (string, error) {
	b.started <- struct{}{}
	<-b.release
	return b.reply, b.err
}

type failingProvider struct{ err error }

func (f failingProvider) Generate(context.Context, string) (string, error) { return "", f.err }

func waitSettled(t *testing.T, ex *Exchange) models.Turn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	turn, err := ex.Wait(ctx)
	require.NoError(t, err, "exchange did not settle")
	return turn
}

func TestSession_SeededWithGreeting(t *testing.T) {
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0)})

	transcript := s.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, models.SenderAssistant, transcript[0].Sender)
	assert.Equal(t, GreetingText, transcript[0].Text)
	assert.Equal(t, models.KindInsight, transcript[0].Kind)
	assert.False(t, s.Pending())
}

func TestSession_EndToEndLocal(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0), Publisher: pub})

	ex, ok := s.Submit(context.Background(), "How's my net worth growing?")
	require.True(t, ok)
	reply := waitSettled(t, ex)

	transcript := s.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, GreetingText, transcript[0].Text)
	assert.Equal(t, models.SenderUser, transcript[1].Sender)
	assert.Equal(t, "How's my net worth growing?", transcript[1].Text)
	assert.Empty(t, transcript[1].Kind)
	assert.Equal(t, models.SenderAssistant, transcript[2].Sender)
	assert.Equal(t, netWorthReply, transcript[2].Text)
	assert.Equal(t, models.KindInsight, transcript[2].Kind)
	assert.Equal(t, transcript[2], reply)
	assert.Equal(t, transcript[1], ex.User())
	assert.NoError(t, ex.Err())
	assert.False(t, s.Pending())

	turns := pub.ofType(models.EventTurn)
	require.Len(t, turns, 2)
	assert.Equal(t, models.SenderUser, turns[0].Payload.(models.Turn).Sender, "user turn is published first")
	assert.Equal(t, models.SenderAssistant, turns[1].Payload.(models.Turn).Sender)
	assert.Empty(t, pub.ofType(models.EventToast))

	typing := pub.ofType(models.EventTyping)
	require.Len(t, typing, 2)
	assert.True(t, typing[0].Payload.(models.TypingState).Pending)
	assert.False(t, typing[1].Payload.(models.TypingState).Pending)
}

func TestSession_BlankInputIsNoop(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0), Publisher: pub})

	for _, text := range []string{"", "   ", "\n\t"} {
		ex, ok := s.Submit(context.Background(), text)
		assert.False(t, ok)
		assert.Nil(t, ex)
	}
	assert.Len(t, s.Transcript(), 1)
	assert.False(t, s.Pending())
	assert.Empty(t, pub.events)
}

func TestSession_BusyIsNoop(t *testing.T) {
	provider := newBlockingProvider("done", nil)
	s := NewSession(uuid.New(), SessionOptions{Provider: provider})

	ex, ok := s.Submit(context.Background(), "first question")
	require.True(t, ok)
	<-provider.started

	assert.True(t, s.Pending())
	before := s.Transcript()
	require.Len(t, before, 2)

	second, ok := s.Submit(context.Background(), "second question")
	assert.False(t, ok)
	assert.Nil(t, second)
	assert.Equal(t, before, s.Transcript(), "transcript unchanged while pending")
	assert.True(t, s.Pending(), "pending unchanged while pending")

	close(provider.release)
	waitSettled(t, ex)

	assert.False(t, s.Pending())
	assert.Len(t, s.Transcript(), 3)

	// retry is possible immediately after settling
	provider.release = make(chan struct{})
	close(provider.release)
	ex, ok = s.Submit(context.Background(), "third question")
	require.True(t, ok)
	waitSettled(t, ex)
	assert.Len(t, s.Transcript(), 5)
}

func TestSession_UpstreamFailure(t *testing.T) {
	pub := &recordingPublisher{}
	upstream := &UpstreamError{StatusCode: 503, Reason: "overloaded"}
	s := NewSession(uuid.New(), SessionOptions{Provider: failingProvider{err: upstream}, Publisher: pub})

	ex, ok := s.Submit(context.Background(), "Can I afford a ₹50L home loan?")
	require.True(t, ok)
	reply := waitSettled(t, ex)

	assert.Equal(t, ApologyText, reply.Text)
	assert.Equal(t, models.SenderAssistant, reply.Sender)
	assert.Equal(t, models.KindInsight, reply.Kind)
	assert.ErrorAs(t, ex.Err(), &upstream)

	transcript := s.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, "Can I afford a ₹50L home loan?", transcript[1].Text, "user input is kept")
	assert.False(t, s.Pending())

	toasts := pub.ofType(models.EventToast)
	require.Len(t, toasts, 1, "exactly one notification")
	n := toasts[0].Payload.(models.Notification)
	assert.Equal(t, models.SeverityError, n.Severity)
	assert.Equal(t, "AI Response Failed", n.Title)
}

func TestSession_MissingCredentialFailure(t *testing.T) {
	pub := &recordingPublisher{}
	provider := NewGeminiProvider("http://127.0.0.1:0", &stubCredentials{}, nil)
	s := NewSession(uuid.New(), SessionOptions{Provider: provider, Publisher: pub})

	ex, ok := s.Submit(context.Background(), "hello")
	require.True(t, ok)
	reply := waitSettled(t, ex)

	assert.Equal(t, ApologyText, reply.Text)
	assert.ErrorIs(t, ex.Err(), ErrMissingCredential)

	toasts := pub.ofType(models.EventToast)
	require.Len(t, toasts, 1)
	assert.Equal(t, "API Key Required", toasts[0].Payload.(models.Notification).Title)
}

func TestSession_SubmitOutlivesCallerContext(t *testing.T) {
	provider := newBlockingProvider("still answered", nil)
	s := NewSession(uuid.New(), SessionOptions{Provider: provider})

	ctx, cancel := context.WithCancel(context.Background())
	ex, ok := s.Submit(ctx, "question")
	require.True(t, ok)
	<-provider.started
	cancel()
	close(provider.release)

	reply := waitSettled(t, ex)
	assert.Equal(t, "still answered", reply.Text)
}

type ctxProvider struct{}

func (ctxProvider) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", &UpstreamError{Reason: "request failed", Err: ctx.Err()}
}

func TestSession_Timeout(t *testing.T) {
	s := NewSession(uuid.New(), SessionOptions{Provider: ctxProvider{}, Timeout: 10 * time.Millisecond})

	ex, ok := s.Submit(context.Background(), "slow question")
	require.True(t, ok)
	reply := waitSettled(t, ex)

	assert.Equal(t, ApologyText, reply.Text)
	assert.True(t, errors.Is(ex.Err(), context.DeadlineExceeded))
	assert.False(t, s.Pending())
}

func TestSession_SelectSuggestionOnlyTouchesInput(t *testing.T) {
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0)})
	before := s.Transcript()

	for i := 0; i < 3; i++ {
		s.SelectSuggestion("How much money will I have at 40?")
	}
	assert.Equal(t, "How much money will I have at 40?", s.Input())

	s.SelectSuggestion("Which SIPs underperformed the market?")
	assert.Equal(t, "Which SIPs underperformed the market?", s.Input(), "next call overwrites")

	assert.Equal(t, before, s.Transcript())
	assert.False(t, s.Pending())
}

func TestSession_SubmitInputUsesAndClearsBuffer(t *testing.T) {
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0)})

	_, ok := s.SubmitInput(context.Background())
	assert.False(t, ok, "empty buffer is a no-op")

	s.SelectSuggestion("Which SIPs underperformed the market?")
	ex, ok := s.SubmitInput(context.Background())
	require.True(t, ok)
	assert.Empty(t, s.Input())

	reply := waitSettled(t, ex)
	assert.Equal(t, sipReply, reply.Text)
	assert.Equal(t, "Which SIPs underperformed the market?", ex.User().Text)
}

func TestSession_CreatedAtNeverDecreases(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	ticks := []time.Time{base, base, base.Add(time.Second), base.Add(-time.Hour), base.Add(-time.Hour), base.Add(-time.Hour)}
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		if len(ticks) == 0 {
			return base.Add(-2 * time.Hour)
		}
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}

	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0), Clock: clock})
	for _, q := range []string{"one", "two"} {
		ex, ok := s.Submit(context.Background(), q)
		require.True(t, ok)
		waitSettled(t, ex)
	}

	transcript := s.Transcript()
	require.Len(t, transcript, 5)
	for i := 1; i < len(transcript); i++ {
		assert.False(t, transcript[i].CreatedAt.Before(transcript[i-1].CreatedAt), "turn %d went backwards", i)
	}
	ids := map[string]bool{}
	for _, turn := range transcript {
		assert.False(t, ids[turn.ID], "duplicate id")
		ids[turn.ID] = true
	}
}

func TestSession_StateSnapshotIsCopy(t *testing.T) {
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0)})
	state := s.State()
	state.Transcript[0].Text = "mutated"

	assert.Equal(t, GreetingText, s.Transcript()[0].Text)
	assert.Equal(t, s.ID().String(), state.ID)
}

func TestSession_PublishErrorsDoNotAffectTranscript(t *testing.T) {
	pub := PublisherFunc(func(context.Context, uuid.UUID, models.Event) error {
		return errors.New("hub offline")
	})
	s := NewSession(uuid.New(), SessionOptions{Provider: NewLocalAdvisor(0), Publisher: pub})

	ex, ok := s.Submit(context.Background(), "banana")
	require.True(t, ok)
	reply := waitSettled(t, ex)
	assert.Equal(t, fallbackReply, reply.Text)
	assert.Len(t, s.Transcript(), 3)
}
