package gmailapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// fakeGmail serves canned responses on the generated client's URL layout.
type fakeGmail struct {
	t        *testing.T
	handlers map[string]http.HandlerFunc
	requests []*http.Request
}

func newFakeGmail(t *testing.T) *fakeGmail {
	return &fakeGmail{t: t, handlers: make(map[string]http.HandlerFunc)}
}

func (f *fakeGmail) handle(pathSuffix string, h http.HandlerFunc) {
	f.handlers[pathSuffix] = h
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests = append(f.requests, r)
	for suffix, h := range f.handlers {
		if strings.HasSuffix(r.URL.Path, suffix) {
			h(w, r)
			return
		}
	}
	f.t.Errorf("unexpected request path %s", r.URL.Path)
	w.WriteHeader(http.StatusNotFound)
}

func newTestClient(t *testing.T, fake *fakeGmail) (Client, func()) {
	t.Helper()
	srv := httptest.NewServer(fake)

	service, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return NewClient(service), srv.Close
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": message},
	})
}

func TestListMessages_ClampsMaxResults(t *testing.T) {
	fake := newFakeGmail(t)
	fake.handle("/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &gmail.ListMessagesResponse{ResultSizeEstimate: 0})
	})

	client, done := newTestClient(t, fake)
	defer done()

	_, err := client.ListMessages(context.Background(), 9999, "")
	require.NoError(t, err)
	assert.Equal(t, "500", fake.requests[0].URL.Query().Get("maxResults"))

	_, err = client.ListMessages(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, "1", fake.requests[1].URL.Query().Get("maxResults"))
}

func TestListMessages_PageToken(t *testing.T) {
	fake := newFakeGmail(t)
	fake.handle("/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &gmail.ListMessagesResponse{
			Messages:      []*gmail.Message{{Id: "m1"}},
			NextPageToken: "next-token",
		})
	})

	client, done := newTestClient(t, fake)
	defer done()

	resp, err := client.ListMessages(context.Background(), 100, "prev-token")
	require.NoError(t, err)
	assert.Equal(t, "prev-token", fake.requests[0].URL.Query().Get("pageToken"))
	assert.Equal(t, "next-token", resp.NextPageToken)
	require.Len(t, resp.Messages, 1)

	// No token on the first page
	_, err = client.ListMessages(context.Background(), 100, "")
	require.NoError(t, err)
	assert.Empty(t, fake.requests[1].URL.Query().Get("pageToken"))
}

func TestGetMessage_FullFormat(t *testing.T) {
	fake := newFakeGmail(t)
	fake.handle("/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &gmail.Message{Id: "m1", Snippet: "hello"})
	})

	client, done := newTestClient(t, fake)
	defer done()

	msg, err := client.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.Id)
	assert.Equal(t, "full", fake.requests[0].URL.Query().Get("format"))
}

func TestGetMessage_NotFound(t *testing.T) {
	fake := newFakeGmail(t)
	fake.handle("/messages/gone", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "Not Found")
	})

	client, done := newTestClient(t, fake)
	defer done()

	_, err := client.GetMessage(context.Background(), "gone")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
	assert.Contains(t, err.Error(), "gone")
}

func TestGetMessage_RetriesOnRateLimit(t *testing.T) {
	fake := newFakeGmail(t)
	calls := 0
	fake.handle("/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeAPIError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		writeJSON(w, &gmail.Message{Id: "m1"})
	})

	client, done := newTestClient(t, fake)
	defer done()

	msg, err := client.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.Id)
	assert.Equal(t, 2, calls)
}

func TestGetMessage_GivesUpAfterPersistentRateLimit(t *testing.T) {
	fake := newFakeGmail(t)
	calls := 0
	fake.handle("/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeAPIError(w, http.StatusTooManyRequests, "Rate limit exceeded")
	})

	client, done := newTestClient(t, fake)
	defer done()

	_, err := client.GetMessage(context.Background(), "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, maxGetAttempts, calls)
}

func TestGetMessage_ServerErrorIsNotRetried(t *testing.T) {
	fake := newFakeGmail(t)
	calls := 0
	fake.handle("/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeAPIError(w, http.StatusInternalServerError, "backend error")
	})

	client, done := newTestClient(t, fake)
	defer done()

	_, err := client.GetMessage(context.Background(), "m1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrMessageNotFound)
	assert.Equal(t, 1, calls)
}

func TestGetProfile(t *testing.T) {
	fake := newFakeGmail(t)
	fake.handle("/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &gmail.Profile{EmailAddress: "user@example.com", MessagesTotal: 1200})
	})

	client, done := newTestClient(t, fake)
	defer done()

	profile, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", profile.EmailAddress)
	assert.Equal(t, int64(1200), profile.MessagesTotal)
}

func TestListLabels(t *testing.T) {
	fake := newFakeGmail(t)
	fake.handle("/labels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &gmail.ListLabelsResponse{
			Labels: []*gmail.Label{
				{Id: "INBOX", Name: "Inbox"},
				{Id: "SPAM", Name: "Spam"},
			},
		})
	})

	client, done := newTestClient(t, fake)
	defer done()

	labels, err := client.ListLabels(context.Background())
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "INBOX", labels[0].Id)
}
