package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamWritesEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)

	s, err := New(rec, req)
	require.NoError(t, err)
	require.NoError(t, s.Send("stock", map[string]int{"quantity": 3}))
	require.NoError(t, s.Comment("ping"))
	require.NoError(t, s.Send("stock", map[string]int{"quantity": 2}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Flushed)
	assert.Equal(t,
		"id: 1\nevent: stock\ndata: {\"quantity\":3}\n\n"+
			": ping\n\n"+
			"id: 2\nevent: stock\ndata: {\"quantity\":2}\n\n",
		rec.Body.String())
}

type noFlush struct{ http.ResponseWriter }

func TestStreamNeedsFlusher(t *testing.T) {
	w := noFlush{httptest.NewRecorder()}
	_, err := New(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSendRejectsUnmarshalable(t *testing.T) {
	s, err := New(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Error(t, s.Send("bad", make(chan int)))
}
