package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:5000")

	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected baseURL=http://localhost:5000, got %s", c.baseURL)
	}
	if c.httpClient == nil {
		t.Error("httpClient is nil")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/")
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected trailing slash trimmed, got %s", c.baseURL)
	}
}

func TestHealthcheck_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" {
			t.Errorf("expected path /healthcheck, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestHealthcheck_ServerDown(t *testing.T) {
	c := New("http://localhost:59999") // unlikely to be listening
	if err := c.Healthcheck(context.Background()); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestListPins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/pins", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `[{"id":1,"name":"Site A","x":10,"y":20},{"id":2,"name":"Site B","x":30,"y":40}]`)
	}))
	defer server.Close()

	pins, err := New(server.URL).ListPins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Pin{
		{ID: 1, Name: "Site A", X: 10, Y: 20},
		{ID: 2, Name: "Site B", X: 30, Y: 40},
	}, pins)
}

func TestListPins_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	pins, err := New(server.URL).ListPins(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pins)
	assert.Empty(t, pins)
}

func TestListPins_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL).ListPins(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestCreatePin_Success(t *testing.T) {
	var received core.CreatePinRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = io.WriteString(w, `{"ok":true,"pin":{"id":3,"name":"Pin 3","x":500,"y":1200}}`)
	}))
	defer server.Close()

	pin, err := New(server.URL).CreatePin(context.Background(), 500, 1200)
	require.NoError(t, err)

	assert.Equal(t, core.CreatePinRequest{X: 500, Y: 1200}, received)
	assert.Equal(t, core.Pin{ID: 3, Name: "Pin 3", X: 500, Y: 1200}, pin)
}

func TestCreatePin_NotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":false}`)
	}))
	defer server.Close()

	_, err := New(server.URL).CreatePin(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestCreatePin_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer server.Close()

	_, err := New(server.URL).CreatePin(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestCreatePin_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url).CreatePin(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "create", apiErr.Op)
	assert.Equal(t, 0, apiErr.Status)
}

func TestRenamePin_Success(t *testing.T) {
	var received core.RenamePinRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/pins/7", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	err := New(server.URL).RenamePin(context.Background(), 7, "Site Alpha")
	require.NoError(t, err)
	assert.Equal(t, "Site Alpha", received.Name)
}

func TestRenamePin_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok":false,"error":"Pin not found"}`)
	}))
	defer server.Close()

	err := New(server.URL).RenamePin(context.Background(), 7, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Pin not found", apiErr.Message())
	assert.Contains(t, err.Error(), "status 404")
}

func TestError_MessagePlainText(t *testing.T) {
	e := &Error{Op: "rename", Kind: ErrRejected, Status: 502, Body: "Bad Gateway\n"}
	assert.Equal(t, "Bad Gateway", e.Message())
	assert.Equal(t, "rename pin: server rejected request (status 502): Bad Gateway", e.Error())
}
