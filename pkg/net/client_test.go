package net

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPClient(t *testing.T) {
	client := GetHTTPClient(time.Second)
	require.NotNil(t, client)
	assert.Equal(t, time.Second, client.Timeout)
}

func TestGetBearerClient_SendsToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := GetBearerClient(context.Background(), "test-token", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.Timeout)

	var out map[string]any
	require.NoError(t, PostJSON(context.Background(), client, srv.URL, map[string]string{}, &out))
	assert.Equal(t, "Bearer test-token", got)
}

func TestGetBearerClient_NoToken(t *testing.T) {
	client := GetBearerClient(context.Background(), "", time.Second)
	assert.Same(t, reqTransport, client.Transport)
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["inputs"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := PostJSON(context.Background(), GetHTTPClient(time.Second), srv.URL, map[string]string{"inputs": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is loading"}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := PostJSON(context.Background(), GetHTTPClient(time.Second), srv.URL, nil, &out)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Contains(t, se.Body, "Model is loading")
}

func TestPostJSON_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := PostJSON(context.Background(), GetHTTPClient(time.Second), srv.URL, nil, &out)
	assert.Error(t, err)
}

func TestPrintHTTPResponse_Nil(t *testing.T) {
	// should not panic
	PrintHTTPResponse(nil)
}

func TestPrintHTTPResponse_WithResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
		Body:       http.NoBody,
	}
	// should not panic
	PrintHTTPResponse(resp)
}
