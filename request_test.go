package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutcas3/api-docs-tui/internal/apidoc"
)

func TestBuildRequest_SubstitutesEnvironment(t *testing.T) {
	cm, err := NewConfigManager(t.TempDir())
	require.NoError(t, err)

	doc := &apidoc.Document{BaseURL: "{{BASE_URL}}/"}
	ep := apidoc.Endpoint{
		ID:      "create-pet",
		Method:  "POST",
		Path:    "/pets",
		Headers: map[string]string{"Authorization": "Bearer {{API_KEY}}"},
		Body:    `{"key": "{{API_KEY}}"}`,
	}

	req := buildRequest(doc, ep, cm)
	assert.Equal(t, "http://localhost:3000/pets", req.URL)
	assert.Equal(t, "Bearer dev-key-123", req.Headers["Authorization"])
	assert.Equal(t, `{"key": "dev-key-123"}`, req.Body)
	assert.Equal(t, "create-pet", req.EndpointID)
	assert.Equal(t, "POST /pets", req.Name)
}

func TestBuildRequest_DefaultsToGET(t *testing.T) {
	req := buildRequest(&apidoc.Document{BaseURL: "http://h"}, apidoc.Endpoint{Path: "/x"}, nil)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "http://h/x", req.URL)
}

func TestDoRequest(t *testing.T) {
	type seen struct{ body, auth string }
	got := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- seen{body: string(b), auth: r.Header.Get("Authorization")}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	resp := doRequest(srv.Client(), RequestItem{
		EndpointID: "get-pet",
		Method:     "POST",
		URL:        srv.URL + "/pets/9",
		Headers:    map[string]string{"Authorization": "Bearer t"},
		Body:       `{"a":1}`,
	}, true)

	require.NoError(t, resp.Error)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "404", resp.StatusKey())
	assert.Equal(t, "get-pet", resp.EndpointID)
	req := <-got
	assert.Equal(t, `{"a":1}`, req.body)
	assert.Equal(t, "Bearer t", req.auth)
	assert.Equal(t, "{\n  \"error\": \"not found\"\n}", resp.FormattedBody)
}

func TestDoRequest_NoBodyForGET(t *testing.T) {
	gotLen := make(chan int64, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLen <- r.ContentLength
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp := doRequest(srv.Client(), RequestItem{Method: "GET", URL: srv.URL, Body: "ignored"}, true)
	require.NoError(t, resp.Error)
	assert.Equal(t, int64(0), <-gotLen)
	assert.Equal(t, "ok", resp.FormattedBody)
}

func TestDoRequest_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	resp := doRequest(http.DefaultClient, RequestItem{Method: "GET", URL: url}, true)
	assert.Error(t, resp.Error)
	assert.Equal(t, "", resp.StatusKey())
}

func TestDecodeBody(t *testing.T) {
	t.Run("utf-8 passes through", func(t *testing.T) {
		assert.Equal(t, "héllo", decodeBody([]byte("héllo"), "text/plain; charset=utf-8"))
	})

	t.Run("declared latin-1", func(t *testing.T) {
		assert.Equal(t, "héllo", decodeBody([]byte{'h', 0xe9, 'l', 'l', 'o'}, "text/plain; charset=iso-8859-1"))
	})

	t.Run("invalid utf-8 is guessed", func(t *testing.T) {
		assert.Equal(t, "héllo", decodeBody([]byte{'h', 0xe9, 'l', 'l', 'o'}, "text/plain"))
	})
}
