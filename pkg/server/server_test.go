package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfletcher/docstore/pkg/storage"
)

func TestServerRoutesRequests(t *testing.T) {
	srv := NewServer()
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("unknown routes are 404", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServerPersistenceAcrossRestarts(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "srv"+storage.FileExtension)

	srv := NewServer(storage.WithDataFile(dataFile))
	ts := httptest.NewServer(srv.Router())

	resp, err := http.Post(ts.URL+"/collections/users", "application/json",
		strings.NewReader(`{"_id": "1", "name": "Alice"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	srv.SaveDB(dataFile)
	ts.Close()

	restarted := NewServer(storage.WithDataFile(dataFile))
	restarted.InitDB(dataFile)
	ts2 := httptest.NewServer(restarted.Router())
	defer ts2.Close()

	resp, err = http.Get(ts2.URL + "/collections/users/documents/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInitDBWithMissingFileIsQuiet(t *testing.T) {
	srv := NewServer()
	srv.InitDB(filepath.Join(t.TempDir(), "absent.docs"))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
