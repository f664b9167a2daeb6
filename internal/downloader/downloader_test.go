package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/gather/internal/rpm"
)

func sum(data string) string {
	h := sha256.Sum256([]byte(data))
	return "sha256:" + hex.EncodeToString(h[:])
}

func TestDownloader_Download_SingleFile(t *testing.T) {
	content := "package payload"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "Packages", "bash-5.1-1.x86_64.rpm")
	results := NewDownloader(2, nil).Download(context.Background(), []Job{{
		URL:      server.URL + "/bash.rpm",
		DestPath: destPath,
		Checksum: sum(content),
	}})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Error)
	assert.False(t, results[0].Cached)

	data, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.NoFileExists(t, destPath+".tmp")
}

func TestDownloader_Download_Cached(t *testing.T) {
	destPath := filepath.Join(t.TempDir(), "cached.rpm")
	require.NoError(t, os.WriteFile(destPath, []byte("cached"), 0644))

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("new content"))
	}))
	defer server.Close()

	results := NewDownloader(1, nil).Download(context.Background(), []Job{{
		URL:      server.URL + "/cached.rpm",
		DestPath: destPath,
		Checksum: sum("cached"),
	}})

	require.NoError(t, results[0].Error)
	assert.True(t, results[0].Cached)
	assert.Zero(t, requests.Load())
}

func TestDownloader_Download_ReplacesCorruptFile(t *testing.T) {
	destPath := filepath.Join(t.TempDir(), "corrupt.rpm")
	require.NoError(t, os.WriteFile(destPath, []byte("truncated"), 0644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("complete"))
	}))
	defer server.Close()

	results := NewDownloader(1, nil).Download(context.Background(), []Job{{
		URL:      server.URL + "/corrupt.rpm",
		DestPath: destPath,
		Checksum: sum("complete"),
	}})

	require.NoError(t, results[0].Error)
	data, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, "complete", string(data))
}

func TestDownloader_Download_ChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered"))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "bad.rpm")
	results := NewDownloader(1, nil).Download(context.Background(), []Job{{
		URL:      server.URL + "/bad.rpm",
		DestPath: destPath,
		Checksum: sum("original"),
	}})

	assert.ErrorContains(t, results[0].Error, "checksum mismatch")
	assert.NoFileExists(t, destPath)
	assert.NoFileExists(t, destPath+".tmp")
}

func TestDownloader_Download_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	results := NewDownloader(1, nil).Download(context.Background(), []Job{{
		URL:      server.URL + "/missing.rpm",
		DestPath: filepath.Join(t.TempDir(), "missing.rpm"),
	}})

	assert.Error(t, results[0].Error)
}

func TestDownloader_Download_Parallel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.rpm" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("content for " + r.URL.Path))
	}))
	defer server.Close()

	dir := t.TempDir()
	jobs := []Job{
		{URL: server.URL + "/a.rpm", DestPath: filepath.Join(dir, "a.rpm")},
		{URL: server.URL + "/broken.rpm", DestPath: filepath.Join(dir, "broken.rpm")},
		{URL: server.URL + "/b.rpm", DestPath: filepath.Join(dir, "b.rpm")},
		{URL: server.URL + "/c.rpm", DestPath: filepath.Join(dir, "c.rpm")},
	}

	results := NewDownloader(3, nil).Download(context.Background(), jobs)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job)
		if i == 1 {
			assert.Error(t, r.Error)
			continue
		}
		assert.NoError(t, r.Error)
		assert.FileExists(t, r.Job.DestPath)
	}
}

func TestDownloader_Download_LocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "local.rpm")
	require.NoError(t, os.WriteFile(src, []byte("local"), 0644))
	dir := t.TempDir()

	results := NewDownloader(2, nil).Download(context.Background(), []Job{
		{URL: "file://" + src, DestPath: filepath.Join(dir, "one.rpm"), Checksum: sum("local")},
		{URL: src, DestPath: filepath.Join(dir, "two.rpm")},
	})

	for _, r := range results {
		require.NoError(t, r.Error)
		data, err := os.ReadFile(r.Job.DestPath)
		require.NoError(t, err)
		assert.Equal(t, "local", string(data))
	}
}

func TestDownloader_Download_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewDownloader(1, nil).Download(ctx, []Job{{
		URL:      "http://127.0.0.1:1/never.rpm",
		DestPath: filepath.Join(t.TempDir(), "never.rpm"),
	}})

	assert.ErrorIs(t, results[0].Error, context.Canceled)
}

func TestLayout(t *testing.T) {
	l := NewLayout("/srv/compose", "40", "Server", "x86_64")

	assert.Equal(t, "/srv/compose/40/Server/x86_64/os/Packages", l.PackagesDir())
	assert.Equal(t, "/srv/compose/40/Server/x86_64/debug", l.DebugDir())
	assert.Equal(t, "/srv/compose/40/Server/source/SRPMS", l.SourceDir())
}

func TestJobs(t *testing.T) {
	pkgs := []*rpm.Package{
		{Name: "bash", Version: "5.1", Release: "1", Arch: "x86_64", Location: "Packages/b/bash-5.1-1.x86_64.rpm", Checksum: "sha256:abc"},
		{Name: "acl", Version: "2.3", Release: "1", Arch: "x86_64"},
	}
	url := func(p *rpm.Package) (string, error) {
		return "http://mirror/" + p.Name, nil
	}

	jobs, err := Jobs(pkgs, "/tree/Packages", url)
	require.NoError(t, err)
	assert.Equal(t, []Job{
		{URL: "http://mirror/bash", DestPath: "/tree/Packages/bash-5.1-1.x86_64.rpm", Checksum: "sha256:abc"},
		{URL: "http://mirror/acl", DestPath: "/tree/Packages/acl-2.3-1.x86_64.rpm"},
	}, jobs)
}
