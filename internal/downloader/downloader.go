// Package downloader fetches resolved packages into the compose tree.
package downloader

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Job represents a download job.
type Job struct {
	URL      string // http(s)://, file:// or a plain local path
	DestPath string
	Checksum string // "<algo>:<hex>"; empty skips verification
}

// Result represents a download result.
type Result struct {
	Job    Job
	Cached bool
	Error  error
}

// Downloader fetches packages in parallel.
type Downloader struct {
	workers int
	client  *http.Client
	log     *slog.Logger
}

// NewDownloader creates a new downloader with the specified number of workers.
func NewDownloader(workers int, logger *slog.Logger) *Downloader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Downloader{
		workers: workers,
		client:  &http.Client{},
		log:     logger,
	}
}

// Download runs all jobs and returns one result per job, in job order.
// A failed job does not stop the others; cancelling ctx does.
func (d *Downloader) Download(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, job := range jobs {
		g.Go(func() error {
			cached, err := d.downloadOne(ctx, job)
			results[i] = Result{Job: job, Cached: cached, Error: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Downloader) downloadOne(ctx context.Context, job Job) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := os.Stat(job.DestPath); err == nil {
		err := verify(job.DestPath, job.Checksum)
		if err == nil {
			d.log.Debug("Already present", "path", job.DestPath)
			return true, nil
		}
		d.log.Warn("Removing corrupt file", "path", job.DestPath, "error", err)
		if err := os.Remove(job.DestPath); err != nil {
			return false, zerr.With(zerr.Wrap(err, "removing corrupt file"), "path", job.DestPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.DestPath), 0755); err != nil {
		return false, zerr.Wrap(err, "creating directory")
	}

	tmpPath := job.DestPath + ".tmp"
	if err := d.fetch(ctx, job.URL, tmpPath); err != nil {
		os.Remove(tmpPath)
		return false, zerr.With(err, "url", job.URL)
	}
	if err := verify(tmpPath, job.Checksum); err != nil {
		os.Remove(tmpPath)
		return false, zerr.With(err, "url", job.URL)
	}
	if err := os.Rename(tmpPath, job.DestPath); err != nil {
		os.Remove(tmpPath)
		return false, zerr.Wrap(err, "renaming file")
	}

	d.log.Info("Downloaded", "path", job.DestPath)
	return false, nil
}

func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	if local, ok := localPath(url); ok {
		return copyFile(local, dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zerr.Wrap(err, "creating request")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return zerr.Wrap(err, "downloading")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zerr.With(zerr.New("unexpected HTTP status"), "status", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return zerr.Wrap(err, "creating file")
	}
	_, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return zerr.Wrap(err, "writing file")
	}
	return nil
}

func localPath(url string) (string, bool) {
	if p, ok := strings.CutPrefix(url, "file://"); ok {
		return p, true
	}
	if strings.Contains(url, "://") {
		return "", false
	}
	return url, true
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return zerr.Wrap(err, "opening local package")
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return zerr.Wrap(err, "creating file")
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return zerr.Wrap(err, "copying local package")
	}
	return nil
}
