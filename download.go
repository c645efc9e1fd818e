package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// archiveSource acquires an artifact by downloading a compressed archive
// over HTTP and unpacking it into the staging area.
type archiveSource struct {
	// ref is the artifact being provisioned. ref.Locator is the archive URL.
	ref ArtifactRef

	// httpClient is used for the download.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// Ensure archiveSource implements source.
var _ source = (*archiveSource)(nil)

// preflight is a no-op: archive downloads need nothing beyond the transport.
func (s *archiveSource) preflight(ctx context.Context, icfg *installConfig) error {
	return nil
}

// acquire downloads the archive to a temporary file inside the staging
// area, extracts it there, and deletes the archive file. All failures wrap
// ErrTransfer; partial state never leaves the staging area, so the caller's
// staging cleanup removes everything.
func (s *archiveSource) acquire(ctx context.Context, stage *stagingArea, icfg *installConfig) error {
	u, err := url.Parse(s.ref.Locator)
	if err != nil {
		return fmt.Errorf("%w: parsing URL %s: %v", ErrTransfer, s.ref.Locator, err)
	}
	archivePath := filepath.Join(stage.dir, path.Base(u.Path))

	if s.logger != nil {
		s.logger.Info("downloading archive", "url", s.ref.Locator)
	}
	if err := s.download(ctx, archivePath, icfg.progressFn); err != nil {
		// Remove the partially-written archive before the error propagates.
		os.Remove(archivePath)
		return err
	}

	onFile := func(name string) {
		if icfg.progressFn != nil {
			icfg.progressFn(InstallProgress{Phase: PhaseExtract, CurrentFile: name})
		}
	}
	if err := extractArchive(archivePath, stage.dir, onFile); err != nil {
		os.Remove(archivePath)
		return fmt.Errorf("%w: extracting %s: %v", ErrTransfer, path.Base(u.Path), err)
	}

	if err := os.Remove(archivePath); err != nil {
		return fmt.Errorf("%w: removing archive after extraction: %v", ErrTransfer, err)
	}

	return nil
}

// download retrieves the archive URL to dest, reporting byte progress.
func (s *archiveSource) download(ctx context.Context, dest string, progressFn func(InstallProgress)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ref.Locator, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrTransfer, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v", ErrTransfer, s.ref.Locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetching %s: status %d", ErrTransfer, s.ref.Locator, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: creating archive file: %v", ErrTransfer, err)
	}

	var reader io.Reader = resp.Body
	if progressFn != nil {
		total := resp.ContentLength
		var completed int64
		progressFn(InstallProgress{Phase: PhaseDownload, BytesTotal: total})
		reader = &progressReader{reader: resp.Body, onProgress: func(delta int64) {
			completed += delta
			progressFn(InstallProgress{Phase: PhaseDownload, BytesTotal: total, BytesCompleted: completed})
		}}
	}

	_, err = io.Copy(out, reader)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: downloading %s: %v", ErrTransfer, s.ref.Locator, err)
	}

	return nil
}

// progressReader wraps an io.Reader and reports progress as bytes are read.
type progressReader struct {
	reader     io.Reader
	onProgress func(delta int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 && pr.onProgress != nil {
		pr.onProgress(int64(n))
	}
	return
}
