package models

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Progress struct {
	Downloaded int64
	Total      int64
	SpeedMBps  float64
	ETA        time.Duration
}

type ProgressFunc func(Progress)

// Downloader fetches and installs bundles. Installs are serialized; two
// concurrent downloads queue rather than trample the models root.
type Downloader struct {
	Client    *http.Client
	Retries   int
	RetryWait time.Duration

	mu sync.Mutex
}

func NewDownloader() *Downloader {
	return &Downloader{
		Client:    &http.Client{},
		Retries:   2,
		RetryWait: 500 * time.Millisecond,
	}
}

// Install downloads the bundle archive, verifies its checksum, extracts
// it and atomically swaps it into place. A previous install of the same
// bundle is kept as .bak until the new one is in place.
func (d *Downloader) Install(ctx context.Context, b Bundle, root string, onProgress ProgressFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp(root, b.Name+"-download-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, b.Name+".tar.gz")
	if err := d.fetchWithRetry(ctx, b.URL, archivePath, onProgress); err != nil {
		return err
	}
	if err := VerifyChecksum(archivePath, b.Checksum); err != nil {
		return err
	}

	extractDir := filepath.Join(tmpDir, "extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return err
	}
	if err := extractTarGz(archivePath, extractDir); err != nil {
		return err
	}
	if err := normalizeBundleDir(extractDir); err != nil {
		return err
	}

	finalPath := InstallPath(root, b.Name)
	backupPath := finalPath + ".bak"
	_ = os.RemoveAll(backupPath)
	if _, err := os.Stat(finalPath); err == nil {
		if err := os.Rename(finalPath, backupPath); err != nil {
			return err
		}
	}
	if err := os.Rename(extractDir, finalPath); err != nil {
		_ = os.Rename(backupPath, finalPath)
		return err
	}
	if err := os.WriteFile(filepath.Join(finalPath, ".checksum"), []byte(b.Checksum+"\n"), 0o644); err != nil {
		return err
	}
	_ = os.RemoveAll(backupPath)
	return nil
}

func (d *Downloader) fetchWithRetry(ctx context.Context, url, dest string, onProgress ProgressFunc) error {
	var lastErr error
	for attempt := 0; attempt <= d.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.RetryWait):
			}
		}
		lastErr = d.fetch(ctx, url, dest, onProgress)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("download failed after retries: %w", lastErr)
}

func (d *Downloader) fetch(ctx context.Context, url, dest string, onProgress ProgressFunc) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status %d", resp.StatusCode)
	}

	buf := make([]byte, 32*1024)
	start := time.Now()
	var downloaded int64
	total := resp.ContentLength
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(progressAt(downloaded, total, time.Since(start)))
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func progressAt(downloaded, total int64, elapsed time.Duration) Progress {
	p := Progress{Downloaded: downloaded, Total: total}
	secs := elapsed.Seconds()
	if secs > 0 {
		p.SpeedMBps = float64(downloaded) / secs / 1024 / 1024
	}
	if total > 0 && p.SpeedMBps > 0 {
		remainingMB := float64(total-downloaded) / 1024 / 1024
		p.ETA = time.Duration(remainingMB / p.SpeedMBps * float64(time.Second))
	}
	return p
}

func VerifyChecksum(file, expected string) error {
	if strings.TrimSpace(expected) == "" {
		return fmt.Errorf("checksum missing")
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	actual := "sha256:" + hex.EncodeToString(h.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// extractTarGz unpacks the archive, refusing entries that would escape
// the destination directory.
func extractTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		clean := strings.TrimPrefix(filepath.Clean(hdr.Name), "./")
		if clean == "." || strings.HasPrefix(clean, "../") {
			continue
		}
		target := filepath.Join(dest, clean)
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

// normalizeBundleDir accepts archives that either place the three bundle
// files at the top level or nest them one directory down, and leaves the
// required files at base either way.
func normalizeBundleDir(base string) error {
	candidates := []string{base}
	entries, _ := os.ReadDir(base)
	for _, e := range entries {
		if e.IsDir() {
			candidates = append(candidates, filepath.Join(base, e.Name()))
		}
	}
	for _, c := range candidates {
		complete := true
		for _, f := range requiredFiles {
			if _, err := os.Stat(filepath.Join(c, f)); err != nil {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		if c != base {
			for _, f := range requiredFiles {
				if err := os.Rename(filepath.Join(c, f), filepath.Join(base, f)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return fmt.Errorf("invalid bundle archive: missing required files")
}
