package provision

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// archiveSuffix returns the recognized archive suffix of a path, or "".
func archiveSuffix(p string) string {
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(p, suffix) {
			return suffix
		}
	}
	return ""
}

// extractArchive unpacks an archive into destDir, dispatching on the
// archive suffix. If all entries share a single top-level directory it is
// stripped, so destDir itself becomes the artifact root. onFile, if
// non-nil, is called with each file path as it is written.
func extractArchive(archivePath, destDir string, onFile func(string)) error {
	switch archiveSuffix(archivePath) {
	case ".zip":
		return extractZip(archivePath, destDir, onFile)
	case ".tar.gz", ".tgz":
		return extractTarGz(archivePath, destDir, onFile)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

// extractZip unpacks a zip archive into destDir.
func extractZip(archivePath, destDir string, onFile func(string)) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	root := sharedRoot(names)

	for _, f := range zr.File {
		rel := stripRoot(f.Name, root)
		if rel == "" {
			continue
		}

		target, err := securePath(destDir, rel)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", rel, err)
			}
			continue
		}

		if onFile != nil {
			onFile(rel)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading entry %s: %w", rel, err)
		}
		err = writeEntry(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}

	return nil
}

// extractTarGz unpacks a gzip-compressed tar archive into destDir.
// The archive is read twice: once to determine the shared root, once to
// extract.
func extractTarGz(archivePath, destDir string, onFile func(string)) error {
	names, err := tarGzNames(archivePath)
	if err != nil {
		return err
	}
	root := sharedRoot(names)

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		if hdr.Typeflag != tar.TypeDir && hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel := stripRoot(hdr.Name, root)
		if rel == "" {
			continue
		}

		target, err := securePath(destDir, rel)
		if err != nil {
			return err
		}

		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", rel, err)
			}
			continue
		}

		if onFile != nil {
			onFile(rel)
		}
		if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}
}

// tarGzNames lists the dir and regular-file entry names in a tar.gz archive.
func tarGzNames(archivePath string) ([]string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			// Normalize so sharedRoot can tell directories from files.
			names = append(names, strings.TrimSuffix(hdr.Name, "/")+"/")
		case tar.TypeReg:
			names = append(names, hdr.Name)
		}
	}
}

// writeEntry writes one archive entry to disk, creating parent directories
// as needed.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// sharedRoot returns the top-level directory shared by every entry name,
// or "" if the entries do not all live under one directory.
func sharedRoot(names []string) string {
	root := ""
	for _, name := range names {
		trimmed := strings.TrimSuffix(name, "/")
		if trimmed == "" {
			continue
		}
		first, _, _ := strings.Cut(trimmed, "/")
		if first == "." || first == ".." {
			// Never treat a relative component as a strippable root;
			// securePath rejects these entries instead.
			return ""
		}
		if root == "" {
			root = first
		} else if first != root {
			return ""
		}
	}
	// A lone file entry is its own first component; nothing to strip.
	for _, name := range names {
		if name == root {
			return ""
		}
	}
	return root
}

// stripRoot removes the shared root directory from an entry name.
// Returns "" for the root directory entry itself.
func stripRoot(name, root string) string {
	name = strings.TrimSuffix(name, "/")
	if root == "" {
		return name
	}
	if name == root {
		return ""
	}
	return strings.TrimPrefix(name, root+"/")
}

// securePath joins an archive entry path onto destDir, rejecting entries
// that would escape it.
func securePath(destDir, rel string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(rel))
	if target != filepath.Clean(destDir) && !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", rel)
	}
	return target, nil
}
