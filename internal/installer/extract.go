package installer

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/huskerr"
)

// extractTarball decompresses and untars data into dir, stripping one
// leading path component (registry tarballs canonically contain a single
// top-level "package/" directory whose contents must become dir's
// contents), per spec.md §4.7 step 7. Grounded on the teacher's
// commands/utils-git.go subprocess-invocation pattern, generalized from
// shelling out to git into an in-process library call, since tar/gzip
// (unlike git) have convenient Go APIs.
func extractTarball(data []byte, dir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return huskerr.New(huskerr.KindExtraction, errors.Wrap(err, "failed to open gzip stream"))
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return huskerr.New(huskerr.KindExtraction, errors.Wrap(err, "failed to read tar entry"))
		}

		relPath := stripFirstComponent(hdr.Name)
		if relPath == "" {
			continue
		}
		destPath := filepath.Join(dir, relPath)
		if !withinDir(dir, destPath) {
			return huskerr.New(huskerr.KindExtraction, errors.Errorf("tar entry %q escapes destination directory", hdr.Name))
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return huskerr.New(huskerr.KindExtraction, errors.Wrapf(err, "failed to create directory %s", destPath))
			}
		case tar.TypeReg:
			if err := extractFile(tr, destPath, hdr); err != nil {
				return err
			}
		default:
			// Symlinks and other special entries are not expected from
			// registry tarballs' "package/" layout; skip rather than fail.
		}
	}
	return nil
}

func extractFile(tr *tar.Reader, destPath string, hdr *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return huskerr.New(huskerr.KindExtraction, errors.Wrapf(err, "failed to create directory for %s", destPath))
	}
	mode := os.FileMode(hdr.Mode)
	if mode == 0 {
		mode = 0644
	}
	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return huskerr.New(huskerr.KindExtraction, errors.Wrapf(err, "failed to create file %s", destPath))
	}
	defer f.Close()
	if _, err := io.Copy(f, tr); err != nil {
		return huskerr.New(huskerr.KindExtraction, errors.Wrapf(err, "failed to write file %s", destPath))
	}
	return nil
}

// stripFirstComponent removes the leading "package/" (or whatever the
// tarball's single top-level directory is named) from a tar entry path.
func stripFirstComponent(name string) string {
	name = strings.TrimPrefix(name, "./")
	idx := strings.Index(name, "/")
	if idx == -1 {
		return ""
	}
	return name[idx+1:]
}

// withinDir guards against path traversal from a malicious tar entry
// (e.g. "../../etc/passwd").
func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
