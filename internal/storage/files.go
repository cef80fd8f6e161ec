package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileManager owns the scratch directory where uploaded PDFs live for the
// duration of a single request.
type FileManager struct {
	scratchDir     string
	maxUploadBytes int64
}

func NewFileManager(scratchDir string, maxUploadBytes int64) (*FileManager, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", scratchDir, err)
	}

	return &FileManager{
		scratchDir:     scratchDir,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// SaveScratchPDF writes the uploaded bytes to a uniquely-named scratch file
// and returns its path. The file is removed on any write failure or when the
// size limit is exceeded.
func (fm *FileManager) SaveScratchPDF(r io.Reader) (string, error) {
	path := filepath.Join(fm.scratchDir, fmt.Sprintf("%s.pdf", uuid.NewString()))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}

	cleanup := func(err error) (string, error) {
		out.Close()
		os.Remove(path)
		return "", err
	}

	total := int64(0)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if fm.maxUploadBytes > 0 && total > fm.maxUploadBytes {
				return cleanup(fmt.Errorf("uploaded file exceeds maximum size"))
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				return cleanup(fmt.Errorf("write scratch file: %w", werr))
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return cleanup(fmt.Errorf("read upload: %w", err))
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close scratch file: %w", err)
	}

	return path, nil
}

// Remove deletes a scratch file. Missing files are not an error; cleanup is
// best-effort and may race with a retry of the same path.
func (fm *FileManager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove scratch file: %w", err)
	}
	return nil
}

// ScratchDir returns the directory scratch files are written to.
func (fm *FileManager) ScratchDir() string {
	return fm.scratchDir
}
