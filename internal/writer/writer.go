package writer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrFileWrite wraps every failure to persist a page
var ErrFileWrite = errors.New("file write failed")

const filePerm = 0o644

// FileWriter handles writing scraped pages into the output directory
type FileWriter struct {
	outputDir string
}

// New creates the output directory if it does not exist yet. Calling it on
// an existing directory is a no-op.
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// Dir returns the output directory
func (w *FileWriter) Dir() string {
	return w.outputDir
}

// Path returns where name is written
func (w *FileWriter) Path(name string) string {
	return filepath.Join(w.outputDir, name)
}

// WriteJSON encodes v indented by two spaces. HTML characters and non-ASCII
// text, U+2028 and U+2029 included, are written as-is.
func (w *FileWriter) WriteJSON(name string, v any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("%w: failed to encode %s: %v", ErrFileWrite, name, err)
	}
	// Encode appends a newline
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	return w.write(name, rawLineSeparators(data))
}

// rawLineSeparators undoes the \u2028 and \u2029 escapes encoding/json always
// emits. Escapes are walked pairwise so an escaped backslash followed by
// "u2028" stays as it is.
func rawLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && string(data[i+2:i+5]) == "202" &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// WriteText writes s verbatim
func (w *FileWriter) WriteText(name, s string) (string, error) {
	return w.write(name, []byte(s))
}

func (w *FileWriter) write(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := atomicWriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFileWrite, path, err)
	}
	return path, nil
}

// atomicWriteFile writes through a temp file in the same directory and
// renames it into place, so readers never see a partial file.
func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	committed = true
	return nil
}
