package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// FileWriter writes rows to a JSONL file.
type FileWriter struct {
	f   *os.File
	enc *json.Encoder
}

// NewFileWriter creates (or truncates) path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &FileWriter{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends a row.
func (w *FileWriter) Write(row Row) error {
	return w.enc.Encode(row)
}

// Close closes the file.
func (w *FileWriter) Close() error {
	return w.f.Close()
}

// JSONWriter prints rows as JSON lines, to stdout by default.
type JSONWriter struct {
	out io.Writer
}

// NewJSONWriter creates a JSONWriter; nil out means os.Stdout.
func NewJSONWriter(out io.Writer) *JSONWriter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONWriter{out: out}
}

// Write prints one row.
func (w *JSONWriter) Write(row Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Replay decodes JSONL rows from r and writes each to w.
func Replay(r io.Reader, w Writer) (int, error) {
	dec := json.NewDecoder(r)
	n := 0
	for {
		var row Row
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, fmt.Errorf("decode row %d: %w", n+1, err)
		}
		if err := w.Write(row); err != nil {
			return n, err
		}
		n++
	}
}

// ReplayFile replays a JSONL file written by FileWriter.
func ReplayFile(path string, w Writer) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Replay(f, w)
}
