package export

// Writer receives progress rows.
type Writer interface {
	Write(row Row) error
}

type batchWriter interface {
	WriteBatch(rows []Row) error
}

// MultiWriter fans rows out to several writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a row to all writers.
func (mw *MultiWriter) Write(row Row) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends rows to all writers, using batch writes where supported.
func (mw *MultiWriter) WriteBatch(rows []Row) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteAll writes rows to w, batching when w supports it.
func WriteAll(w Writer, rows []Row) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
