// Package cache implements the optional entry cache of spec §4.C: a
// length-prefixed append-only file that lets a collection run resume from
// a frozen snapshot of raw directory entries instead of re-querying the
// controller.
package cache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/huskyhound/nonehound/internal/directory"
)

// Dir returns the on-disk cache directory for domain, per spec §6:
// .nonehound-cache/<domain>/.
func Dir(root, domain string) string {
	return filepath.Join(root, ".nonehound-cache", domain)
}

// Path returns the fixed cache filename within Dir.
func Path(root, domain string) string {
	return filepath.Join(Dir(root, domain), "ldap.bin")
}

// record is the self-describing on-disk shape of a cached entry, gob-encoded
// so the writer and reader never need to agree on a schema out of band.
type record struct {
	DN       string
	Attrs    map[string][]string
	BinAttrs map[string][][]byte
}

func toRecord(e directory.Entry) record {
	return record{DN: e.DN, Attrs: e.Attrs, BinAttrs: e.BinAttrs}
}

func (r record) toEntry() directory.Entry {
	return directory.Entry{DN: r.DN, Attrs: r.Attrs, BinAttrs: r.BinAttrs}
}

// Writer buffers entries in memory and drains them to the cache file once
// the buffer reaches capacity, per spec §4.C.
type Writer struct {
	f        *os.File
	buf      *bufio.Writer
	pending  []directory.Entry
	capacity int
}

// NewWriter creates (or truncates) the cache file at path, creating parent
// directories as needed, with an in-memory buffer of the given capacity.
func NewWriter(path string, capacity int) (*Writer, error) {
	if capacity <= 0 {
		capacity = 1000
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating cache file")
	}
	return &Writer{
		f:        f,
		buf:      bufio.NewWriter(f),
		pending:  make([]directory.Entry, 0, capacity),
		capacity: capacity,
	}, nil
}

// Add places an entry into the in-memory buffer, draining to disk when the
// buffer reaches capacity.
func (w *Writer) Add(e directory.Entry) error {
	w.pending = append(w.pending, e)
	if len(w.pending) >= w.capacity {
		return w.drain()
	}
	return nil
}

func (w *Writer) drain() error {
	for _, e := range w.pending {
		if err := w.writeOne(e); err != nil {
			return err
		}
	}
	w.pending = w.pending[:0]
	return nil
}

func (w *Writer) writeOne(e directory.Entry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toRecord(e)); err != nil {
		return errors.Wrap(err, "encoding cache record")
	}
	payload := buf.Bytes()

	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(len(payload)))
	if _, err := w.buf.Write(lenPrefix[:]); err != nil {
		return errors.Wrap(err, "writing cache record length")
	}
	if _, err := w.buf.Write(payload); err != nil {
		return errors.Wrap(err, "writing cache record payload")
	}
	return nil
}

// Flush drains the in-memory buffer and flushes the underlying bufio.Writer
// to the file, without closing it.
func (w *Writer) Flush() error {
	if err := w.drain(); err != nil {
		return err
	}
	return errors.Wrap(w.buf.Flush(), "flushing cache buffer")
}

// Finish flushes any residual buffer and closes the cache file.
func (w *Writer) Finish() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return errors.Wrap(w.f.Close(), "closing cache file")
}

// PartialRecordError indicates the cache file ended mid-record: the writer
// was interrupted before Finish completed. Resuming from such a file is not
// supported; the caller should discard it and re-run the search.
type PartialRecordError struct{}

func (PartialRecordError) Error() string { return "cache: truncated trailing record" }
func (PartialRecordError) Terminal() bool { return true }

// Reader iterates a cache file lazily, decoding one record at a time.
type Reader struct {
	f   *os.File
	buf *bufio.Reader
}

// NewReader opens the cache file at path for sequential reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening cache file")
	}
	return &Reader{f: f, buf: bufio.NewReader(f)}, nil
}

// Next returns the next entry in the file, io.EOF when the file is
// exhausted cleanly, or PartialRecordError when it ends mid-record.
func (r *Reader) Next() (directory.Entry, error) {
	var lenPrefix [4]byte
	n, err := io.ReadFull(r.buf, lenPrefix[:])
	if err == io.EOF && n == 0 {
		return directory.Entry{}, io.EOF
	}
	if err != nil {
		return directory.Entry{}, PartialRecordError{}
	}

	length := binary.LittleEndian.Uint32(lenPrefix[:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r.buf, payload); err != nil {
		return directory.Entry{}, PartialRecordError{}
	}

	var rec record
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&rec); err != nil {
		return directory.Entry{}, errors.Wrap(err, "decoding cache record")
	}
	return rec.toEntry(), nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
