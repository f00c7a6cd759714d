// Package gzipio wraps klauspost/compress/gzip for the Decompress read
// option and ".gz" auto-unwrapping described in §6.3/§6.4.
package gzipio

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Reader wraps r in a gzip decompressor when gzipped is true, otherwise
// returns r unchanged. The caller is responsible for closing the returned
// io.Reader if it implements io.Closer (the gzip case does).
func Reader(r io.Reader, gzipped bool) (io.Reader, error) {
	if !gzipped {
		return r, nil
	}
	return gzip.NewReader(r)
}

// Writer wraps w in a gzip compressor when gzipped is true, otherwise
// returns w unchanged wrapped in a no-op closer. The caller must always
// Close the returned writer to flush any buffered compressed output.
func Writer(w io.Writer, gzipped bool) io.WriteCloser {
	if !gzipped {
		return nopWriteCloser{w}
	}
	return gzip.NewWriter(w)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
