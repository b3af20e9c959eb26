package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	MIMEOctetStream    = "application/octet-stream"
	mimeDetectionBytes = 512 // http.DetectContentType reads at most 512 bytes
)

// DetectContentType sniffs the MIME type from data without parameters.
// Empty input is reported as application/octet-stream.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return MIMEOctetStream
	}
	return normalizeMIME(http.DetectContentType(data))
}

// prepareBody turns r into a seekable body and reports its content type and size.
// S3 needs a known content length, so non-seekable readers are buffered.
func prepareBody(r io.Reader, size int64, contentType string) (io.ReadSeeker, string, int64, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, "", 0, errors.Join(ErrReadFailed, err)
		}
		rs = bytes.NewReader(data)
	}

	if size < 0 {
		end, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, "", 0, errors.Join(ErrReadFailed, err)
		}
		size = end
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, "", 0, errors.Join(ErrReadFailed, err)
		}
	}

	if contentType == "" {
		head := make([]byte, mimeDetectionBytes)
		n, err := io.ReadFull(rs, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, "", 0, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		contentType = DetectContentType(head[:n])
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, "", 0, errors.Join(ErrReadFailed, err)
		}
	}

	return rs, contentType, size, nil
}

func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(strings.ToLower(mimeType))
}
