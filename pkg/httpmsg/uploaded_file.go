package httpmsg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Upload status codes, matching the multipart upload results a transport
// can report.
const (
	UploadOK = iota
	UploadErrIniSize
	UploadErrFormSize
	UploadErrPartial
	UploadErrNoFile
	_
	UploadErrNoTmpDir
	UploadErrCantWrite
	UploadErrExtension
)

// UploadedFile is a file received through a multipart request.
type UploadedFile struct {
	stream    *Stream
	size      int64
	errorCode int
	filename  string
	mediaType string
	moved     bool
}

// NewUploadedFile wraps an uploaded file's content.
func NewUploadedFile(stream *Stream, size int64, errorCode int, filename, mediaType string) *UploadedFile {
	return &UploadedFile{
		stream:    stream,
		size:      size,
		errorCode: errorCode,
		filename:  filename,
		mediaType: mediaType,
	}
}

func (f *UploadedFile) Size() int64             { return f.size }
func (f *UploadedFile) Error() int              { return f.errorCode }
func (f *UploadedFile) ClientFilename() string  { return f.filename }
func (f *UploadedFile) ClientMediaType() string { return f.mediaType }

// Stream returns the file content. It fails once the file has been moved.
func (f *UploadedFile) Stream() (*Stream, error) {
	if f.moved {
		return nil, ErrFileMoved
	}
	if f.stream == nil {
		return nil, ErrStreamDetached
	}
	return f.stream, nil
}

// MoveTo writes the content to path and closes the source stream. A file
// can be moved once.
func (f *UploadedFile) MoveTo(path string) error {
	src, err := f.Stream()
	if err != nil {
		return err
	}
	if src.IsSeekable() {
		if err := src.Rewind(); err != nil {
			return err
		}
	}

	dst, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("httpmsg: create upload target: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("httpmsg: write upload target: %w", err)
	}
	f.moved = true
	return src.Close()
}
