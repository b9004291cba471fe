package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Slot is one of the four independent document upload targets.
type Slot string

const (
	SlotProfile     Slot = "profile"
	SlotAadharFront Slot = "aadharFront"
	SlotAadharBack  Slot = "aadharBack"
	SlotDrivingLic  Slot = "drivingLic"
)

// Slots lists every upload slot.
var Slots = []Slot{SlotProfile, SlotAadharFront, SlotAadharBack, SlotDrivingLic}

// Valid reports whether s names a known slot.
func (s Slot) Valid() bool {
	switch s {
	case SlotProfile, SlotAadharFront, SlotAadharBack, SlotDrivingLic:
		return true
	}
	return false
}

var (
	ErrFileTooLarge = errors.New("file exceeds upload limit")
	ErrNotImage     = errors.New("only image files are accepted")
	ErrEmptyFile    = errors.New("no file selected")
)

// FileHandle is a locally selected file that has not been uploaded yet.
type FileHandle struct {
	Name        string
	ContentType string
	data        []byte
}

// NewFileHandle wraps already buffered file contents. An empty content type
// is sniffed from the data.
func NewFileHandle(name, contentType string, data []byte) (*FileHandle, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s: %w", contentType, ErrNotImage)
	}
	return &FileHandle{Name: name, ContentType: contentType, data: data}, nil
}

// ReadFileHandle buffers at most limit bytes from r into a FileHandle.
func ReadFileHandle(name, contentType string, r io.Reader, limit int64) (*FileHandle, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	return NewFileHandle(name, contentType, data)
}

// Size returns the file length in bytes.
func (h *FileHandle) Size() int64 { return int64(len(h.data)) }

// Open returns a fresh reader over the file contents.
func (h *FileHandle) Open() io.Reader { return bytes.NewReader(h.data) }

// Bytes returns the file contents. Callers must not modify the slice.
func (h *FileHandle) Bytes() []byte { return h.data }
