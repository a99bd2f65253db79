package auth

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// allowedImageTypes are the raster formats accepted for seller avatars
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageFile is an uploaded file before it is accepted
type ImageFile struct {
	Filename string
	Data     []byte
}

// Attachment is an accepted image and its preview handle
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Preview     string
}

// CheckImage applies the type and size constraints
func (p Policy) CheckImage(contentType string, size int64) error {
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("%w: %s (use JPG, PNG, GIF or WEBP)", ErrImageType, contentType)
	}
	if size > p.maxImageBytes() {
		return fmt.Errorf("%w: %d bytes, max %d", ErrImageTooLarge, size, p.maxImageBytes())
	}
	return nil
}

// SniffImageType detects the content type from the file bytes
func SniffImageType(data []byte) string {
	return http.DetectContentType(data)
}

// PreviewStore owns the preview resources created for attachments
type PreviewStore interface {
	Create(contentType string, data []byte) (string, error)
	Release(handle string)
}

// Preview is a stored preview image
type Preview struct {
	ContentType string
	Data        []byte
}

// MemoryPreviews keeps previews in memory until they are released
type MemoryPreviews struct {
	mu    sync.RWMutex
	items map[string]Preview
}

// NewMemoryPreviews creates an empty preview store
func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{items: make(map[string]Preview)}
}

// Create stores a preview and returns its handle
func (m *MemoryPreviews) Create(contentType string, data []byte) (string, error) {
	handle := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[handle] = Preview{ContentType: contentType, Data: data}
	return handle, nil
}

// Release drops a preview. Unknown handles are ignored.
func (m *MemoryPreviews) Release(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, handle)
}

// Get returns a live preview
func (m *MemoryPreviews) Get(handle string) (Preview, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[handle]
	return p, ok
}

// Live is the number of previews not yet released
func (m *MemoryPreviews) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
