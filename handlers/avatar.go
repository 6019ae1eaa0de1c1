package handlers

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	_ "image/gif"  // GIF decode support
	_ "image/jpeg" // JPEG decode support
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decode support
)

// AvatarSize is the edge length of stored avatar images in pixels
const AvatarSize = 250

// AvatarStore writes processed avatar images under the data root
type AvatarStore struct {
	root string
}

// NewAvatarStore creates the avatar directory under dataRoot
func NewAvatarStore(dataRoot string) (*AvatarStore, error) {
	dir := filepath.Join(dataRoot, "avatars")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &AvatarStore{root: dir}, nil
}

// Dir returns the directory served under /avatars
func (s *AvatarStore) Dir() string {
	return s.root
}

// Save processes an uploaded image and stores it as a square PNG.
// Returns the public URL path of the stored file.
func (s *AvatarStore) Save(r io.Reader) (string, error) {
	data, err := ProcessAvatar(r)
	if err != nil {
		return "", err
	}
	return s.Put(data)
}

// Put stores an already processed avatar and returns its public URL path
func (s *AvatarStore) Put(data []byte) (string, error) {
	name := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	return "/avatars/" + name, nil
}

// Remove deletes a stored avatar by its public URL path. External URLs such
// as Gravatar defaults are ignored.
func (s *AvatarStore) Remove(url string) {
	name := strings.TrimPrefix(url, "/avatars/")
	if name == "" || name == url || strings.Contains(name, "/") {
		return
	}
	_ = os.Remove(filepath.Join(s.root, name))
}

// ProcessAvatar decodes an image, crops it to a centered square and scales
// it to AvatarSize
func ProcessAvatar(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	x0 := bounds.Min.X + (bounds.Dx()-side)/2
	y0 := bounds.Min.Y + (bounds.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}

// GravatarURL returns the Gravatar image URL for an email address
func GravatarURL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", hash)
}
