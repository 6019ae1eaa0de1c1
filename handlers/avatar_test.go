package handlers

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProcessAvatar_CropsAndScales(t *testing.T) {
	data, err := ProcessAvatar(bytes.NewReader(encodeTestPNG(t, 500, 300)))
	if err != nil {
		t.Fatalf("ProcessAvatar returned error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Result is not a valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != AvatarSize || bounds.Dy() != AvatarSize {
		t.Errorf("Expected %dx%d avatar, got %dx%d", AvatarSize, AvatarSize, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessAvatar_UpscalesSmallImages(t *testing.T) {
	data, err := ProcessAvatar(bytes.NewReader(encodeTestPNG(t, 20, 40)))
	if err != nil {
		t.Fatalf("ProcessAvatar returned error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Result is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != AvatarSize || img.Bounds().Dy() != AvatarSize {
		t.Errorf("Small images should scale up to %d pixels", AvatarSize)
	}
}

func TestProcessAvatar_RejectsNonImage(t *testing.T) {
	if _, err := ProcessAvatar(bytes.NewReader([]byte("definitely not an image"))); err == nil {
		t.Error("Expected error for non-image input")
	}
}

func TestAvatarStore_Put(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore returned error: %v", err)
	}

	payload := encodeTestPNG(t, 10, 10)
	url, err := store.Put(payload)
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if !strings.HasPrefix(url, "/avatars/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("Expected /avatars/<name>.png URL, got %q", url)
	}

	stored, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(url, "/avatars/")))
	if err != nil {
		t.Fatalf("Stored file missing: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Error("Stored file does not match the processed payload")
	}
}

func TestAvatarStore_SaveProcessesUpload(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore returned error: %v", err)
	}

	url, err := store.Save(bytes.NewReader(encodeTestPNG(t, 600, 600)))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	stored, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(url, "/avatars/")))
	if err != nil {
		t.Fatalf("Stored file missing: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("Stored avatar is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != AvatarSize {
		t.Errorf("Stored avatar should be %d pixels wide, got %d", AvatarSize, img.Bounds().Dx())
	}
}

func TestAvatarStore_UniqueNames(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore returned error: %v", err)
	}

	payload := encodeTestPNG(t, 10, 10)
	first, _ := store.Put(payload)
	second, _ := store.Put(payload)
	if first == second {
		t.Errorf("Consecutive uploads must not collide, both got %q", first)
	}
}

func TestAvatarStore_Remove(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore returned error: %v", err)
	}

	url, err := store.Put(encodeTestPNG(t, 10, 10))
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	store.Remove(url)

	if _, err := os.Stat(filepath.Join(store.Dir(), strings.TrimPrefix(url, "/avatars/"))); !os.IsNotExist(err) {
		t.Error("Expected stored file to be removed")
	}

	// External URLs such as Gravatar defaults are ignored
	store.Remove("https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0")
	store.Remove("")
}

func TestGravatarURL(t *testing.T) {
	want := "https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0"

	if got := GravatarURL("test@example.com"); got != want {
		t.Errorf("GravatarURL = %q, want %q", got, want)
	}
	// Gravatar hashes the trimmed, lowercased address
	if got := GravatarURL("  Test@Example.COM  "); got != want {
		t.Errorf("GravatarURL with mixed case = %q, want %q", got, want)
	}
}
