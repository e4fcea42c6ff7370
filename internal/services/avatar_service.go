package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

const (
	// DefaultAvatarSize is the bounding box uploaded avatars are fitted into.
	DefaultAvatarSize = 125
	avatarJPEGQuality = 90
	avatarURLPrefix   = "/static/image/"
	maxAvatarBytes    = 10 << 20
	maxAvatarPixels   = 40_000_000
)

// ErrInvalidImage is returned when an upload cannot be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// AvatarUpload is a profile picture as received from the form.
type AvatarUpload struct {
	Filename string
	Content  io.Reader
}

// AvatarService stores downscaled profile pictures in the static directory.
type AvatarService struct {
	dir     string
	maxSize int
}

// NewAvatarService stores avatars under <staticDir>/image.
func NewAvatarService(staticDir string, maxSize int) *AvatarService {
	if maxSize <= 0 {
		maxSize = DefaultAvatarSize
	}
	return &AvatarService{
		dir:     filepath.Join(staticDir, "image"),
		maxSize: maxSize,
	}
}

// Dir is the directory avatar files are written to.
func (s *AvatarService) Dir() string {
	return s.dir
}

// URL is the public path of an avatar file.
func (s *AvatarService) URL(filename string) string {
	return avatarURLPrefix + filename
}

// AllowedExtension returns the lower-cased extension of filename and whether
// it is one of jpg, jpeg or png.
func AllowedExtension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return ext, true
	default:
		return ext, false
	}
}

// RandomFilename returns 16 random hex characters followed by ext.
func RandomFilename(ext string) string {
	id := uuid.New()
	return fmt.Sprintf("%x%s", id[:8], ext)
}

// Save decodes the upload, fits it into the bounding box and writes it under a
// fresh random name that keeps the original extension. It returns that name.
func (s *AvatarService) Save(upload AvatarUpload) (string, error) {
	ext, ok := AllowedExtension(upload.Filename)
	if !ok {
		return "", fmt.Errorf("%w: extension %q not allowed", ErrInvalidImage, ext)
	}

	content, err := io.ReadAll(io.LimitReader(upload.Content, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) > maxAvatarBytes {
		return "", fmt.Errorf("%w: file too large", ErrInvalidImage)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxAvatarPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds the pixel limit", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	thumb := Thumbnail(src, s.maxSize, s.maxSize)

	name := RandomFilename(ext)
	if err := s.write(name, thumb); err != nil {
		return "", err
	}
	return name, nil
}

// EnsurePlaceholder writes a neutral placeholder avatar under name if no file
// exists there yet, so the default avatar always resolves.
func (s *AvatarService) EnsurePlaceholder(name string) error {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat placeholder avatar: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, s.maxSize, s.maxSize))
	gray := color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: gray}, image.Point{}, xdraw.Src)
	return s.write(name, img)
}

func (s *AvatarService) write(name string, img image.Image) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create avatar directory: %w", err)
	}

	var buf bytes.Buffer
	var err error
	if strings.ToLower(filepath.Ext(name)) == ".png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: avatarJPEGQuality})
	}
	if err != nil {
		return fmt.Errorf("failed to encode avatar: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o640); err != nil {
		return fmt.Errorf("failed to write avatar: %w", err)
	}
	return nil
}

// Thumbnail scales src down to fit within maxWidth x maxHeight, keeping its
// aspect ratio. Images that already fit are returned unchanged.
func Thumbnail(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := math.Min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := clampDim(int(math.Round(float64(w)*scale)), maxWidth)
	newH := clampDim(int(math.Round(float64(h)*scale)), maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func clampDim(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
