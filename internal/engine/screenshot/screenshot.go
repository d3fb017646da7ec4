// Package screenshot encodes rendered frames as PNG files and data URLs.
package screenshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// DataURLPrefix starts every data URL produced by DataURL.
const DataURLPrefix = "data:image/png;base64,"

// DataURL encodes img as a PNG data URL.
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL reverses DataURL.
func DecodeDataURL(url string) (image.Image, error) {
	if len(url) < len(DataURLPrefix) || url[:len(DataURLPrefix)] != DataURLPrefix {
		return nil, fmt.Errorf("not a PNG data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(url[len(DataURLPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}
	return img, nil
}

// FromBottomUp builds an image from RGBA rows ordered bottom to top, as
// returned by glReadPixels.
func FromBottomUp(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img, nil
}

// Saver writes screenshots to timestamped files.
type Saver struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewSaver creates a saver writing <prefix>_<timestamp>.png into outputDir.
func NewSaver(outputDir, prefix string) *Saver {
	return &Saver{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for screenshots.
func (s *Saver) SetOutputDir(dir string) {
	s.outputDir = dir
}

// Filename generates a screenshot filename without saving.
func (s *Saver) Filename() string {
	timestamp := s.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", s.prefix, timestamp)
	if s.outputDir != "" {
		filename = filepath.Join(s.outputDir, filename)
	}
	return filename
}

// Save writes img and returns the file path.
func (s *Saver) Save(img image.Image) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// SaveDataURL decodes a data URL and writes it like Save.
func (s *Saver) SaveDataURL(url string) (string, error) {
	img, err := DecodeDataURL(url)
	if err != nil {
		return "", err
	}
	return s.Save(img)
}
