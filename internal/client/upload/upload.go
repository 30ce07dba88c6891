// Package upload prepares user-selected images for multipart submission.
//
// Files at or below Limits.MaxBytes pass through byte for byte. Larger images
// are downscaled and re-encoded in their own format until they fit within
// Limits.MaxSizeMB; the file name and MIME type are always kept. A failure
// returns common.ErrCompressionFailed and leaves the caller's File untouched.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/webp"
)

// File is one selected file.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (f File) Size() int64 { return int64(len(f.Data)) }

// Limits configures when and how hard to compress.
type Limits struct {
	// MaxBytes is the pass-through threshold.
	MaxBytes int64
	// MaxSizeMB is the target size after compression, in MiB.
	MaxSizeMB float64
	// MaxWidthOrHeight bounds the longest side after compression.
	MaxWidthOrHeight int
	// UseWorker runs compression off the calling goroutine.
	UseWorker bool
}

func DefaultLimits() Limits {
	return Limits{
		MaxBytes:         400 << 10,
		MaxSizeMB:        0.4,
		MaxWidthOrHeight: 1920,
		UseWorker:        true,
	}
}

// TargetBytes is the size compressed output must not exceed.
func (l Limits) TargetBytes() int64 {
	return int64(l.MaxSizeMB * (1 << 20))
}

const (
	minSide    = 16
	scaleStep  = 0.8
	jpegStartQ = 90
	jpegMinQ   = 40
	jpegQStep  = 10
)

// Prepare returns f unchanged when small enough, otherwise a recompressed
// copy with the same name and MIME type.
func Prepare(ctx context.Context, f File, l Limits) (File, error) {
	if f.Size() <= l.MaxBytes {
		return f, nil
	}

	if !l.UseWorker {
		return compress(ctx, f, l)
	}

	type result struct {
		f   File
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := compress(ctx, f, l)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		return File{}, fmt.Errorf("%w: %s: %w", common.ErrCompressionFailed, f.Name, ctx.Err())
	case r := <-done:
		return r.f, r.err
	}
}

// PrepareMany prepares a multi-file selection. It rejects more than maxFiles
// files (maxFiles <= 0 means no bound) and returns either every file or none.
func PrepareMany(ctx context.Context, files []File, l Limits, maxFiles int) ([]File, error) {
	if maxFiles > 0 && len(files) > maxFiles {
		return nil, fmt.Errorf("%w: you can upload at most %d images, got %d",
			common.ErrTooManyFiles, maxFiles, len(files))
	}

	out := make([]File, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if l.UseWorker {
		g.SetLimit(runtime.NumCPU())
	} else {
		g.SetLimit(1)
	}

	for i, f := range files {
		g.Go(func() error {
			p, err := Prepare(gctx, f, l)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func compress(ctx context.Context, f File, l Limits) (File, error) {
	out, err := shrink(ctx, f, l)
	if err != nil {
		return File{}, fmt.Errorf("%w: %s: %w", common.ErrCompressionFailed, f.Name, err)
	}
	return File{Name: f.Name, MIMEType: f.MIMEType, Data: out}, nil
}

var errTooLarge = errors.New("cannot reach target size")

func shrink(ctx context.Context, f File, l Limits) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	target := l.TargetBytes()
	if target <= 0 {
		return nil, errors.New("target size must be positive")
	}

	img = fit(img, l.MaxWidthOrHeight)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := encodeUnder(img, format, target)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, errTooLarge) {
			return nil, err
		}

		b := img.Bounds()
		w, h := int(float64(b.Dx())*scaleStep), int(float64(b.Dy())*scaleStep)
		if w < minSide || h < minSide {
			return nil, errTooLarge
		}
		img = resize(img, w, h)
	}
}

// encodeUnder encodes img in format, trying lower JPEG qualities first.
func encodeUnder(img image.Image, format string, target int64) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg":
		for q := jpegStartQ; q >= jpegMinQ; q -= jpegQStep {
			buf.Reset()
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
				return nil, err
			}
			if int64(buf.Len()) <= target {
				return buf.Bytes(), nil
			}
		}
		return nil, errTooLarge
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot re-encode %s images", format)
	}

	if int64(buf.Len()) > target {
		return nil, errTooLarge
	}
	return buf.Bytes(), nil
}

// fit scales img down so its longest side is at most maxSide.
func fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	if w >= h {
		return resize(img, maxSide, max(1, h*maxSide/w))
	}
	return resize(img, max(1, w*maxSide/h), maxSide)
}

func resize(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Info describes an image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// Probe reads the image header of f.
func Probe(f File) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return Info{}, fmt.Errorf("%s: not a supported image: %w", f.Name, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ReadFile loads a file from disk, taking the MIME type from the extension
// or, failing that, from the content.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	return File{Name: filepath.Base(path), MIMEType: mt, Data: data}, nil
}
