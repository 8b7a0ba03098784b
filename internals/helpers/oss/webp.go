package helper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

/* =======================================================================
   WebP options
======================================================================= */

// WebPOptions: TargetKB 0 means a single encode at Quality; otherwise
// quality is binary-searched between MinQ and MaxQ and the image shrunk by
// ScaleStep down to MinW x MinH until it fits.
type WebPOptions struct {
	MaxW        int
	MaxH        int
	TargetKB    int
	Quality     float32
	MinQ        float32
	MaxQ        float32
	ToleranceKB int
	MinW        int
	MinH        int
	ScaleStep   float32
}

func DefaultWebPOptions() WebPOptions {
	return WebPOptions{
		MaxW:        1600,
		MaxH:        1600,
		TargetKB:    0,
		Quality:     80,
		MinQ:        45,
		MaxQ:        85,
		ToleranceKB: 8,
		MinW:        480,
		MinH:        480,
		ScaleStep:   0.85,
	}
}

// IsWebPConvertible: jpeg, png and webp are re-encoded; everything else is stored as-is.
func IsWebPConvertible(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}

// ConvertToWebP: decode → resize (optional) → encode webp
func ConvertToWebP(all []byte, filename string, opts WebPOptions) ([]byte, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	img, err := decodeImage(all, filename)
	if err != nil {
		return nil, err
	}
	img = downscaleIfNeeded(img, opts.MaxW, opts.MaxH)
	return encodeToWebP(img, opts)
}

/* =======================================================================
   Decode (jpeg/png/webp), EXIF orientation applied
======================================================================= */

func decodeImage(all []byte, filename string) (image.Image, error) {
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	if !IsWebPConvertible(ct) && !IsWebPConvertible(mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
	}
	img, err := imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

/* =======================================================================
   Resize (keep aspect, CatmullRom)
======================================================================= */

func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	if maxW <= 0 {
		maxW = w
	}
	if maxH <= 0 {
		maxH = h
	}
	return imaging.Fit(src, maxW, maxH, imaging.CatmullRom)
}

func scaleTo(src image.Image, nw, nh int) image.Image {
	return imaging.Resize(src, max(nw, 1), max(nh, 1), imaging.CatmullRom)
}

/* =======================================================================
   Encode WebP
   - TargetKB > 0 → binary search quality until <= target+tol, then shrink
   - TargetKB = 0 → encode once with Quality
======================================================================= */

func encodeToWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	encodeQ := func(im image.Image, q float32) ([]byte, error) {
		buf := new(bytes.Buffer)
		if err := webp.Encode(buf, im, &webp.Options{Lossless: false, Quality: q}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if opt.TargetKB <= 0 {
		q := opt.Quality
		if q <= 0 {
			q = 80
		}
		return encodeQ(img, q)
	}

	target := opt.TargetKB * 1024
	tol := opt.ToleranceKB * 1024
	if tol <= 0 {
		tol = 8 * 1024
	}
	minQ, maxQ := opt.MinQ, opt.MaxQ
	if minQ <= 0 {
		minQ = 45
	}
	if maxQ <= 0 {
		maxQ = 85
	}
	if minQ > maxQ {
		minQ, maxQ = maxQ, minQ
	}
	minW, minH := opt.MinW, opt.MinH
	if minW <= 0 {
		minW = 480
	}
	if minH <= 0 {
		minH = 480
	}
	step := opt.ScaleStep
	if step <= 0 || step >= 1 {
		step = 0.85
	}

	cur := img
	var last []byte
	for attempt := 0; attempt < 6; attempt++ {
		low, high := minQ, maxQ
		var best []byte
		for i := 0; i < 8; i++ {
			q := (low + high) / 2
			data, err := encodeQ(cur, q)
			if err != nil {
				return nil, err
			}
			if len(data) <= target+tol {
				best = data
				high = q
			} else {
				low = q
			}
		}
		if best == nil {
			var err error
			if best, err = encodeQ(cur, low); err != nil {
				return nil, err
			}
		}
		last = best
		if len(best) <= target+tol {
			return best, nil
		}

		b := cur.Bounds()
		cw, ch := b.Dx(), b.Dy()
		if cw <= minW && ch <= minH {
			return best, nil
		}

		scale := math.Sqrt(float64(target+tol)/float64(len(best))) * 0.95
		if scale > float64(step) {
			scale = float64(step)
		} else if scale < 0.5 {
			scale = 0.5
		}
		nw := max(int(math.Round(float64(cw)*scale)), minW)
		nh := max(int(math.Round(float64(ch)*scale)), minH)
		if nw >= cw && nh >= ch {
			nw = max(int(float64(cw)*float64(step)), minW)
			nh = max(int(float64(ch)*float64(step)), minH)
		}
		cur = scaleTo(cur, nw, nh)
	}
	return last, nil
}
