package vision

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the timeout for fetching remote images
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum image size (10MB)
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// httpClient is reused for image downloads to avoid creating new clients per request
var httpClient = resty.New().SetDebug(false).SetTimeout(DefaultDownloadTimeout)

// LoadImage reads an image from a local path or an http(s) URL. The data is
// capped at maxSize bytes and must sniff as an image/* type. A maxSize of 0
// or less uses DefaultMaxImageSize.
func LoadImage(ctx context.Context, ref string, maxSize int64) (Image, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}

	var (
		data []byte
		err  error
	)
	if isURL(ref) {
		data, err = downloadImage(ctx, ref, maxSize)
	} else {
		data, err = readImageFile(ref, maxSize)
	}
	if err != nil {
		return Image{}, err
	}

	mimeType, err := detectImageMIMEType(data)
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", ref, err)
	}

	log.Debug().Str("source", ref).Str("mimeType", mimeType).Int("bytes", len(data)).Msg("loaded image")

	return Image{Data: data, MIMEType: mimeType, Source: ref}, nil
}

func isURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func readImageFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", info.Size(), maxSize)
	}

	// The file may grow between Stat and ReadAll
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("image too large: exceeds limit of %d bytes", maxSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image file %s is empty", path)
	}

	return data, nil
}

func downloadImage(ctx context.Context, imageURL string, maxSize int64) ([]byte, error) {
	log.Info().Str("url", imageURL).Msg("downloading image")

	res, err := httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		SetDoNotParseResponse(true).
		Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("download failed: status %d", res.StatusCode())
	}

	contentType := res.Header().Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}

	if res.RawResponse.ContentLength > maxSize {
		return nil, fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", res.RawResponse.ContentLength, maxSize)
	}

	// Content-Length may be missing or wrong
	data, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("image too large: exceeds limit of %d bytes", maxSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body from %s", imageURL)
	}

	return data, nil
}

func detectImageMIMEType(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("not an image (detected %s)", mtype.String())
	}
	return mtype.String(), nil
}
