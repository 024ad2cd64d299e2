// Package media downloads agent headshots and stores them locally so people
// records can reference an image by id.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/httpclient"
	"github.com/frsworks/frs-sync/internal/otel"
)

// DefaultMaxImageSize bounds a single downloaded image (10MB)
const DefaultMaxImageSize = 10 * 1024 * 1024

var (
	// ErrNotFound is returned when no image has the requested id
	ErrNotFound = errors.New("media not found")

	// ErrNotImage is returned when the downloaded body is not an image
	ErrNotImage = errors.New("downloaded content is not an image")
)

// Image is a stored image
type Image struct {
	ID          uuid.UUID
	SourceURL   string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

//go:generate mockgen -destination=mocks/mock_media.go -package=mocks -source=media.go Store,Importer

// Store persists images
type Store interface {
	// Put stores the image under img.ID, replacing any previous content
	Put(ctx context.Context, img *Image) error

	// Get returns the image with the given id or ErrNotFound
	Get(ctx context.Context, id uuid.UUID) (*Image, error)
}

// Importer turns a remote image URL into a stored image id
type Importer interface {
	Import(ctx context.Context, sourceURL string) (uuid.UUID, error)
}

// ImageID returns the id an image downloaded from sourceURL is stored under.
// Importing the same URL twice therefore yields the same id.
func ImageID(sourceURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL))
}

// ImporterOption configures an importer
type ImporterOption func(*importer)

// WithMaxSize caps the size of a downloaded image
func WithMaxSize(n int) ImporterOption {
	return func(i *importer) {
		if n > 0 {
			i.maxSize = n
		}
	}
}

// WithTracer sets the tracer used for import spans
func WithTracer(tracer trace.Tracer) ImporterOption {
	return func(i *importer) {
		i.tracer = tracer
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) ImporterOption {
	return func(i *importer) {
		i.now = now
	}
}

type importer struct {
	http    httpclient.Client
	store   Store
	maxSize int
	tracer  trace.Tracer
	now     func() time.Time
}

// NewImporter creates an importer downloading with client and saving into store
func NewImporter(client httpclient.Client, store Store, opts ...ImporterOption) Importer {
	i := &importer{
		http:    client,
		store:   store,
		maxSize: DefaultMaxImageSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import downloads sourceURL unless it was already imported and returns the image id
func (i *importer) Import(ctx context.Context, sourceURL string) (uuid.UUID, error) {
	ctx, span := otel.StartSpan(ctx, i.tracer, "media.Import",
		trace.WithAttributes(attribute.String("media.source_url", sourceURL)),
	)
	defer span.End()

	if err := validateSourceURL(sourceURL); err != nil {
		otel.RecordError(span, err)
		return uuid.Nil, err
	}

	id := ImageID(sourceURL)
	if _, err := i.store.Get(ctx, id); err == nil {
		slog.DebugContext(ctx, "Headshot already imported", "media_id", id)
		return id, nil
	} else if !errors.Is(err, ErrNotFound) {
		otel.RecordError(span, err)
		return uuid.Nil, fmt.Errorf("failed to look up image: %w", err)
	}

	resp, err := i.http.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    sourceURL,
		Header: http.Header{"Accept": []string{"image/*"}},
	})
	if err != nil {
		otel.RecordError(span, err)
		return uuid.Nil, fmt.Errorf("failed to download image: %w", err)
	}
	if len(resp.Body) == 0 {
		otel.RecordError(span, ErrNotImage)
		return uuid.Nil, ErrNotImage
	}
	if len(resp.Body) > i.maxSize {
		err := fmt.Errorf("image of %d bytes exceeds the %d byte limit", len(resp.Body), i.maxSize)
		otel.RecordError(span, err)
		return uuid.Nil, err
	}

	contentType := http.DetectContentType(resp.Body)
	if !strings.HasPrefix(contentType, "image/") {
		err := fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
		otel.RecordError(span, err)
		return uuid.Nil, err
	}

	img := &Image{
		ID:          id,
		SourceURL:   sourceURL,
		ContentType: contentType,
		Data:        resp.Body,
		CreatedAt:   i.now().UTC(),
	}
	if err := i.store.Put(ctx, img); err != nil {
		otel.RecordError(span, err)
		return uuid.Nil, fmt.Errorf("failed to store image: %w", err)
	}

	slog.DebugContext(ctx, "Imported headshot", "media_id", id, "bytes", len(img.Data))
	return id, nil
}

func validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("image URL must include a host, got %q", raw)
	}
	return nil
}
