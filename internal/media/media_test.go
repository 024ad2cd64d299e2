package media_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/frsworks/frs-sync/internal/httpclient"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/media/mocks"
)

// pngHeader is enough for content sniffing to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImporter_Import(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/jane.png":
			_, _ = w.Write(pngHeader)
		case "/page.html":
			_, _ = w.Write([]byte("<html><body>not an image</body></html>"))
		case "/empty.png":
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	store := media.NewFileStore(t.TempDir())
	importer := media.NewImporter(httpclient.NewDefaultClient(0), store)
	ctx := context.Background()

	id, err := importer.Import(ctx, server.URL+"/jane.png")
	require.NoError(t, err)
	assert.Equal(t, media.ImageID(server.URL+"/jane.png"), id)

	img, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, pngHeader, img.Data)
	assert.Equal(t, server.URL+"/jane.png", img.SourceURL)

	// Same URL is served from the store
	again, err := importer.Import(ctx, server.URL+"/jane.png")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, int32(1), hits.Load())

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "not an image", url: server.URL + "/page.html", wantErr: media.ErrNotImage},
		{name: "empty body", url: server.URL + "/empty.png", wantErr: media.ErrNotImage},
		{name: "remote 404", url: server.URL + "/missing.png"},
		{name: "unsupported scheme", url: "ftp://example.com/a.png"},
		{name: "no host", url: "https:///a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := importer.Import(ctx, tt.url)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			_, getErr := store.Get(ctx, media.ImageID(tt.url))
			assert.ErrorIs(t, getErr, media.ErrNotFound)
		})
	}
}

func TestImporter_MaxSize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(server.Close)

	importer := media.NewImporter(httpclient.NewDefaultClient(0), media.NewFileStore(t.TempDir()), media.WithMaxSize(4))
	_, err := importer.Import(context.Background(), server.URL+"/big.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestImporter_StoreErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngHeader)
	}))
	t.Cleanup(server.Close)

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	sourceURL := server.URL + "/jane.png"

	store.EXPECT().Get(gomock.Any(), media.ImageID(sourceURL)).Return(nil, errors.New("disk on fire"))
	importer := media.NewImporter(httpclient.NewDefaultClient(0), store)
	_, err := importer.Import(context.Background(), sourceURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to look up image")

	store.EXPECT().Get(gomock.Any(), media.ImageID(sourceURL)).Return(nil, media.ErrNotFound)
	store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("read-only"))
	_, err = importer.Import(context.Background(), sourceURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store image")
}

func TestFileStore_GetMissing(t *testing.T) {
	t.Parallel()

	_, err := media.NewFileStore(t.TempDir()).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, media.ErrNotFound)
}

func TestImageIDIsStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, media.ImageID("https://cdn.example.com/a.png"), media.ImageID("https://cdn.example.com/a.png"))
	assert.NotEqual(t, media.ImageID("https://cdn.example.com/a.png"), media.ImageID("https://cdn.example.com/b.png"))
}
