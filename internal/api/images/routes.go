// Package images serves downloaded headshots.
package images

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/frsworks/frs-sync/internal/api/common"
	"github.com/frsworks/frs-sync/internal/media"
)

// Router creates the router for GET /{imageID}
func Router(store media.Store) http.Handler {
	r := chi.NewRouter()
	r.Get("/{imageID}", getImage(store))
	return r
}

func getImage(store media.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := common.GetUUIDParam(r, "imageID")
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}

		img, err := store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, media.ErrNotFound) {
				common.WriteErrorResponse(w, "image not found", http.StatusNotFound)
				return
			}
			slog.Error("Failed to load image", "id", id, "error", err)
			common.WriteErrorResponse(w, "failed to load image", http.StatusInternalServerError)
			return
		}

		// Ids are derived from the source URL, so content under an id only changes on re-download.
		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img.Data)
	}
}
