package http

import (
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/storage"
)

// POST /erp/resources — multipart upload: fields title, subject, file.
func UploadResourceHandler(store *directory.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "multipart form required", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := path.Join("resources", uuid.NewString()+path.Ext(hdr.Filename))
		if _, err := blobs.Put(key, f); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		res, err := store.AddResource(r.Context(), directory.Resource{
			Title:      r.FormValue("title"),
			Subject:    r.FormValue("subject"),
			BlobKey:    key,
			UploadedBy: authmw.SubjectFromContext(r.Context()),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /erp/resources?subject=
func ListResourcesHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResources(r.Context(), r.URL.Query().Get("subject"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /erp/resources/{resourceID}/file
func DownloadResourceHandler(store *directory.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetResource(r.Context(), chi.URLParam(r, "resourceID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if res.BlobKey == "" {
			http.Error(w, "resource has no file", http.StatusNotFound)
			return
		}
		rc, err := blobs.Get(res.BlobKey)
		if err != nil {
			http.Error(w, "file missing", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	}
}
