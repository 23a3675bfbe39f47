package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/chatterbox/pkg/apperr"
	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
	"github.com/platinummonkey/chatterbox/pkg/storage"
)

// upload handles POST /api/upload. Every file part is streamed into the store;
// the response lists one reference URL per part, in request order.
func (s *Server) upload(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	reader, err := r.MultipartReader()
	if err != nil {
		httputil.WriteBadRequest(w, "expected a multipart/form-data body")
		return
	}

	urls := []string{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				s.writeError(w, r, err)
				return
			}
			httputil.WriteBadRequest(w, "malformed multipart body")
			return
		}

		filename := part.FileName()
		if filename == "" {
			part.Close()
			continue
		}

		d, err := s.files.Save(r.Context(), identity.WorkspaceID, filename, part)
		part.Close()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		urls = append(urls, d.URL())
	}

	if len(urls) == 0 {
		s.writeError(w, r, apperr.New(apperr.Validation, "no files in request"))
		return
	}
	httputil.WriteSuccess(w, urls)
}

// download handles GET /api/files/{ws}/{path}. Files of other workspaces,
// and paths that are not file references, are not found.
func (s *Server) download(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	vars := mux.Vars(r)
	if vars["ws"] != strconv.FormatInt(identity.WorkspaceID, 10) {
		httputil.WriteNotFound(w, "file not found")
		return
	}

	d, err := storage.ParseURL(storage.URLPrefix + vars["ws"] + "/" + vars["path"])
	if err != nil {
		httputil.WriteNotFound(w, "file not found")
		return
	}

	f, err := s.files.Open(d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.writeError(w, r, &storage.StorageError{Op: "stat", Path: f.Name(), Err: err})
		return
	}

	contentType := "application/octet-stream"
	if d.Ext != "" {
		if t := mime.TypeByExtension("." + d.Ext); t != "" {
			contentType = t
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	http.ServeContent(w, r, d.Hash+"."+d.Ext, info.ModTime(), f)
}
