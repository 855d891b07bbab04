package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/llm"
)

const maxImportBytes = 1 << 20 // 1 MB

// ImportProfile handles POST /profiles/import (multipart/form-data,
// field "file", optional field "description"). The profile name is taken
// from the uploaded filename stem; the document is validated before it
// touches the store.
func (h *Handler) ImportProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.HasSuffix(filename, ".json") {
		writeJSON(w, http.StatusBadRequest, errorBody("profile documents must be .json files"))
		return
	}
	name := strings.TrimSuffix(filename, ".json")

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	client, err := llm.Parse(data)
	if err != nil {
		writeError(w, err)
		return
	}

	description := r.FormValue("description")
	if description == "" {
		description = client.UsageID
	}

	// Imported documents carry whatever the uploader put in them, secrets
	// included, so they persist as-is.
	if err := h.store.SaveProfile(name, description, client, true); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ImportResponse{
		Name:    name,
		File:    name + ".json",
		UsageID: client.UsageID,
	})
}
