package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// UploadHandler turns an uploaded image into a public URL that can be
// attached to tasks. Cloudinary is used when configured; otherwise the
// file is written under dir and served from /uploads/.
type UploadHandler struct {
	cld *cloudinary.Cloudinary
	dir string
}

func NewUploadHandler(cld *cloudinary.Cloudinary, dir string) *UploadHandler {
	return &UploadHandler{cld: cld, dir: dir}
}

// Upload godoc
// @Summary      Upload an image and get back its URL
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "image file, max 10 MiB"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image not provided")
		return
	}
	defer file.Close()

	if h.cld != nil {
		h.uploadToCloudinary(w, r, file)
		return
	}
	h.uploadToDisk(w, file, header.Filename)
}

func (h *UploadHandler) uploadToCloudinary(w http.ResponseWriter, r *http.Request, file io.Reader) {
	resp, err := h.cld.Upload.Upload(r.Context(), file, uploader.UploadParams{})
	if err != nil {
		log.Printf("cloudinary upload: %v", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": resp.SecureURL})
}

func (h *UploadHandler) uploadToDisk(w http.ResponseWriter, file io.Reader, name string) {
	if err := os.MkdirAll(h.dir, os.ModePerm); err != nil {
		log.Printf("create upload dir: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(name))
	dst, err := os.Create(filepath.Join(h.dir, filename))
	if err != nil {
		log.Printf("create upload file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("write upload file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to write file")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": "/uploads/" + filename})
}
