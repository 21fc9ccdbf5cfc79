package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"offergen/internal/fields"
	"offergen/internal/maildraft"
	"offergen/internal/render"

	"github.com/go-chi/chi/v5"
)

const (
	pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// handleGenerate renders an uploaded template with the submitted fields and
// responds with the rendered document. The result is also recorded in the
// history store; its ID comes back in the X-Offer-ID header.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("template")
	if err != nil {
		jsonError(w, "template file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	renderFn, err := render.ForFilename(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read template", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("template exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	form, err := s.formFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := renderFn(data, form.Build())
	if err != nil {
		s.log.Error("render failed", "template", filename, "error", err)
		jsonError(w, "render failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	contentType := pptxContentType
	if ext == "docx" {
		contentType = docxContentType
	}
	outName := fields.Filename(form.CandidateName, ext)
	entry := s.store.Add(form.CandidateName, outName, contentType, out)

	w.Header().Set("X-Offer-ID", entry.ID)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	w.Write(out)
}

// formFromRequest reads the candidate fields from the multipart form.
// Dates arrive as YYYY-MM-DD; extras as a JSON object in the "extras" value.
func (s *Server) formFromRequest(r *http.Request) (fields.Form, error) {
	form := fields.Form{
		CandidateName: r.FormValue("candidate_name"),
		Position:      r.FormValue("position"),
		Salary:        r.FormValue("salary"),
		City:          r.FormValue("city"),
	}
	if form.City == "" {
		form.City = s.cfg.DefaultCity
	}

	var err error
	if form.JoinDate, err = parseDateValue(r.FormValue("join_date")); err != nil {
		return form, fmt.Errorf("invalid join_date: %w", err)
	}
	if form.OfferDate, err = parseDateValue(r.FormValue("offer_date")); err != nil {
		return form, fmt.Errorf("invalid offer_date: %w", err)
	}

	if extras := r.FormValue("extras"); extras != "" {
		if err := json.Unmarshal([]byte(extras), &form.Extras); err != nil {
			return form, fmt.Errorf("invalid extras: %w", err)
		}
	}
	return form, nil
}

func parseDateValue(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", v)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	entries := s.store.List()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"offers": entries})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	entry := s.store.Get(chi.URLParam(r, "offerID"))
	if entry == nil {
		jsonError(w, "offer not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", entry.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.Filename))
	w.Write(entry.Data())
}

func (s *Server) handleDeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "offerID")
	if !s.store.Delete(id) {
		jsonError(w, "offer not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": id})
}

// draftRequest is the body for POST /api/offers/{offerID}/draft.
type draftRequest struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	BodyMarkdown string `json:"body_markdown"`
}

const defaultDraftBody = "Hi,\n\nPlease find attached your offer letter. " +
	"Let us know if you have any questions.\n\nBest regards,\nHR\n"

// handleDraft wraps a generated letter into a ready-to-send .eml draft.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	entry := s.store.Get(chi.URLParam(r, "offerID"))
	if entry == nil {
		jsonError(w, "offer not found", http.StatusNotFound)
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.To == "" {
		jsonError(w, "to is required", http.StatusBadRequest)
		return
	}
	if req.Subject == "" {
		req.Subject = "Offer Letter"
	}
	if req.BodyMarkdown == "" {
		req.BodyMarkdown = defaultDraftBody
	}

	draft := maildraft.Draft{
		To:             req.To,
		Subject:        req.Subject,
		BodyMarkdown:   req.BodyMarkdown,
		AttachmentName: entry.Filename,
		AttachmentType: entry.ContentType,
		Attachment:     entry.Data(),
	}
	msg, err := draft.Build()
	if err != nil {
		s.log.Error("draft build failed", "offer_id", entry.ID, "error", err)
		jsonError(w, "draft build failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	emlName := strings.TrimSuffix(entry.Filename, filepath.Ext(entry.Filename)) + ".eml"
	w.Header().Set("Content-Type", "message/rfc822")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", emlName))
	w.Write(msg)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
