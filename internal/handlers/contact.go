package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staffdir/apiserver/internal/services"
	"github.com/staffdir/apiserver/internal/store"
	"github.com/staffdir/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	// maxUploadFormBytes caps the whole request body: the image cap
	// plus headroom for the text fields and multipart framing.
	maxUploadFormBytes = services.MaxImageBytes + (1 << 20)
	formFieldName      = "name"
	formFieldPhone     = "phone"
	formFieldMobile    = "mobile"
	formFieldPosition  = "position"
	formFieldDesig     = "designation"
	formFieldImage     = "image"
)

// ContactHandler provides HTTP handlers for contacts.
type ContactHandler struct {
	contactService *services.ContactService
	adminService   *services.AdminService
}

// NewContactHandler constructs a handler with the provided services.
func NewContactHandler(contactService *services.ContactService, adminService *services.AdminService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		adminService:   adminService,
	}
}

// ContactRouter registers contact routes on the given router. The list
// is public; everything else sits behind the auth middleware.
func ContactRouter(
	r chi.Router,
	contactService *services.ContactService,
	adminService *services.AdminService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewContactHandler(contactService, adminService)

	r.Get("/", handler.ListContacts)
	r.With(authMiddleware, handler.requireAdmin).Post("/", handler.CreateContact)
	r.Route("/{contactID}", func(r chi.Router) {
		r.With(authMiddleware, handler.requireAdmin).Get("/", handler.GetContact)
		r.With(authMiddleware, handler.requireAdmin).Put("/", handler.UpdateContact)
		r.With(authMiddleware, handler.requireAdmin).Delete("/", handler.DeleteContact)
	})
}

// ListContacts returns all contacts ordered by position. No auth.
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseContactID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.contactService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch contact")
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r); err != nil {
		writeUploadError(w, err)
		return
	}

	name := strings.TrimSpace(r.FormValue(formFieldName))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	upload, err := parseImageFile(r.MultipartForm)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	input := services.ContactInput{
		Name:        name,
		Phone:       strings.TrimSpace(r.FormValue(formFieldPhone)),
		Mobile:      strings.TrimSpace(r.FormValue(formFieldMobile)),
		Position:    strings.TrimSpace(r.FormValue(formFieldPosition)),
		Designation: strings.TrimSpace(r.FormValue(formFieldDesig)),
	}

	created, err := h.contactService.Create(r.Context(), input, upload)
	if err != nil {
		if errors.Is(err, services.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseContactID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := parseUploadForm(w, r); err != nil {
		writeUploadError(w, err)
		return
	}

	patch, err := parseContactPatch(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := parseImageFile(r.MultipartForm)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	updated, err := h.contactService.Update(r.Context(), id, patch, upload)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "contact not found")
		case errors.Is(err, services.ErrInvalidImage):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update contact")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseContactID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseContactID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "contactID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid contact id")
	}
	return id, nil
}

// parseContactPatch builds a partial update from the fields actually
// present in the form. Absent fields stay nil and are left untouched.
func parseContactPatch(form *multipart.Form) (types.ContactPatch, error) {
	if form == nil {
		return types.ContactPatch{}, errors.New("missing form data")
	}

	patch := types.ContactPatch{}
	if value, ok := formField(form, formFieldName); ok {
		if value == "" {
			return types.ContactPatch{}, errors.New("name cannot be empty")
		}
		patch.Name = &value
	}
	if value, ok := formField(form, formFieldPhone); ok {
		patch.Phone = &value
	}
	if value, ok := formField(form, formFieldMobile); ok {
		patch.Mobile = &value
	}
	if value, ok := formField(form, formFieldPosition); ok {
		patch.Position = &value
	}
	if value, ok := formField(form, formFieldDesig); ok {
		patch.Designation = &value
	}
	return patch, nil
}

func formField(form *multipart.Form, field string) (string, bool) {
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

// parseUploadForm bounds the request body before handing it to the
// multipart parser, so an oversized upload is rejected instead of
// being spooled to a temp file in full.
func parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadFormBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return services.ErrImageTooLarge
		}
		return errors.New("invalid multipart form")
	}
	return nil
}

// parseImageFile extracts the optional image attachment. Returns nil
// when no file was sent.
func parseImageFile(form *multipart.Form) (*services.ImageUpload, error) {
	if form == nil {
		return nil, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read image file")
	}

	data, err := readFileLimited(file, services.MaxImageBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, services.ErrImageTooLarge
	}
	return data, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrImageTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (h *ContactHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := adminIDFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if _, err := h.adminService.GetByID(r.Context(), adminID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
