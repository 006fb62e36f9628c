package services

import (
	"context"
	"log/slog"

	"github.com/staffdir/apiserver/internal/events"
	"github.com/staffdir/apiserver/types"
)

// ContactRepository defines persistence operations for contacts.
type ContactRepository interface {
	List(ctx context.Context) ([]types.Contact, error)
	Get(ctx context.Context, id int) (types.Contact, error)
	Create(ctx context.Context, contact types.Contact) (types.Contact, error)
	Update(ctx context.Context, contact types.Contact) (types.Contact, error)
	Delete(ctx context.Context, id int) error
}

// ContactInput carries the fields for a new contact.
type ContactInput struct {
	Name        string
	Phone       string
	Mobile      string
	Position    string
	Designation string
}

// ContactService orchestrates contact records together with their
// image assets. It is the only writer of both stores and keeps them
// consistent: an asset is always durable before any record references
// it, and superseded or orphan-prone assets are cleaned up
// best-effort.
type ContactService struct {
	repo      ContactRepository
	assets    *AssetStore
	publisher *events.Publisher
	logger    *slog.Logger
}

// NewContactService constructs a ContactService. The publisher may be
// nil, in which case no change events are emitted.
func NewContactService(repo ContactRepository, assets *AssetStore, publisher *events.Publisher, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{
		repo:      repo,
		assets:    assets,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns all contacts ordered ascending by position.
func (s *ContactService) List(ctx context.Context) ([]types.Contact, error) {
	return s.repo.List(ctx)
}

// Get returns one contact by id.
func (s *ContactService) Get(ctx context.Context, id int) (types.Contact, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores the upload (if any) before inserting the
// record, so a persisted record never references a not-yet-durable
// file. An insert failure after the asset write leaves an orphaned
// object; that is logged and otherwise accepted.
func (s *ContactService) Create(ctx context.Context, input ContactInput, upload *ImageUpload) (types.Contact, error) {
	var imagePath *string
	if upload != nil {
		ext, err := ValidateImage(upload.Filename, upload.ContentType)
		if err != nil {
			return types.Contact{}, err
		}
		path, err := s.assets.Store(ctx, upload.Data, ext, upload.ContentType)
		if err != nil {
			return types.Contact{}, err
		}
		imagePath = &path
	}

	contact := types.Contact{
		Name:        input.Name,
		Phone:       input.Phone,
		Mobile:      input.Mobile,
		Position:    input.Position,
		Designation: input.Designation,
		ImagePath:   imagePath,
	}

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		if imagePath != nil {
			s.logger.Warn("contact insert failed after asset write, asset orphaned", "path", *imagePath, "error", err)
		}
		return types.Contact{}, err
	}

	s.publish(ctx, events.ContactCreated, created)
	return created, nil
}

// Update applies a partial patch and an optional replacement image.
// A new image is written before the record is touched; only then is
// the previous asset removed, so the record never points at a missing
// file because of a failed replacement. Without an upload the image
// reference is left untouched.
func (s *ContactService) Update(ctx context.Context, id int, patch types.ContactPatch, upload *ImageUpload) (types.Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Contact{}, err
	}

	patch.Apply(&contact)

	if upload != nil {
		ext, err := ValidateImage(upload.Filename, upload.ContentType)
		if err != nil {
			return types.Contact{}, err
		}
		newPath, err := s.assets.Store(ctx, upload.Data, ext, upload.ContentType)
		if err != nil {
			return types.Contact{}, err
		}
		oldPath := contact.ImagePath
		contact.ImagePath = &newPath
		if oldPath != nil {
			s.assets.Delete(ctx, *oldPath)
		}
	}

	updated, err := s.repo.Update(ctx, contact)
	if err != nil {
		return types.Contact{}, err
	}

	s.publish(ctx, events.ContactUpdated, updated)
	return updated, nil
}

// Delete removes the record first, then its asset: once the record is
// gone nothing can reference the file, so the listing stops showing
// the contact as early as possible and cleanup stays best-effort.
func (s *ContactService) Delete(ctx context.Context, id int) error {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if contact.ImagePath != nil {
		s.assets.Delete(ctx, *contact.ImagePath)
	}

	s.publish(ctx, events.ContactDeleted, contact)
	return nil
}

func (s *ContactService) publish(ctx context.Context, eventType string, contact types.Contact) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishContactEvent(ctx, eventType, contact); err != nil {
		s.logger.Warn("failed to publish contact event", "type", eventType, "contact_id", contact.ID, "error", err)
	}
}
