package types

import "time"

// Contact represents one entry in the staff directory.
type Contact struct {
	// ID is the unique identifier of the contact, assigned at creation.
	ID int `json:"id" db:"id"`

	// Name is the contact's display name. Required.
	Name string `json:"name" db:"name"`

	// Phone is the contact's landline number.
	Phone string `json:"phone,omitempty" db:"phone"`

	// Mobile is the contact's mobile number.
	Mobile string `json:"mobile,omitempty" db:"mobile"`

	// Position is the contact's ordering key in the public listing.
	// Contacts are listed ascending by this value.
	Position string `json:"position,omitempty" db:"position"`

	// Designation is the contact's job title.
	Designation string `json:"designation,omitempty" db:"designation"`

	// ImagePath is the public path of the contact's image
	// ("/uploads/<filename>"), or nil when no image is attached.
	ImagePath *string `json:"image" db:"image_path"`

	// CreatedAt is the timestamp when the contact was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContactPatch is a partial update to a contact. Nil fields are left
// untouched.
type ContactPatch struct {
	Name        *string
	Phone       *string
	Mobile      *string
	Position    *string
	Designation *string
}

// Apply copies the patch's non-nil fields onto the contact.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Mobile != nil {
		c.Mobile = *p.Mobile
	}
	if p.Position != nil {
		c.Position = *p.Position
	}
	if p.Designation != nil {
		c.Designation = *p.Designation
	}
}
