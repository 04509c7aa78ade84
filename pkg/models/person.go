package models

import "time"

// Person is a row in the persons table. Owners, creators, clients and
// organizations all land here; person_type/profile_type distinguish them.
type Person struct {
	ID             string     `db:"id" json:"id"`
	BusinessName   *string    `db:"business_name" json:"businessName,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	PersonType     int        `db:"person_type" json:"personType"`
	ProfileType    int        `db:"profile_type" json:"profileType"`
	IsDeleted      bool       `db:"is_deleted" json:"isDeleted"`
	OrganizationID *string    `db:"organization_id" json:"organizationId,omitempty"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updatedAt,omitempty" fieldopt:"omitempty"`
}
