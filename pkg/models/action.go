package models

import "time"

// TicketAction is a row in the ticket_actions table, keyed by (id, ticket_id)
// since action ids are only unique within a ticket.
type TicketAction struct {
	ID              int        `db:"id" json:"id"`
	TicketID        string     `db:"ticket_id" json:"ticketId"`
	Type            int        `db:"type" json:"type"`
	Origin          int        `db:"origin" json:"origin"`
	Description     *string    `db:"description" json:"description,omitempty"`
	HTMLDescription *string    `db:"html_description" json:"htmlDescription,omitempty"`
	Status          *string    `db:"status" json:"status,omitempty"`
	Justification   *string    `db:"justification" json:"justification,omitempty"`
	CreatedDate     *time.Time `db:"created_date" json:"createdDate,omitempty"`
	CreatedByID     *string    `db:"created_by_id" json:"createdById,omitempty"`
	IsDeleted       bool       `db:"is_deleted" json:"isDeleted"`
}
