package models

import (
	"time"

	"github.com/Ramsey-B/fern/pkg/database"
)

// Ticket is a row in the tickets table. Optional API fields stay pointers so
// absence maps to SQL NULL.
type Ticket struct {
	ID                       string                       `db:"id" json:"id"`
	Protocol                 *string                      `db:"protocol" json:"protocol,omitempty"`
	Type                     *int                         `db:"type" json:"type,omitempty"`
	Subject                  string                       `db:"subject" json:"subject"`
	Category                 *string                      `db:"category" json:"category,omitempty"`
	Urgency                  *string                      `db:"urgency" json:"urgency,omitempty"`
	Status                   string                       `db:"status" json:"status"`
	BaseStatus               string                       `db:"base_status" json:"baseStatus"`
	Justification            *string                      `db:"justification" json:"justification,omitempty"`
	Origin                   int                          `db:"origin" json:"origin"`
	CreatedDate              *time.Time                   `db:"created_date" json:"createdDate,omitempty"`
	OriginEmailAccount       *string                      `db:"origin_email_account" json:"originEmailAccount,omitempty"`
	OwnerID                  *string                      `db:"owner_id" json:"ownerId,omitempty"`
	OwnerTeam                *string                      `db:"owner_team" json:"ownerTeam,omitempty"`
	CreatedByID              *string                      `db:"created_by_id" json:"createdById,omitempty"`
	ServiceFirstLevelID      *int                         `db:"service_first_level_id" json:"serviceFirstLevelId,omitempty"`
	ServiceFirstLevel        *string                      `db:"service_first_level" json:"serviceFirstLevel,omitempty"`
	ServiceSecondLevel       *string                      `db:"service_second_level" json:"serviceSecondLevel,omitempty"`
	ServiceThirdLevel        *string                      `db:"service_third_level" json:"serviceThirdLevel,omitempty"`
	ContactForm              *string                      `db:"contact_form" json:"contactForm,omitempty"`
	Cc                       *string                      `db:"cc" json:"cc,omitempty"`
	ResolvedIn               *time.Time                   `db:"resolved_in" json:"resolvedIn,omitempty"`
	ReopenedIn               *time.Time                   `db:"reopened_in" json:"reopenedIn,omitempty"`
	ClosedIn                 *time.Time                   `db:"closed_in" json:"closedIn,omitempty"`
	LastActionDate           *time.Time                   `db:"last_action_date" json:"lastActionDate,omitempty"`
	ActionCount              int                          `db:"action_count" json:"actionCount"`
	LastUpdate               *time.Time                   `db:"last_update" json:"lastUpdate,omitempty"`
	LifetimeWorkingTime      *int                         `db:"lifetime_working_time" json:"lifetimeWorkingTime,omitempty"`
	StoppedTime              *int                         `db:"stopped_time" json:"stoppedTime,omitempty"`
	StoppedTimeWorkingTime   *int                         `db:"stopped_time_working_time" json:"stoppedTimeWorkingTime,omitempty"`
	ResolvedInFirstCall      bool                         `db:"resolved_in_first_call" json:"resolvedInFirstCall"`
	ChatWidget               *string                      `db:"chat_widget" json:"chatWidget,omitempty"`
	ChatGroup                *string                      `db:"chat_group" json:"chatGroup,omitempty"`
	ChatTalkTime             *int                         `db:"chat_talk_time" json:"chatTalkTime,omitempty"`
	ChatWaitingTime          *int                         `db:"chat_waiting_time" json:"chatWaitingTime,omitempty"`
	SlaAgreement             *string                      `db:"sla_agreement" json:"slaAgreement,omitempty"`
	SlaAgreementRule         *string                      `db:"sla_agreement_rule" json:"slaAgreementRule,omitempty"`
	SlaSolutionTime          *int                         `db:"sla_solution_time" json:"slaSolutionTime,omitempty"`
	SlaResponseTime          *int                         `db:"sla_response_time" json:"slaResponseTime,omitempty"`
	SlaSolutionChangedByUser *bool                        `db:"sla_solution_changed_by_user" json:"slaSolutionChangedByUser,omitempty"`
	SlaSolutionChangedByID   *string                      `db:"sla_solution_changed_by_id" json:"slaSolutionChangedById,omitempty"`
	SlaSolutionDate          *time.Time                   `db:"sla_solution_date" json:"slaSolutionDate,omitempty"`
	SlaSolutionDateIsPaused  bool                         `db:"sla_solution_date_is_paused" json:"slaSolutionDateIsPaused"`
	SlaResponseDate          *time.Time                   `db:"sla_response_date" json:"slaResponseDate,omitempty"`
	SlaRealResponseDate      *time.Time                   `db:"sla_real_response_date" json:"slaRealResponseDate,omitempty"`
	ClientID                 *string                      `db:"client_id" json:"clientId,omitempty"`
	Actions                  database.JSONB[[]TicketAction] `db:"actions" json:"actions"`
	CreatedAt                time.Time                    `db:"created_at" json:"createdAt" fieldopt:"omitempty"`
}
