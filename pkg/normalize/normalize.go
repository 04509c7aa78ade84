package normalize

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/movidesk"
)

// ErrMalformedPayload indicates a ticket payload that cannot be mapped onto
// the relational model. The ticket is skipped; the run continues.
var ErrMalformedPayload = errors.New("malformed ticket payload")

// PersonUnit pairs a person with its organization. The organization row has
// to be written before the person that references it, inside one transaction.
type PersonUnit struct {
	Organization *models.Person
	Person       models.Person
}

// Result holds everything one raw ticket payload expands into, in the order
// it has to be persisted.
type Result struct {
	Ticket  models.Ticket
	Persons []PersonUnit // owner, createdBy, slaSolutionChangedBy
	Clients []PersonUnit
	Actions []models.TicketAction
}

type Normalizer struct {
	validate *validator.Validate
}

func New() *Normalizer {
	return &Normalizer{
		validate: validator.New(),
	}
}

// Normalize maps a raw Movidesk ticket onto the relational model.
func (n *Normalizer) Normalize(raw *movidesk.Ticket) (*Result, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil ticket", ErrMalformedPayload)
	}

	if err := n.validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	result := &Result{}

	ticketID := raw.ID.String()

	for _, p := range []*movidesk.Person{raw.Owner, raw.CreatedBy, raw.SlaSolutionChangedBy} {
		if p == nil {
			continue
		}
		unit, err := personUnit(p)
		if err != nil {
			return nil, err
		}
		result.Persons = append(result.Persons, unit)
	}

	for i := range raw.Clients {
		unit, err := personUnit(&raw.Clients[i])
		if err != nil {
			return nil, err
		}
		result.Clients = append(result.Clients, unit)
	}

	for _, a := range raw.Actions {
		action := models.TicketAction{
			ID:              a.ID,
			TicketID:        ticketID,
			Type:            a.Type,
			Origin:          a.Origin,
			Description:     a.Description,
			HTMLDescription: a.HTMLDescription,
			Status:          a.Status,
			Justification:   a.Justification,
			CreatedDate:     toTime(a.CreatedDate),
			IsDeleted:       a.IsDeleted,
		}
		if a.CreatedBy != nil {
			action.CreatedByID = &a.CreatedBy.ID
		}
		result.Actions = append(result.Actions, action)
	}

	ticket := models.Ticket{
		ID:                       ticketID,
		Protocol:                 raw.Protocol,
		Type:                     raw.Type,
		Subject:                  raw.Subject,
		Category:                 raw.Category,
		Urgency:                  raw.Urgency,
		Status:                   raw.Status,
		BaseStatus:               raw.BaseStatus,
		Justification:            raw.Justification,
		Origin:                   raw.Origin,
		CreatedDate:              toTime(raw.CreatedDate),
		OriginEmailAccount:       raw.OriginEmailAccount,
		OwnerTeam:                raw.OwnerTeam,
		ServiceFirstLevelID:      raw.ServiceFirstLevelID,
		ServiceFirstLevel:        raw.ServiceFirstLevel,
		ServiceSecondLevel:       raw.ServiceSecondLevel,
		ServiceThirdLevel:        raw.ServiceThirdLevel,
		ContactForm:              raw.ContactForm,
		Cc:                       raw.Cc,
		ResolvedIn:               toTime(raw.ResolvedIn),
		ReopenedIn:               toTime(raw.ReopenedIn),
		ClosedIn:                 toTime(raw.ClosedIn),
		LastActionDate:           toTime(raw.LastActionDate),
		ActionCount:              raw.ActionCount,
		LastUpdate:               toTime(raw.LastUpdate),
		LifetimeWorkingTime:      raw.LifetimeWorkingTime,
		StoppedTime:              raw.StoppedTime,
		StoppedTimeWorkingTime:   raw.StoppedTimeWorkingTime,
		ResolvedInFirstCall:      raw.ResolvedInFirstCall,
		ChatWidget:               raw.ChatWidget,
		ChatGroup:                raw.ChatGroup,
		ChatTalkTime:             raw.ChatTalkTime,
		ChatWaitingTime:          raw.ChatWaitingTime,
		SlaAgreement:             raw.SlaAgreement,
		SlaAgreementRule:         raw.SlaAgreementRule,
		SlaSolutionTime:          raw.SlaSolutionTime,
		SlaResponseTime:          raw.SlaResponseTime,
		SlaSolutionChangedByUser: raw.SlaSolutionChangedByUser,
		SlaSolutionDate:          toTime(raw.SlaSolutionDate),
		SlaSolutionDateIsPaused:  raw.SlaSolutionDateIsPaused,
		SlaResponseDate:          toTime(raw.SlaResponseDate),
		SlaRealResponseDate:      toTime(raw.SlaRealResponseDate),
		Actions:                  database.JSONB[[]models.TicketAction]{Data: result.Actions},
	}

	if raw.Owner != nil {
		ticket.OwnerID = &raw.Owner.ID
	}
	if raw.CreatedBy != nil {
		ticket.CreatedByID = &raw.CreatedBy.ID
	}
	if raw.SlaSolutionChangedBy != nil {
		ticket.SlaSolutionChangedByID = &raw.SlaSolutionChangedBy.ID
	}
	// the ticket row links only the first client
	if len(raw.Clients) > 0 {
		ticket.ClientID = &raw.Clients[0].ID
	}

	result.Ticket = ticket

	return result, nil
}

func personUnit(p *movidesk.Person) (PersonUnit, error) {
	unit := PersonUnit{
		Person: models.Person{
			ID:           p.ID,
			BusinessName: p.BusinessName,
			Email:        p.Email,
			Phone:        p.Phone,
			PersonType:   p.PersonType,
			ProfileType:  p.ProfileType,
			IsDeleted:    p.IsDeleted,
		},
	}

	if p.ID == "" {
		return unit, fmt.Errorf("%w: person without id", ErrMalformedPayload)
	}

	if org := p.Organization; org != nil {
		// organizations do not nest
		if org.Organization != nil {
			return unit, fmt.Errorf("%w: organization nested below depth 1", ErrMalformedPayload)
		}
		if org.ID == "" {
			return unit, fmt.Errorf("%w: organization without id", ErrMalformedPayload)
		}
		unit.Organization = &models.Person{
			ID:           org.ID,
			BusinessName: org.BusinessName,
			Email:        org.Email,
			Phone:        org.Phone,
			PersonType:   org.PersonType,
			ProfileType:  org.ProfileType,
			IsDeleted:    org.IsDeleted,
		}
		unit.Person.OrganizationID = &org.ID
	}

	return unit, nil
}

func toTime(t *movidesk.Time) *time.Time {
	if t == nil || t.Time.IsZero() {
		return nil
	}
	value := t.Time
	return &value
}
