package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/movidesk"
)

func strPtr(s string) *string { return &s }

func validTicket() *movidesk.Ticket {
	return &movidesk.Ticket{
		ID:         movidesk.ID("42"),
		Subject:    "Printer on fire",
		Status:     "New",
		BaseStatus: "New",
		Origin:     2,
	}
}

func TestNormalize_MinimalTicket(t *testing.T) {
	result, err := New().Normalize(validTicket())
	require.NoError(t, err)

	assert.Equal(t, "42", result.Ticket.ID)
	assert.Equal(t, "Printer on fire", result.Ticket.Subject)
	assert.Empty(t, result.Persons)
	assert.Empty(t, result.Clients)
	assert.Empty(t, result.Actions)
	assert.Nil(t, result.Ticket.OwnerID)
	assert.Nil(t, result.Ticket.ClientID)
	assert.Nil(t, result.Ticket.CreatedDate)
}

func TestNormalize_NilTicket(t *testing.T) {
	_, err := New().Normalize(nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*movidesk.Ticket)
	}{
		{"no id", func(tk *movidesk.Ticket) { tk.ID = "" }},
		{"no subject", func(tk *movidesk.Ticket) { tk.Subject = "" }},
		{"no status", func(tk *movidesk.Ticket) { tk.Status = "" }},
		{"no base status", func(tk *movidesk.Ticket) { tk.BaseStatus = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validTicket()
			tt.mutate(raw)
			_, err := New().Normalize(raw)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestNormalize_PersonUnits(t *testing.T) {
	raw := validTicket()
	raw.Owner = &movidesk.Person{ID: "p1", BusinessName: strPtr("Agent")}
	raw.CreatedBy = &movidesk.Person{ID: "p2"}
	raw.SlaSolutionChangedBy = &movidesk.Person{
		ID:           "p3",
		Organization: &movidesk.Person{ID: "org1"},
	}

	result, err := New().Normalize(raw)
	require.NoError(t, err)

	require.Len(t, result.Persons, 3)
	assert.Equal(t, "p1", result.Persons[0].Person.ID)
	assert.Nil(t, result.Persons[0].Organization)
	assert.Equal(t, "p2", result.Persons[1].Person.ID)
	assert.Equal(t, "p3", result.Persons[2].Person.ID)
	require.NotNil(t, result.Persons[2].Organization)
	assert.Equal(t, "org1", result.Persons[2].Organization.ID)
	require.NotNil(t, result.Persons[2].Person.OrganizationID)
	assert.Equal(t, "org1", *result.Persons[2].Person.OrganizationID)

	require.NotNil(t, result.Ticket.OwnerID)
	assert.Equal(t, "p1", *result.Ticket.OwnerID)
	require.NotNil(t, result.Ticket.CreatedByID)
	assert.Equal(t, "p2", *result.Ticket.CreatedByID)
	require.NotNil(t, result.Ticket.SlaSolutionChangedByID)
	assert.Equal(t, "p3", *result.Ticket.SlaSolutionChangedByID)
}

func TestNormalize_AbsentPersonsAreOmitted(t *testing.T) {
	result, err := New().Normalize(validTicket())
	require.NoError(t, err)
	assert.Empty(t, result.Persons)
}

func TestNormalize_FirstClientOnlyOnTicket(t *testing.T) {
	raw := validTicket()
	raw.Clients = []movidesk.Person{
		{ID: "c1"},
		{ID: "c2", Organization: &movidesk.Person{ID: "o2"}},
		{ID: "c3"},
	}

	result, err := New().Normalize(raw)
	require.NoError(t, err)

	// every client becomes a person row, the ticket links only the first
	require.Len(t, result.Clients, 3)
	require.NotNil(t, result.Ticket.ClientID)
	assert.Equal(t, "c1", *result.Ticket.ClientID)

	require.NotNil(t, result.Clients[1].Organization)
	assert.Equal(t, "o2", result.Clients[1].Organization.ID)
}

func TestNormalize_OrganizationNestingTooDeep(t *testing.T) {
	raw := validTicket()
	raw.Clients = []movidesk.Person{
		{
			ID: "c1",
			Organization: &movidesk.Person{
				ID:           "o1",
				Organization: &movidesk.Person{ID: "o2"},
			},
		},
	}

	_, err := New().Normalize(raw)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalize_PersonWithoutID(t *testing.T) {
	raw := validTicket()
	raw.Owner = &movidesk.Person{BusinessName: strPtr("no id")}

	_, err := New().Normalize(raw)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalize_Actions(t *testing.T) {
	created := movidesk.Time{Time: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}
	raw := validTicket()
	raw.Actions = []movidesk.Action{
		{
			ID:          1,
			Type:        1,
			Origin:      2,
			Description: strPtr("opened"),
			CreatedDate: &created,
			CreatedBy:   &movidesk.Person{ID: "p9"},
		},
		{ID: 2, Type: 2, Origin: 1},
	}

	result, err := New().Normalize(raw)
	require.NoError(t, err)

	require.Len(t, result.Actions, 2)
	first := result.Actions[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "42", first.TicketID)
	require.NotNil(t, first.CreatedDate)
	assert.Equal(t, created.Time, *first.CreatedDate)
	require.NotNil(t, first.CreatedByID)
	assert.Equal(t, "p9", *first.CreatedByID)

	second := result.Actions[1]
	assert.Nil(t, second.CreatedDate)
	assert.Nil(t, second.CreatedByID)

	// the full action list also rides on the ticket row as a blob
	assert.Equal(t, result.Actions, result.Ticket.Actions.Data)
}

func TestNormalize_ZeroDatesBecomeNil(t *testing.T) {
	raw := validTicket()
	raw.ClosedIn = &movidesk.Time{}

	result, err := New().Normalize(raw)
	require.NoError(t, err)
	assert.Nil(t, result.Ticket.ClosedIn)
}
