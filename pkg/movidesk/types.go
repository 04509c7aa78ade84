package movidesk

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Movidesk returns timestamps without a zone offset ("2006-01-02T15:04:05.9999999").
// Time accepts both that layout and RFC 3339.
const localLayout = "2006-01-02T15:04:05"

type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(localLayout, s)
	}
	if err != nil {
		return fmt.Errorf("invalid movidesk timestamp %q: %w", s, err)
	}

	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}

// ID tolerates ticket ids arriving either as JSON numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid ticket id %s: %w", data, err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid ticket id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Person is the shape Movidesk uses for owners, creators, clients and
// organizations alike. Organization nesting deeper than one level is not a
// valid payload.
type Person struct {
	ID           string  `json:"id"`
	BusinessName *string `json:"businessName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	PersonType   int     `json:"personType"`
	ProfileType  int     `json:"profileType"`
	IsDeleted    bool    `json:"isDeleted"`
	Organization *Person `json:"organization"`
}

type Action struct {
	ID              int     `json:"id"`
	Type            int     `json:"type"`
	Origin          int     `json:"origin"`
	Description     *string `json:"description"`
	HTMLDescription *string `json:"htmlDescription"`
	Status          *string `json:"status"`
	Justification   *string `json:"justification"`
	CreatedDate     *Time   `json:"createdDate"`
	CreatedBy       *Person `json:"createdBy"`
	IsDeleted       bool    `json:"isDeleted"`
}

type Ticket struct {
	ID                       ID       `json:"id" validate:"required"`
	Protocol                 *string  `json:"protocol"`
	Type                     *int     `json:"type"`
	Subject                  string   `json:"subject" validate:"required"`
	Category                 *string  `json:"category"`
	Urgency                  *string  `json:"urgency"`
	Status                   string   `json:"status" validate:"required"`
	BaseStatus               string   `json:"baseStatus" validate:"required"`
	Justification            *string  `json:"justification"`
	Origin                   int      `json:"origin"`
	CreatedDate              *Time    `json:"createdDate"`
	OriginEmailAccount       *string  `json:"originEmailAccount"`
	Owner                    *Person  `json:"owner"`
	OwnerTeam                *string  `json:"ownerTeam"`
	CreatedBy                *Person  `json:"createdBy"`
	ServiceFirstLevelID      *int     `json:"serviceFirstLevelId"`
	ServiceFirstLevel        *string  `json:"serviceFirstLevel"`
	ServiceSecondLevel       *string  `json:"serviceSecondLevel"`
	ServiceThirdLevel        *string  `json:"serviceThirdLevel"`
	ContactForm              *string  `json:"contactForm"`
	Cc                       *string  `json:"cc"`
	ResolvedIn               *Time    `json:"resolvedIn"`
	ReopenedIn               *Time    `json:"reopenedIn"`
	ClosedIn                 *Time    `json:"closedIn"`
	LastActionDate           *Time    `json:"lastActionDate"`
	ActionCount              int      `json:"actionCount"`
	LastUpdate               *Time    `json:"lastUpdate"`
	LifetimeWorkingTime      *int     `json:"lifetimeWorkingTime"`
	StoppedTime              *int     `json:"stoppedTime"`
	StoppedTimeWorkingTime   *int     `json:"stoppedTimeWorkingTime"`
	ResolvedInFirstCall      bool     `json:"resolvedInFirstCall"`
	ChatWidget               *string  `json:"chatWidget"`
	ChatGroup                *string  `json:"chatGroup"`
	ChatTalkTime             *int     `json:"chatTalkTime"`
	ChatWaitingTime          *int     `json:"chatWaitingTime"`
	SlaAgreement             *string  `json:"slaAgreement"`
	SlaAgreementRule         *string  `json:"slaAgreementRule"`
	SlaSolutionTime          *int     `json:"slaSolutionTime"`
	SlaResponseTime          *int     `json:"slaResponseTime"`
	SlaSolutionChangedByUser *bool    `json:"slaSolutionChangedByUser"`
	SlaSolutionChangedBy     *Person  `json:"slaSolutionChangedBy"`
	SlaSolutionDate          *Time    `json:"slaSolutionDate"`
	SlaSolutionDateIsPaused  bool     `json:"slaSolutionDateIsPaused"`
	SlaResponseDate          *Time    `json:"slaResponseDate"`
	SlaRealResponseDate      *Time    `json:"slaRealResponseDate"`
	Clients                  []Person `json:"clients"`
	Actions                  []Action `json:"actions"`
}
