package hh

// Employer identifies the company behind a vacancy.
type Employer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Vacancy is a single vacancy entry from search or negotiation payloads.
type Vacancy struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	AlternateURL string   `json:"alternate_url"`
	Employer     Employer `json:"employer"`
}

// VacancyPage models one page of a paginated vacancy listing.
type VacancyPage struct {
	Found   int       `json:"found"`
	Pages   int       `json:"pages"`
	PerPage int       `json:"per_page"`
	Page    int       `json:"page"`
	Items   []Vacancy `json:"items"`
}

// NegotiationState carries the lifecycle state of a negotiation. A state id
// of "discard" means the employer rejected the application.
type NegotiationState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Negotiation is one application thread between the applicant and an employer.
type Negotiation struct {
	ID        string           `json:"id"`
	CreatedAt string           `json:"created_at"`
	State     NegotiationState `json:"state"`
	Vacancy   *Vacancy         `json:"vacancy"`
}

// NegotiationPage models one page of the negotiations listing.
type NegotiationPage struct {
	Found   int           `json:"found"`
	Pages   int           `json:"pages"`
	PerPage int           `json:"per_page"`
	Page    int           `json:"page"`
	Items   []Negotiation `json:"items"`
}

// MessageAuthor identifies which side of a negotiation wrote a message.
type MessageAuthor struct {
	ParticipantType string `json:"participant_type"`
}

// Message is a single chat message inside a negotiation.
type Message struct {
	ID     string        `json:"id"`
	Text   string        `json:"text"`
	Author MessageAuthor `json:"author"`
}

// messagePage wraps the /negotiations/{id}/messages payload.
type messagePage struct {
	Items []Message `json:"items"`
}

// User is the authenticated applicant returned by /me.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ApplyRequest carries the form fields of a negotiation creation.
type ApplyRequest struct {
	VacancyID string
	ResumeID  string
	Message   string
}
