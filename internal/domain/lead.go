package domain

import "time"

// LeadStatus is the pipeline stage of a lead. Operators advance leads
// manually; no transition order is enforced.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusConverted LeadStatus = "converted"
	StatusClosed    LeadStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusClosed:
		return true
	}
	return false
}

// LeadPriority is the operator-assigned priority, independent of status.
type LeadPriority string

const (
	PriorityLow    LeadPriority = "low"
	PriorityMedium LeadPriority = "medium"
	PriorityHigh   LeadPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p LeadPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Lead is a contact-form submission tracked through the sales pipeline.
// The backend assigns ID and timestamps on creation; status and priority
// always hold one of the enumerated values.
type Lead struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Company   string       `json:"company,omitempty"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Status    LeadStatus   `json:"status"`
	Priority  LeadPriority `json:"priority"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewLeadInput is the submitter-supplied part of a lead. Status and
// priority are forced server-side (new/medium) and cannot be set here.
type NewLeadInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// LeadPatch carries a partial update; nil fields are left untouched.
type LeadPatch struct {
	Name     *string       `json:"name,omitempty"`
	Email    *string       `json:"email,omitempty"`
	Company  *string       `json:"company,omitempty"`
	Subject  *string       `json:"subject,omitempty"`
	Message  *string       `json:"message,omitempty"`
	Status   *LeadStatus   `json:"status,omitempty"`
	Priority *LeadPriority `json:"priority,omitempty"`
	Notes    *string       `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *LeadPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Company == nil &&
		p.Subject == nil && p.Message == nil && p.Status == nil &&
		p.Priority == nil && p.Notes == nil
}

// LeadStats are the dashboard counters computed over the local collection.
type LeadStats struct {
	Total        int `json:"total"`
	New          int `json:"new"`
	Qualified    int `json:"qualified"`
	Converted    int `json:"converted"`
	HighPriority int `json:"highPriority"`
}
