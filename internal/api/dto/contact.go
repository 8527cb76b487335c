package dto

// ContactRequest is the payload for creating or replacing a contact.
type ContactRequest struct {
	Phone     string   `json:"phone" binding:"required"`
	Recipient string   `json:"recipient" binding:"required"`
	Hour      int      `json:"hour" binding:"min=0,max=23"`
	Minute    int      `json:"minute" binding:"min=0,max=59"`
	Weekdays  []string `json:"weekdays" binding:"required"`
	Enabled   *bool    `json:"enabled"`
}

// ContactResponse is one contact together with its list index, which the
// edit and remove endpoints address.
type ContactResponse struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Phone     string   `json:"phone"`
	Recipient string   `json:"recipient"`
	Hour      int      `json:"hour"`
	Minute    int      `json:"minute"`
	Weekdays  []string `json:"weekdays"`
	Enabled   bool     `json:"enabled"`
}

// ContactsResponse wraps the full contact list.
type ContactsResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Total    int               `json:"total"`
}

// SchedulerStatusResponse reports the loop state and the next week of runs.
type SchedulerStatusResponse struct {
	State    string `json:"state"`
	Upcoming string `json:"upcoming"`
}

// SendRecordResponse is one entry of the send history.
type SendRecordResponse struct {
	ID        int64  `json:"id"`
	Phone     string `json:"phone"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	FiredAt   string `json:"fired_at"`
}

// ErrorResponse carries a human-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
