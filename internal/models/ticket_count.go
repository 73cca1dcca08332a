package models

// TicketCounts summarises how many tickets exist and how many of them have
// preferences on file.
type TicketCounts struct {
	Total     int `json:"total_count"`
	Submitted int `json:"submitted_count"`
}
