package participant

import "strings"

// Participant is a user registered for an event, as listed by the backend
type Participant struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// FullName joins name and surname the way the export sheet does
func (p Participant) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.Surname)
}
