// Package locale holds the per-language routes and messages of the action
// dispatcher. The English and Spanish front ends differ in a few endpoint
// names, in the participation status field and in whether destructive actions
// ask for confirmation.
package locale

import (
	"fmt"

	"golang.org/x/text/language"
)

// Routes are the endpoint templates that vary between locales
type Routes struct {
	// Participants takes the event id
	Participants string
	// ParticipationStatus takes the event id and the user id
	ParticipationStatus string
	// StatusField is the boolean field of the participation status response
	StatusField string
}

// ParticipantsPath renders the participant list path for an event
func (r Routes) ParticipantsPath(eventID int64) string {
	return fmt.Sprintf(r.Participants, eventID)
}

// StatusPath renders the participation status path
func (r Routes) StatusPath(eventID, userID int64) string {
	return fmt.Sprintf(r.ParticipationStatus, eventID, userID)
}

// Messages are the user facing strings of the dispatcher
type Messages struct {
	EventFull           string
	ConfirmDeleteEvent  string
	ConfirmRemoveMember string
	ConfirmDeleteGroup  string
	ConfirmDeleteUser   string
	ServerResponse      string
}

// Locale bundles routes, messages and confirmation behaviour for one language
type Locale struct {
	Tag      language.Tag
	Routes   Routes
	Messages Messages
	// Confirms is true when destructive actions ask before sending
	Confirms bool
}

// English is the default locale
func English() Locale {
	return Locale{
		Tag: language.English,
		Routes: Routes{
			Participants:        "/get_participants/%d",
			ParticipationStatus: "/get_participation_status/%d/%d",
			StatusField:         "participates",
		},
		Messages: Messages{
			EventFull:           "The event has reached the maximum number of participants",
			ConfirmDeleteEvent:  "Are you sure you want to delete this event?",
			ConfirmRemoveMember: "Are you sure you want to remove this user from the group?",
			ConfirmDeleteGroup:  "Are you sure you want to delete this group?",
			ConfirmDeleteUser:   "Are you sure you want to delete this user?",
			ServerResponse:      "Server response:",
		},
		Confirms: true,
	}
}

// Spanish mirrors the Spanish front end, which never asks for confirmation
func Spanish() Locale {
	return Locale{
		Tag: language.Spanish,
		Routes: Routes{
			Participants:        "/obtener_participantes/%d",
			ParticipationStatus: "/obtener_estado_participacion/%d/%d",
			StatusField:         "participa",
		},
		Messages: Messages{
			EventFull:           "El evento ya tiene el número máximo de participantes",
			ConfirmDeleteEvent:  "¿Seguro que quieres eliminar este evento?",
			ConfirmRemoveMember: "¿Seguro que quieres quitar a este usuario del grupo?",
			ConfirmDeleteGroup:  "¿Seguro que quieres eliminar este grupo?",
			ConfirmDeleteUser:   "¿Seguro que quieres eliminar este usuario?",
			ServerResponse:      "Respuesta del servidor:",
		},
		Confirms: false,
	}
}

// All returns every supported locale, English first
func All() []Locale {
	return []Locale{English(), Spanish()}
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// Match picks the locale closest to a BCP 47 tag such as "es-AR". Unknown or
// malformed tags fall back to English.
func Match(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return English()
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return English()
	}
	return All()[idx]
}
