package services

import "fmt"

// Notifier is the real-time broadcast sink. The websocket hub satisfies it;
// services never touch sockets directly.
type Notifier interface {
	Notify(roomID, event string, payload interface{})
}

// tournamentRoom names the broadcast room of one tournament.
func tournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}
