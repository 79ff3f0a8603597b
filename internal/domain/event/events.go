package event

import "fmt"

// HasRoom reports whether one more participant fits: the current count must be
// strictly below the maximum
func HasRoom(count, max int) bool {
	return count < max
}

// ExportFilename is the name the backend gives an event export
func ExportFilename(eventID int64) string {
	return fmt.Sprintf("participants_event_%d.xlsx", eventID)
}

// TitleExportFilename is the name the backend gives an export by title
func TitleExportFilename(title string) string {
	return fmt.Sprintf("participants_%s.xlsx", title)
}
