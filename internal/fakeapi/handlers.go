package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/gravadigital/simradar/internal/domain/event"
	"github.com/gravadigital/simradar/internal/domain/membership"
	"github.com/gravadigital/simradar/internal/logger"
	"github.com/gravadigital/simradar/internal/response"
)

// Ack messages, as the real backend words them
const (
	MsgAdded        = "User event added successfully"
	MsgAlreadyThere = "The log already exists"
	MsgDeleted      = "Log deleted successfully"
	MsgNotFound     = "Log not found"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the backend endpoints from a Store
type Handler struct {
	store *Store
	log   *log.Logger
}

// NewHandler creates a handler backed by store
func NewHandler(store *Store) *Handler {
	return &Handler{
		store: store,
		log:   logger.Handler("fakeapi"),
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		// Flask's int converter answers unknown paths with 404
		response.NotFoundError(c, name+" must be an integer")
		return 0, false
	}
	return id, true
}

// GetParticipants handles GET /get_participants/:event_id
func (h *Handler) GetParticipants(c *gin.Context) {
	eventID, ok := idParam(c, "event_id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.Participants(eventID))
}

// ParticipationStatus returns the handler for the status endpoint; field is
// "participates" or "participa" depending on the route family
func (h *Handler) ParticipationStatus(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := idParam(c, "event_id")
		if !ok {
			return
		}
		userID, ok := idParam(c, "user_id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{field: h.store.Participates(eventID, userID)})
	}
}

// AddUserEvent handles POST /add_user_event
func (h *Handler) AddUserEvent(c *gin.Context) {
	var req membership.UserEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	added, err := h.store.Register(req.EventID, req.UserID)
	if err != nil {
		h.log.Warn("Registration failed", "event_id", req.EventID, "user_id", req.UserID, "error", err)
		response.Ack(c, "Error adding the user event")
		return
	}
	if !added {
		response.Ack(c, MsgAlreadyThere)
		return
	}
	response.Ack(c, MsgAdded)
}

// DeleteUserEvent handles DELETE /delete_user_event
func (h *Handler) DeleteUserEvent(c *gin.Context) {
	var req membership.UserEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	h.ack(c, h.store.Unregister(req.EventID, req.UserID))
}

// DeleteEvent handles DELETE /delete_event
func (h *Handler) DeleteEvent(c *gin.Context) {
	var req membership.EventRef
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	h.ack(c, h.store.DeleteEvent(req.EventID))
}

// DeleteUserGroup handles DELETE /delete_user_group
func (h *Handler) DeleteUserGroup(c *gin.Context) {
	var req membership.UserGroup
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	h.ack(c, h.store.RemoveMember(req.UserID, req.GroupID))
}

// DeleteGroup handles DELETE /delete_group
func (h *Handler) DeleteGroup(c *gin.Context) {
	var req membership.GroupRef
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	h.ack(c, h.store.DeleteGroup(req.GroupID))
}

// DeleteUser handles DELETE /delete_user
func (h *Handler) DeleteUser(c *gin.Context) {
	var req membership.UserRef
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	h.ack(c, h.store.DeleteUser(req.UserID))
}

func (h *Handler) ack(c *gin.Context, found bool) {
	if found {
		response.Ack(c, MsgDeleted)
		return
	}
	response.Ack(c, MsgNotFound)
}

// ExportParticipants handles GET /export_participants/:event_id
func (h *Handler) ExportParticipants(c *gin.Context) {
	eventID, ok := idParam(c, "event_id")
	if !ok {
		return
	}

	var names []string
	for _, p := range h.store.Participants(eventID) {
		names = append(names, p.FullName())
	}

	data, err := BuildSheet([]string{"Name"}, [][]string{names})
	if err != nil {
		h.log.Error("Failed to build export", "event_id", eventID, "error", err)
		response.InternalServerError(c, "Failed to build export")
		return
	}
	attach(c, event.ExportFilename(eventID), data)
}

// ExportParticipantsByTitle handles POST /export_participants_by_title
func (h *Handler) ExportParticipantsByTitle(c *gin.Context) {
	title := c.PostForm("eventTitle")
	if title == "" {
		response.BadRequestError(c, "Must select a title.")
		return
	}

	events := h.store.EventsByTitle(title)
	if len(events) == 0 {
		response.NotFoundError(c, "No events with that title")
		return
	}

	// one column per slot; events sharing a slot share a column
	var headers []string
	columns := map[string][]string{}
	for _, e := range events {
		if _, seen := columns[e.Slot]; !seen {
			headers = append(headers, e.Slot)
			columns[e.Slot] = []string{}
		}
		for _, p := range h.store.Participants(e.ID) {
			columns[e.Slot] = append(columns[e.Slot], p.FullName())
		}
	}
	values := make([][]string, 0, len(headers))
	for _, header := range headers {
		values = append(values, columns[header])
	}

	data, err := BuildSheet(headers, values)
	if err != nil {
		h.log.Error("Failed to build export", "title", title, "error", err)
		response.InternalServerError(c, "Failed to build export")
		return
	}
	attach(c, event.TitleExportFilename(title), data)
}

func attach(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// BuildSheet renders columns into an xlsx workbook laid out like a pandas
// DataFrame export: an unnamed index column, then one column per header.
// Shorter columns are padded with empty cells.
func BuildSheet(headers []string, columns [][]string) ([]byte, error) {
	if len(headers) != len(columns) {
		return nil, errors.New("headers and columns differ in length")
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := 0
	for _, col := range columns {
		rows = max(rows, len(col))
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for r := 0; r < rows; r++ {
		indexCell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, indexCell, r); err != nil {
			return nil, err
		}
		for i, col := range columns {
			value := ""
			if r < len(col) {
				value = col[r]
			}
			cell, err := excelize.CoordinatesToCellName(i+2, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
