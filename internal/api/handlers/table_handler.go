package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/tableview"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

//go:embed templates/messages.html
var templateFS embed.FS

const tablePageSize = 25

// TableHandler serves the admin HTML message table with its expandable
// detail rows
type TableHandler struct {
	messageRepo repository.MessageRepository
	view        *tableview.View
	tmpl        *template.Template
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(messageRepo repository.MessageRepository, view *tableview.View) (*TableHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/messages.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse message table template: %w", err)
	}

	return &TableHandler{
		messageRepo: messageRepo,
		view:        view,
		tmpl:        tmpl,
	}, nil
}

// TableRow is one rendered record with its synthesized detail rows
type TableRow struct {
	tableview.Row
	Details      tableview.DetailRows
	HasDetails   bool
	DetailsShown bool
	ContentShown bool
}

// TablePage is the template payload for the message table
type TablePage struct {
	Rows       []TableRow
	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevQuery  string
	NextQuery  string
	Query      string
}

// List handles GET /messages
func (h *TableHandler) List(c echo.Context) error {
	filter := models.MessageFilter{}
	if v := c.QueryParam("channel_id"); v != "" {
		if id, err := validator.ValidateSnowflake(v); err == nil {
			filter.ChannelID = id
		}
	}
	if v := c.QueryParam("guild_id"); v != "" {
		if id, err := validator.ValidateSnowflake(v); err == nil {
			filter.GuildID = id
		}
	}
	filter.IncludeDeleted = c.QueryParam("include_deleted") == "true"

	page := 1
	if p := c.QueryParam("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	offset := (page - 1) * tablePageSize

	messages, total, err := h.messageRepo.ListDetailed(c.Request().Context(), filter, tablePageSize, offset)
	if err != nil {
		return response.InternalError(c, "failed to load messages")
	}

	rows := make([]TableRow, 0, len(messages))
	for i := range messages {
		row := tableview.BuildRow(&messages[i])
		h.view.Register(row.ID)

		details := tableview.BuildDetailRows(row)
		rows = append(rows, TableRow{
			Row:          row,
			Details:      details,
			HasDetails:   len(details.Sections) > 0,
			DetailsShown: h.view.DetailsShown(row.ID),
			ContentShown: h.view.ContentShown(row.ID),
		})
	}

	totalPages := int((total + tablePageSize - 1) / tablePageSize)
	data := TablePage{
		Rows:       rows,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevQuery:  pageQuery(c, page-1),
		NextQuery:  pageQuery(c, page+1),
		Query:      filterQuery(c),
	}

	var buf strings.Builder
	if err := h.tmpl.Execute(&buf, data); err != nil {
		return response.InternalError(c, "failed to render message table")
	}
	return c.HTML(http.StatusOK, buf.String())
}

// ToggleDetails handles POST /messages/:id/toggle-details.
// Unknown identifiers are silent no-ops, the redirect happens either way.
func (h *TableHandler) ToggleDetails(c echo.Context) error {
	if id, err := validator.ValidateSnowflake(c.Param("id")); err == nil {
		h.view.ToggleDetails(id)
	}
	return h.redirectBack(c)
}

// ToggleContent handles POST /messages/:id/toggle-content
func (h *TableHandler) ToggleContent(c echo.Context) error {
	if id, err := validator.ValidateSnowflake(c.Param("id")); err == nil {
		h.view.ToggleContent(id)
	}
	return h.redirectBack(c)
}

func (h *TableHandler) redirectBack(c echo.Context) error {
	target := c.FormValue("return")
	if target == "" || !strings.HasPrefix(target, "/messages") {
		target = "/messages"
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// pageQuery builds the query string for a pagination link, keeping the
// active filters attached
func pageQuery(c echo.Context, page int) string {
	params := []string{fmt.Sprintf("page=%d", page)}
	for _, key := range []string{"channel_id", "guild_id", "include_deleted"} {
		if v := c.QueryParam(key); v != "" {
			params = append(params, key+"="+v)
		}
	}
	return "?" + strings.Join(params, "&")
}

// filterQuery rebuilds the filter and pagination query string so the
// toggle forms can return to the same page
func filterQuery(c echo.Context) string {
	params := make([]string, 0, 4)
	for _, key := range []string{"page", "channel_id", "guild_id", "include_deleted"} {
		if v := c.QueryParam(key); v != "" {
			params = append(params, key+"="+v)
		}
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + strings.Join(params, "&")
}
