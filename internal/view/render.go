package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/frahmantamala/office-ticketing/internal/category"
	"github.com/frahmantamala/office-ticketing/internal/report"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	"github.com/frahmantamala/office-ticketing/internal/user"
)

const (
	columnWidthID       = 6
	columnWidthStatus   = 12
	columnWidthPriority = 10
	columnWidthCategory = 12
	columnWidthAssignee = 18
	columnWidthCreated  = 12
	minTitleWidth       = 12

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// Renderer turns domain values into terminal text no wider than width.
type Renderer struct {
	theme Theme
	width int
	now   func() time.Time
}

func NewRenderer(theme Theme, width int) *Renderer {
	if width <= 0 {
		width = 100
	}
	return &Renderer{theme: theme, width: width, now: time.Now}
}

// WithClock replaces the time source used for overdue markers.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

func (r *Renderer) titleWidth() int {
	fixed := columnWidthID + columnWidthStatus + columnWidthPriority +
		columnWidthCategory + columnWidthAssignee + columnWidthCreated + 2
	if w := r.width - fixed; w > minTitleWidth {
		return w
	}
	return minTitleWidth
}

func cell(text string, width int, style lipgloss.Style) string {
	return style.Width(width).MaxWidth(width).Render(truncate(text, width-1))
}

// TicketList renders one row per ticket under a header. The row whose id
// equals selectedID is highlighted. Overdue tickets carry a "!" marker.
func (r *Renderer) TicketList(tickets []*ticket.Ticket, selectedID int64) string {
	if len(tickets) == 0 {
		return lipgloss.NewStyle().Foreground(r.theme.FaintText).Render("No tickets found.")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(r.theme.HeaderForeground)
	rows := []string{
		cell("ID", columnWidthID+2, header) +
			cell("STATUS", columnWidthStatus, header) +
			cell("PRIORITY", columnWidthPriority, header) +
			cell("TITLE", r.titleWidth(), header) +
			cell("CATEGORY", columnWidthCategory, header) +
			cell("ASSIGNEE", columnWidthAssignee, header) +
			cell("CREATED", columnWidthCreated, header),
	}

	now := r.now()
	for _, t := range tickets {
		rows = append(rows, r.ticketRow(t, t.ID == selectedID, now))
	}
	return strings.Join(rows, "\n")
}

func (r *Renderer) ticketRow(t *ticket.Ticket, selected bool, now time.Time) string {
	base := lipgloss.NewStyle().Foreground(r.theme.NormalText)
	if selected {
		base = base.Background(r.theme.SelectedBackground).Foreground(r.theme.SelectedForeground).Bold(true)
	}

	marker := "  "
	if t.IsOverdue(now) {
		marker = lipgloss.NewStyle().Foreground(r.theme.OverdueText).Render("! ")
	} else if selected {
		marker = "> "
	}

	categoryName := ""
	if t.Category != nil {
		categoryName = t.Category.Name
	}
	assignee := "-"
	if t.AssignedTo != nil {
		assignee = t.AssignedTo.FullName()
	}

	return marker +
		cell(fmt.Sprintf("#%d", t.ID), columnWidthID, base) +
		cell(t.Status.String(), columnWidthStatus, base.Foreground(r.theme.StatusColor(t.Status))) +
		cell(t.Priority.String(), columnWidthPriority, base.Foreground(r.theme.PriorityColor(t.Priority))) +
		cell(t.Title, r.titleWidth(), base) +
		cell(categoryName, columnWidthCategory, base) +
		cell(assignee, columnWidthAssignee, base) +
		cell(t.CreatedAt.Local().Format(dateLayout), columnWidthCreated, base)
}

// TicketDetail renders every field of t followed by its comments. Internal
// comments are left out unless showInternal is set.
func (r *Renderer) TicketDetail(t *ticket.Ticket, showInternal bool) string {
	label := lipgloss.NewStyle().Foreground(r.theme.FaintText).Width(12)
	title := lipgloss.NewStyle().Bold(true).Foreground(r.theme.HeaderForeground)

	var b strings.Builder
	b.WriteString(title.Render(fmt.Sprintf("#%d %s", t.ID, t.Title)))
	b.WriteString("\n\n")

	field := func(name, value string) {
		b.WriteString(label.Render(name) + value + "\n")
	}
	field("Status", lipgloss.NewStyle().Foreground(r.theme.StatusColor(t.Status)).Render(t.Status.String()))
	field("Priority", lipgloss.NewStyle().Foreground(r.theme.PriorityColor(t.Priority)).Render(t.Priority.String()))
	if t.Category != nil {
		field("Category", t.Category.Name)
	}
	if t.CreatedBy != nil {
		field("Created by", t.CreatedBy.FullName())
	}
	if t.AssignedTo != nil {
		field("Assigned to", t.AssignedTo.FullName())
	} else {
		field("Assigned to", "-")
	}
	field("Created", t.CreatedAt.Local().Format(dateTimeLayout))
	if t.DueDate != nil {
		due := t.DueDate.Local().Format(dateLayout)
		if t.IsOverdue(r.now()) {
			due = lipgloss.NewStyle().Foreground(r.theme.OverdueText).Render(due + " (overdue)")
		}
		field("Due", due)
	}
	if t.ResolvedAt != nil {
		field("Resolved", t.ResolvedAt.Local().Format(dateTimeLayout))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(r.width).Render(t.Description))
	b.WriteString("\n")

	comments := make([]*ticket.Comment, 0, len(t.Comments))
	for _, c := range t.Comments {
		if c.IsInternal && !showInternal {
			continue
		}
		comments = append(comments, c)
	}
	if len(comments) == 0 {
		return b.String()
	}

	b.WriteString("\n" + title.Render(fmt.Sprintf("Comments (%d)", len(comments))) + "\n")
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(r.theme.BorderColor).
		PaddingLeft(1)
	for _, c := range comments {
		author := fmt.Sprintf("user %d", c.UserID)
		if c.User != nil {
			author = c.User.FullName()
		}
		heading := author + ", " + c.CreatedAt.Local().Format(dateTimeLayout)
		if c.IsInternal {
			heading += " [internal]"
		}
		b.WriteString(box.Render(lipgloss.NewStyle().Foreground(r.theme.FaintText).Render(heading)+"\n"+c.Content) + "\n")
	}
	return b.String()
}

// PageFooter summarizes the position of p within the result set.
func (r *Renderer) PageFooter(p *ticket.PagedResult) string {
	parts := []string{fmt.Sprintf("Page %d of %d", p.PageNumber, max(p.TotalPages(), 1)), fmt.Sprintf("%d tickets", p.TotalCount)}
	if p.HasPrevious() {
		parts = append(parts, fmt.Sprintf("--page %d for previous", p.PageNumber-1))
	}
	if p.HasNext() {
		parts = append(parts, fmt.Sprintf("--page %d for next", p.PageNumber+1))
	}
	return lipgloss.NewStyle().Foreground(r.theme.FaintText).Render(strings.Join(parts, " | "))
}

func (r *Renderer) UserList(users []*user.User) string {
	if len(users) == 0 {
		return lipgloss.NewStyle().Foreground(r.theme.FaintText).Render("No users found.")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(r.theme.HeaderForeground)
	base := lipgloss.NewStyle().Foreground(r.theme.NormalText)
	faint := lipgloss.NewStyle().Foreground(r.theme.FaintText)

	rows := []string{
		cell("ID", 6, header) + cell("USERNAME", 16, header) + cell("NAME", 24, header) +
			cell("EMAIL", 28, header) + cell("ROLE", 8, header) + cell("ACTIVE", 8, header),
	}
	for _, u := range users {
		style := base
		active := "yes"
		if !u.IsActive {
			style = faint
			active = "no"
		}
		rows = append(rows,
			cell(fmt.Sprint(u.ID), 6, style)+cell(u.Username, 16, style)+cell(u.FullName(), 24, style)+
				cell(u.Email, 28, style)+cell(u.Role.String(), 8, style)+cell(active, 8, style))
	}
	return strings.Join(rows, "\n")
}

func (r *Renderer) CategoryList(categories []*category.Category) string {
	if len(categories) == 0 {
		return lipgloss.NewStyle().Foreground(r.theme.FaintText).Render("No categories found.")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(r.theme.HeaderForeground)
	base := lipgloss.NewStyle().Foreground(r.theme.NormalText)
	descWidth := max(r.width-6-20, minTitleWidth)

	rows := []string{cell("ID", 6, header) + cell("NAME", 20, header) + cell("DESCRIPTION", descWidth, header)}
	for _, c := range categories {
		rows = append(rows, cell(fmt.Sprint(c.ID), 6, base)+cell(c.Name, 20, base)+cell(c.Description, descWidth, base))
	}
	return strings.Join(rows, "\n")
}

// Stats renders the summary counters and one bar per status.
func (r *Renderer) Stats(s *report.TicketStats) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(r.theme.HeaderForeground)
	label := lipgloss.NewStyle().Foreground(r.theme.FaintText).Width(14)

	var b strings.Builder
	b.WriteString(title.Render("Tickets") + "\n")
	b.WriteString(label.Render("Total") + fmt.Sprint(s.Total) + "\n")
	b.WriteString(label.Render("Unresolved") + fmt.Sprint(s.Unresolved()) + "\n")
	overdue := fmt.Sprint(s.Overdue)
	if s.Overdue > 0 {
		overdue = lipgloss.NewStyle().Foreground(r.theme.OverdueText).Render(overdue)
	}
	b.WriteString(label.Render("Overdue") + overdue + "\n")

	b.WriteString("\n" + title.Render("By status") + "\n")
	for _, st := range ticket.Statuses {
		n := s.ByStatus[st]
		if n == 0 {
			continue
		}
		b.WriteString(label.Render(st.String()) + r.bar(n, s.Total, r.theme.StatusColor(st)) + fmt.Sprintf(" %d\n", n))
	}

	b.WriteString("\n" + title.Render("By priority") + "\n")
	for _, p := range ticket.Priorities {
		n := s.ByPriority[p]
		if n == 0 {
			continue
		}
		b.WriteString(label.Render(p.String()) + r.bar(n, s.Total, r.theme.PriorityColor(p)) + fmt.Sprintf(" %d\n", n))
	}

	if len(s.ByCategory) > 0 {
		b.WriteString("\n" + title.Render("By category") + "\n")
		for _, c := range s.ByCategory {
			b.WriteString(label.Render(truncate(c.Name, 13)) + r.bar(c.Total, s.Total, r.theme.NormalText) + fmt.Sprintf(" %d\n", c.Total))
		}
	}
	return b.String()
}

func (r *Renderer) bar(n, total int64, color lipgloss.Color) string {
	width := max(r.width-24, 10)
	filled := 0
	if total > 0 {
		filled = int(int64(width) * n / total)
	}
	if filled == 0 && n > 0 {
		filled = 1
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
}

// Status renders a status line. Lines starting with "Error" are
// highlighted.
func (r *Renderer) Status(message string) string {
	style := lipgloss.NewStyle().Foreground(r.theme.FaintText)
	if strings.HasPrefix(message, "Error") || strings.HasPrefix(message, "Authentication error") {
		style = lipgloss.NewStyle().Foreground(r.theme.ErrorText)
	}
	return style.Render(message)
}

// truncate shortens text to maxWidth cells, ending with an ellipsis.
func truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for length := len(runes) - 1; length >= 0; length-- {
		candidate := string(runes[:length]) + "…"
		if lipgloss.Width(candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}
