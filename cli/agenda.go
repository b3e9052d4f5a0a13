// ABOUTME: Agenda CLI commands
// ABOUTME: Schedule outreach, list by day, toggle done, delete, and print the month calendar
package cli

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/sustentalski/salescrm/calendar"
	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

// AddAgendaCommand schedules an outreach action.
func AddAgendaCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("add-agenda", flag.ExitOnError)
	clientID := fs.String("client", "", "Prefill contact details from this client ID")
	name := fs.String("name", "", "Contact name (required unless --client)")
	related := fs.String("related", "", "Person who referred the contact")
	relation := fs.String("relation", "", "How the contact relates to that person")
	company := fs.String("company", "", "Company name")
	condo := fs.String("condominium", "", "Condominium name")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	when := fs.String("when", "", "Date and time (YYYY-MM-DDTHH:MM)")
	kind := fs.String("type", "", "ligação, whatsapp, visita, reunião or email")
	priority := fs.String("priority", "", "alta, média or baixa")
	source := fs.String("source", "", "Lead source")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	var item models.AgendaItem
	if *clientID != "" {
		draft, err := state.AgendaDraftFromClient(*clientID)
		if err != nil {
			return err
		}
		item = draft
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&item.ContactName, *name)
	set(&item.RelatedPerson, *related)
	set(&item.RelationNote, *relation)
	set(&item.Company, *company)
	set(&item.Condominium, *condo)
	set(&item.Phone, *phone)
	set(&item.Email, *email)
	set(&item.Datetime, *when)
	set(&item.Source, *source)
	set(&item.Notes, *notes)
	if *kind != "" {
		item.ContactType = models.ContactType(*kind)
	}
	if *priority != "" {
		item.Priority = models.Priority(*priority)
	}

	if item.ContactName == "" {
		return fmt.Errorf("--name is required")
	}
	if item.Datetime != "" {
		if _, ok := item.When(); !ok {
			return fmt.Errorf("invalid --when %q (want YYYY-MM-DDTHH:MM)", item.Datetime)
		}
	}

	created, err := state.AddAgendaItem(item)
	if err != nil {
		return fmt.Errorf("failed to create agenda item: %w", err)
	}

	printf("✓ Agenda item created: %s (ID: %s)\n", created.ContactName, created.ID)
	printf("  %s, prioridade %s\n", created.ContactType, created.Priority)
	if t, ok := created.When(); ok {
		printf("  When: %s\n", t.Format("02/01/2006 15:04"))
	}
	return nil
}

// ListAgendaCommand lists agenda items.
func ListAgendaCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("list-agenda", flag.ExitOnError)
	query := fs.String("query", "", "Search text")
	day := fs.String("day", "", "Only items on this day (YYYY-MM-DD)")
	open := fs.Bool("open", false, "Hide items already done")
	_ = fs.Parse(args)

	items := state.SearchAgenda(*query)
	if *day != "" {
		d, err := time.ParseInLocation("2006-01-02", *day, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --day: %w", err)
		}
		items = calendar.ItemsOn(items, d)
	}

	var shown []models.AgendaItem
	for _, it := range items {
		if *open && it.Done {
			continue
		}
		shown = append(shown, it)
	}

	if len(shown) == 0 {
		printLine("No agenda items found")
		return nil
	}

	w := newTable("  \tWHEN\tCONTACT\tTYPE\tPRIORITY\tCOMPANY\tID", "  \t----\t-------\t----\t--------\t-------\t--")
	for _, it := range shown {
		mark := "○"
		if it.Done {
			mark = "✓"
		}
		when := "-"
		if t, ok := it.When(); ok {
			when = t.Format("02/01 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, when, it.ContactName, it.ContactType, it.Priority, dash(it.Company), it.ID)
	}
	return w.Flush()
}

// ToggleAgendaCommand flips an item's done flag.
func ToggleAgendaCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("agenda item ID required")
	}
	item, err := state.ToggleAgendaDone(args[0])
	if err != nil {
		return err
	}
	status := "open"
	if item.Done {
		status = "done"
	}
	printf("✓ %s marked %s\n", item.ContactName, status)
	return nil
}

// DeleteAgendaCommand removes an agenda item.
func DeleteAgendaCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("agenda item ID required")
	}
	if err := state.DeleteAgendaItem(args[0]); err != nil {
		return err
	}
	printf("✓ Deleted agenda item %s\n", args[0])
	return nil
}

// CalendarCommand prints a month grid with days that have agenda items marked,
// followed by the selected day's items.
func CalendarCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	month := fs.String("month", "", "Month to show (YYYY-MM, default current)")
	day := fs.Int("day", 0, "Day to select (default today)")
	_ = fs.Parse(args)

	nav := calendar.NewNavigator(time.Now)
	if *month != "" {
		m, err := time.ParseInLocation("2006-01", *month, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --month: %w", err)
		}
		y, cur := nav.Month()
		delta := (m.Year()-y)*12 + int(m.Month()-cur)
		for ; delta > 0; delta-- {
			nav.Next()
		}
		for ; delta < 0; delta++ {
			nav.Prev()
		}
	}
	if *day > 0 {
		nav.Select(*day)
	}

	grid := calendar.ProjectFor(nav, state.Agenda())
	printLine(RenderMonth(grid))

	selected := nav.Selected()
	printf("\n%s\n", selected.Format("02/01/2006"))
	if len(grid.SelectedItems) == 0 {
		printLine("  Nenhum compromisso")
		return nil
	}
	for _, it := range grid.SelectedItems {
		t, _ := it.When()
		mark := "○"
		if it.Done {
			mark = "✓"
		}
		printf("  %s %s %s (%s)\n", mark, t.Format("15:04"), it.ContactName, it.ContactType)
	}
	return nil
}

var weekdayHeader = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// RenderMonth draws a month grid. Days with events carry a "*", today is
// wrapped in brackets and the selected day in angle brackets.
func RenderMonth[T calendar.Dated](m calendar.Month[T]) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %d\n", monthNames[m.Month-1], m.Year))
	for _, h := range weekdayHeader {
		b.WriteString(fmt.Sprintf("%-6s", h))
	}
	b.WriteString("\n")

	for _, week := range m.Weeks() {
		for _, d := range week {
			if d == nil {
				b.WriteString("      ")
				continue
			}
			cell := fmt.Sprintf("%2d", d.Number)
			switch {
			case d.Selected:
				cell = "<" + cell + ">"
			case d.Today:
				cell = "[" + cell + "]"
			default:
				cell = " " + cell + " "
			}
			if d.HasEvent {
				cell += "*"
			}
			b.WriteString(fmt.Sprintf("%-6s", cell))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var monthNames = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}
