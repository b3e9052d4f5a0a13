// ABOUTME: Client CLI commands
// ABOUTME: Human-friendly commands for registering, listing and deleting clients and showing history
package cli

import (
	"flag"
	"fmt"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

// AddClientCommand registers a new client.
func AddClientCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("add-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name (required)")
	address := fs.String("address", "", "Street address")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	social := fs.String("social", "", "Social network handles")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD)")
	company := fs.String("company", "", "Company name")
	role := fs.String("role", "", "Role at the company")
	approach := fs.String("approach", "", "How the client was approached")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	client, err := state.AddClient(models.Client{
		Name:          *name,
		Address:       *address,
		Phone:         *phone,
		Email:         *email,
		SocialHandles: *social,
		Birthday:      *birthday,
		Company:       *company,
		Role:          *role,
		Approach:      *approach,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	printf("✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
	if client.Company != "" {
		printf("  Company: %s\n", client.Company)
	}
	if client.Phone != "" {
		printf("  Phone: %s\n", client.Phone)
	}
	if client.Email != "" {
		printf("  Email: %s\n", client.Email)
	}
	return nil
}

// ListClientsCommand lists clients, optionally filtered by a search query.
func ListClientsCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ExitOnError)
	query := fs.String("query", "", "Search any field")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	clients := state.SearchClients(*query)
	if len(clients) == 0 {
		printLine("No clients found")
		return nil
	}
	if *limit > 0 && len(clients) > *limit {
		clients = clients[:*limit]
	}

	w := newTable("NAME\tCOMPANY\tROLE\tPHONE\tEMAIL\tID", "----\t-------\t----\t-----\t-----\t--")
	for _, c := range clients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, dash(c.Company), dash(c.Role), dash(c.Phone), dash(c.Email), c.ID)
	}
	_ = w.Flush()

	printf("\nTotal: %d client(s)\n", len(clients))
	return nil
}

// DeleteClientCommand deletes a client. The follow-up record is kept.
func DeleteClientCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("delete-client", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("client ID required")
	}
	id := fs.Arg(0)

	client, err := state.GetClient(id)
	if err != nil {
		return err
	}
	if err := state.DeleteClient(id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	printf("✓ Deleted client: %s\n", client.Name)
	return nil
}

// ClientHistoryCommand shows agenda items and follow-ups for a client name.
func ClientHistoryCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("client name or ID required")
	}
	name := fs.Arg(0)
	if c, err := state.GetClient(name); err == nil {
		name = c.Name
	}

	entries := state.ClientHistory(name)
	printf("Histórico de %s\n\n", name)
	if len(entries) == 0 {
		printLine("Nenhuma interação encontrada")
		return nil
	}

	w := newTable("DATE\tKIND\tDESCRIPTION", "----\t----\t-----------")
	for _, e := range entries {
		date := "-"
		if !e.Date.IsZero() {
			date = e.Date.Format("02/01/2006 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", date, e.Kind, truncate(e.Description, 60))
	}
	return w.Flush()
}
