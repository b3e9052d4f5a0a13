// ABOUTME: Campaign and weekly strategy CLI commands
// ABOUTME: Create or edit campaigns in place, add strategies linked to a campaign, list and delete both
package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

func channelList(set models.ChannelSet) string {
	var labels []string
	for _, c := range set.Active() {
		labels = append(labels, models.ChannelLabel(c))
	}
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ", ")
}

// SaveCampaignCommand creates a campaign, or edits one in place with --id.
// When editing, flags that are not given keep their current value.
func SaveCampaignCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("campaign save", flag.ExitOnError)
	id := fs.String("id", "", "Campaign ID to edit")
	name := fs.String("name", "", "Campaign name (required)")
	desc := fs.String("description", "", "Description")
	start := fs.String("start", "", "Start date (YYYY-MM-DD)")
	end := fs.String("end", "", "End date (YYYY-MM-DD)")
	product := fs.String("product", "", "RECIEE, RECIAG, GD, ML or ELETROPOSTO")
	audience := fs.String("audience", "", "Target audience")
	goal := fs.String("goal", "", "Conversion goal")
	budget := fs.String("budget", "", "Budget in BRL")
	channels := fs.String("channels", "", "Comma separated: email, reuniao, whatsapp, telefonema, visita")
	status := fs.String("status", "", "Planejada, Ativa, Pausada or Finalizada")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	var c models.Campaign
	if *id != "" {
		existing, err := state.GetCampaign(*id)
		if err != nil {
			return err
		}
		c = existing
	}

	given := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	if given["name"] {
		c.Name = *name
	}
	if given["description"] {
		c.Description = *desc
	}
	if given["start"] {
		c.StartDate = *start
	}
	if given["end"] {
		c.EndDate = *end
	}
	if given["product"] {
		c.Product = models.Product(strings.ToUpper(*product))
	}
	if given["audience"] {
		c.TargetAudience = *audience
	}
	if given["goal"] {
		c.ConversionGoal = models.ParseNumber(*goal)
	}
	if given["budget"] {
		c.Budget = models.ParseNumber(*budget)
	}
	if given["channels"] {
		c.Channels = models.ParseChannels(*channels)
	}
	if given["status"] {
		c.Status = models.CampaignStatus(*status)
	}
	if given["notes"] {
		c.Notes = *notes
	}

	if c.Name == "" {
		return fmt.Errorf("--name is required")
	}

	saved, err := state.SaveCampaign(c)
	if err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}

	verb := "created"
	if *id != "" {
		verb = "updated"
	}
	printf("✓ Campaign %s: %s (ID: %s)\n", verb, saved.Name, saved.ID)
	printf("  Status: %s\n", saved.Status)
	if saved.Budget != 0 {
		printf("  Budget: %s\n", crm.FormatBRL(saved.Budget.Float()))
	}
	return nil
}

// ListCampaignsCommand lists campaigns.
func ListCampaignsCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("campaign list", flag.ExitOnError)
	query := fs.String("query", "", "Search text")
	_ = fs.Parse(args)

	campaigns := state.SearchCampaigns(*query)
	if len(campaigns) == 0 {
		printLine("No campaigns found")
		return nil
	}

	w := newTable("NAME\tSTATUS\tPRODUCT\tPERIOD\tBUDGET\tCHANNELS\tID", "----\t------\t-------\t------\t------\t--------\t--")
	for _, c := range campaigns {
		period := "-"
		if c.StartDate != "" || c.EndDate != "" {
			period = dash(c.StartDate) + " → " + dash(c.EndDate)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, c.Status, dash(string(c.Product)), period,
			crm.FormatBRL(c.Budget.Float()), channelList(c.Channels), c.ID)
	}
	return w.Flush()
}

// DeleteCampaignCommand deletes a campaign.
func DeleteCampaignCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("campaign ID required")
	}
	if err := state.DeleteCampaign(args[0]); err != nil {
		return err
	}
	printf("✓ Deleted campaign %s\n", args[0])
	return nil
}

// AddStrategyCommand adds a weekly strategy.
func AddStrategyCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("strategy add", flag.ExitOnError)
	week := fs.String("week", "", "Week range, e.g. \"06/01 a 10/01\" (required)")
	group := fs.String("group", "", "Target group")
	names := fs.String("names", "", "People to approach")
	product := fs.String("product", "", "RECIEE, RECIAG, GD, ML or ELETROPOSTO")
	campaign := fs.String("campaign", "", "Campaign ID, \"Outra\" or free text")
	channels := fs.String("channels", "", "Comma separated: email, reuniao, whatsapp, telefonema, visita")
	indications := fs.String("indications", "", "Referrals gathered")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *week == "" {
		return fmt.Errorf("--week is required")
	}

	st, err := state.AddStrategy(models.Strategy{
		WeekRange:   *week,
		Group:       *group,
		Names:       *names,
		Product:     models.Product(strings.ToUpper(*product)),
		CampaignID:  *campaign,
		Channels:    models.ParseChannels(*channels),
		Indications: *indications,
		Notes:       *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	printf("✓ Strategy created for %s (ID: %s)\n", st.WeekRange, st.ID)
	if st.Campaign != "" {
		printf("  Campaign: %s\n", st.Campaign)
	}
	return nil
}

// ListStrategiesCommand lists weekly strategies.
func ListStrategiesCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("strategy list", flag.ExitOnError)
	query := fs.String("query", "", "Search text")
	_ = fs.Parse(args)

	strategies := state.SearchStrategies(*query)
	if len(strategies) == 0 {
		printLine("No strategies found")
		return nil
	}

	w := newTable("WEEK\tGROUP\tPRODUCT\tCAMPAIGN\tCHANNELS\tID", "----\t-----\t-------\t--------\t--------\t--")
	for _, st := range strategies {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			st.WeekRange, dash(st.Group), dash(string(st.Product)), dash(st.Campaign), channelList(st.Channels), st.ID)
	}
	return w.Flush()
}

// DeleteStrategyCommand deletes a strategy.
func DeleteStrategyCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("strategy ID required")
	}
	if err := state.DeleteStrategy(args[0]); err != nil {
		return err
	}
	printf("✓ Deleted strategy %s\n", args[0])
	return nil
}
