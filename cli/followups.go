// ABOUTME: Follow-up sheet CLI commands
// ABOUTME: List the pipeline, edit one field, delete, show metrics and export to Excel
package cli

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
)

// FollowupListCommand prints the follow-up sheet with the metrics header.
func FollowupListCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Search client name, account type or feedback")
	openOnly := fs.Bool("open", false, "Hide signed contracts and refusals")
	_ = fs.Parse(args)

	printMetricsHeader(state.Metrics())

	records := state.SearchFollowups(*query)
	var shown []models.FollowupRecord
	for _, f := range records {
		if *openOnly && (f.Closed() || f.DoesntWantProduct == models.Yes) {
			continue
		}
		shown = append(shown, f)
	}
	if len(shown) == 0 {
		printLine("No follow-ups found")
		return nil
	}

	w := newTable("  \tCLIENT\tPRODUCT\tINVOICE\tPROPOSAL\tPRESENT.\tCLOSE?\tSIGNED\tPAID\tESTIMATED\tCOMMISSION\tID",
		"  \t------\t-------\t-------\t--------\t--------\t------\t------\t----\t---------\t----------\t--")
	for _, f := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			indicator(f),
			f.ClientName,
			dash(string(f.AccountType)),
			crm.FollowupFieldValue(f, "sentInvoice"),
			crm.FollowupFieldValue(f, "proposalReady"),
			crm.FollowupFieldValue(f, "clientPresentation"),
			crm.FollowupFieldValue(f, "willClose"),
			crm.FollowupFieldValue(f, "signedContract"),
			crm.FollowupFieldValue(f, "paid"),
			crm.FormatBRL(f.EstimatedValue.Float()),
			crm.FormatBRL(f.CommissionValue()),
			f.ID)
	}
	return w.Flush()
}

func indicator(f models.FollowupRecord) string {
	switch {
	case f.Closed():
		return "🟢"
	case f.DoesntWantProduct == models.Yes:
		return "🔴"
	case f.WillClose == models.OutlookYes || f.WillClose == models.OutlookWarm:
		return "🟡"
	default:
		return "⚪"
	}
}

func printMetricsHeader(m crm.Metrics) {
	printf("Indicações: %d   Fechamentos: %d   Conversão: %s\n",
		m.TotalIndications, m.ClosedCount, crm.FormatPercent(m.ConversionRate))
	printf("Valor estimado: %s   Comissão: %s\n\n",
		crm.FormatBRL(m.TotalEstimated), crm.FormatBRL(m.TotalCommission))
}

// FollowupShowCommand prints every field of one record.
func FollowupShowCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("follow-up ID required")
	}
	f, err := state.GetFollowup(args[0])
	if err != nil {
		return err
	}

	printf("%s (%s)\n", f.ClientName, f.ID)
	w := newTable("FIELD\tLABEL\tVALUE", "-----\t-----\t-----")
	for _, def := range crm.FollowupFields {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, def.Label, dash(crm.FollowupFieldValue(f, def.Name)))
	}
	_ = w.Flush()
	printf("\nValor comissão: %s\n", crm.FormatBRL(f.CommissionValue()))
	return nil
}

// FollowupSetCommand edits one field: set <id> <field> <value>.
func FollowupSetCommand(state *crm.State, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: followups set <id> <field> <value>")
	}
	id, field, value := args[0], args[1], strings.Join(args[2:], " ")

	if def, ok := crm.LookupFollowupField(field); ok {
		if opts := def.Options(); opts != nil {
			value = strings.ToUpper(value)
		}
	}

	f, err := state.UpdateFollowupField(id, field, value)
	if err != nil {
		if def, ok := crm.LookupFollowupField(field); ok && def.Options() != nil {
			return fmt.Errorf("%w (options: %s)", err, strings.Join(def.Options(), ", "))
		}
		return err
	}
	printf("✓ %s: %s = %s\n", f.ClientName, field, crm.FollowupFieldValue(f, field))
	return nil
}

// FollowupDeleteCommand deletes a record; a live client gets a fresh default one.
func FollowupDeleteCommand(state *crm.State, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("follow-up ID required")
	}
	if err := state.DeleteFollowup(args[0]); err != nil {
		return err
	}
	printf("✓ Deleted follow-up %s\n", args[0])
	return nil
}

// MetricsCommand prints the pipeline metrics and stage counts.
func MetricsCommand(state *crm.State, args []string) error {
	m := state.Metrics()
	printMetricsHeader(m)

	w := newTable("STAGE\tCOUNT", "-----\t-----")
	for _, row := range []struct {
		label string
		n     int
	}{
		{"Enviou fatura", m.Funnel.SentInvoice},
		{"Proposta pronta", m.Funnel.ProposalReady},
		{"Apresentação", m.Funnel.ClientPresentation},
		{"Morno", m.Funnel.WarmLeads},
		{"Vai fechar", m.Funnel.WillClose},
		{"Enviou docs", m.Funnel.SentDocuments},
		{"Assinou contrato", m.Funnel.SignedContract},
		{"Pago", m.Funnel.Paid},
		{"Não quer produto", m.Funnel.DoesntWantProduct},
	} {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", row.label, row.n)
	}
	return w.Flush()
}

// FollowupExportCommand writes the follow-up sheet as an .xlsx workbook.
func FollowupExportCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("export-xlsx", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default sustentalski_followup_YYYY-MM-DD.xlsx)")
	_ = fs.Parse(args)

	path := *output
	if path == "" {
		path = fmt.Sprintf("sustentalski_followup_%s.xlsx", time.Now().Format("2006-01-02"))
	}

	if err := state.ExportFollowupSheet(path); err != nil {
		return fmt.Errorf("failed to export follow-ups: %w", err)
	}
	printf("✓ Exported %d follow-ups to %s\n", len(state.Followups()), path)
	return nil
}
