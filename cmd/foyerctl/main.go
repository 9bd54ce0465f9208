// foyerctl is the offline administration tool: it opens the snapshot
// backend directly, without going through the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/joho/godotenv"

	"foyer/internal/advisor/gemini"
	"foyer/internal/backend"
	"foyer/internal/config"
	"foyer/internal/core"
	"foyer/internal/services"
	"foyer/internal/store"
	"foyer/internal/transfer"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cmdExport := kingpin.Command("export", "Write the dataset as JSON or XLSX")
	exportFormat := cmdExport.Flag("format", "Output format: json or xlsx").Default("json").Enum("json", "xlsx")
	exportOutput := cmdExport.Flag("output", "Output file, - for stdout").Default("-").String()

	cmdImport := kingpin.Command("import", "Replace collections from a JSON document")
	importFile := cmdImport.Arg("file", "Import document").Required().ExistingFile()

	cmdAdd := kingpin.Command("add", "Record a transaction")
	addOwner := cmdAdd.Flag("owner", "Owner id").Required().String()
	addDate := cmdAdd.Flag("date", "Date (YYYY-MM-DD), defaults to today").String()
	addAmount := cmdAdd.Flag("amount", "Amount in Ariary, grouping allowed").Required().String()
	addType := cmdAdd.Flag("type", "income or expense").Required().Enum("income", "expense")
	addCategory := cmdAdd.Flag("category", "Category").Required().String()
	addDescription := cmdAdd.Flag("description", "Description").Required().String()

	cmdSummary := kingpin.Command("summary", "Print the month summary for an owner")
	sumOwner := cmdSummary.Flag("owner", "Owner id").Required().String()
	sumMonth := cmdSummary.Flag("month", "Month (1-12), defaults to current").Int()
	sumYear := cmdSummary.Flag("year", "Year, defaults to current").Int()

	cmdAdvise := kingpin.Command("advise", "Ask the advisor for a budget analysis")
	adviseOwner := cmdAdvise.Flag("owner", "Owner id").Required().String()

	cmdSeed := kingpin.Command("seed", "Reset the dataset to the default accounts, template and budgets")
	seedConfirm := cmdSeed.Flag("yes", "Confirm the reset").Bool()

	cmd := kingpin.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		kingpin.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	snap, err := backend.Open(cfg, logger)
	if err != nil {
		kingpin.Fatalf("open snapshot backend: %v", err)
	}
	defer snap.Close()

	st, err := store.Open(ctx, snap)
	if err != nil {
		kingpin.Fatalf("open store: %v", err)
	}
	ledger := services.NewLedgerService(st, nil)

	switch cmd {
	case cmdExport.FullCommand():
		runExport(ledger, *exportFormat, *exportOutput)
	case cmdImport.FullCommand():
		runImport(ctx, ledger, *importFile)
	case cmdAdd.FullCommand():
		runAdd(ctx, ledger, *addOwner, *addDate, *addAmount, *addType, *addCategory, *addDescription)
	case cmdSummary.FullCommand():
		runSummary(ledger, cfg, *sumOwner, *sumMonth, *sumYear)
	case cmdAdvise.FullCommand():
		runAdvise(ctx, ledger, cfg, *adviseOwner)
	case cmdSeed.FullCommand():
		runSeed(ctx, st, *seedConfirm)
	}
}

func runSeed(ctx context.Context, st *store.Store, confirm bool) {
	if !confirm {
		kingpin.Fatalf("seed replaces the whole dataset; pass --yes to confirm")
	}
	if err := st.Replace(ctx, store.DefaultState()); err != nil {
		kingpin.Fatalf("seed: %v", err)
	}
	fmt.Println("dataset reset to defaults")
}

func runExport(ledger *services.LedgerService, format, output string) {
	out := os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			kingpin.Fatalf("create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "xlsx":
		data, err := ledger.ExportXLSX()
		if err != nil {
			kingpin.Fatalf("export: %v", err)
		}
		if _, err := out.Write(data); err != nil {
			kingpin.Fatalf("write output: %v", err)
		}
	default:
		if err := transfer.EncodeJSON(out, ledger.Export()); err != nil {
			kingpin.Fatalf("export: %v", err)
		}
	}
}

func runImport(ctx context.Context, ledger *services.LedgerService, path string) {
	f, err := os.Open(path)
	if err != nil {
		kingpin.Fatalf("open import file: %v", err)
	}
	defer f.Close()

	doc, err := transfer.DecodeJSON(f)
	if err != nil {
		kingpin.Fatalf("read import document: %v", err)
	}
	if err := ledger.Import(ctx, doc); err != nil {
		kingpin.Fatalf("import: %v", err)
	}
	fmt.Println("import applied")
}

func runAdd(ctx context.Context, ledger *services.LedgerService, owner, dateStr, amountStr, typeStr, category, description string) {
	date := core.Today()
	if dateStr != "" {
		parsed, err := core.ParseDate(dateStr)
		if err != nil {
			kingpin.Fatalf("invalid date %q", dateStr)
		}
		date = parsed
	}

	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		kingpin.Fatalf("invalid amount %q: %v", amountStr, err)
	}

	created, err := ledger.CreateTransaction(ctx, services.NewTransaction{
		OwnerID:     owner,
		Date:        date,
		Amount:      amount,
		Type:        core.EntryType(typeStr),
		Category:    core.Category(category),
		Description: description,
	})
	if err != nil {
		kingpin.Fatalf("add transaction: %v", err)
	}
	fmt.Printf("recorded %s: %s %s (%s)\n", created.ID, created.Description, created.Amount.Format(), created.Category)
}

func runSummary(ledger *services.LedgerService, cfg *config.Config, owner string, month, year int) {
	now := time.Now()
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}

	view := ledger.ViewMonth(owner, time.Month(month), year, cfg.SummaryOptions())

	fmt.Printf("Période %04d-%02d, %d transaction(s)\n", year, month, len(view.Transactions))
	fmt.Printf("Revenus   %s\n", view.Summary.TotalIncome.Format())
	fmt.Printf("Dépenses  %s\n", view.Summary.TotalExpense.Format())
	fmt.Printf("Solde     %s\n", core.FormatSigned(view.Summary.Balance.Units))

	if len(view.Summary.ByCategory) > 0 {
		fmt.Println("\nDépenses par catégorie:")
		for _, c := range view.Summary.ByCategory {
			fmt.Printf("  %-12s %s\n", c.Category, c.Amount.Format())
		}
	}

	if len(view.Templates) > 0 {
		fmt.Println("\nRécurrents:")
		for _, ts := range view.Templates {
			mark := " "
			if ts.Checked {
				mark = "x"
			}
			fmt.Printf("  [%s] %s %s\n", mark, ts.Template.Description, ts.Template.Amount.Format())
		}
	}
}

func runAdvise(ctx context.Context, ledger *services.LedgerService, cfg *config.Config, owner string) {
	if cfg.GeminiAPIKey == "" {
		kingpin.Fatalf("GEMINI_API_KEY is not set")
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		kingpin.Fatalf("initialize advisor: %v", err)
	}

	advice, err := services.NewAdvisorService(ledger, client).Advise(ctx, owner)
	if err != nil {
		kingpin.Fatalf("advise: %v", err)
	}
	fmt.Println(advice)
}
