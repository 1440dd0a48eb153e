package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"basket-dashboard/internal/config"
	"basket-dashboard/internal/mining"
	"basket-dashboard/internal/models"
	"basket-dashboard/internal/observability"
	"basket-dashboard/internal/services"
)

type mineOptions struct {
	file       string
	thresholds mining.Thresholds
	maxLength  int
	timeout    time.Duration
	query      string
	sortBy     string
	limit      int
	output     string
}

type mineReport struct {
	Dataset  services.Dataset  `json:"dataset"`
	RunID    string            `json:"run_id"`
	Params   mining.Thresholds `json:"thresholds"`
	Itemsets []models.Itemset  `json:"itemsets"`
	Rules    []models.Rule     `json:"rules"`
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func newMineCmd(logLevel *string) *cobra.Command {
	defaults := mining.DefaultThresholds()
	opts := mineOptions{}

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine frequent itemsets and association rules from a CSV",
		Long: `Mine frequent itemsets with Apriori and derive association rules that
pass the confidence and lift thresholds.

Examples:
  # Mine with the default thresholds
  basket mine --file online_retail.csv

  # Rules mentioning milk, strongest first, as JSON
  basket mine --file baskets.csv --min-support 0.01 --query milk --output json

  # Read the CSV from stdin
  cat baskets.csv | basket mine --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd, opts, *logLevel)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", `Transactions CSV ("-" for stdin)`)
	cmd.Flags().Float64Var(&opts.thresholds.MinSupport, "min-support", defaults.MinSupport, "Minimum itemset support, in (0, 1]")
	cmd.Flags().Float64Var(&opts.thresholds.MinConfidence, "min-confidence", defaults.MinConfidence, "Minimum rule confidence, in (0, 1]")
	cmd.Flags().Float64Var(&opts.thresholds.MinLift, "min-lift", defaults.MinLift, "Minimum rule lift, >= 0")
	cmd.Flags().IntVar(&opts.maxLength, "max-length", 0, "Largest itemset size to mine (0 for no limit)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Abort mining after this long")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Only show rules with an item containing this text")
	cmd.Flags().StringVar(&opts.sortBy, "sort", string(mining.SortByLift), "Rule order: support, confidence or lift")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum rows per table (0 for all)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runMine(cmd *cobra.Command, opts mineOptions, logLevel string) error {
	if opts.output != "table" && opts.output != "json" {
		return fmt.Errorf("invalid output %q, must be table or json", opts.output)
	}
	if opts.limit < 0 || opts.maxLength < 0 {
		return fmt.Errorf("limit and max-length cannot be negative")
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), config.LoggerConfig{Level: logLevel, Format: "text"})

	analysis, err := services.NewAnalysis(services.Options{
		Timeout:   opts.timeout,
		MaxLength: opts.maxLength,
		CacheSize: 1,
	}, logger)
	if err != nil {
		return err
	}

	in, source, err := openInput(cmd, opts.file)
	if err != nil {
		return err
	}
	defer in.Close()

	dataset, err := analysis.LoadCSV(cmd.Context(), in, source)
	if err != nil {
		return err
	}

	result, err := analysis.Mine(cmd.Context(), opts.thresholds)
	if err != nil {
		return err
	}

	rules, err := analysis.Rules(opts.query, opts.sortBy, opts.limit)
	if err != nil {
		return err
	}

	report := mineReport{
		Dataset:  dataset,
		RunID:    result.RunID,
		Params:   result.Thresholds,
		Itemsets: analysis.Itemsets(opts.limit),
		Rules:    rules,
	}

	out := cmd.OutOrStdout()
	if opts.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(out, report, len(result.Itemsets), len(result.Rules))
	return nil
}

func openInput(cmd *cobra.Command, file string) (io.ReadCloser, string, error) {
	if file == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, "", fmt.Errorf("open transactions: %w", err)
	}
	return f, file, nil
}

func printReport(w io.Writer, report mineReport, totalItemsets, totalRules int) {
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(
		"%s: %d transactions, %d items (%d rows skipped)",
		report.Dataset.Source, report.Dataset.Transactions, report.Dataset.Items, report.Dataset.Skipped,
	)))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(
		"min support %g, min confidence %g, min lift %g",
		report.Params.MinSupport, report.Params.MinConfidence, report.Params.MinLift,
	)))

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Frequent itemsets (%d)", totalItemsets)))
	if len(report.Itemsets) == 0 {
		fmt.Fprintln(w, "No frequent itemsets. Lower --min-support.")
	} else {
		rows := make([][]string, 0, len(report.Itemsets))
		for _, s := range report.Itemsets {
			rows = append(rows, []string{
				strings.Join(s.Items, ", "),
				strconv.FormatFloat(s.Support, 'f', 4, 64),
				strconv.Itoa(s.Count),
			})
		}
		fmt.Fprintln(w, renderTable([]string{"Itemset", "Support", "Baskets"}, rows))
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Association rules (%d)", totalRules)))
	if len(report.Rules) == 0 {
		fmt.Fprintln(w, "No association rules matched. Lower the support, confidence or lift thresholds.")
		return
	}

	rows := make([][]string, 0, len(report.Rules))
	for _, r := range report.Rules {
		rows = append(rows, []string{
			strings.Join(r.Antecedent, ", "),
			strings.Join(r.Consequent, ", "),
			strconv.FormatFloat(r.Support, 'f', 4, 64),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
			strconv.FormatFloat(r.Lift, 'f', 3, 64),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Antecedent", "Consequent", "Support", "Confidence", "Lift"}, rows))
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
