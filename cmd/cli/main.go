package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iho/loanticker/internal/adapter/http/dto"
)

type options struct {
	baseURL string
	timeout time.Duration
	jsonOut bool
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout)
}

// isTerminal reports whether in is an interactive terminal.
var isTerminal = func(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var errNotInteractive = errors.New("refusing to delete without --yes: stdin is not a terminal")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "loanctl",
		Short:         "Loan ledger and ticker CLI",
		Long:          `A command line interface for the loanticker API: manage THB loans and read IDR prices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "api", envOr("LOANTICKER_API", "http://localhost:8080"), "Base URL of the loanticker API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print raw JSON")

	rootCmd.AddCommand(loansCmd(opts), pricesCmd(opts))
	return rootCmd
}

func loansCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Loan ledger operations",
	}
	cmd.AddCommand(
		listLoansCmd(opts),
		addLoanCmd(opts),
		editLoanCmd(opts),
		statusLoanCmd(opts),
		deleteLoanCmd(opts),
		summaryCmd(opts),
	)
	return cmd
}

func listLoansCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all loans in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().listLoans(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printLoans(cmd.OutOrStdout(), resp.Loans)
			return nil
		},
	}
}

func addLoanCmd(opts *options) *cobra.Command {
	var req dto.LoanRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := opts.client().createLoan(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printLoanResult(cmd.OutOrStdout(), opts, "created", loan)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Borrower name")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount in THB")
	cmd.Flags().StringVar(&req.Description, "description", "", "What the loan is for")
	cmd.Flags().StringVar(&req.Status, "status", "", "Pending, Approved, Rejected or Paid (default Pending)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func editLoanCmd(opts *options) *cobra.Command {
	var req dto.LoanRequest

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a loan; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client := opts.client()
			current, err := client.getLoan(cmd.Context(), id)
			if err != nil {
				return err
			}

			merged := dto.LoanRequest{
				Name:        current.Name,
				Amount:      current.Amount,
				Description: current.Description,
				Status:      current.Status,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				merged.Name = req.Name
			}
			if flags.Changed("amount") {
				merged.Amount = req.Amount
			}
			if flags.Changed("description") {
				merged.Description = req.Description
			}
			if flags.Changed("status") {
				merged.Status = req.Status
			}

			loan, err := client.updateLoan(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			return printLoanResult(cmd.OutOrStdout(), opts, "updated", loan)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Borrower name")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount in THB")
	cmd.Flags().StringVar(&req.Description, "description", "", "What the loan is for")
	cmd.Flags().StringVar(&req.Status, "status", "", "Pending, Approved, Rejected or Paid")
	return cmd
}

func statusLoanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Change the status of a loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			loan, err := opts.client().setStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printLoanResult(cmd.OutOrStdout(), opts, "updated", loan)
		},
	}
}

func deleteLoanCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a loan after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client := opts.client()
			loan, err := client.getLoan(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				in := cmd.InOrStdin()
				if !isTerminal(in) {
					return errNotInteractive
				}
				ok, err := confirm(in, out, fmt.Sprintf("Delete loan %d (%s, %s)? Are you sure? [y/N] ", loan.ID, loan.Name, formatTHB(loan.Amount)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			resp, err := client.deleteLoan(cmd.Context(), id)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "Loan %d deleted.\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show loan counts and totals per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().summary(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printSummary(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func pricesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Show the IDR price table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().prices(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printPrices(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func printLoanResult(w io.Writer, opts *options, verb string, loan dto.LoanResponse) error {
	if opts.jsonOut {
		return printJSON(w, loan)
	}
	fmt.Fprintf(w, "Loan %d %s.\n", loan.ID, verb)
	printLoans(w, []dto.LoanResponse{loan})
	return nil
}

func printLoans(w io.Writer, loans []dto.LoanResponse) {
	if len(loans) == 0 {
		fmt.Fprintln(w, "No loans recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tNAME\tAMOUNT\tSTATUS\tDESCRIPTION")
	for _, l := range loans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Date, l.Time, truncate(l.Name, 24), formatTHB(l.Amount), l.Status, truncate(l.Description, 32))
	}
	tw.Flush()
}

func printSummary(w io.Writer, resp dto.SummaryResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tCOUNT\tTOTAL\tUNPARSED")
	for _, s := range resp.Statuses {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", s.Status, s.Count, formatTHB(s.Total.String()), s.Unparsed)
	}
	tw.Flush()
}

func printPrices(w io.Writer, resp dto.PricesResponse) {
	if resp.Loading {
		fmt.Fprintln(w, "Loading prices...")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE (IDR)\tCHANGE\tSOURCE")
	for _, p := range resp.Prices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Symbol, p.Display, p.Change, p.Source)
	}
	tw.Flush()

	stream := "disconnected"
	if resp.StreamConnected {
		stream = "connected"
	}
	fmt.Fprintf(w, "\nstream: %s", stream)
	if resp.LastPollAt != nil {
		fmt.Fprintf(w, ", last poll: %s", resp.LastPollAt.Local().Format(time.TimeOnly))
	}
	fmt.Fprintln(w)
}

// formatTHB renders a numeric amount as baht. Free-form amounts are shown as
// entered.
func formatTHB(amount string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return amount
	}
	return money.New(d.Shift(2).Round(0).IntPart(), money.THB).Display()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid loan id %q", s)
	}
	return id, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
