package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-planner/internal/cli"
	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/ofx"
	"github.com/Veraticus/spice-planner/internal/plaid"
	"github.com/spf13/cobra"
)

const (
	formatAuto  = "auto"
	formatOFX   = "ofx"
	formatPlaid = "plaid"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import transactions from statement files",
		Long: `Import transactions from OFX/QFX statements or saved Plaid /transactions/get
responses. Transactions already in the database are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("format", "f", formatAuto, "file format: auto, ofx or plaid")
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	return cmd
}

// detectFormat picks a parser from the file extension when format is auto.
func detectFormat(path, format string) (string, error) {
	format = strings.ToLower(format)
	if format != formatAuto {
		if format != formatOFX && format != formatPlaid {
			return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
		}
		return format, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return formatOFX, nil
	case ".json":
		return formatPlaid, nil
	}
	return "", fmt.Errorf("%w: cannot tell the format of %s; pass --format", common.ErrUnsupportedFormat, path)
}

// parseStatement reads one file into accounts and transactions.
func parseStatement(ctx context.Context, path, format string) ([]model.Account, []model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case formatOFX:
		stmt, err := ofx.NewParser().Parse(ctx, f)
		if err != nil {
			return nil, nil, err
		}
		return stmt.Accounts, stmt.Transactions, nil
	case formatPlaid:
		stmt, err := plaid.NewImporter().Parse(ctx, f)
		if err != nil {
			return nil, nil, err
		}
		return stmt.Accounts, stmt.Transactions, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	var accounts []model.Account
	var txns []model.Transaction
	for _, path := range args {
		fileFormat, err := detectFormat(path, format)
		if err != nil {
			return err
		}
		fileAccounts, fileTxns, err := parseStatement(ctx, path, fileFormat)
		if err != nil {
			return common.NewUserError("Could not import "+path, err)
		}
		slog.Info("Parsed statement", "file", path, "format", fileFormat, "transactions", len(fileTxns))
		accounts = append(accounts, fileAccounts...)
		txns = append(txns, fileTxns...)
	}

	if len(accounts) > 0 {
		rows := make([][]string, 0, len(accounts))
		for _, acct := range accounts {
			rows = append(rows, []string{acct.ID, acct.Name, string(acct.Type), acct.Balance.String()})
		}
		fmt.Fprintln(out, cli.RenderTable([]string{"Account", "Name", "Type", "Balance"}, rows))
	}

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions found", len(txns))))
		return nil
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	added, err := a.engine.ImportTransactions(ctx, txns)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions (%d already present)", added, len(txns)-added)))
	return nil
}
