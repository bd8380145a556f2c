// Operator CLI for administrative tasks that should not go through the
// public API: seeding users, inspecting accounts, and purging stale
// sessions.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/nestbank/nestbank/config"
	"github.com/nestbank/nestbank/infra"
	"github.com/nestbank/nestbank/pkg/accountnumber"
	authsvc "github.com/nestbank/nestbank/pkg/service/auth"
	"github.com/nestbank/nestbank/pkg/service/ledger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  create-user <username> <email>   create a user, prompting for a password")
	fmt.Println("  list-accounts <user_id>          list a user's accounts")
	fmt.Println("  transactions <user_id> <acct_id> list an account's history")
	fmt.Println("  purge-sessions                   delete expired sessions")
}

func run(cmd string, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer infra.Close(db)

	uow := infra.NewUoW(db)
	authService := authsvc.New(uow, nil, cfg.Session, logger)
	ledgerService := ledger.New(uow, accountnumber.New(), logger)
	ctx := context.Background()

	switch cmd {
	case "create-user":
		if len(args) < 2 {
			return fmt.Errorf("usage: create-user <username> <email>")
		}
		return createUser(ctx, authService, args[0], args[1])
	case "list-accounts":
		if len(args) < 1 {
			return fmt.Errorf("usage: list-accounts <user_id>")
		}
		return listAccounts(ctx, ledgerService, args[0])
	case "transactions":
		if len(args) < 2 {
			return fmt.Errorf("usage: transactions <user_id> <account_id>")
		}
		return listTransactions(ctx, ledgerService, args[0], args[1])
	case "purge-sessions":
		n, err := authService.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}
		color.Green("purged %d expired sessions", n)
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func createUser(ctx context.Context, svc *authsvc.Service, username, email string) error {
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	u, err := svc.Signup(ctx, username, email, password)
	if err != nil {
		return err
	}
	color.Green("user created: %s (%s)", u.ID, u.Username)
	return nil
}

// readPassword reads without echo when attached to a terminal, and falls
// back to a plain line read when stdin is piped.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func listAccounts(ctx context.Context, svc *ledger.Service, rawUserID string) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	accounts, err := svc.GetAccounts(ctx, userID)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		color.Yellow("no accounts")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tSTATUS\tBALANCE (cents)")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.Number, a.Type, a.Status, a.Balance)
	}
	return w.Flush()
}

func listTransactions(ctx context.Context, svc *ledger.Service, rawUserID, rawAccountID string) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	accountID, err := uuid.Parse(rawAccountID)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}
	entries, err := svc.GetTransactions(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		color.Yellow("no transactions")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTYPE\tAMOUNT (cents)\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Type, e.Amount, e.Description)
	}
	return w.Flush()
}
