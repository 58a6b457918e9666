package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"maple/storage"
)

var (
	auditLimit     int
	auditSession   string
	auditPruneDays int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the tool calls the assistant ran",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.audit == nil {
			return fmt.Errorf("audit log is not available in %s", a.cfg.DataDir())
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if auditPruneDays > 0 {
			n, err := a.audit.Prune(ctx, time.Now().AddDate(0, 0, -auditPruneDays))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d entries older than %d days.\n", n, auditPruneDays)
			return nil
		}

		var entries []storage.AuditEntry
		if auditSession != "" {
			entries, err = a.audit.BySession(ctx, auditSession)
		} else {
			entries, err = a.audit.Recent(ctx, auditLimit)
		}
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No tool calls recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintln(out, formatAuditEntry(e))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "Number of entries to show")
	auditCmd.Flags().StringVar(&auditSession, "session", "", "Show all entries of one session")
	auditCmd.Flags().IntVar(&auditPruneDays, "prune-days", 0, "Delete entries older than this many days instead of listing")
}

const auditPreviewWidth = 60

func formatAuditEntry(e storage.AuditEntry) string {
	preview := strings.Join(strings.Fields(e.Result), " ")
	preview = runewidth.Truncate(preview, auditPreviewWidth, "...")
	return fmt.Sprintf("%s  %-9s %-10s %-30s %s",
		e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		e.Outcome,
		e.Tool,
		runewidth.Truncate(e.FilePath, 30, "..."),
		preview,
	)
}
