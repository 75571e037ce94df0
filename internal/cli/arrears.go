package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/report"
	"go.uber.org/zap"
)

func newArrearsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arrears",
		Short: "Inspect and export tenant arrears",
	}
	cmd.AddCommand(newArrearsListCommand(rt), newArrearsExportCommand(rt))
	return cmd
}

func newArrearsListCommand(rt *runtime) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print overdue tenants, largest arrears first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rt.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			today := time.Now().In(rt.cfg.App.Location())
			var rows []rentalapp.TenantStatusResponse
			if all {
				rows, err = c.Arrears.TenantStatuses(cmd.Context(), today, rentalapp.Unrestricted)
			} else {
				rows, err = c.Arrears.Overdue(cmd.Context(), today, rentalapp.Unrestricted)
			}
			if err != nil {
				return err
			}
			writeStatusTable(cmd, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include tenants that are paid up or new")
	return cmd
}

func writeStatusTable(cmd *cobra.Command, rows []rentalapp.TenantStatusResponse) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAMA\tLOKASI\tPETAK\tSTATUS\tTEMPOH\tTUNGGAKAN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.FullName, r.LocationName, r.StallNumber, r.Status, r.Label, report.FormatRM(r.ArrearsAmount))
	}
	_ = tw.Flush()
}

func newArrearsExportCommand(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the overdue tenants to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rt.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			today := time.Now().In(rt.cfg.App.Location())
			if output == "" {
				output = fmt.Sprintf("tunggakan-%s.xlsx", today.Format("2006-01-02"))
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			n, err := c.Arrears.ExportArrears(cmd.Context(), today, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			rt.log.Info("Arrears exported", zap.String("file", output), zap.Int("rows", n))
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "workbook path (default tunggakan-<date>.xlsx)")
	return cmd
}
