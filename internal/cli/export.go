package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifequest/lifequest/internal/daemon"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all progress to a JSON file (stdout if omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load progress from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	data, err := d.Engine.ExportData()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if len(args) == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(args[0], data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Engine.ImportData(data); err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	s := d.Engine.State()
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: level %d, %d coins.\n", args[0], s.Level, s.Coins)
	return nil
}
