package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List stored fare alerts",
	Long:  `List the fare alerts stored in the local database, optionally filtered by owner.`,
	RunE:  runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.Flags().Int64("owner", 0, "Only alerts for this owner (chat ID)")
	alertsCmd.Flags().Bool("all", false, "Include paused and cancelled alerts")
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	ownerID, _ := cmd.Flags().GetInt64("owner")
	all, _ := cmd.Flags().GetBool("all")

	var alerts []model.Alert
	if ownerID != 0 {
		alerts, err = store.ListByOwner(cmd.Context(), ownerID)
	} else {
		alerts, err = store.ListActive(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	if len(alerts) == 0 {
		fmt.Println("No alerts stored.")
		return nil
	}

	for _, a := range alerts {
		if !all && a.Status == model.StatusCancelled {
			continue
		}
		fmt.Printf("%s  owner=%d  %s  %s  max=R$%.2f  status=%s",
			a.ID, a.OwnerID, a.Route(), a.DateSpec, a.MaxPrice, a.Status)
		if a.LastNotifiedPrice != nil {
			fmt.Printf("  last_notified=R$%.2f", *a.LastNotifiedPrice)
		}
		fmt.Println()
	}
	return nil
}
