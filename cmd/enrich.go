package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/orchestrator"
)

var (
	enrichBusinessName string
	enrichWebsite      string
	enrichPhone        string
	enrichCity         string
	enrichState        string
	enrichCRMID        string
	enrichExternalID   string
)

// writeEnrichResult logs the enrichment result and writes it as indented JSON.
func writeEnrichResult(w io.Writer, identity model.LeadIdentity, result *orchestrator.Result) error {
	zap.L().Info("enrichment complete",
		zap.String("business_name", identity.BusinessName),
		zap.String("audit_id", result.AuditID),
		zap.Int("score", result.Score),
		zap.String("status", string(result.Status)),
		zap.String("crm_update_status", result.CRMUpdateStatus),
	)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run enrichment for a single lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnrichEnv(ctx, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		identity := model.LeadIdentity{
			ExternalID:   enrichExternalID,
			CRMID:        enrichCRMID,
			BusinessName: enrichBusinessName,
			Website:      enrichWebsite,
			Phone:        enrichPhone,
			City:         enrichCity,
			State:        enrichState,
		}

		result, err := env.Orchestrator.Enrich(ctx, identity)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		return writeEnrichResult(os.Stdout, identity, result)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichBusinessName, "business-name", "", "business name (required)")
	enrichCmd.Flags().StringVar(&enrichWebsite, "website", "", "business website")
	enrichCmd.Flags().StringVar(&enrichPhone, "phone", "", "business phone")
	enrichCmd.Flags().StringVar(&enrichCity, "city", "", "business city")
	enrichCmd.Flags().StringVar(&enrichState, "state", "", "business state")
	enrichCmd.Flags().StringVar(&enrichCRMID, "crm-id", "", "Salesforce Lead ID to update")
	enrichCmd.Flags().StringVar(&enrichExternalID, "external-id", "", "caller-supplied external lead identifier")
	_ = enrichCmd.MarkFlagRequired("business-name")
	rootCmd.AddCommand(enrichCmd)
}
