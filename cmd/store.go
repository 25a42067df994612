package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fit-engine/internal/audit"
	sfpkg "github.com/sells-group/fit-engine/pkg/salesforce"
)

// newPostgresAuditStore is overridden by store_postgres.go when built with
// -tags integration, the only build that links pgx. The default build
// rejects the postgres driver outright rather than silently falling back.
var newPostgresAuditStore = func(ctx context.Context, dsn string) (audit.Store, error) {
	return nil, eris.New("postgres audit driver requires building with -tags integration")
}

// initAuditStore opens and returns the configured audit-row backend.
func initAuditStore(ctx context.Context) (audit.Store, error) {
	switch cfg.Audit.Driver {
	case "sqlite":
		dsn := cfg.Audit.DatabaseURL
		if dsn == "" {
			dsn = "fit-engine.db"
		}
		return audit.NewSQLite(dsn)
	case "postgres":
		return newPostgresAuditStore(ctx, cfg.Audit.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported audit driver: %s", cfg.Audit.Driver)
	}
}

// initSalesforce builds the Salesforce client used by the CRM writer's
// authenticate closure. A nil, nil return means Salesforce is not
// configured and CRM writes should be skipped entirely.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		zap.L().Warn("salesforce not configured, CRM writes will be skipped")
		return nil, nil
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	client := sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit))

	healthCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.DescribeSObject(healthCtx, "Lead"); err != nil {
		return nil, eris.Wrap(err, "salesforce health check failed — verify credentials")
	}
	zap.L().Debug("salesforce health check passed")

	return client, nil
}

// newSalesforceAuthenticator returns the lazy authenticate closure the CRM
// writer calls on first use and again after a session-expiry re-auth. Each
// call re-runs the full JWT bearer flow against cfg.Salesforce.
func newSalesforceAuthenticator() func() (sfpkg.Client, error) {
	return func() (sfpkg.Client, error) {
		return initSalesforce()
	}
}
