//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fit-engine/internal/config"
)

func TestInitAuditStore_SQLite(t *testing.T) {
	tmpDir := t.TempDir()
	dsn := filepath.Join(tmpDir, "test.db")

	cfg = &config.Config{}
	cfg.Audit.Driver = "sqlite"
	cfg.Audit.DatabaseURL = dsn

	st, err := initAuditStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitAuditStore_SQLiteDefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	cfg = &config.Config{}
	cfg.Audit.Driver = "sqlite"
	cfg.Audit.DatabaseURL = ""

	st, err := initAuditStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, statErr := os.Stat(filepath.Join(tmpDir, "fit-engine.db"))
	assert.NoError(t, statErr)
}

func TestInitAuditStore_PostgresRejectedByDefault(t *testing.T) {
	cfg = &config.Config{}
	cfg.Audit.Driver = "postgres"
	cfg.Audit.DatabaseURL = "postgres://localhost/test"

	st, err := initAuditStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "-tags integration")
}

func TestInitAuditStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{}
	cfg.Audit.Driver = "mysql"

	st, err := initAuditStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audit driver")
}

func TestInitSalesforce_MissingClientID(t *testing.T) {
	cfg = &config.Config{}
	cfg.Salesforce.ClientID = ""

	client, err := initSalesforce()
	assert.Nil(t, client)
	assert.NoError(t, err)
}

func TestInitSalesforce_BadKeyPath(t *testing.T) {
	cfg = &config.Config{}
	cfg.Salesforce.ClientID = "test-client-id"
	cfg.Salesforce.KeyPath = "/nonexistent/path/to/key.pem"

	client, err := initSalesforce()
	assert.Nil(t, client)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read salesforce JWT private key")
}

func TestInitSalesforce_InvalidPEM(t *testing.T) {
	tmpDir := t.TempDir()
	badPEM := filepath.Join(tmpDir, "bad.pem")
	require.NoError(t, os.WriteFile(badPEM, []byte("not a valid pem"), 0o600))

	cfg = &config.Config{}
	cfg.Salesforce.ClientID = "test-client-id"
	cfg.Salesforce.KeyPath = badPEM
	cfg.Salesforce.Username = "user@test.com"
	cfg.Salesforce.LoginURL = "https://login.salesforce.com"

	client, err := initSalesforce()
	assert.Nil(t, client)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "init salesforce")
}

func TestNewSalesforceAuthenticator_DelegatesToInitSalesforce(t *testing.T) {
	cfg = &config.Config{}
	cfg.Salesforce.ClientID = ""

	authenticate := newSalesforceAuthenticator()
	client, err := authenticate()
	assert.Nil(t, client)
	assert.NoError(t, err)
}
