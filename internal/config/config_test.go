package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "builtin", cfg.Catalog.Source)
	assert.Equal(t, 0.95, cfg.Automation.AutonomousThreshold)
	assert.Equal(t, 0.75, cfg.Automation.SemiAutonomousThreshold)
	assert.Equal(t, "low-complexity outpatient", cfg.Automation.LowComplexityTag)
	assert.Equal(t, "sqlite", cfg.Feedback.Driver)
	assert.Equal(t, "./data/feedback.db", cfg.Feedback.SQLitePath)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, m.Validate())
	assert.False(t, m.IsProduction())
}

func TestNewManager_EnvOverride(t *testing.T) {
	t.Setenv("DRG_SUITE_SERVER_PORT", "9090")
	t.Setenv("DRG_SUITE_ENVIRONMENT", "production")
	t.Setenv("DRG_SUITE_AUTOMATION_AUTONOMOUS_THRESHOLD", "0.98")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 9090, m.GetServerConfig().Port)
	assert.Equal(t, 0.98, m.GetConfig().Automation.AutonomousThreshold)
	assert.True(t, m.IsProduction())
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manager)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(m *Manager) { m.config.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too high",
			mutate:  func(m *Manager) { m.config.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "missing gateway URL",
			mutate:  func(m *Manager) { m.config.Gateway.BaseURL = "" },
			wantErr: "gateway base URL is required",
		},
		{
			name: "file catalog without path",
			mutate: func(m *Manager) {
				m.config.Catalog.Source = "file"
				m.config.Catalog.Path = ""
			},
			wantErr: "catalog path is required",
		},
		{
			name: "database catalog without host",
			mutate: func(m *Manager) {
				m.config.Catalog.Source = "database"
				m.config.Database.Host = ""
			},
			wantErr: "database host is required",
		},
		{
			name:    "unknown catalog source",
			mutate:  func(m *Manager) { m.config.Catalog.Source = "ftp" },
			wantErr: "invalid catalog source",
		},
		{
			name:    "autonomous threshold above one",
			mutate:  func(m *Manager) { m.config.Automation.AutonomousThreshold = 1.2 },
			wantErr: "autonomous threshold",
		},
		{
			name: "semi threshold above autonomous",
			mutate: func(m *Manager) {
				m.config.Automation.AutonomousThreshold = 0.8
				m.config.Automation.SemiAutonomousThreshold = 0.9
			},
			wantErr: "semi-autonomous threshold",
		},
		{
			name: "sqlite driver without path",
			mutate: func(m *Manager) {
				m.config.Feedback.Driver = "sqlite"
				m.config.Feedback.SQLitePath = ""
			},
			wantErr: "sqlite path is required",
		},
		{
			name: "postgres driver without DSN",
			mutate: func(m *Manager) {
				m.config.Feedback.Driver = "postgres"
				m.config.Feedback.DSN = ""
			},
			wantErr: "DSN is required",
		},
		{
			name:    "unknown feedback driver",
			mutate:  func(m *Manager) { m.config.Feedback.Driver = "mongo" },
			wantErr: "invalid feedback driver",
		},
		{
			name:    "bad log level",
			mutate:  func(m *Manager) { m.config.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager()
			require.NoError(t, err)
			require.NoError(t, m.Validate())

			tt.mutate(m)
			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestManager_Reload(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	m.config.Server.Port = -1
	require.NoError(t, m.Reload())
	assert.Equal(t, 8080, m.GetServerConfig().Port)
}
