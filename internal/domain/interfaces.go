package domain

import (
	"context"
)

// ClaimSubmitter is the payer-gateway boundary consumed by the engine. Only
// the AUTONOMOUS path calls it; failures propagate to the caller unchanged.
type ClaimSubmitter interface {
	SubmitClaim(ctx context.Context, payload *ClaimPayload) (*ClaimAck, error)
}

// TermCatalog is the immutable clinical knowledge base. Implementations must
// be safe for concurrent readers and must not mutate after construction.
type TermCatalog interface {
	// Entries returns every diagnosis term entry.
	Entries() []TermEntry

	// Procedures returns every procedure term entry.
	Procedures() []ProcedureEntry

	// LookupSynonym resolves an exact synonym string (not a code) to its
	// entry. The second return is false when the synonym is unknown.
	LookupSynonym(synonym string) (TermEntry, bool)

	// LookupDiagnosisCode resolves a diagnosis code back to its entry.
	LookupDiagnosisCode(code string) (TermEntry, bool)

	// Exclusions maps a diagnosis code to the codes it renders invalid.
	Exclusions() map[string][]string
}

// CatalogSource loads term entries from an external store, enabling catalog
// updates without redeployment.
type CatalogSource interface {
	LoadEntries(ctx context.Context) ([]TermEntry, error)
	LoadProcedures(ctx context.Context) ([]ProcedureEntry, error)
	LoadExclusions(ctx context.Context) (map[string][]string, error)
}

// ConfigManager provides access to application configuration.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetGatewayConfig() *GatewayConfig
	Validate() error
}
