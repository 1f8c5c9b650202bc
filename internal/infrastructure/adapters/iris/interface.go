package iris

import "context"

// AttestationClient defines the interface for Iris attestation API operations
type AttestationClient interface {
	// GetMessages fetches messages for a burn transaction on a source domain
	GetMessages(ctx context.Context, sourceDomain uint32, txHash string) (*MessagesResponse, error)

	// GetFees retrieves current fees for a transfer between domains
	GetFees(ctx context.Context, sourceDomain, destDomain uint32) (*FeesResponse, error)
}

// Ensure Client implements AttestationClient interface
var _ AttestationClient = (*Client)(nil)
