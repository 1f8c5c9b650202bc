package iris

// MessagesResponse represents the response from the v2 messages API
type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

// Message represents a single cross-chain message with attestation
type Message struct {
	Message                   string `json:"message"`
	Attestation               string `json:"attestation"`
	Status                    string `json:"status"`
	EventNonce                string `json:"eventNonce"`
	SourceDomain              uint32 `json:"sourceDomain"`
	DestinationDomain         uint32 `json:"destinationDomain"`
	CctpVersion               string `json:"cctpVersion"`
	FinalityThresholdExecuted uint32 `json:"finalityThresholdExecuted"`
}

// FeesResponse represents the fees for a cross-chain transfer
type FeesResponse struct {
	SourceDomain      uint32 `json:"sourceDomain"`
	DestinationDomain uint32 `json:"destinationDomain"`
	FastTransferFee   Fee    `json:"fastTransferFee"`
	StandardFee       Fee    `json:"standardFee"`
}

// Fee represents fee details
type Fee struct {
	MinimumFee uint64 `json:"minimumFee"` // in basis points
}
