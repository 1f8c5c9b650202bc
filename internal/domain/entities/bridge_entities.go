package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the durable status of a persisted bridge transfer.
type TransferStatus string

const (
	TransferStatusAttesting   TransferStatus = "attesting"     // Burn confirmed, waiting for attestation
	TransferStatusReadyToMint TransferStatus = "ready_to_mint" // Attestation obtained, mint not yet confirmed
	TransferStatusMinting     TransferStatus = "minting"       // Mint tx in flight
	TransferStatusComplete    TransferStatus = "complete"      // Done
	TransferStatusFailed      TransferStatus = "failed"        // Unrecoverable
)

// ValidTransferStatuses contains all valid transfer statuses.
var ValidTransferStatuses = map[TransferStatus]bool{
	TransferStatusAttesting:   true,
	TransferStatusReadyToMint: true,
	TransferStatusMinting:     true,
	TransferStatusComplete:    true,
	TransferStatusFailed:      true,
}

// ValidTransferTransitions defines allowed status transitions. The backward
// edge minting -> ready_to_mint is deliberate: a failed mint keeps its
// attestation and stays resumable instead of dead-ending at failed. An
// attestation timeout is not a transition at all; the record simply stays
// at attesting.
var ValidTransferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusAttesting:   {TransferStatusReadyToMint, TransferStatusFailed},
	TransferStatusReadyToMint: {TransferStatusMinting, TransferStatusFailed},
	TransferStatusMinting:     {TransferStatusComplete, TransferStatusReadyToMint, TransferStatusFailed},
	TransferStatusComplete:    {}, // Terminal
	TransferStatusFailed:      {}, // Terminal
}

// IsValid checks if the status is a valid transfer status.
func (s TransferStatus) IsValid() bool {
	return ValidTransferStatuses[s]
}

// CanTransitionTo checks if transition to new status is allowed.
func (s TransferStatus) CanTransitionTo(newStatus TransferStatus) bool {
	for _, allowed := range ValidTransferTransitions[s] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses a transfer cannot leave. Terminal
// records are the only ones the user may dismiss.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusComplete || s == TransferStatusFailed
}

// IsResumable returns true for statuses the engine can pick back up.
func (s TransferStatus) IsResumable() bool {
	return s == TransferStatusAttesting || s == TransferStatusReadyToMint
}

// ValidateTransition validates and returns an error if the transition is
// not allowed.
func (s TransferStatus) ValidateTransition(newStatus TransferStatus) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("invalid transfer status: %s", newStatus)
	}
	if !s.CanTransitionTo(newStatus) {
		return fmt.Errorf("invalid status transition from %s to %s", s, newStatus)
	}
	return nil
}

// Attestation is the signed proof from Iris that a burn occurred, required
// before minting on the destination. Once stored it is never cleared;
// losing it would make the transfer unrecoverable without re-querying Iris
// by burn hash.
type Attestation struct {
	Message     string `json:"message" db:"attestation_message"`
	Attestation string `json:"attestation" db:"attestation"`
}

// PendingBridgeTransfer is the persisted record of one bridge attempt.
// Exactly one record exists per burn transaction hash; the ID is the burn
// hash itself so re-entry is idempotent. A record is created only once the
// burn is confirmed — approval or burn failures before confirmation leave
// nothing behind.
type PendingBridgeTransfer struct {
	ID            string          `json:"id" db:"id"`
	BurnTxHash    string          `json:"burn_tx_hash" db:"burn_tx_hash"`
	MintTxHash    string          `json:"mint_tx_hash,omitempty" db:"mint_tx_hash"`
	SourceDomain  uint32          `json:"source_domain" db:"source_domain"`
	DestDomain    uint32          `json:"dest_domain" db:"dest_domain"`
	SourceChainID int64           `json:"source_chain_id" db:"source_chain_id"`
	DestChainID   int64           `json:"dest_chain_id" db:"dest_chain_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	UserAddress   string          `json:"user_address" db:"user_address"`
	Status        TransferStatus  `json:"status" db:"status"`
	Attestation   *Attestation    `json:"attestation,omitempty"`
	LastError     string          `json:"error,omitempty" db:"last_error"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// TransferStep is the ephemeral in-memory step of the active transfer. It
// mirrors the persisted status for the steps that outlive the process and
// adds the pre-durable ones (approving, burning).
type TransferStep string

const (
	StepIdle      TransferStep = "idle"
	StepApproving TransferStep = "approving"
	StepBurning   TransferStep = "burning"
	StepAttesting TransferStep = "attesting"
	StepMinting   TransferStep = "minting"
	StepComplete  TransferStep = "complete"
	StepError     TransferStep = "error"

	// StepDismissed is only ever broadcast, never stored: it marks the
	// removal of a terminal record.
	StepDismissed TransferStep = "dismissed"
)

// TransferState is the in-memory mirror for the currently driven transfer.
// It exists only for the duration of one engine run and is reconstructed
// from the persisted record on resume.
type TransferState struct {
	Step        TransferStep `json:"step"`
	BurnTxHash  string       `json:"burn_tx_hash,omitempty"`
	MintTxHash  string       `json:"mint_tx_hash,omitempty"`
	Attestation *Attestation `json:"attestation,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// StateFromRecord reconstructs the in-memory state a resume should start
// from: attesting resumes the poll loop, ready_to_mint skips straight to
// the mint step.
func StateFromRecord(rec *PendingBridgeTransfer) TransferState {
	state := TransferState{
		BurnTxHash:  rec.BurnTxHash,
		MintTxHash:  rec.MintTxHash,
		Attestation: rec.Attestation,
	}
	switch rec.Status {
	case TransferStatusAttesting:
		state.Step = StepAttesting
	case TransferStatusReadyToMint, TransferStatusMinting:
		state.Step = StepMinting
	case TransferStatusComplete:
		state.Step = StepComplete
	default:
		state.Step = StepError
		state.Error = rec.LastError
	}
	return state
}

// TransferRequest is a request to initiate a bridge transfer.
type TransferRequest struct {
	SourceChainID int64           `json:"source_chain_id"`
	DestChainID   int64           `json:"dest_chain_id"`
	Amount        decimal.Decimal `json:"amount"`
	UserAddress   string          `json:"user_address"`
	Recipient     string          `json:"recipient,omitempty"` // Defaults to UserAddress
	FastTransfer  bool            `json:"fast_transfer"`
}
