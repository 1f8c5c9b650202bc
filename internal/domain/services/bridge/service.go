// Package bridge drives cross-chain USDC transfers through the burn /
// attest / mint protocol. The engine is a resumable state machine: the
// first durable point is the confirmed burn, after which the transfer can
// be picked back up from its stored status at any time.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/domain/repositories"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/liquidity"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/iris"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
	"github.com/bridgeport-service/bridgeport/pkg/metrics"
)

const usdcDecimals = 6

// ErrAborted indicates the poll loop was stopped by an explicit abort.
// The stored transfer keeps its status and stays resumable.
var ErrAborted = errors.New("transfer aborted")

// ChainSession is the per-chain surface the engine drives: token reads,
// the burn on the source chain and the mint on the destination chain.
type ChainSession interface {
	Contracts() contracts.ChainContracts
	SignerAddress() common.Address
	USDCAllowance(ctx context.Context, owner common.Address) (*big.Int, error)
	USDCBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	ApproveUSDC(ctx context.Context, amount *big.Int) (common.Hash, error)
	DepositForBurn(ctx context.Context, amount *big.Int, destDomain uint32, mintRecipient [32]byte, maxFee *big.Int, minFinalityThreshold uint32) (common.Hash, error)
	ReceiveMessage(ctx context.Context, message, attestation []byte) (common.Hash, error)
}

// ChainGateway selects chain sessions. SwitchTo is required before any
// destination-chain transaction; it re-verifies the endpoint's chain ID
// after a settling delay.
type ChainGateway interface {
	ClientFor(chainID int64) (ChainSession, error)
	SwitchTo(ctx context.Context, chainID int64) (ChainSession, error)
}

// Service is the bridge transfer engine.
type Service struct {
	transfers    repositories.TransferRepository
	chains       ChainGateway
	attestations iris.AttestationClient
	registry     *contracts.Registry
	notifier     *Notifier
	cfg          config.BridgeConfig
	logger       *logger.Logger

	mu   sync.Mutex
	runs map[string]*activeRun
}

// activeRun is the in-memory half of one driven transfer: the ephemeral
// step mirror plus the abort flag the poll loop checks between iterations.
type activeRun struct {
	abort atomic.Bool

	mu    sync.Mutex
	state entities.TransferState
}

func (r *activeRun) snapshot() entities.TransferState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// NewService creates the bridge transfer engine.
func NewService(
	transfers repositories.TransferRepository,
	chains ChainGateway,
	attestations iris.AttestationClient,
	registry *contracts.Registry,
	notifier *Notifier,
	cfg config.BridgeConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		transfers:    transfers,
		chains:       chains,
		attestations: attestations,
		registry:     registry,
		notifier:     notifier,
		cfg:          cfg,
		logger:       log,
		runs:         make(map[string]*activeRun),
	}
}

// Transfer drives one transfer from approval through mint. It returns the
// stored record in whatever state the run reached; a nil record means the
// attempt failed before the burn confirmed and left nothing behind.
//
// Steps are strictly sequential. Approval and burn failures are terminal
// for the attempt; attestation timeouts and mint failures leave the record
// resumable.
func (s *Service) Transfer(ctx context.Context, req *entities.TransferRequest) (*entities.PendingBridgeTransfer, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	source, err := s.chains.ClientFor(req.SourceChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, req.SourceChainID)
	}
	destChain, err := s.registry.ByChainID(req.DestChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, req.DestChainID)
	}

	amount, err := liquidity.ToBaseUnits(req.Amount, usdcDecimals)
	if err != nil {
		return nil, err
	}
	owner := source.SignerAddress()

	balance, err := source.USDCBalance(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: amount exceeds balance", domainerrors.ErrInvalidInput)
	}

	run := &activeRun{}

	// Approval. Skipped entirely when the messenger's allowance already
	// covers the amount.
	if err := s.approveIfNeeded(ctx, source, run, owner, amount); err != nil {
		return nil, err
	}

	// Burn. The record exists only once this confirms.
	record, err := s.burn(ctx, source, run, req, destChain, amount)
	if err != nil {
		return nil, err
	}

	s.track(record.ID, run)
	defer s.untrack(record.ID)

	return s.driveFromAttesting(ctx, run, record)
}

// Resume re-enters a stored transfer at the step its status implies:
// attesting restarts the poll loop, ready_to_mint (and an interrupted
// minting) go straight to the mint step. Terminal records are returned
// unchanged.
func (s *Service) Resume(ctx context.Context, id string) (*entities.PendingBridgeTransfer, error) {
	record, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.IsTerminal() {
		return record, nil
	}

	run := &activeRun{state: entities.StateFromRecord(record)}
	s.track(record.ID, run)
	defer s.untrack(record.ID)

	s.logger.Info("resuming bridge transfer",
		"transfer_id", record.ID,
		"status", string(record.Status))

	switch record.Status {
	case entities.TransferStatusAttesting:
		return s.driveFromAttesting(ctx, run, record)
	default:
		// ready_to_mint, or a minting interrupted mid-flight.
		return s.mint(ctx, run, record)
	}
}

// Abort requests that the active run for a transfer stop at the next safe
// point. Only the attestation poll loop honors it; transactions already
// sent are never cancelled. Returns false when no run is active.
func (s *Service) Abort(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return false
	}
	run.abort.Store(true)
	return true
}

// Dismiss removes a terminal record. Dismissing a non-terminal transfer is
// a deliberate no-op: an in-flight transfer must finish or fail before it
// can disappear.
func (s *Service) Dismiss(ctx context.Context, id string) error {
	record, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !record.Status.IsTerminal() {
		s.logger.Warn("dismiss ignored for non-terminal transfer",
			"transfer_id", id,
			"status", string(record.Status))
		return nil
	}
	if err := s.transfers.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.Publish(Event{
		TransferID: id,
		Status:     record.Status,
		Step:       entities.StepDismissed,
	})
	return nil
}

// Get returns one stored transfer by burn hash.
func (s *Service) Get(ctx context.Context, id string) (*entities.PendingBridgeTransfer, error) {
	return s.transfers.GetByID(ctx, id)
}

// ListPending returns every stored transfer for a user, newest first.
func (s *Service) ListPending(ctx context.Context, userAddress string) ([]*entities.PendingBridgeTransfer, error) {
	return s.transfers.ListPending(ctx, userAddress)
}

// ListResumable returns the user's transfers still in a resumable status.
func (s *Service) ListResumable(ctx context.Context, userAddress string) ([]*entities.PendingBridgeTransfer, error) {
	return s.transfers.ListResumable(ctx, userAddress)
}

// State returns the live in-memory state when the transfer is actively
// driven, otherwise the state reconstructed from the stored record.
func (s *Service) State(ctx context.Context, id string) (entities.TransferState, error) {
	s.mu.Lock()
	run, active := s.runs[id]
	s.mu.Unlock()
	if active {
		return run.snapshot(), nil
	}

	record, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return entities.TransferState{}, err
	}
	return entities.StateFromRecord(record), nil
}

// FeePreview reports the current fast and standard fees plus the finality
// thresholds a transfer on this route would burn with.
type FeePreview struct {
	SourceDomain     uint32 `json:"source_domain"`
	DestDomain       uint32 `json:"dest_domain"`
	FastFeeBps       uint64 `json:"fast_fee_bps"`
	StandardFeeBps   uint64 `json:"standard_fee_bps"`
	FastSupported    bool   `json:"fast_supported"`
	FinalityFast     uint32 `json:"finality_fast"`
	FinalityStandard uint32 `json:"finality_standard"`
}

// Fees previews the route's fees from the attestation service.
func (s *Service) Fees(ctx context.Context, sourceChainID, destChainID int64) (*FeePreview, error) {
	source, err := s.registry.ByChainID(sourceChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, sourceChainID)
	}
	dest, err := s.registry.ByChainID(destChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, destChainID)
	}

	fees, err := s.attestations.GetFees(ctx, source.Domain, dest.Domain)
	if err != nil {
		return nil, fmt.Errorf("fetch fees: %w", err)
	}

	return &FeePreview{
		SourceDomain:     source.Domain,
		DestDomain:       dest.Domain,
		FastFeeBps:       fees.FastTransferFee.MinimumFee,
		StandardFeeBps:   fees.StandardFee.MinimumFee,
		FastSupported:    source.FastTransfer,
		FinalityFast:     contracts.FinalityThresholdFast,
		FinalityStandard: contracts.FinalityThresholdStandard,
	}, nil
}

// Events exposes the transfer event stream.
func (s *Service) Events() *Notifier {
	return s.notifier
}

func (s *Service) validate(req *entities.TransferRequest) error {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", domainerrors.ErrInvalidInput)
	}
	if _, err := liquidity.ToBaseUnits(req.Amount, usdcDecimals); err != nil {
		return err
	}
	if req.SourceChainID == req.DestChainID {
		return fmt.Errorf("%w: source and destination chain are the same", domainerrors.ErrInvalidInput)
	}
	if !s.registry.Supports(req.SourceChainID, req.DestChainID) {
		return fmt.Errorf("%w: route %d -> %d", domainerrors.ErrUnsupportedChain, req.SourceChainID, req.DestChainID)
	}
	if !common.IsHexAddress(req.UserAddress) {
		return fmt.Errorf("%w: invalid user address", domainerrors.ErrInvalidInput)
	}
	if req.Recipient == "" {
		req.Recipient = req.UserAddress
	}
	if !common.IsHexAddress(req.Recipient) {
		return fmt.Errorf("%w: invalid recipient address", domainerrors.ErrInvalidInput)
	}
	return nil
}

func (s *Service) approveIfNeeded(ctx context.Context, source ChainSession, run *activeRun, owner common.Address, amount *big.Int) error {
	allowance, err := source.USDCAllowance(ctx, owner)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if allowance.Cmp(amount) >= 0 {
		s.logger.Debug("allowance sufficient, skipping approval",
			"allowance", allowance.String(),
			"amount", amount.String())
		return nil
	}

	s.setStep(run, nil, entities.StepApproving, "")
	stepStart := time.Now()

	txHash, err := source.ApproveUSDC(ctx, amount)
	if err != nil {
		s.setStep(run, nil, entities.StepError, err.Error())
		if domainerrors.IsRejection(err) {
			return fmt.Errorf("approve: %w", domainerrors.ErrRejected)
		}
		return fmt.Errorf("approve: %w", err)
	}

	metrics.BridgeStepDuration.WithLabelValues("approve").Observe(time.Since(stepStart).Seconds())
	s.logger.Info("approval confirmed", "tx_hash", txHash.Hex())
	return nil
}

func (s *Service) burn(ctx context.Context, source ChainSession, run *activeRun, req *entities.TransferRequest, destChain contracts.ChainContracts, amount *big.Int) (*entities.PendingBridgeTransfer, error) {
	s.setStep(run, nil, entities.StepBurning, "")
	stepStart := time.Now()

	sourceChain := source.Contracts()
	maxFee := maxFeeFor(amount, s.cfg.MaxFeeBps)
	finality := contracts.FinalityThresholdStandard
	if req.FastTransfer && sourceChain.FastTransfer {
		finality = contracts.FinalityThresholdFast
	}

	burnTx, err := source.DepositForBurn(ctx, amount, destChain.Domain,
		mintRecipientWord(req.Recipient), maxFee, finality)
	if err != nil {
		s.setStep(run, nil, entities.StepError, err.Error())
		if domainerrors.IsRejection(err) {
			return nil, fmt.Errorf("burn: %w", domainerrors.ErrRejected)
		}
		return nil, fmt.Errorf("burn: %w", err)
	}

	metrics.BridgeStepDuration.WithLabelValues("burn").Observe(time.Since(stepStart).Seconds())

	now := time.Now().UTC()
	record := &entities.PendingBridgeTransfer{
		ID:            burnTx.Hex(),
		BurnTxHash:    burnTx.Hex(),
		SourceDomain:  sourceChain.Domain,
		DestDomain:    destChain.Domain,
		SourceChainID: sourceChain.ChainID,
		DestChainID:   destChain.ChainID,
		Amount:        req.Amount,
		UserAddress:   strings.ToLower(req.UserAddress),
		Status:        entities.TransferStatusAttesting,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.transfers.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist transfer after burn %s: %w", burnTx.Hex(), err)
	}

	s.logger.Info("burn confirmed",
		"transfer_id", record.ID,
		"source_domain", sourceChain.Domain,
		"dest_domain", destChain.Domain,
		"amount", req.Amount.String())

	return record, nil
}

// driveFromAttesting runs the poll loop and, on success, the mint step.
func (s *Service) driveFromAttesting(ctx context.Context, run *activeRun, record *entities.PendingBridgeTransfer) (*entities.PendingBridgeTransfer, error) {
	s.setStep(run, record, entities.StepAttesting, "")
	stepStart := time.Now()

	att, err := s.pollAttestation(ctx, run, record)
	if err != nil {
		// Exhaustion and abort are recoverable: the stored status stays
		// attesting and the record remains resumable.
		s.setStep(run, record, entities.StepError, err.Error())
		if errors.Is(err, domainerrors.ErrAttestationTimeout) {
			metrics.BridgeTransfersTotal.WithLabelValues("attestation_timeout").Inc()
		}
		return record, err
	}

	metrics.BridgeStepDuration.WithLabelValues("attest").Observe(time.Since(stepStart).Seconds())

	if err := s.transfers.SetAttestation(ctx, record.ID, att); err != nil {
		return record, fmt.Errorf("store attestation: %w", err)
	}
	record.Attestation = att
	if err := s.updateStatus(ctx, record, entities.TransferStatusReadyToMint, ""); err != nil {
		return record, err
	}

	return s.mint(ctx, run, record)
}

func (s *Service) pollAttestation(ctx context.Context, run *activeRun, record *entities.PendingBridgeTransfer) (*entities.Attestation, error) {
	interval := s.cfg.PollIntervalDuration()

	for attempt := 1; attempt <= s.cfg.MaxPollAttempts; attempt++ {
		pollCtx, cancel := context.WithTimeout(ctx, s.cfg.PollTimeoutDuration())
		resp, err := s.attestations.GetMessages(pollCtx, record.SourceDomain, record.BurnTxHash)
		cancel()

		switch {
		case err == nil:
			msg := resp.Messages[0]
			if msg.Status == iris.StatusComplete && msg.Attestation != "" {
				metrics.AttestationPolls.Observe(float64(attempt))
				return &entities.Attestation{
					Message:     msg.Message,
					Attestation: msg.Attestation,
				}, nil
			}
		case errors.Is(err, iris.ErrNoMessages):
			// Burn not indexed yet, keep polling.
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			// Transient upstream errors burn an attempt but do not end
			// the loop.
			s.logger.Debug("attestation poll failed",
				"transfer_id", record.ID,
				"attempt", attempt,
				"error", err.Error())
		}

		if attempt == s.cfg.MaxPollAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		if run.abort.Load() {
			return nil, ErrAborted
		}
	}

	return nil, domainerrors.ErrAttestationTimeout
}

// mint submits the attested message on the destination chain. Any failure
// regresses the record to ready_to_mint with the attestation retained, so
// the mint can be retried without re-attesting.
func (s *Service) mint(ctx context.Context, run *activeRun, record *entities.PendingBridgeTransfer) (*entities.PendingBridgeTransfer, error) {
	if record.Attestation == nil {
		return record, fmt.Errorf("%w: transfer %s has no stored attestation", domainerrors.ErrConflict, record.ID)
	}

	message, err := hexutil.Decode(record.Attestation.Message)
	if err != nil {
		return record, fmt.Errorf("decode attestation message: %w", err)
	}
	attestation, err := hexutil.Decode(record.Attestation.Attestation)
	if err != nil {
		return record, fmt.Errorf("decode attestation: %w", err)
	}

	dest, err := s.chains.SwitchTo(ctx, record.DestChainID)
	if err != nil {
		s.setStep(run, record, entities.StepError, err.Error())
		return record, fmt.Errorf("switch to destination chain: %w", err)
	}

	if record.Status != entities.TransferStatusMinting {
		if err := s.updateStatus(ctx, record, entities.TransferStatusMinting, ""); err != nil {
			return record, err
		}
	}
	s.setStep(run, record, entities.StepMinting, "")
	stepStart := time.Now()

	mintTx, err := dest.ReceiveMessage(ctx, message, attestation)
	if err != nil {
		// Regress, keeping the attestation. The transfer stays resumable.
		if regressErr := s.updateStatus(ctx, record, entities.TransferStatusReadyToMint, err.Error()); regressErr != nil {
			s.logger.Error("failed to regress transfer after mint failure",
				"transfer_id", record.ID,
				"error", regressErr.Error())
		}
		metrics.BridgeTransfersTotal.WithLabelValues("mint_retry").Inc()
		s.setStep(run, record, entities.StepError, err.Error())
		return record, fmt.Errorf("mint: %w", err)
	}

	metrics.BridgeStepDuration.WithLabelValues("mint").Observe(time.Since(stepStart).Seconds())

	if err := s.transfers.SetMintTxHash(ctx, record.ID, mintTx.Hex()); err != nil {
		return record, fmt.Errorf("store mint tx hash: %w", err)
	}
	record.MintTxHash = mintTx.Hex()
	if err := s.updateStatus(ctx, record, entities.TransferStatusComplete, ""); err != nil {
		return record, err
	}

	metrics.BridgeTransfersTotal.WithLabelValues("complete").Inc()
	s.setStep(run, record, entities.StepComplete, "")
	s.logger.Info("bridge transfer complete",
		"transfer_id", record.ID,
		"mint_tx_hash", record.MintTxHash)

	return record, nil
}

func (s *Service) updateStatus(ctx context.Context, record *entities.PendingBridgeTransfer, status entities.TransferStatus, lastError string) error {
	if err := record.Status.ValidateTransition(status); err != nil {
		return err
	}
	if err := s.transfers.UpdateStatus(ctx, record.ID, status, lastError); err != nil {
		return fmt.Errorf("update status to %s: %w", status, err)
	}
	record.Status = status
	record.LastError = lastError
	record.UpdatedAt = time.Now().UTC()
	return nil
}

// setStep updates the in-memory mirror and broadcasts the change. Steps
// before the burn confirms have no record yet and carry neither an ID nor
// a durable status.
func (s *Service) setStep(run *activeRun, record *entities.PendingBridgeTransfer, step entities.TransferStep, errMsg string) {
	event := Event{Step: step, Error: errMsg}

	run.mu.Lock()
	run.state.Step = step
	run.state.Error = errMsg
	if record != nil {
		run.state.BurnTxHash = record.BurnTxHash
		run.state.MintTxHash = record.MintTxHash
		if record.Attestation != nil {
			run.state.Attestation = record.Attestation
		}
		event.TransferID = record.ID
		event.Status = record.Status
		event.TxHash = record.BurnTxHash
		if record.MintTxHash != "" {
			event.TxHash = record.MintTxHash
		}
	}
	run.mu.Unlock()

	s.notifier.Publish(event)
}

func (s *Service) track(id string, run *activeRun) {
	s.mu.Lock()
	s.runs[id] = run
	s.mu.Unlock()
}

func (s *Service) untrack(id string) {
	s.mu.Lock()
	delete(s.runs, id)
	s.mu.Unlock()
}

// maxFeeFor bounds the relay fee to a fixed fraction of the amount.
func maxFeeFor(amount *big.Int, bps int64) *big.Int {
	fee := new(big.Int).Mul(amount, big.NewInt(bps))
	return fee.Div(fee, big.NewInt(10_000))
}

// mintRecipientWord left-pads an EVM address into the protocol's 32-byte
// recipient encoding.
func mintRecipientWord(recipient string) [32]byte {
	var word [32]byte
	copy(word[12:], common.HexToAddress(recipient).Bytes())
	return word
}
