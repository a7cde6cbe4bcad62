// Package api exposes the ledger over JSON-RPC under the "vulcan" namespace.
//
// Amounts are scaled decimal strings in both directions. Block and epoch
// numbers are hex quantities, as in the eth namespace.
package api

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rony4d/go-vulcan/inter/ier"
	"github.com/rony4d/go-vulcan/ledger"
	"github.com/rony4d/go-vulcan/protocol"
	"github.com/rony4d/go-vulcan/utils/u256"
)

const (
	// Namespace is the JSON-RPC namespace of the ledger service.
	Namespace = "vulcan"
	// Version of the service.
	Version = "1.0"
)

// JSON-RPC error codes returned by the service.
const (
	ErrCodeInvalidParams       = -32602
	ErrCodeInsufficientBalance = -32010
	ErrCodeNotFound            = -32011
	ErrCodeLedger              = -32012
)

// ErrRecordNotFound is returned for epochs that were never recorded or have
// been evicted.
var ErrRecordNotFound = errors.New("epoch record not found")

// Error is a ledger error carrying its JSON-RPC code.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string  { return e.Err.Error() }
func (e *Error) ErrorCode() int { return e.Code }
func (e *Error) Unwrap() error  { return e.Err }

var _ rpc.Error = (*Error)(nil)

// wrapError maps ledger errors to JSON-RPC codes.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return &Error{Code: ErrCodeInsufficientBalance, Err: err}
	case errors.Is(err, u256.ErrOverflow), errors.Is(err, u256.ErrSyntax):
		return &Error{Code: ErrCodeInvalidParams, Err: err}
	case errors.Is(err, ErrRecordNotFound):
		return &Error{Code: ErrCodeNotFound, Err: err}
	}
	return &Error{Code: ErrCodeLedger, Err: err}
}

// APIs returns the services to register on an rpc.Server.
func APIs(b *Backend) []rpc.API {
	return []rpc.API{{
		Namespace: Namespace,
		Version:   Version,
		Service:   NewPublicLedgerAPI(b),
		Public:    true,
	}}
}

// Register registers every service of b on srv.
func Register(srv *rpc.Server, b *Backend) error {
	for _, api := range APIs(b) {
		if err := srv.RegisterName(api.Namespace, api.Service); err != nil {
			return fmt.Errorf("register %s: %w", api.Namespace, err)
		}
	}
	return nil
}

// PublicLedgerAPI is the vulcan_ namespace.
type PublicLedgerAPI struct {
	b *Backend
}

// NewPublicLedgerAPI creates a new ledger API.
func NewPublicLedgerAPI(b *Backend) *PublicLedgerAPI {
	return &PublicLedgerAPI{b: b}
}

// GetBalance returns the balance of account.
func (s *PublicLedgerAPI) GetBalance(account string) protocol.AccountBalance {
	return s.b.GetBalance(account)
}

// BalanceAt returns the balance account will have at block if nothing is
// transferred in between.
func (s *PublicLedgerAPI) BalanceAt(account string, block hexutil.Uint64) protocol.AccountBalance {
	return s.b.BalanceAt(account, idx.Block(block))
}

// TotalSupply returns the total supply.
func (s *PublicLedgerAPI) TotalSupply() u256.Int {
	return s.b.TotalSupply()
}

// Transfer sends amount from one account to another, taxed unless exempt.
func (s *PublicLedgerAPI) Transfer(from, to string, amount u256.Int) (protocol.TransferResult, error) {
	res, err := s.b.Transfer(from, to, amount)
	return res, wrapError(err)
}

// GasTransfer sends amount without tax.
func (s *PublicLedgerAPI) GasTransfer(from, to string, amount u256.Int) (protocol.TransferResult, error) {
	res, err := s.b.GasTransfer(from, to, amount)
	return res, wrapError(err)
}

// Status returns a summary of the ledger.
func (s *PublicLedgerAPI) Status() protocol.Status {
	return s.b.Status()
}

// EpochRecord returns the record of epoch, or the last record if epoch is
// omitted.
func (s *PublicLedgerAPI) EpochRecord(epoch *hexutil.Uint64) (*RPCEpochRecord, error) {
	if epoch == nil {
		return newRPCEpochRecord(s.b.LastEpochRecord()), nil
	}
	r, ok := s.b.EpochRecord(idx.Epoch(*epoch))
	if !ok {
		return nil, wrapError(fmt.Errorf("%w: epoch %d", ErrRecordNotFound, uint64(*epoch)))
	}
	return newRPCEpochRecord(r), nil
}

// RPCEpochRecord is the JSON form of an epoch record.
type RPCEpochRecord struct {
	Epoch             hexutil.Uint64 `json:"epoch"`
	Block             hexutil.Uint64 `json:"block"`
	RebaseActive      bool           `json:"rebaseActive"`
	TotalSupply       u256.Int       `json:"totalSupply"`
	CirculatingSupply u256.Int       `json:"circulatingSupply"`
	FragmentsPerUnit  u256.Int       `json:"fragmentsPerUnit"`
	FirePitBalance    u256.Int       `json:"firePitBalance"`
	SlashCount        hexutil.Uint64 `json:"slashCount"`
	SlashedTotal      u256.Int       `json:"slashedTotal"`
	HolderBalance     u256.Int       `json:"holderBalance"`
	PrevHash          string         `json:"prevHash"`
	Hash              string         `json:"hash"`
}

func newRPCEpochRecord(r ier.EpochRecord) *RPCEpochRecord {
	return &RPCEpochRecord{
		Epoch:             hexutil.Uint64(r.Epoch),
		Block:             hexutil.Uint64(r.Block),
		RebaseActive:      r.RebaseActive,
		TotalSupply:       fromBig(r.TotalSupply),
		CirculatingSupply: fromBig(r.CirculatingSupply),
		FragmentsPerUnit:  fromBig(r.FragmentsPerUnit),
		FirePitBalance:    fromBig(r.FirePitBalance),
		SlashCount:        hexutil.Uint64(r.SlashCount),
		SlashedTotal:      fromBig(r.SlashedTotal),
		HolderBalance:     fromBig(r.HolderBalance),
		PrevHash:          r.PrevHash.Hex(),
		Hash:              r.Hash().Hex(),
	}
}

// fromBig converts a record amount. Records are built from u256 values, so
// the conversion cannot fail.
func fromBig(b *big.Int) u256.Int {
	if b == nil {
		return u256.Zero()
	}
	v, _ := u256.FromBig(b)
	return v
}
