package api

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-vulcan/inter/ier"
	"github.com/rony4d/go-vulcan/protocol"
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
	"github.com/rony4d/go-vulcan/vulcan/genesis"
)

const (
	hundred  = "100000000000000000000"
	thousand = "1000000000000000000000"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	cfg := genesis.DefaultConfig()
	cfg.Accounts = map[string]u256.Int{
		"A": u256.New(1000),
		"B": u256.New(2000),
	}
	p, err := protocol.New(vulcan.FakeNetRules(), cfg)
	require.NoError(t, err)
	return NewBackend(p, testLogger())
}

func dial(t *testing.T, b *Backend) *rpc.Client {
	t.Helper()
	srv := rpc.NewServer()
	require.NoError(t, Register(srv, b))
	client := rpc.DialInProc(srv)
	t.Cleanup(func() {
		client.Close()
		srv.Stop()
	})
	return client
}

func TestGetBalanceAndSupply(t *testing.T) {
	require := require.New(t)
	client := dial(t, newBackend(t))

	var bal protocol.AccountBalance
	require.NoError(client.Call(&bal, "vulcan_getBalance", "A"))
	require.Equal("A", bal.Account)
	require.Equal(thousand, bal.Balance.String())

	require.NoError(client.Call(&bal, "vulcan_getBalance", "nobody"))
	require.True(bal.Balance.IsZero())

	var supply u256.Int
	require.NoError(client.Call(&supply, "vulcan_totalSupply"))
	require.Equal(vulcan.InitialSupply().String(), supply.String())
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	client := dial(t, newBackend(t))

	var res protocol.TransferResult
	require.NoError(client.Call(&res, "vulcan_transfer", "A", "C", hundred))
	require.Len(res.Balances, 2)
	require.Equal("A", res.Balances[0].Account)
	require.Equal("900000000000000000000", res.Balances[0].Balance.String())
	require.Equal("C", res.Balances[1].Account)
	require.Equal(hundred, res.Balances[1].Balance.String())

	require.NoError(client.Call(&res, "vulcan_gasTransfer", "B", "C", hundred))
	require.Equal("1900000000000000000000", res.Balances[0].Balance.String())
	require.Equal("200000000000000000000", res.Balances[1].Balance.String())
}

func TestTransferErrors(t *testing.T) {
	for _, tt := range []struct {
		name   string
		method string
		args   []interface{}
		code   int
	}{
		{"insufficient", "vulcan_transfer", []interface{}{"A", "B", "2000000000000000000000"}, ErrCodeInsufficientBalance},
		{"unknown sender", "vulcan_gasTransfer", []interface{}{"nobody", "B", "1"}, ErrCodeInsufficientBalance},
		{"missing record", "vulcan_epochRecord", []interface{}{hexutil.Uint64(99)}, ErrCodeNotFound},
	} {
		t.Run(tt.name, func(t *testing.T) {
			client := dial(t, newBackend(t))

			var res interface{}
			err := client.Call(&res, tt.method, tt.args...)
			require.Error(t, err)
			var rpcErr rpc.Error
			require.True(t, errors.As(err, &rpcErr), err)
			require.Equal(t, tt.code, rpcErr.ErrorCode())
		})
	}
}

func TestFailedTransferKeepsBalances(t *testing.T) {
	require := require.New(t)
	b := newBackend(t)
	client := dial(t, b)

	var res protocol.TransferResult
	require.Error(client.Call(&res, "vulcan_transfer", "A", "B", "1000000000000000000001"))
	require.Equal(thousand, b.GetBalance("A").Balance.String())
}

func TestStatusAndEpochRecords(t *testing.T) {
	require := require.New(t)
	b := newBackend(t)
	client := dial(t, b)

	blocks := int(vulcan.FakeNetEpochsRules().BlocksPerEpoch) * 2
	for i := 0; i < blocks; i++ {
		_, err := b.AdvanceBlock()
		require.NoError(err)
	}

	var st protocol.Status
	require.NoError(client.Call(&st, "vulcan_status"))
	require.EqualValues(blocks, st.Block)
	require.EqualValues(2, st.Epoch)
	require.True(st.RebaseActive)
	require.Equal(vulcan.RebaseLinear, st.RebaseMode)

	var last RPCEpochRecord
	require.NoError(client.Call(&last, "vulcan_epochRecord"))
	require.EqualValues(2, last.Epoch)
	require.Equal(st.TotalSupply.String(), last.TotalSupply.String())

	var first RPCEpochRecord
	require.NoError(client.Call(&first, "vulcan_epochRecord", hexutil.Uint64(1)))
	require.EqualValues(1, first.Epoch)
	require.Equal(first.Hash, last.PrevHash)

	records := []ier.EpochRecord{}
	for e := 0; e <= 2; e++ {
		r, ok := b.EpochRecord(idx.Epoch(e))
		require.True(ok)
		records = append(records, r)
	}
	require.NoError(ier.Verify(records))
}

func TestBalanceAt(t *testing.T) {
	require := require.New(t)
	client := dial(t, newBackend(t))

	var bal protocol.AccountBalance
	require.NoError(client.Call(&bal, "vulcan_balanceAt", "A", hexutil.Uint64(400)))
	require.Equal(thousand, bal.Balance.String())
}

func TestConcurrentAccess(t *testing.T) {
	require := require.New(t)
	b := newBackend(t)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := b.GasTransfer("B", "A", u256.MustFromDecimal("1000000000000000000")); err != nil {
					mu.Lock()
					failed = append(failed, err)
					mu.Unlock()
				}
				if _, err := b.AdvanceBlock(); err != nil {
					mu.Lock()
					failed = append(failed, err)
					mu.Unlock()
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = b.GetBalance("A")
				_ = b.Status()
			}
		}()
	}
	wg.Wait()

	require.Empty(failed)
	require.EqualValues(160, b.Status().Block)
	require.True(b.GetBalance("A").Balance.Gt(u256.MustFromDecimal("1160000000000000000000")))
}
