package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-vulcan/protocol"
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

func TestTokens(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"1000000000000000000", 1},
		{"1500000000000000000", 1.5},
		{"330000000000000000000000000", 330000000},
	} {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Tokens(u256.MustFromDecimal(tt.in)))
		})
	}
}

func TestReportStatus(t *testing.T) {
	require := require.New(t)

	ReportStatus(protocol.Status{
		Block:             12,
		Epoch:             3,
		RebaseActive:      true,
		TotalSupply:       vulcan.InitialSupply(),
		CirculatingSupply: u256.MustFromDecimal("160000000000000000000000000"),
		FirePitBalance:    u256.MustFromDecimal("170000000000000000000000000"),
		SlashCount:        2,
	})
	require.Equal(float64(12), testutil.ToFloat64(block))
	require.Equal(float64(3), testutil.ToFloat64(epoch))
	require.Equal(float64(1), testutil.ToFloat64(rebaseActive))
	require.Equal(float64(330000000), testutil.ToFloat64(totalSupply))
	require.Equal(float64(160000000), testutil.ToFloat64(circulatingSupply))
	require.Equal(float64(170000000), testutil.ToFloat64(firePitBalance))
	require.Equal(float64(2), testutil.ToFloat64(slashCount))

	ReportStatus(protocol.Status{})
	require.Equal(float64(0), testutil.ToFloat64(rebaseActive))
}

func TestReportTransfer(t *testing.T) {
	require := require.New(t)

	okBefore := testutil.ToFloat64(transfers.WithLabelValues(KindGas))
	failedBefore := testutil.ToFloat64(failed.WithLabelValues(KindGas))

	ReportTransfer(KindGas, nil)
	ReportTransfer(KindGas, errors.New("rejected"))
	ReportTransfer(KindGas, nil)

	require.Equal(okBefore+2, testutil.ToFloat64(transfers.WithLabelValues(KindGas)))
	require.Equal(failedBefore+1, testutil.ToFloat64(failed.WithLabelValues(KindGas)))
}
