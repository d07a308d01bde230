package fees

import (
	"testing"

	ledgerdomain "github.com/smallbiznis/nwcd/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
)

func TestMsatToSatCeil(t *testing.T) {
	assert.Equal(t, int64(0), MsatToSatCeil(0))
	assert.Equal(t, int64(1), MsatToSatCeil(1))
	assert.Equal(t, int64(1), MsatToSatCeil(999))
	assert.Equal(t, int64(1), MsatToSatCeil(1000))
	assert.Equal(t, int64(2), MsatToSatCeil(1001))
	assert.Equal(t, int64(21), MsatToSatCeil(21_000))
}

func TestSatToMsat(t *testing.T) {
	assert.Equal(t, int64(0), SatToMsat(0))
	assert.Equal(t, int64(21_000), SatToMsat(21))
}

func TestQuoteLiquidityFeeMsat(t *testing.T) {
	q := Quote{MiningFeeSat: 120, ServiceFeeSat: 1000}
	assert.Equal(t, int64(1_120_000), q.LiquidityFeeMsat())
}

func TestNextStateForReceiveWithoutLiquidityFee(t *testing.T) {
	current := ledgerdomain.Wallet{
		Pubkey:          "alice",
		BalanceMsat:     5_000,
		ChannelSizeMsat: 100_000,
		FeeCreditMsat:   2_000,
	}

	next := NextStateForReceive(current, 10_000, 0)

	assert.Equal(t, int64(15_000), next.BalanceMsat)
	assert.Equal(t, int64(100_000), next.ChannelSizeMsat)
	assert.Equal(t, int64(2_000), next.FeeCreditMsat)
}

func TestNextStateForReceiveFeeCoveredByCredit(t *testing.T) {
	current := ledgerdomain.Wallet{
		Pubkey:        "alice",
		FeeCreditMsat: 5_000,
	}

	next := NextStateForReceive(current, 10_000, 3_000)

	// The fee is fully absorbed by prepaid credit; the balance keeps the
	// entire received amount.
	assert.Equal(t, int64(10_000), next.BalanceMsat)
	assert.Equal(t, int64(2_000), next.FeeCreditMsat)
	assert.Equal(t, int64(10_000), next.ChannelSizeMsat)
}

func TestNextStateForReceiveFeePartiallyCovered(t *testing.T) {
	current := ledgerdomain.Wallet{
		Pubkey:        "alice",
		FeeCreditMsat: 1_000,
	}

	next := NextStateForReceive(current, 10_000, 3_000)

	// 1000 comes out of credit, the remaining 2000 out of the received amount.
	assert.Equal(t, int64(8_000), next.BalanceMsat)
	assert.Equal(t, int64(0), next.FeeCreditMsat)
	assert.Equal(t, int64(10_000), next.ChannelSizeMsat)
}

func TestNextStateForReceiveFeeUncovered(t *testing.T) {
	current := ledgerdomain.Wallet{Pubkey: "alice"}

	next := NextStateForReceive(current, 10_000, 3_000)

	assert.Equal(t, int64(7_000), next.BalanceMsat)
	assert.Equal(t, int64(0), next.FeeCreditMsat)
	assert.Equal(t, int64(10_000), next.ChannelSizeMsat)
}

func TestNextStateForSend(t *testing.T) {
	current := ledgerdomain.Wallet{
		Pubkey:          "alice",
		BalanceMsat:     50_000,
		ChannelSizeMsat: 100_000,
	}

	next := NextStateForSend(current, 21_000, 2_000)

	assert.Equal(t, int64(27_000), next.BalanceMsat)
	assert.Equal(t, int64(100_000), next.ChannelSizeMsat)
}
