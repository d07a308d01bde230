// Package fees holds the stateless fee policy: unit conversion between the
// node's satoshi boundary and the internal millisatoshi ledger, liquidity fee
// math, and next-wallet-state computation for settlements.
package fees

import ledgerdomain "github.com/smallbiznis/nwcd/internal/ledger/domain"

const MsatPerSat int64 = 1000

// SatToMsat converts a node-reported satoshi amount to millisatoshi.
func SatToMsat(sat int64) int64 {
	return sat * MsatPerSat
}

// MsatToSatCeil converts millisatoshi to satoshi, rounding up so an outbound
// request never asks the node for less than the ledger amount.
func MsatToSatCeil(msat int64) int64 {
	return (msat + MsatPerSat - 1) / MsatPerSat
}

// Quote is the node's current liquidity fee estimate.
type Quote struct {
	MiningFeeSat  int64
	ServiceFeeSat int64
}

// LiquidityFeeMsat is the total fee billed against a receiving client when an
// inbound settlement required new channel liquidity.
func (q Quote) LiquidityFeeMsat() int64 {
	return SatToMsat(q.MiningFeeSat + q.ServiceFeeSat)
}

// NextStateForReceive computes the complete wallet state after an incoming
// settlement. The liquidity fee is drawn from prepaid fee credit first; only
// the uncovered remainder is billed against the received amount. A non-zero
// liquidity fee implies the node grew inbound capacity by the received amount.
func NextStateForReceive(current ledgerdomain.Wallet, receivedMsat, liquidityFeeMsat int64) ledgerdomain.Wallet {
	next := current

	covered := liquidityFeeMsat
	if covered > next.FeeCreditMsat {
		covered = next.FeeCreditMsat
	}
	next.FeeCreditMsat -= covered

	next.BalanceMsat += receivedMsat - (liquidityFeeMsat - covered)
	if liquidityFeeMsat > 0 {
		next.ChannelSizeMsat += receivedMsat
	}
	return next
}

// NextStateForSend computes the complete wallet state after a successful
// outbound payment: amount plus routing fee leave the balance.
func NextStateForSend(current ledgerdomain.Wallet, amountMsat, routingFeeMsat int64) ledgerdomain.Wallet {
	next := current
	next.BalanceMsat -= amountMsat + routingFeeMsat
	return next
}
