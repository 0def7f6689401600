// Package lmsr implements the Logarithmic Market Scoring Rule (LMSR)
// market maker for binary markets, plus the simplified log-odds move-cost
// pricer the dashboard uses for impact curves and calculator strips.
//
// The exact cost function C(q) = b * ln(sum of exp(q_i / b)) guarantees a
// bounded loss for the market maker (max loss = b * ln(n) for n outcomes)
// and gives prices that can be read directly as probabilities.
//
// Reference: Robin Hanson, "Logarithmic Market Scoring Rules for Modular
// Combinatorial Information Aggregation", 2003.
package lmsr

import (
	"fmt"
	"math"
)

// NumOutcomes is fixed at two: every market resolves YES or NO.
const NumOutcomes = 2

// InvalidParameterError reports a parameter that would make the cost
// function undefined, such as a non-positive liquidity.
type InvalidParameterError struct {
	Param string
	Value float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("lmsr: invalid %s %g", e.Param, e.Value)
}

// MarketMaker prices trades with the exact LMSR cost function.
type MarketMaker struct {
	// B is the liquidity parameter, also called market depth or subsidy.
	// Higher B means more stable prices and less slippage, at the cost of
	// a larger worst-case loss for the operator.
	B float64
}

// NewMarketMaker returns a market maker with the given liquidity
// parameter. Liquidity must be positive.
func NewMarketMaker(liquidity float64) (*MarketMaker, error) {
	if liquidity <= 0 {
		return nil, &InvalidParameterError{Param: "liquidity", Value: liquidity}
	}
	return &MarketMaker{B: liquidity}, nil
}

// Cost evaluates C(qYes, qNo) = b * ln(exp(qYes/b) + exp(qNo/b)).
// The log-sum-exp trick keeps the intermediate exponentials bounded.
func (m *MarketMaker) Cost(qYes, qNo float64) float64 {
	maxQ := math.Max(qYes, qNo)
	return maxQ + m.B*math.Log(math.Exp((qYes-maxQ)/m.B)+math.Exp((qNo-maxQ)/m.B))
}

// PriceYes returns the instantaneous YES price, which under LMSR equals
// the market probability: dC/dqYes = exp(qYes/b) / sum(exp(q_i/b)).
func (m *MarketMaker) PriceYes(qYes, qNo float64) float64 {
	maxQ := math.Max(qYes, qNo)
	expYes := math.Exp((qYes - maxQ) / m.B)
	expNo := math.Exp((qNo - maxQ) / m.B)
	return expYes / (expYes + expNo)
}

// PriceNo returns the instantaneous NO price.
func (m *MarketMaker) PriceNo(qYes, qNo float64) float64 {
	return 1.0 - m.PriceYes(qYes, qNo)
}

// CostToBuy returns the cost of buying shares of an outcome:
// C(q_new) - C(q_current). Selling is buying a negative quantity.
func (m *MarketMaker) CostToBuy(qYes, qNo, shares float64, outcome string) float64 {
	before := m.Cost(qYes, qNo)
	var after float64
	if isYes(outcome) {
		after = m.Cost(qYes+shares, qNo)
	} else {
		after = m.Cost(qYes, qNo+shares)
	}
	return after - before
}

// CostToSell returns the proceeds from selling shares of an outcome.
func (m *MarketMaker) CostToSell(qYes, qNo, shares float64, outcome string) float64 {
	return -m.CostToBuy(qYes, qNo, -shares, outcome)
}

// SharesForCost inverts CostToBuy: how many shares a given spend buys.
// CostToBuy is strictly increasing in shares, so bisection over
// [0, 10*cost] converges; 100 iterations is far past the 1e-4 tolerance
// for any realistic spend.
func (m *MarketMaker) SharesForCost(qYes, qNo, cost float64, outcome string) float64 {
	if cost <= 0 {
		return 0
	}

	low := 0.0
	high := cost * 10

	for i := 0; i < 100; i++ {
		mid := (low + high) / 2
		midCost := m.CostToBuy(qYes, qNo, mid, outcome)

		if math.Abs(midCost-cost) < 0.0001 {
			return mid
		}
		if midCost < cost {
			low = mid
		} else {
			high = mid
		}
	}

	return (low + high) / 2
}

// NewProbabilityAfterBet returns the YES probability after spending
// amount on the given outcome.
func (m *MarketMaker) NewProbabilityAfterBet(qYes, qNo, amount float64, outcome string) float64 {
	shares := m.SharesForCost(qYes, qNo, amount, outcome)
	if isYes(outcome) {
		return m.PriceYes(qYes+shares, qNo)
	}
	return m.PriceYes(qYes, qNo+shares)
}

// MaxLoss returns the operator's worst-case loss, b * ln(2) for a
// binary market.
func (m *MarketMaker) MaxLoss() float64 {
	return m.B * math.Log(NumOutcomes)
}

// BetSimulation describes the effect a spend would have on the market
// without placing it.
type BetSimulation struct {
	SharesReceived  float64 `json:"sharesReceived"`
	Cost            float64 `json:"cost"`
	NewPriceYes     float64 `json:"newPriceYes"`
	NewPriceNo      float64 `json:"newPriceNo"`
	PriceImpact     float64 `json:"priceImpact"`
	AveragePrice    float64 `json:"averagePrice"`
	PotentialPayout float64 `json:"potentialPayout"`
}

// SimulateBet previews a spend of amount on the given outcome.
func (m *MarketMaker) SimulateBet(qYes, qNo, amount float64, outcome string) BetSimulation {
	priceBefore := m.PriceYes(qYes, qNo)
	shares := m.SharesForCost(qYes, qNo, amount, outcome)

	newQYes, newQNo := qYes, qNo
	if isYes(outcome) {
		newQYes += shares
	} else {
		newQNo += shares
	}

	priceAfter := m.PriceYes(newQYes, newQNo)

	sim := BetSimulation{
		SharesReceived:  shares,
		Cost:            amount,
		NewPriceYes:     priceAfter,
		NewPriceNo:      1 - priceAfter,
		PriceImpact:     priceAfter - priceBefore,
		PotentialPayout: shares, // each share pays 1 unit if correct
	}
	if shares > 0 {
		sim.AveragePrice = amount / shares
	}
	return sim
}

// SharesForProbability returns share quantities that put a fresh market
// at probability p, using the identity qYes - qNo = b * logit(p). Used
// when seeding a market at its initial probability.
func (m *MarketMaker) SharesForProbability(p float64) (qYes, qNo float64) {
	delta := m.B * logOdds(ClampProbability(p))
	if delta >= 0 {
		return delta, 0
	}
	return 0, -delta
}

func isYes(outcome string) bool {
	return outcome == "yes" || outcome == "YES"
}
