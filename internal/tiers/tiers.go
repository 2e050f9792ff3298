package tiers

import (
	"errors"
	"fmt"
)

// BankFee is the external processing fee percentage applied on top of
// every tier's partner fee.
const BankFee = 2.6

var ErrInvalidArgument = errors.New("invalid argument")

type Tier struct {
	Name            string
	MinEvents       int
	PartnerFee      float64
	MarketingCredit float64
}

// Tiers is the commission ladder, ascending by MinEvents.
var Tiers = []Tier{
	{Name: "Tier 4", MinEvents: 0, PartnerFee: 5.5, MarketingCredit: 0},
	{Name: "Tier 3", MinEvents: 3, PartnerFee: 4.5, MarketingCredit: 0.5},
	{Name: "Tier 2", MinEvents: 10, PartnerFee: 3.9, MarketingCredit: 0.75},
	{Name: "Tier 1", MinEvents: 25, PartnerFee: 2.9, MarketingCredit: 1.5},
}

type Rates struct {
	TierName        string
	BankFee         float64
	PartnerFee      float64
	MarketingCredit float64
	GrossFee        float64
	EffectiveRate   float64
}

type Financials struct {
	Rates
	TotalRevenue         float64
	TotalFees            float64
	MarketingCreditValue float64
	EventsToNextTier     int
	NextTierName         string
}

type Benchmark struct {
	Label  string
	Events int
	Financials
}

// TierFor returns the highest tier whose threshold is at or below events.
// Negative inputs clamp to the lowest tier.
func TierFor(events int) Tier {
	tier := Tiers[0]
	for _, t := range Tiers {
		if events >= t.MinEvents {
			tier = t
		}
	}
	return tier
}

// NextTier returns the tier above the one events qualifies for, or false
// when events is already in the top tier.
func NextTier(events int) (Tier, bool) {
	current := TierFor(events)
	for i, t := range Tiers {
		if t.Name == current.Name && i < len(Tiers)-1 {
			return Tiers[i+1], true
		}
	}
	return Tier{}, false
}

func RatesFor(events int) (Rates, error) {
	if events < 0 {
		return Rates{}, fmt.Errorf("events must be non-negative, got %d: %w", events, ErrInvalidArgument)
	}

	tier := TierFor(events)
	grossFee := BankFee + tier.PartnerFee
	return Rates{
		TierName:        tier.Name,
		BankFee:         BankFee,
		PartnerFee:      tier.PartnerFee,
		MarketingCredit: tier.MarketingCredit,
		GrossFee:        grossFee,
		EffectiveRate:   grossFee - tier.MarketingCredit,
	}, nil
}

func FinancialsFor(events, ticketsPerEvent int, avgTicketPrice float64) (Financials, error) {
	if ticketsPerEvent < 0 {
		return Financials{}, fmt.Errorf("tickets per event must be non-negative, got %d: %w", ticketsPerEvent, ErrInvalidArgument)
	}
	if avgTicketPrice < 0 {
		return Financials{}, fmt.Errorf("avg ticket price must be non-negative, got %g: %w", avgTicketPrice, ErrInvalidArgument)
	}

	rates, err := RatesFor(events)
	if err != nil {
		return Financials{}, err
	}

	totalRevenue := float64(events) * float64(ticketsPerEvent) * avgTicketPrice
	financials := Financials{
		Rates:                rates,
		TotalRevenue:         totalRevenue,
		TotalFees:            totalRevenue * rates.EffectiveRate / 100,
		MarketingCreditValue: totalRevenue * rates.MarketingCredit / 100,
	}

	if next, ok := NextTier(events); ok {
		financials.EventsToNextTier = next.MinEvents - events
		financials.NextTierName = next.Name
	}

	return financials, nil
}

// Benchmarks produces the three projection scenarios shown to a client:
// the current plan, a +5 events growth scenario, and a high-volume
// scenario at max(events+15, 25).
func Benchmarks(events, ticketsPerEvent int, avgTicketPrice float64) ([]Benchmark, error) {
	current, err := FinancialsFor(events, ticketsPerEvent, avgTicketPrice)
	if err != nil {
		return nil, err
	}

	growthEvents := events + 5
	growth, err := FinancialsFor(growthEvents, ticketsPerEvent, avgTicketPrice)
	if err != nil {
		return nil, err
	}

	highVolumeEvents := max(events+15, 25)
	highVolume, err := FinancialsFor(highVolumeEvents, ticketsPerEvent, avgTicketPrice)
	if err != nil {
		return nil, err
	}

	return []Benchmark{
		{Label: "Current Plan", Events: events, Financials: current},
		{Label: "Growth Scenario (+5 Events)", Events: growthEvents, Financials: growth},
		{Label: fmt.Sprintf("High-Volume Scenario (+%d Events)", max(25-events, 15)), Events: highVolumeEvents, Financials: highVolume},
	}, nil
}
