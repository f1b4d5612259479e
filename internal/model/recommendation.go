package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecommendationKind is the closed set of recommendation families.
type RecommendationKind string

// Recommendation kinds.
const (
	KindTax           RecommendationKind = "tax"
	KindDebt          RecommendationKind = "debt"
	KindSavings       RecommendationKind = "savings"
	KindEmergencyFund RecommendationKind = "emergency_fund"
	KindGoal          RecommendationKind = "goal"
	KindCashFlow      RecommendationKind = "cash_flow"
)

// Priority orders recommendations; larger is more pressing.
type Priority int

// Priority levels.
const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	}
	return "unknown"
}

// Timeframe is when the user should act on a recommendation.
type Timeframe string

// Timeframes.
const (
	TimeframeImmediate Timeframe = "immediate"
	TimeframeShortTerm Timeframe = "short_term"
	TimeframeLongTerm  Timeframe = "long_term"
)

// ReasoningFactor is one input that drove a recommendation.
type ReasoningFactor struct {
	Name   string  `json:"name"`
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
}

// RecommendationReasoning makes a recommendation explainable on its own.
type RecommendationReasoning struct {
	Methodology string            `json:"methodology"`
	Factors     []ReasoningFactor `json:"factors"`
	Assumptions []string          `json:"assumptions"`
	Confidence  float64           `json:"confidence"`
}

// ActionStep is one ordered step the user can take.
type ActionStep struct {
	Amount      *Money `json:"amount,omitempty"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// ExpectedImpact estimates what following a recommendation is worth.
type ExpectedImpact struct {
	Amount          Money   `json:"amount"`
	MonthsToRealize int     `json:"months_to_realize"`
	Confidence      float64 `json:"confidence"`
}

// Recommendation is an explainable, prioritized suggestion produced by one engine run.
// Only Completed changes after creation.
type Recommendation struct {
	CreatedAt    time.Time               `json:"created_at"`
	Detail       Detail                  `json:"-"`
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	Kind         RecommendationKind      `json:"kind"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Timeframe    Timeframe               `json:"timeframe"`
	Reasoning    RecommendationReasoning `json:"reasoning"`
	Actions      []ActionStep            `json:"actions"`
	Risks        []string                `json:"risks"`
	Alternatives []string                `json:"alternatives"`
	Impact       ExpectedImpact          `json:"impact"`
	Priority     Priority                `json:"priority"`
	Completed    bool                    `json:"completed"`
}

// Detail is the kind-specific payload of a recommendation. The set of
// implementations is closed to this package.
type Detail interface {
	Kind() RecommendationKind
	isDetail()
}

// RegisteredAccountClass distinguishes the two registered-account families.
type RegisteredAccountClass string

// Registered account classes.
const (
	TaxDeferredAccount RegisteredAccountClass = "tax_deferred"
	TaxFreeAccount     RegisteredAccountClass = "tax_free"
)

// TaxDetail backs a registered-account contribution recommendation.
type TaxDetail struct {
	Class                   RegisteredAccountClass `json:"class"`
	ContributionRoom        Money                  `json:"contribution_room"`
	RecommendedContribution Money                  `json:"recommended_contribution"`
	EstimatedTaxSavings     Money                  `json:"estimated_tax_savings"`
}

// DebtMethod is the closed set of payoff orderings.
type DebtMethod string

// Debt payoff methods.
const (
	DebtAvalanche DebtMethod = "avalanche"
	DebtSnowball  DebtMethod = "snowball"
	DebtHybrid    DebtMethod = "hybrid"
)

// DebtDetail backs a debt payoff recommendation.
type DebtDetail struct {
	Method         DebtMethod `json:"method"`
	PayoffOrder    []string   `json:"payoff_order"`
	TotalDebt      Money      `json:"total_debt"`
	ExtraPayment   Money      `json:"extra_payment"`
	InterestSaved  Money      `json:"interest_saved"`
	MonthsToPayoff int        `json:"months_to_payoff"`
	Consolidation  bool       `json:"consolidation"`
}

// SavingsDetail backs a savings-rate recommendation.
type SavingsDetail struct {
	CurrentRate float64 `json:"current_rate"`
	OptimalRate float64 `json:"optimal_rate"`
	MonthlyGap  Money   `json:"monthly_gap"`
}

// EmergencyFundDetail backs an emergency-fund recommendation.
type EmergencyFundDetail struct {
	Target  Money `json:"target"`
	Current Money `json:"current"`
	Gap     Money `json:"gap"`
}

// GoalDetail backs a goal-acceleration recommendation.
type GoalDetail struct {
	GoalID          string  `json:"goal_id"`
	Progress        float64 `json:"progress"`
	Elapsed         float64 `json:"elapsed"`
	RequiredMonthly Money   `json:"required_monthly"`
}

// CashFlowDetail backs a spending-reduction recommendation.
type CashFlowDetail struct {
	CategoryID    string  `json:"category_id"`
	Trend         Trend   `json:"trend"`
	Share         float64 `json:"share"`
	MonthlyAmount Money   `json:"monthly_amount"`
	OverBudget    bool    `json:"over_budget"`
}

// Kind implements Detail.
func (TaxDetail) Kind() RecommendationKind { return KindTax }

// Kind implements Detail.
func (DebtDetail) Kind() RecommendationKind { return KindDebt }

// Kind implements Detail.
func (SavingsDetail) Kind() RecommendationKind { return KindSavings }

// Kind implements Detail.
func (EmergencyFundDetail) Kind() RecommendationKind { return KindEmergencyFund }

// Kind implements Detail.
func (GoalDetail) Kind() RecommendationKind { return KindGoal }

// Kind implements Detail.
func (CashFlowDetail) Kind() RecommendationKind { return KindCashFlow }

func (TaxDetail) isDetail()           {}
func (DebtDetail) isDetail()          {}
func (SavingsDetail) isDetail()       {}
func (EmergencyFundDetail) isDetail() {}
func (GoalDetail) isDetail()          {}
func (CashFlowDetail) isDetail()      {}

// DecodeDetail unmarshals a stored detail payload for the given kind.
func DecodeDetail(kind RecommendationKind, data []byte) (Detail, error) {
	var (
		detail Detail
		err    error
	)
	switch kind {
	case KindTax:
		var d TaxDetail
		err = json.Unmarshal(data, &d)
		detail = d
	case KindDebt:
		var d DebtDetail
		err = json.Unmarshal(data, &d)
		detail = d
	case KindSavings:
		var d SavingsDetail
		err = json.Unmarshal(data, &d)
		detail = d
	case KindEmergencyFund:
		var d EmergencyFundDetail
		err = json.Unmarshal(data, &d)
		detail = d
	case KindGoal:
		var d GoalDetail
		err = json.Unmarshal(data, &d)
		detail = d
	case KindCashFlow:
		var d CashFlowDetail
		err = json.Unmarshal(data, &d)
		detail = d
	default:
		return nil, fmt.Errorf("unknown recommendation kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s detail: %w", kind, err)
	}
	return detail, nil
}
