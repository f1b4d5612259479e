package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// profileFile is the on-disk shape of a financial profile. Amounts are
// major-unit strings so YAML and JSON numbers both decode exactly.
type profileFile struct {
	ContributionRoom *struct {
		TaxDeferredContributed string `mapstructure:"tax_deferred_contributed"`
		TaxFreeContributed     string `mapstructure:"tax_free_contributed"`
	} `mapstructure:"contribution_room"`
	Budget           map[string]string `mapstructure:"budget"`
	UserID           string            `mapstructure:"user_id"`
	Jurisdiction     string            `mapstructure:"jurisdiction"`
	RiskTolerance    string            `mapstructure:"risk_tolerance"`
	AnnualIncome     string            `mapstructure:"annual_income"`
	MonthlyIncome    string            `mapstructure:"monthly_income"`
	MonthlyExpenses  string            `mapstructure:"monthly_expenses"`
	Accounts         []accountFile     `mapstructure:"accounts"`
	Goals            []goalFile        `mapstructure:"goals"`
	Age              int               `mapstructure:"age"`
	TimeHorizonYears int               `mapstructure:"time_horizon_years"`
}

type accountFile struct {
	InterestRate   *float64 `mapstructure:"interest_rate"`
	ID             string   `mapstructure:"id"`
	Name           string   `mapstructure:"name"`
	Type           string   `mapstructure:"type"`
	Balance        string   `mapstructure:"balance"`
	MinimumPayment string   `mapstructure:"minimum_payment"`
}

type goalFile struct {
	TargetDate    any    `mapstructure:"target_date"`
	CreatedDate   any    `mapstructure:"created_date"`
	ID            string `mapstructure:"id"`
	Title         string `mapstructure:"title"`
	TargetAmount  string `mapstructure:"target_amount"`
	CurrentAmount string `mapstructure:"current_amount"`
}

// loadProfile reads a YAML or JSON profile with its own viper instance so
// profile keys never mix with application settings.
func loadProfile(path string) (model.UserFinancialProfile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return model.UserFinancialProfile{}, common.NewUserError("Could not read profile "+path, err)
	}

	var raw profileFile
	if err := v.Unmarshal(&raw); err != nil {
		return model.UserFinancialProfile{}, common.NewUserError("Profile "+path+" is malformed", err)
	}

	profile, err := raw.toModel()
	if err != nil {
		return model.UserFinancialProfile{}, common.NewUserError("Profile "+path+" is invalid", err)
	}
	return profile, nil
}

// amounts converts major-unit strings, keeping the first error.
type amounts struct {
	err error
}

func (a *amounts) money(field, s string) model.Money {
	if strings.TrimSpace(s) == "" {
		return model.Zero(model.DefaultCurrency)
	}
	m, err := model.ParseMoney(strings.TrimSpace(s), model.DefaultCurrency)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%s: %w", field, err)
	}
	return m
}

func (a *amounts) optional(field, s string) *model.Money {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	m := a.money(field, s)
	return &m
}

func (a *amounts) date(field string, v any) time.Time {
	if v == nil {
		return time.Time{}
	}
	t, err := cast.ToTimeE(v)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%s: %w", field, err)
	}
	return t.UTC()
}

func (p profileFile) toModel() (model.UserFinancialProfile, error) {
	var a amounts

	profile := model.UserFinancialProfile{
		UserID:           p.UserID,
		Age:              p.Age,
		Jurisdiction:     strings.ToUpper(p.Jurisdiction),
		RiskTolerance:    model.RiskTolerance(strings.ToLower(p.RiskTolerance)),
		TimeHorizonYears: p.TimeHorizonYears,
		AnnualIncome:     a.money("annual_income", p.AnnualIncome),
		MonthlyIncome:    a.money("monthly_income", p.MonthlyIncome),
		MonthlyExpenses:  a.money("monthly_expenses", p.MonthlyExpenses),
	}
	if profile.UserID == "" {
		return profile, fmt.Errorf("%w: user_id is required", common.ErrMissingConfig)
	}

	if room := p.ContributionRoom; room != nil {
		profile.ContributionRoom = &model.ContributionRoom{
			TaxDeferredContributed: a.optional("contribution_room.tax_deferred_contributed", room.TaxDeferredContributed),
			TaxFreeContributed:     a.optional("contribution_room.tax_free_contributed", room.TaxFreeContributed),
		}
	}

	for i, acct := range p.Accounts {
		prefix := fmt.Sprintf("accounts[%d]", i)
		t := model.AccountType(strings.ToLower(acct.Type))
		if !t.Valid() {
			return profile, fmt.Errorf("%s: unknown account type %q", prefix, acct.Type)
		}
		name := acct.Name
		if name == "" {
			name = acct.ID
		}
		profile.Accounts = append(profile.Accounts, model.Account{
			ID:             acct.ID,
			Name:           name,
			Type:           t,
			Balance:        a.money(prefix+".balance", acct.Balance),
			InterestRate:   acct.InterestRate,
			MinimumPayment: a.optional(prefix+".minimum_payment", acct.MinimumPayment),
		})
	}

	for i, g := range p.Goals {
		prefix := fmt.Sprintf("goals[%d]", i)
		goal := model.FinancialGoal{
			ID:            g.ID,
			Title:         g.Title,
			TargetAmount:  a.money(prefix+".target_amount", g.TargetAmount),
			CurrentAmount: a.money(prefix+".current_amount", g.CurrentAmount),
			TargetDate:    a.date(prefix+".target_date", g.TargetDate),
			CreatedDate:   a.date(prefix+".created_date", g.CreatedDate),
		}
		if goal.CreatedDate.IsZero() {
			goal.CreatedDate = time.Now().UTC()
		}
		profile.Goals = append(profile.Goals, goal)
	}

	if len(p.Budget) > 0 {
		profile.Budget = &model.BudgetSnapshot{Limits: make(map[string]model.Money, len(p.Budget))}
		for categoryID, limit := range p.Budget {
			profile.Budget.Limits[categoryID] = a.money("budget."+categoryID, limit)
		}
	}

	return profile, a.err
}
