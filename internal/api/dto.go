package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/model"
)

type transactionRequest struct {
	Amount      decimal.NullDecimal `json:"amount"`
	Type        string              `json:"type"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Date        string              `json:"date"`
}

type budgetRequest struct {
	Categories  map[string]decimal.Decimal `json:"categories"`
	TotalAmount decimal.NullDecimal        `json:"total_amount"`
	Month       string                     `json:"month"`
}

type goalRequest struct {
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Name          string          `json:"name"`
	TargetDate    string          `json:"target_date"`
}

type goalProgressRequest struct {
	CurrentAmount decimal.NullDecimal `json:"current_amount"`
}

// alertSettingsRequest leaves omitted flags enabled.
type alertSettingsRequest struct {
	BudgetAlert           *bool `json:"budget_alert"`
	LargeTransactionAlert *bool `json:"large_transaction_alert"`
	GoalAlert             *bool `json:"goal_alert"`
	RecurringAlert        *bool `json:"recurring_alert"`
}

type transactionResponse struct {
	Date        time.Time `json:"date"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
}

type transactionCreatedResponse struct {
	Alerts      []alertResponse     `json:"alerts"`
	Category    string              `json:"category"`
	Transaction transactionResponse `json:"transaction"`
}

type dashboardResponse struct {
	RecentTransactions []transactionResponse `json:"recent_transactions"`
	Month              string                `json:"month"`
	TopCategory        string                `json:"top_category"`
	MonthlyIncome      float64               `json:"monthly_income"`
	MonthlyExpenses    float64               `json:"monthly_expenses"`
	NetFlow            float64               `json:"net_flow"`
	AvgDailySpend      float64               `json:"avg_daily_spend"`
	FTIScore           int                   `json:"fti_score"`
	BudgetUsed         int                   `json:"budget_used"`
	TotalTransactions  int                   `json:"total_transactions"`
	RecurringCount     int                   `json:"recurring_count"`
	Degraded           bool                  `json:"degraded"`
}

type componentResponse struct {
	Name     string  `json:"name"`
	Label    string  `json:"label"`
	Origin   string  `json:"origin"`
	Reason   string  `json:"reason,omitempty"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

type breakdownResponse struct {
	CalculatedAt time.Time           `json:"calculated_at"`
	Error        string              `json:"error,omitempty"`
	Components   []componentResponse `json:"components"`
	Score        int                 `json:"score"`
	Degraded     bool                `json:"degraded"`
}

type scoreResponse struct {
	CalculatedAt time.Time          `json:"calculated_at"`
	Components   map[string]float64 `json:"components"`
	ID           string             `json:"id"`
	Score        int                `json:"score"`
}

type budgetResponse struct {
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Categories  map[string]float64 `json:"categories"`
	Month       string             `json:"month"`
	TotalAmount float64            `json:"total_amount"`
}

type reportResponse struct {
	TopCategories    map[string]float64 `json:"top_categories"`
	Month            string             `json:"month"`
	TotalIncome      float64            `json:"total_income"`
	TotalExpenses    float64            `json:"total_expenses"`
	FTIScore         int                `json:"fti_score"`
	TransactionCount int                `json:"transaction_count"`
	Degraded         bool               `json:"degraded"`
}

type goalResponse struct {
	TargetDate    *time.Time `json:"target_date,omitempty"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Progress      float64    `json:"progress"`
}

type goalUpdatedResponse struct {
	Alerts []alertResponse `json:"alerts"`
	Goal   goalResponse    `json:"goal"`
}

type alertResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
}

type alertSettingsResponse struct {
	BudgetAlert           bool `json:"budget_alert"`
	LargeTransactionAlert bool `json:"large_transaction_alert"`
	GoalAlert             bool `json:"goal_alert"`
	RecurringAlert        bool `json:"recurring_alert"`
}

func toTransactionResponse(t model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Category:    string(t.Category),
		Type:        string(t.Kind),
		Amount:      t.Amount.InexactFloat64(),
	}
}

func toTransactionResponses(txns []model.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toDashboardResponse(d engine.Dashboard) dashboardResponse {
	return dashboardResponse{
		Month:              d.Month.String(),
		FTIScore:           d.FTIScore,
		MonthlyIncome:      d.MonthlyIncome.InexactFloat64(),
		MonthlyExpenses:    d.MonthlyExpenses.InexactFloat64(),
		NetFlow:            d.NetFlow.InexactFloat64(),
		BudgetUsed:         d.BudgetUsed,
		RecentTransactions: toTransactionResponses(d.RecentTransactions),
		TotalTransactions:  d.TotalTransactions,
		AvgDailySpend:      d.AvgDailySpend.InexactFloat64(),
		TopCategory:        d.TopCategory,
		RecurringCount:     d.RecurringCount,
		Degraded:           d.Degraded,
	}
}

func toBreakdownResponse(b engine.Breakdown) breakdownResponse {
	resp := breakdownResponse{
		CalculatedAt: b.CalculatedAt,
		Score:        b.Score,
		Degraded:     b.Degraded,
		Components:   make([]componentResponse, 0, len(b.Components)),
	}
	if b.Err != nil {
		resp.Error = "ledger unavailable"
	}
	for _, c := range b.Components {
		resp.Components = append(resp.Components, componentResponse{
			Name:     string(c.Name),
			Label:    c.Name.Label(),
			Origin:   string(c.Origin),
			Reason:   c.Reason,
			Score:    c.Score,
			Weight:   c.Weight,
			Weighted: c.Weighted(),
		})
	}
	return resp
}

func toScoreResponse(s model.FTIScore) scoreResponse {
	components := make(map[string]float64, len(s.Components))
	for name, v := range s.Components {
		components[string(name)] = v
	}
	return scoreResponse{
		ID:           s.ID,
		Score:        s.Score,
		Components:   components,
		CalculatedAt: s.CalculatedAt,
	}
}

func toBudgetResponse(b *model.Budget) budgetResponse {
	return budgetResponse{
		Month:       b.Month.String(),
		TotalAmount: b.TotalAmount.InexactFloat64(),
		Categories:  toAmountMap(b.Categories),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toReportResponse(r engine.MonthlyReport) reportResponse {
	return reportResponse{
		Month:            r.Month.Label(),
		FTIScore:         r.FTIScore,
		TotalIncome:      r.TotalIncome.InexactFloat64(),
		TotalExpenses:    r.TotalExpenses.InexactFloat64(),
		TransactionCount: r.TransactionCount,
		TopCategories:    toAmountMap(r.TopCategories),
		Degraded:         r.Degraded,
	}
}

func toGoalResponse(g model.Goal) goalResponse {
	resp := goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		Status:        string(g.Status),
		TargetAmount:  g.TargetAmount.InexactFloat64(),
		CurrentAmount: g.CurrentAmount.InexactFloat64(),
		Progress:      g.Progress(),
	}
	if !g.TargetDate.IsZero() {
		d := g.TargetDate
		resp.TargetDate = &d
	}
	return resp
}

func toAlertResponse(a model.Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		Type:      string(a.Severity),
		Read:      a.Read,
		CreatedAt: a.CreatedAt,
	}
}

func toAlertResponses(alerts []model.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return out
}

func toAlertSettingsResponse(s model.AlertSettings) alertSettingsResponse {
	return alertSettingsResponse{
		BudgetAlert:           s.BudgetAlert,
		LargeTransactionAlert: s.LargeTransactionAlert,
		GoalAlert:             s.GoalAlert,
		RecurringAlert:        s.RecurringAlert,
	}
}

func toAmountMap(m map[model.Category]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for cat, v := range m {
		out[string(cat)] = v.InexactFloat64()
	}
	return out
}
