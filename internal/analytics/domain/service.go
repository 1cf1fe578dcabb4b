package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/maisonlabs/courtier/internal/contract/domain"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
)

const (
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodYear   = "year"
	PeriodCustom = "custom"
)

type DashboardRequest struct {
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
}

type RevenuePoint struct {
	Label  string    `json:"label"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

type KPIs struct {
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	LastMonthRevenue  float64 `json:"last_month_revenue"`
	YearToDateRevenue float64 `json:"year_to_date_revenue"`
	RevenueGrowth     float64 `json:"revenue_growth"`

	NewMandates       int64   `json:"new_mandates"`
	LastMonthMandates int64   `json:"last_month_mandates"`
	MandateGrowth     float64 `json:"mandate_growth"`

	CompletedSales int64   `json:"completed_sales"`
	LastMonthSales int64   `json:"last_month_sales"`
	SalesGrowth    float64 `json:"sales_growth"`

	ConversionRate          float64 `json:"conversion_rate"`
	LastMonthConversionRate float64 `json:"last_month_conversion_rate"`
	ConversionChange        float64 `json:"conversion_change"`

	PendingPaymentsAmount float64 `json:"pending_payments_amount"`
	PendingPaymentsCount  int64   `json:"pending_payments_count"`
	PaidThisMonth         float64 `json:"paid_this_month"`

	SalesThisMonth   int64 `json:"sales_this_month"`
	RentalsThisMonth int64 `json:"rentals_this_month"`
}

type TypeCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type AgentPerformance struct {
	UserID        snowflake.ID `json:"user_id"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Commission    float64      `json:"commission"`
	ContractCount int64        `json:"contract_count"`
}

type Dashboard struct {
	Period           string                    `json:"period"`
	StartDate        time.Time                 `json:"start_date"`
	EndDate          time.Time                 `json:"end_date"`
	RevenueTrend     []RevenuePoint            `json:"revenue_trend"`
	KPIs             KPIs                      `json:"kpis"`
	PropertyTypes    []TypeCount               `json:"property_types"`
	PropertyStatuses []TypeCount               `json:"property_statuses"`
	AgentPerformance []AgentPerformance        `json:"agent_performance"`
	RecentDeals      []contractdomain.Contract `json:"recent_deals"`
	TeamActivity     []mandatedomain.Mandate   `json:"team_activity"`
}

const (
	TaskCategoryCall  = "call"
	TaskCategoryVisit = "visit"
	TaskCategoryAdmin = "admin"
)

const (
	PriorityBucketHigh   = "high"
	PriorityBucketMedium = "medium"
	PriorityBucketLow    = "low"
)

const (
	AgendaCategoryVisit      = "visite"
	AgendaCategorySignature  = "signature"
	AgendaCategoryEstimation = "estimation"
)

type RankedTask struct {
	ID       snowflake.ID `json:"id"`
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Priority string       `json:"priority"`
	DueDate  *time.Time   `json:"due_date,omitempty"`
}

type RecentEmail struct {
	ID        snowflake.ID `json:"id"`
	Subject   string       `json:"subject"`
	Recipient string       `json:"recipient,omitempty"`
	Age       string       `json:"age"`
	Unread    bool         `json:"unread"`
}

type AgendaItem struct {
	ID        snowflake.ID `json:"id"`
	Title     string       `json:"title"`
	StartDate time.Time    `json:"start_date"`
	Location  string       `json:"location,omitempty"`
	Category  string       `json:"category"`
}

type OperationalDashboard struct {
	CallsToMake       int64          `json:"calls_to_make"`
	UnreadEmails      int64          `json:"unread_emails"`
	TodayAppointments int64          `json:"today_appointments"`
	OpenContracts     int64          `json:"open_contracts"`
	Tasks             []RankedTask   `json:"tasks"`
	RecentEmails      []RecentEmail  `json:"recent_emails"`
	Agenda            []AgendaItem   `json:"agenda"`
	WeekRevenue       []RevenuePoint `json:"week_revenue"`
}

type RevenueReport struct {
	Period    string         `json:"period"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Total     float64        `json:"total"`
	Points    []RevenuePoint `json:"points"`
}

type Service interface {
	Dashboard(ctx context.Context, identity tenant.Identity, req DashboardRequest) (*Dashboard, error)
	OperationalDashboard(ctx context.Context, identity tenant.Identity) (*OperationalDashboard, error)
	Revenue(ctx context.Context, identity tenant.Identity, req DashboardRequest) (*RevenueReport, error)
}

var (
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrInvalidRange  = errors.New("invalid_date_range")
)
