package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/maisonlabs/courtier/internal/analytics/domain"
	appointmentdomain "github.com/maisonlabs/courtier/internal/appointment/domain"
	"github.com/maisonlabs/courtier/internal/clock"
	communicationdomain "github.com/maisonlabs/courtier/internal/communication/domain"
	contractdomain "github.com/maisonlabs/courtier/internal/contract/domain"
	mandatedomain "github.com/maisonlabs/courtier/internal/mandate/domain"
	paymentdomain "github.com/maisonlabs/courtier/internal/payment/domain"
	propertydomain "github.com/maisonlabs/courtier/internal/property/domain"
	taskdomain "github.com/maisonlabs/courtier/internal/task/domain"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

// Service aggregates the tenant-scoped transactional rows into dashboard
// figures. It only reads; every query composes with the tenant scope.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		clock: p.Clock,
	}
}

type window struct {
	start time.Time
	end   time.Time
}

func (s *Service) resolveWindow(req domain.DashboardRequest, now time.Time) (string, window, error) {
	period := strings.ToLower(strings.TrimSpace(req.Period))
	if period == "" {
		period = domain.PeriodMonth
	}

	switch period {
	case domain.PeriodWeek:
		return period, window{start: startOfDay(now.AddDate(0, 0, -6)), end: now}, nil
	case domain.PeriodMonth:
		return period, window{start: startOfMonth(now), end: now}, nil
	case domain.PeriodYear:
		return period, window{start: startOfYear(now), end: now}, nil
	case domain.PeriodCustom:
		if req.StartDate == nil || req.EndDate == nil {
			return "", window{}, domain.ErrInvalidRange
		}
		start := startOfDay(req.StartDate.UTC())
		end := endOfDay(req.EndDate.UTC())
		if start.After(end) {
			return "", window{}, domain.ErrInvalidRange
		}
		return period, window{start: start, end: end}, nil
	default:
		return "", window{}, domain.ErrInvalidPeriod
	}
}

func (s *Service) Dashboard(ctx context.Context, identity tenant.Identity, req domain.DashboardRequest) (*domain.Dashboard, error) {
	now := s.clock.Now()
	period, win, err := s.resolveWindow(req, now)
	if err != nil {
		return nil, err
	}

	trend, err := s.revenueTrend(ctx, identity, period, win, now)
	if err != nil {
		return nil, err
	}

	kpis, err := s.buildKPIs(ctx, identity, now)
	if err != nil {
		return nil, err
	}

	propertyTypes, err := s.groupCount(ctx, identity, &propertydomain.Property{}, "type")
	if err != nil {
		return nil, err
	}
	propertyStatuses, err := s.groupCount(ctx, identity, &propertydomain.Property{}, "status")
	if err != nil {
		return nil, err
	}

	agents, err := s.agentPerformance(ctx, identity, win)
	if err != nil {
		return nil, err
	}

	var recentDeals []contractdomain.Contract
	err = s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Order("created_at desc, id desc").
		Limit(10).
		Find(&recentDeals).Error
	if err != nil {
		return nil, err
	}

	var teamActivity []mandatedomain.Mandate
	err = s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Order("created_at desc, id desc").
		Limit(5).
		Find(&teamActivity).Error
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Period:           period,
		StartDate:        win.start,
		EndDate:          win.end,
		RevenueTrend:     trend,
		KPIs:             kpis,
		PropertyTypes:    propertyTypes,
		PropertyStatuses: propertyStatuses,
		AgentPerformance: agents,
		RecentDeals:      recentDeals,
		TeamActivity:     teamActivity,
	}, nil
}

func (s *Service) Revenue(ctx context.Context, identity tenant.Identity, req domain.DashboardRequest) (*domain.RevenueReport, error) {
	now := s.clock.Now()
	period, win, err := s.resolveWindow(req, now)
	if err != nil {
		return nil, err
	}

	points, err := s.revenueTrend(ctx, identity, period, win, now)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, point := range points {
		total += point.Amount
	}
	return &domain.RevenueReport{
		Period:    period,
		StartDate: win.start,
		EndDate:   win.end,
		Total:     total,
		Points:    points,
	}, nil
}

func (s *Service) OperationalDashboard(ctx context.Context, identity tenant.Identity) (*domain.OperationalDashboard, error) {
	now := s.clock.Now()
	dayStart := startOfDay(now)
	dayEnd := endOfDay(now)

	callsToMake, err := s.count(ctx, identity, &taskdomain.Task{},
		"status IN ? AND priority IN ?",
		[]string{taskdomain.StatusPending, taskdomain.StatusInProgress},
		[]string{taskdomain.PriorityHigh, taskdomain.PriorityUrgent})
	if err != nil {
		return nil, err
	}

	unreadEmails, err := s.count(ctx, identity, &communicationdomain.Communication{},
		"type = ? AND status IN ?",
		communicationdomain.TypeEmail,
		[]string{communicationdomain.StatusSent, communicationdomain.StatusDelivered})
	if err != nil {
		return nil, err
	}

	todayAppointments, err := s.count(ctx, identity, &appointmentdomain.Appointment{},
		"status IN ? AND start_date BETWEEN ? AND ?",
		[]string{appointmentdomain.StatusScheduled, appointmentdomain.StatusConfirmed},
		dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	openContracts, err := s.count(ctx, identity, &contractdomain.Contract{},
		"status IN ?",
		[]string{contractdomain.StatusDraft, contractdomain.StatusActive})
	if err != nil {
		return nil, err
	}

	tasks, err := s.rankedTasks(ctx, identity, dayEnd)
	if err != nil {
		return nil, err
	}

	recentEmails, err := s.recentEmails(ctx, identity, now)
	if err != nil {
		return nil, err
	}

	agenda, err := s.todayAgenda(ctx, identity, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	weekRevenue, err := s.revenueTrend(ctx, identity, domain.PeriodWeek,
		window{start: startOfDay(now.AddDate(0, 0, -6)), end: dayEnd}, now)
	if err != nil {
		return nil, err
	}

	return &domain.OperationalDashboard{
		CallsToMake:       callsToMake,
		UnreadEmails:      unreadEmails,
		TodayAppointments: todayAppointments,
		OpenContracts:     openContracts,
		Tasks:             tasks,
		RecentEmails:      recentEmails,
		Agenda:            agenda,
		WeekRevenue:       weekRevenue,
	}, nil
}

// revenueTrend buckets completed-contract commissions by day, or by calendar
// month over the trailing twelve months when the period is a year. Buckets
// with no contracts are emitted at zero so the series stays continuous.
func (s *Service) revenueTrend(ctx context.Context, identity tenant.Identity, period string, win window, now time.Time) ([]domain.RevenuePoint, error) {
	byMonth := period == domain.PeriodYear
	if byMonth {
		win = window{start: startOfMonth(now).AddDate(0, -11, 0), end: now}
	}

	var contracts []contractdomain.Contract
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Where("status = ?", contractdomain.StatusCompleted).
		Where("signed_date BETWEEN ? AND ?", win.start, win.end).
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Time]float64)
	for _, contract := range contracts {
		if contract.SignedDate == nil {
			continue
		}
		signed := contract.SignedDate.UTC()
		if byMonth {
			sums[startOfMonth(signed)] += contract.Commission
		} else {
			sums[startOfDay(signed)] += contract.Commission
		}
	}

	var points []domain.RevenuePoint
	if byMonth {
		for cursor := win.start; !cursor.After(win.end); cursor = cursor.AddDate(0, 1, 0) {
			points = append(points, domain.RevenuePoint{
				Label:  cursor.Format("2006-01"),
				Date:   cursor,
				Amount: sums[cursor],
			})
		}
	} else {
		labelAsWeekday := period == domain.PeriodWeek
		for cursor := startOfDay(win.start); !cursor.After(win.end); cursor = cursor.AddDate(0, 0, 1) {
			label := cursor.Format("2006-01-02")
			if labelAsWeekday {
				label = dayLabel(cursor)
			}
			points = append(points, domain.RevenuePoint{
				Label:  label,
				Date:   cursor,
				Amount: sums[cursor],
			})
		}
	}
	return points, nil
}

func (s *Service) buildKPIs(ctx context.Context, identity tenant.Identity, now time.Time) (domain.KPIs, error) {
	monthStart := startOfMonth(now)
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthEnd := monthStart.Add(-time.Second)
	yearStart := startOfYear(now)

	var kpis domain.KPIs

	monthlyRevenue, err := s.sumCommission(ctx, identity, monthStart, now)
	if err != nil {
		return kpis, err
	}
	lastMonthRevenue, err := s.sumCommission(ctx, identity, lastMonthStart, lastMonthEnd)
	if err != nil {
		return kpis, err
	}
	ytdRevenue, err := s.sumCommission(ctx, identity, yearStart, now)
	if err != nil {
		return kpis, err
	}

	newMandates, err := s.count(ctx, identity, &mandatedomain.Mandate{},
		"created_at BETWEEN ? AND ?", monthStart, now)
	if err != nil {
		return kpis, err
	}
	lastMonthMandates, err := s.count(ctx, identity, &mandatedomain.Mandate{},
		"created_at BETWEEN ? AND ?", lastMonthStart, lastMonthEnd)
	if err != nil {
		return kpis, err
	}

	completedSales, err := s.count(ctx, identity, &contractdomain.Contract{},
		"status = ? AND type = ? AND signed_date BETWEEN ? AND ?",
		contractdomain.StatusCompleted, contractdomain.TypeSale, monthStart, now)
	if err != nil {
		return kpis, err
	}
	lastMonthSales, err := s.count(ctx, identity, &contractdomain.Contract{},
		"status = ? AND type = ? AND signed_date BETWEEN ? AND ?",
		contractdomain.StatusCompleted, contractdomain.TypeSale, lastMonthStart, lastMonthEnd)
	if err != nil {
		return kpis, err
	}

	var pending struct {
		Amount float64
		Cnt    int64
	}
	err = s.db.WithContext(ctx).
		Model(&paymentdomain.Payment{}).
		Scopes(tenant.Scope(identity)).
		Where("status = ?", paymentdomain.StatusPending).
		Select("COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS cnt").
		Scan(&pending).Error
	if err != nil {
		return kpis, err
	}

	var paidThisMonth float64
	err = s.db.WithContext(ctx).
		Model(&paymentdomain.Payment{}).
		Scopes(tenant.Scope(identity)).
		Where("status = ? AND paid_date BETWEEN ? AND ?", paymentdomain.StatusPaid, monthStart, now).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidThisMonth).Error
	if err != nil {
		return kpis, err
	}

	rentalsThisMonth, err := s.count(ctx, identity, &contractdomain.Contract{},
		"status = ? AND type = ? AND signed_date BETWEEN ? AND ?",
		contractdomain.StatusCompleted, contractdomain.TypeRental, monthStart, now)
	if err != nil {
		return kpis, err
	}

	conversion := ratioPercent(float64(completedSales), float64(newMandates))
	lastConversion := ratioPercent(float64(lastMonthSales), float64(lastMonthMandates))
	conversionChange := 0.0
	if lastConversion != 0 {
		conversionChange = conversion - lastConversion
	}

	kpis = domain.KPIs{
		MonthlyRevenue:    monthlyRevenue,
		LastMonthRevenue:  lastMonthRevenue,
		YearToDateRevenue: ytdRevenue,
		RevenueGrowth:     growthPercent(monthlyRevenue, lastMonthRevenue),

		NewMandates:       newMandates,
		LastMonthMandates: lastMonthMandates,
		MandateGrowth:     growthPercent(float64(newMandates), float64(lastMonthMandates)),

		CompletedSales: completedSales,
		LastMonthSales: lastMonthSales,
		SalesGrowth:    growthPercent(float64(completedSales), float64(lastMonthSales)),

		ConversionRate:          conversion,
		LastMonthConversionRate: lastConversion,
		ConversionChange:        conversionChange,

		PendingPaymentsAmount: pending.Amount,
		PendingPaymentsCount:  pending.Cnt,
		PaidThisMonth:         paidThisMonth,

		SalesThisMonth:   completedSales,
		RentalsThisMonth: rentalsThisMonth,
	}
	return kpis, nil
}

func (s *Service) agentPerformance(ctx context.Context, identity tenant.Identity, win window) ([]domain.AgentPerformance, error) {
	var users []userdomain.User
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Where("is_active = ? AND role IN ?", true,
			[]string{userdomain.RoleAdmin, userdomain.RoleManager, userdomain.RoleAgent}).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	type row struct {
		UserID     int64
		Commission float64
		Cnt        int64
	}
	var rows []row
	err = s.db.WithContext(ctx).
		Model(&contractdomain.Contract{}).
		Scopes(tenant.Scope(identity)).
		Where("status = ? AND signed_date BETWEEN ? AND ?",
			contractdomain.StatusCompleted, win.start, win.end).
		Select("user_id, COALESCE(SUM(commission), 0) AS commission, COUNT(*) AS cnt").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]row, len(rows))
	for _, r := range rows {
		totals[r.UserID] = r
	}

	performance := make([]domain.AgentPerformance, 0, len(users))
	for _, user := range users {
		total := totals[int64(user.ID)]
		performance = append(performance, domain.AgentPerformance{
			UserID:        user.ID,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Commission:    total.Commission,
			ContractCount: total.Cnt,
		})
	}
	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].Commission > performance[j].Commission
	})
	return performance, nil
}

// rankedTasks returns the open tasks due today or earlier, most urgent first,
// earliest deadline breaking ties, capped at ten.
func (s *Service) rankedTasks(ctx context.Context, identity tenant.Identity, dayEnd time.Time) ([]domain.RankedTask, error) {
	var tasks []taskdomain.Task
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Where("status IN ? AND due_date IS NOT NULL AND due_date <= ?",
			[]string{taskdomain.StatusPending, taskdomain.StatusInProgress}, dayEnd).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := priorityRank(tasks[i].Priority), priorityRank(tasks[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
	if len(tasks) > 10 {
		tasks = tasks[:10]
	}

	ranked := make([]domain.RankedTask, 0, len(tasks))
	for _, task := range tasks {
		ranked = append(ranked, domain.RankedTask{
			ID:       task.ID,
			Title:    task.Title,
			Category: taskCategory(task.Title),
			Priority: priorityBucket(task.Priority),
			DueDate:  task.DueDate,
		})
	}
	return ranked, nil
}

func (s *Service) recentEmails(ctx context.Context, identity tenant.Identity, now time.Time) ([]domain.RecentEmail, error) {
	var comms []communicationdomain.Communication
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Where("type = ?", communicationdomain.TypeEmail).
		Order("sent_at desc, id desc").
		Limit(5).
		Find(&comms).Error
	if err != nil {
		return nil, err
	}

	emails := make([]domain.RecentEmail, 0, len(comms))
	for _, comm := range comms {
		emails = append(emails, domain.RecentEmail{
			ID:        comm.ID,
			Subject:   comm.Subject,
			Recipient: comm.Recipient,
			Age:       relativeAge(now, comm.SentAt),
			Unread: comm.Status == communicationdomain.StatusSent ||
				comm.Status == communicationdomain.StatusDelivered,
		})
	}
	return emails, nil
}

func (s *Service) todayAgenda(ctx context.Context, identity tenant.Identity, dayStart, dayEnd time.Time) ([]domain.AgendaItem, error) {
	var appointments []appointmentdomain.Appointment
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(identity)).
		Where("status IN ? AND start_date BETWEEN ? AND ?",
			[]string{appointmentdomain.StatusScheduled, appointmentdomain.StatusConfirmed},
			dayStart, dayEnd).
		Order("start_date asc").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	agenda := make([]domain.AgendaItem, 0, len(appointments))
	for _, appointment := range appointments {
		agenda = append(agenda, domain.AgendaItem{
			ID:        appointment.ID,
			Title:     appointment.Title,
			StartDate: appointment.StartDate,
			Location:  appointment.Location,
			Category:  agendaCategory(appointment.Title),
		})
	}
	return agenda, nil
}

func (s *Service) sumCommission(ctx context.Context, identity tenant.Identity, from, to time.Time) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).
		Model(&contractdomain.Contract{}).
		Scopes(tenant.Scope(identity)).
		Where("status = ? AND signed_date BETWEEN ? AND ?", contractdomain.StatusCompleted, from, to).
		Select("COALESCE(SUM(commission), 0)").
		Scan(&total).Error
	return total, err
}

func (s *Service) count(ctx context.Context, identity tenant.Identity, model any, query string, args ...any) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(model).
		Scopes(tenant.Scope(identity)).
		Where(query, args...).
		Count(&total).Error
	return total, err
}

func (s *Service) groupCount(ctx context.Context, identity tenant.Identity, model any, column string) ([]domain.TypeCount, error) {
	type row struct {
		K   string
		Cnt int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(model).
		Scopes(tenant.Scope(identity)).
		Select(column + " AS k, COUNT(*) AS cnt").
		Group(column).
		Order(column + " asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]domain.TypeCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, domain.TypeCount{Key: r.K, Count: r.Cnt})
	}
	return counts, nil
}
