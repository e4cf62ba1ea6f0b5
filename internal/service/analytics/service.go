package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
)

const (
	cacheKeyOverview = "analytics:overview"
	cacheTTL         = 1 * time.Minute
	trailingMonths   = 6
)

type Service struct {
	users        repository.UserRepository
	appointments repository.AppointmentStore
	cache        *gocache.Cache
	logger       *zerolog.Logger
}

func NewService(users repository.UserRepository, appointments repository.AppointmentStore, logger *zerolog.Logger) *Service {
	return &Service{
		users:        users,
		appointments: appointments,
		cache:        gocache.New(cacheTTL, 2*cacheTTL),
		logger:       logger,
	}
}

// Overview aggregates the management dashboard figures. Results are cached
// briefly; the dashboard polls.
func (s *Service) Overview(ctx context.Context) (*model.AnalyticsOverview, error) {
	if cached, ok := s.cache.Get(cacheKeyOverview); ok {
		return cached.(*model.AnalyticsOverview), nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	appointments, err := s.appointments.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	overview := &model.AnalyticsOverview{
		TotalPatients:        monthlyPatientCounts(users, time.Now()),
		GenderDistribution:   genderDistribution(users),
		CaseTypeDistribution: caseTypeDistribution(users),
		BookingStatistics:    bookingStatistics(appointments),
	}

	s.cache.Set(cacheKeyOverview, overview, cacheTTL)
	return overview, nil
}

func monthlyPatientCounts(users []*model.User, now time.Time) []model.MonthlyCount {
	out := make([]model.MonthlyCount, 0, trailingMonths)
	for i := trailingMonths - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		count := 0
		for _, u := range users {
			if u.Role == model.RolePatient && u.CreatedAt.Before(monthEnd) {
				count++
			}
		}
		out = append(out, model.MonthlyCount{
			Month: monthStart.Format("Jan"),
			Count: count,
		})
	}
	return out
}

func genderDistribution(users []*model.User) []model.NamedCount {
	counts := map[model.Gender]int{}
	for _, u := range users {
		if u.Role == model.RolePatient {
			counts[u.Gender]++
		}
	}
	return sortedCounts(map[string]int{
		"Male":   counts[model.GenderMale],
		"Female": counts[model.GenderFemale],
		"Other":  counts[model.GenderOther],
	})
}

func caseTypeDistribution(users []*model.User) []model.NamedCount {
	counts := map[string]int{}
	for _, u := range users {
		if u.Role == model.RolePatient && u.CaseType != "" {
			counts[string(u.CaseType)]++
		}
	}
	return sortedCounts(counts)
}

func bookingStatistics(appointments []*model.Appointment) []model.NamedCount {
	counts := map[string]int{}
	for _, apt := range appointments {
		counts[string(apt.Status)]++
	}
	return sortedCounts(counts)
}

func sortedCounts(counts map[string]int) []model.NamedCount {
	out := make([]model.NamedCount, 0, len(counts))
	for name, value := range counts {
		out = append(out, model.NamedCount{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
