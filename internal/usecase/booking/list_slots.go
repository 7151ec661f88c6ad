package booking

import (
	"context"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/monitoring"
	"github.com/BruksfildServices01/booking-api/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type ListSlotsInput struct {
	TenantID   uint
	ServiceID  uint
	ProviderID *uint
	Date       string
}

type SlotsResult struct {
	Date        string            `json:"date"`
	ServiceID   uint              `json:"service_id"`
	ProviderID  *uint             `json:"provider_id"`
	Timezone    string            `json:"timezone"`
	Provisional bool              `json:"provisional"`
	Slots       []domain.TimeSlot `json:"slots"`
}

// ======================================================
// USE CASE
// ======================================================

type ListSlots struct {
	repo        domain.Repository
	granularity int
	now         domain.Clock
}

func NewListSlots(
	repo domain.Repository,
	granularity int,
	now domain.Clock,
) *ListSlots {
	if granularity <= 0 {
		granularity = domain.DefaultGranularity
	}
	return &ListSlots{
		repo:        repo,
		granularity: granularity,
		now:         clockOrNow(now),
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ListSlots) Execute(
	ctx context.Context,
	in ListSlotsInput,
) (*SlotsResult, error) {

	started := time.Now()
	defer func() {
		monitoring.SlotGenerationDuration.Observe(time.Since(started).Seconds())
	}()

	tenant, err := uc.repo.GetTenant(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(tenant.Timezone)

	day, err := parseDay(in.Date, loc)
	if err != nil {
		return nil, err
	}

	svc, err := uc.repo.GetService(ctx, in.TenantID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	result := &SlotsResult{
		Date:        in.Date,
		ServiceID:   svc.ID,
		ProviderID:  in.ProviderID,
		Timezone:    loc.String(),
		Provisional: in.ProviderID == nil,
		Slots:       []domain.TimeSlot{},
	}

	// --------------------------------------------------
	// Candidate providers and their windows
	// --------------------------------------------------
	var (
		providerIDs []uint
		windowsOf   = map[uint][]domain.Window{}
	)

	if in.ProviderID != nil {
		if _, err := uc.repo.GetProvider(ctx, in.TenantID, *in.ProviderID); err != nil {
			return nil, err
		}
		ok, err := uc.repo.ProviderOffersService(ctx, in.TenantID, *in.ProviderID, svc.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httperr.ErrBusiness("service_not_offered")
		}

		w, err := providerWindows(ctx, uc.repo, in.TenantID, *in.ProviderID, day)
		if err != nil {
			return nil, err
		}
		providerIDs = []uint{*in.ProviderID}
		windowsOf[*in.ProviderID] = w
	} else {
		providers, err := uc.repo.ListEligibleProviders(ctx, in.TenantID, svc.ID)
		if err != nil {
			return nil, err
		}
		// each provider's own windows, so listed ids are really bookable
		for _, p := range providers {
			w, err := providerWindows(ctx, uc.repo, in.TenantID, p.ID, day)
			if err != nil {
				return nil, err
			}
			providerIDs = append(providerIDs, p.ID)
			windowsOf[p.ID] = w
		}
	}

	if len(providerIDs) == 0 {
		return result, nil
	}

	tenantWide, blocked, err := uc.repo.ListBlackedOutProviders(ctx, in.TenantID, in.Date, providerIDs)
	if err != nil {
		return nil, err
	}
	if tenantWide {
		return result, nil
	}

	// --------------------------------------------------
	// Existing bookings of the day, widened by the buffers
	// --------------------------------------------------
	from := day.Add(-time.Duration(svc.BufferBeforeMinutes) * time.Minute)
	to := day.AddDate(0, 0, 1).Add(time.Duration(svc.BufferAfterMinutes) * time.Minute)

	existing, err := uc.repo.ListActiveBookings(ctx, in.TenantID, providerIDs, from, to)
	if err != nil {
		return nil, err
	}

	busy := make(map[uint][]domain.Interval, len(providerIDs))
	for _, b := range existing {
		busy[b.ProviderID] = append(busy[b.ProviderID], domain.BookingInterval(b))
	}

	// --------------------------------------------------
	// Slots per provider, merged by start
	// --------------------------------------------------
	notBefore := earliestStart(tenant, uc.now())
	byStart := map[int64][]uint{}

	for _, pid := range providerIDs {
		if blocked[pid] {
			continue
		}

		starts := domain.GenerateSlots(domain.SlotRequest{
			Day:          day,
			Windows:      windowsOf[pid],
			Duration:     svc.DurationMinutes,
			BufferBefore: svc.BufferBeforeMinutes,
			BufferAfter:  svc.BufferAfterMinutes,
			Granularity:  uc.granularity,
			Busy:         busy[pid],
			NotBefore:    notBefore,
		})
		for _, s := range starts {
			byStart[s.Unix()] = append(byStart[s.Unix()], pid)
		}
	}

	keys := make([]int64, 0, len(byStart))
	for k := range byStart {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	for _, k := range keys {
		start := time.Unix(k, 0).In(loc)
		slot := domain.TimeSlot{
			Start:       start,
			End:         start.Add(duration),
			Time:        start.Format("15:04"),
			Provisional: result.Provisional,
		}
		if result.Provisional {
			slot.ProviderIDs = byStart[k]
		}
		result.Slots = append(result.Slots, slot)
	}

	return result, nil
}
