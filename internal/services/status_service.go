package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/utils"
)

// DeviceChecker is the device-side surface the status snapshot needs.
type DeviceChecker interface {
	Check(ctx context.Context, serial string) (*DeviceCheck, error)
}

// MembershipChecker is the group-side surface the status snapshot needs.
type MembershipChecker interface {
	Membership(ctx context.Context, roleKey, upn string) (*MembershipStatus, error)
}

// RoomStatus aggregates every per-room check into one view. Each check is
// independent: one failing leg carries its error alongside the others'
// results instead of sinking the whole snapshot.
type RoomStatus struct {
	Device       *DeviceCheck
	DeviceError  string
	Account      *AccountResolution
	AccountError string
	Groups       map[string]*MembershipStatus
	GroupErrors  map[string]string
}

// StatusService fans the device, account and group-membership checks out on
// the worker pool and collects them into a RoomStatus. No ordering is
// guaranteed between the checks.
type StatusService struct {
	devices  DeviceChecker
	accounts AccountResolver
	groups   MembershipChecker
	pool     *utils.WorkerPool
	logger   zerolog.Logger
}

// NewStatusService initializes a StatusService over the given collaborators.
func NewStatusService(devices DeviceChecker, accounts AccountResolver, groups MembershipChecker, pool *utils.WorkerPool, logger zerolog.Logger) *StatusService {
	return &StatusService{
		devices:  devices,
		accounts: accounts,
		groups:   groups,
		pool:     pool,
		logger:   logger,
	}
}

// Snapshot runs all five checks concurrently and waits for every leg.
func (s *StatusService) Snapshot(ctx context.Context, serial, upn string) *RoomStatus {
	status := &RoomStatus{
		Groups:      make(map[string]*MembershipStatus),
		GroupErrors: make(map[string]string),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	s.pool.Submit(func() {
		defer wg.Done()
		check, err := s.devices.Check(ctx, serial)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			status.DeviceError = err.Error()
			return
		}
		status.Device = check
	})

	wg.Add(1)
	s.pool.Submit(func() {
		defer wg.Done()
		resolution, err := s.accounts.Resolve(ctx, upn)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			status.AccountError = err.Error()
			return
		}
		status.Account = resolution
	})

	for _, role := range rules.Roles() {
		roleKey := role.Key
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			membership, err := s.groups.Membership(ctx, roleKey, upn)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status.GroupErrors[roleKey] = err.Error()
				return
			}
			status.Groups[roleKey] = membership
		})
	}

	wg.Wait()
	s.logger.Debug().Str("serial", serial).Str("upn", upn).Msg("Room status snapshot collected")
	return status
}
