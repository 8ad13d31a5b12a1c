package stat

import (
	"context"

	"anoa.com/eventhub/internal/entity"
	event "anoa.com/eventhub/internal/modules/event/service"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	registrationRepo "anoa.com/eventhub/internal/modules/registration/repository"
	"anoa.com/eventhub/internal/modules/stat/dto"
	"anoa.com/eventhub/internal/modules/user/repository"
	"github.com/google/uuid"
)

type StatService interface {
	GetTotalUsers(ctx context.Context) (int64, error)
	GetEventStats(ctx context.Context, userID, eventID uuid.UUID) (*dto.EventStatsResponse, error)
}

type statService struct {
	userRepo         repository.UserRepository
	registrationRepo registrationRepo.RegistrationRepository
	invitationRepo   invitationRepo.InvitationRepository
	access           event.Authorizer
}

func NewStatService(userRepo repository.UserRepository, registrationRepo registrationRepo.RegistrationRepository, invitationRepo invitationRepo.InvitationRepository, access event.Authorizer) StatService {
	return &statService{
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		invitationRepo:   invitationRepo,
		access:           access,
	}
}

func (s *statService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// GetEventStats is open to both organizer roles. Views lag the live counter
// by up to one sync interval.
func (s *statService) GetEventStats(ctx context.Context, userID, eventID uuid.UUID) (*dto.EventStatsResponse, error) {
	ev, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer, entity.OrganizerRoleNormal)
	if err != nil {
		return nil, err
	}

	regCounts, err := s.registrationRepo.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, err
	}

	invCounts, err := s.invitationRepo.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &dto.EventStatsResponse{
		EventID: ev.ID,
		Views:   ev.Views,
		Registrations: dto.StatusCounts{
			Pending:  regCounts[entity.RegistrationPending],
			Approved: regCounts[entity.RegistrationApproved],
			Rejected: regCounts[entity.RegistrationRejected],
			Total:    sum(regCounts),
		},
		Invitations: dto.StatusCounts{
			Pending:  invCounts[entity.InvitationPending],
			Accepted: invCounts[entity.InvitationAccepted],
			Rejected: invCounts[entity.InvitationRejected],
			Total:    sum(invCounts),
		},
	}, nil
}

func sum(counts map[string]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}
