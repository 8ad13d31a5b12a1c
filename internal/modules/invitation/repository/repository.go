package repository

import (
	"context"
	"time"

	"anoa.com/eventhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvitationRepository interface {
	// Upsert creates the invitation, or re-opens an accepted or rejected one.
	// It reports false when a pending invitation already exists.
	Upsert(ctx context.Context, invitation *entity.Invitation) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error)
	FindByEventAndInvitee(ctx context.Context, eventID, inviteeID uuid.UUID) (*entity.Invitation, error)
	// Respond moves a pending invitation to status; it reports false when the
	// invitation was no longer pending.
	Respond(ctx context.Context, id uuid.UUID, status string) (bool, error)
	AcceptPending(ctx context.Context, eventID, inviteeID uuid.UUID) (bool, error)
	ListPendingByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*entity.Invitation, error)
	ListPendingWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]*entity.Invitation, error)
	CountByStatus(ctx context.Context, eventID uuid.UUID) (map[string]int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// Upsert is a single INSERT ... ON CONFLICT statement so two concurrent
// invites for the same person cannot both succeed.
func (r *invitationRepository) Upsert(ctx context.Context, invitation *entity.Invitation) (bool, error) {
	now := time.Now()
	invitation.Status = entity.InvitationPending

	res := r.db.WithContext(ctx).
		Omit("Event", "Inviter", "Invitee").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "invitee_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":     entity.InvitationPending,
				"inviter_id": invitation.InviterID,
				"updated_at": now,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Neq{Column: clause.Column{Table: "invitations", Name: "status"}, Value: entity.InvitationPending},
			}},
		}).
		Create(invitation)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	// a re-opened row keeps its original id
	stored, err := r.FindByEventAndInvitee(ctx, invitation.EventID, invitation.InviteeID)
	if err != nil {
		return false, err
	}
	*invitation = *stored
	return true, nil
}

func (r *invitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	var invitation entity.Invitation
	if err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Inviter.Profile").
		First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) FindByEventAndInvitee(ctx context.Context, eventID, inviteeID uuid.UUID) (*entity.Invitation, error) {
	var invitation entity.Invitation
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND invitee_id = ?", eventID, inviteeID).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) Respond(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Invitation{}).
		Where("id = ? AND status = ?", id, entity.InvitationPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *invitationRepository) AcceptPending(ctx context.Context, eventID, inviteeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Invitation{}).
		Where("event_id = ? AND invitee_id = ? AND status = ?", eventID, inviteeID, entity.InvitationPending).
		Updates(map[string]any{"status": entity.InvitationAccepted, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *invitationRepository) ListPendingByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*entity.Invitation, error) {
	var invitations []*entity.Invitation
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Inviter.Profile").
		Where("invitee_id = ? AND status = ?", inviteeID, entity.InvitationPending).
		Order("created_at desc").
		Find(&invitations).Error
	return invitations, err
}

func (r *invitationRepository) ListPendingWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]*entity.Invitation, error) {
	var invitations []*entity.Invitation
	err := r.db.WithContext(ctx).
		Joins("Event").
		Preload("Invitee.Profile").
		Where("invitations.status = ?", entity.InvitationPending).
		Where(`"Event".deadline > ? AND "Event".deadline <= ?`, from, to).
		Find(&invitations).Error
	return invitations, err
}

func (r *invitationRepository) CountByStatus(ctx context.Context, eventID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Invitation{}).
		Select("status, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
