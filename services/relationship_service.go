package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"charaverse-api/models"
)

// RelationshipService owns the relationship lifecycle between two
// characters: propose, approve, decline, edit, remove. A pair of
// characters has at most one relationship row, looked up in either
// order.
type RelationshipService struct {
	db      *gorm.DB
	webhook *WebhookService
	logger  *zap.Logger
}

func NewRelationshipService(db *gorm.DB, webhook *WebhookService, logger *zap.Logger) *RelationshipService {
	return &RelationshipService{
		db:      db,
		webhook: webhook,
		logger:  logger,
	}
}

type ProposeRelationshipInput struct {
	Character1ID uint
	Character2ID uint
	Type         string
	Description  string
	Status       models.RelationshipStatus
}

// FindRelationshipBetween returns the relationship row for the pair
// (a,b), checking both orderings. Returns gorm.ErrRecordNotFound when
// no row exists.
func FindRelationshipBetween(db *gorm.DB, a, b uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := db.Where("(character1_id = ? AND character2_id = ?) OR (character1_id = ? AND character2_id = ?)",
		a, b, b, a).First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Propose creates a relationship between two characters on behalf of
// the owner of Character1. Same-owner pairs are approved immediately;
// cross-owner pairs start pending and notify the webhook sink.
func (s *RelationshipService) Propose(in ProposeRelationshipInput, userID string) (*models.Relationship, error) {
	if in.Character1ID == in.Character2ID {
		return nil, fmt.Errorf("%w: a character cannot relate to itself", ErrValidation)
	}
	if in.Type == "" {
		return nil, fmt.Errorf("%w: relationship type is required", ErrValidation)
	}
	if in.Status == "" {
		in.Status = models.RelationshipStatusNeutral
	}
	if !models.ValidRelationshipStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown relationship status %q", ErrValidation, in.Status)
	}

	var char1, char2 models.Character
	if err := s.db.First(&char1, in.Character1ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", ErrNotFound, in.Character1ID)
		}
		return nil, err
	}
	if err := s.db.First(&char2, in.Character2ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", ErrNotFound, in.Character2ID)
		}
		return nil, err
	}

	if char1.UserID != userID {
		return nil, fmt.Errorf("%w: you do not own character %d", ErrForbidden, in.Character1ID)
	}

	sameOwner := char1.UserID == char2.UserID

	rel := models.Relationship{
		Character1ID: in.Character1ID,
		Character2ID: in.Character2ID,
		Type:         in.Type,
		Description:  in.Description,
		Status:       in.Status,
		IsPending:    !sameOwner,
		IsApproved:   sameOwner,
		RequestedBy:  userID,
	}

	// Duplicate check and insert run in one transaction; the unique
	// index on the normalized pair backstops concurrent proposals.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, err := FindRelationshipBetween(tx, in.Character1ID, in.Character2ID)
		if err == nil {
			return fmt.Errorf("%w: relationship between these characters", ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&rel).Error
	})
	if err != nil {
		return nil, err
	}

	if !sameOwner {
		s.webhook.NotifyRelationshipRequest(char1.Name, char2.Name, in.Type)
	}

	return &rel, nil
}

// Approve transitions a pending relationship to approved. The acting
// user must own one of the two characters.
func (s *RelationshipService) Approve(relationshipID uint, userID string) (*models.Relationship, error) {
	rel, err := s.loadOwned(relationshipID, userID)
	if err != nil {
		return nil, err
	}

	if !rel.IsPending || rel.IsApproved {
		return nil, fmt.Errorf("%w: relationship is not awaiting approval", ErrInvalidState)
	}

	updates := map[string]interface{}{
		"is_pending":  false,
		"is_approved": true,
	}
	if err := s.db.Model(rel).Updates(updates).Error; err != nil {
		return nil, err
	}

	return rel, nil
}

// Decline removes a pending relationship entirely. A fresh proposal for
// the same pair is allowed afterwards.
func (s *RelationshipService) Decline(relationshipID uint, userID string) error {
	rel, err := s.loadOwned(relationshipID, userID)
	if err != nil {
		return err
	}

	if !rel.IsPending || rel.IsApproved {
		return fmt.Errorf("%w: relationship is not awaiting approval", ErrInvalidState)
	}

	return s.db.Delete(rel).Error
}

// Update edits the type, description and status labels. It never
// touches the pending/approved flags and is allowed in any state.
func (s *RelationshipService) Update(relationshipID uint, relType, description string, status models.RelationshipStatus, userID string) (*models.Relationship, error) {
	if relType == "" {
		return nil, fmt.Errorf("%w: relationship type is required", ErrValidation)
	}
	if !models.ValidRelationshipStatus(status) {
		return nil, fmt.Errorf("%w: unknown relationship status %q", ErrValidation, status)
	}

	rel, err := s.loadOwned(relationshipID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"type":        relType,
		"description": description,
		"status":      status,
	}
	if err := s.db.Model(rel).Updates(updates).Error; err != nil {
		return nil, err
	}

	return rel, nil
}

// Delete removes a relationship regardless of state.
func (s *RelationshipService) Delete(relationshipID uint, userID string) error {
	rel, err := s.loadOwned(relationshipID, userID)
	if err != nil {
		return err
	}

	return s.db.Delete(rel).Error
}

// ListForCharacter returns the character's relationships decorated for
// rendering. Pending rows are only visible to users owning one side.
func (s *RelationshipService) ListForCharacter(characterID uint, userID string) ([]models.RelationshipView, error) {
	var character models.Character
	if err := s.db.First(&character, characterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: character %d", ErrNotFound, characterID)
		}
		return nil, err
	}

	var rels []models.Relationship
	if err := s.db.Preload("Character1.User").Preload("Character2.User").
		Where("character1_id = ? OR character2_id = ?", characterID, characterID).
		Order("created_at DESC").
		Find(&rels).Error; err != nil {
		return nil, err
	}

	views := make([]models.RelationshipView, 0, len(rels))
	for _, rel := range rels {
		other := rel.Character2
		if rel.Character2ID == characterID {
			other = rel.Character1
		}

		canEdit := rel.Character1.UserID == userID || rel.Character2.UserID == userID
		if rel.IsPending && !canEdit {
			continue
		}

		views = append(views, models.RelationshipView{
			ID:             rel.ID,
			Type:           rel.Type,
			Description:    rel.Description,
			Status:         rel.Status,
			IsPending:      rel.IsPending,
			IsApproved:     rel.IsApproved,
			RequestedBy:    rel.RequestedBy,
			OtherCharacter: other.Summary(),
			OtherUserName:  other.User.Name,
			CanEdit:        canEdit,
			CreatedAt:      rel.CreatedAt,
		})
	}

	return views, nil
}

// loadOwned fetches a relationship and verifies the acting user owns at
// least one of its characters.
func (s *RelationshipService) loadOwned(relationshipID uint, userID string) (*models.Relationship, error) {
	var rel models.Relationship
	if err := s.db.First(&rel, relationshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: relationship %d", ErrNotFound, relationshipID)
		}
		return nil, err
	}

	var owned int64
	if err := s.db.Model(&models.Character{}).
		Where("id IN ? AND user_id = ?", []uint{rel.Character1ID, rel.Character2ID}, userID).
		Count(&owned).Error; err != nil {
		return nil, err
	}
	if owned == 0 {
		return nil, fmt.Errorf("%w: you own neither character in this relationship", ErrForbidden)
	}

	return &rel, nil
}
