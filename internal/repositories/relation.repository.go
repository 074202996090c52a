package repositories

import (
	. "cinestream/internal/models"
	"cinestream/internal/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ToggleStatus string

const (
	ToggleAdded   ToggleStatus = "added"
	ToggleRemoved ToggleStatus = "removed"
)

// toggleTarget deletes the user's row for target when present, otherwise
// inserts it. A concurrent insert that wins the unique index leaves the target
// toggled on, so the conflict is reported as added.
func toggleTarget[T any](tx *gorm.DB, userID uint, target Target, row *T) (ToggleStatus, error) {
	result := tx.Where("user_id = ?", userID).Scopes(target.Scope).Delete(new(T))
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected > 0 {
		return ToggleRemoved, nil
	}

	if err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error; err != nil {
		return "", err
	}

	return ToggleAdded, nil
}

func targetExists[T any](tx *gorm.DB, userID uint, target Target) (bool, error) {
	var count int64
	err := tx.Model(new(T)).Where("user_id = ?", userID).Scopes(target.Scope).Count(&count).Error
	return count > 0, err
}

// deleteOwned removes row id when it belongs to userID, telling a missing row
// apart from one owned by somebody else.
func deleteOwned[T any](tx *gorm.DB, entity string, userID, id uint) error {
	result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return types.NotFound(entity, id)
	}

	return types.Forbidden(entity + " belongs to another user")
}

func listForUser[T any](tx *gorm.DB, userID uint) ([]T, error) {
	rows := []T{}
	err := tx.Where("user_id = ?", userID).
		Preload("Media.Genres", orderGenres).
		Preload("Episode.Media").
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
