package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tutorhub/backend/internal/models"
)

// GormStore is the production TallyStore backed by Postgres. The composite
// unique index on reactions(user_id, tutor_id) closes the check-then-act
// race: a duplicate insert fails inside the transaction and nothing is
// committed.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetAllTallies(ctx context.Context) ([]Tally, error) {
	var tutors []models.Tutor
	if err := s.db.WithContext(ctx).Order("id").Find(&tutors).Error; err != nil {
		return nil, &StorageError{Err: err}
	}

	tallies := make([]Tally, 0, len(tutors))
	for _, t := range tutors {
		tallies = append(tallies, Tally{TutorID: t.ID, Likes: t.Likes, Dislikes: t.Dislikes})
	}
	return tallies, nil
}

func (s *GormStore) CastVote(ctx context.Context, userID, tutorID int, kind string) (Tally, error) {
	if !ValidReaction(kind) {
		return Tally{}, ErrInvalidReaction
	}

	var tally Tally
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tutor models.Tutor
		if err := tx.First(&tutor, tutorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTutorNotFound
			}
			return err
		}

		reaction := models.Reaction{UserID: userID, TutorID: tutorID, Kind: kind}
		if err := tx.Create(&reaction).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyVoted
			}
			return err
		}

		column := "likes"
		if kind == ReactionDislike {
			column = "dislikes"
		}
		if err := tx.Model(&models.Tutor{}).Where("id = ?", tutorID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}

		if err := tx.First(&tutor, tutorID).Error; err != nil {
			return err
		}
		tally = Tally{TutorID: tutor.ID, Likes: tutor.Likes, Dislikes: tutor.Dislikes}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyVoted), errors.Is(err, ErrTutorNotFound):
			return Tally{}, err
		default:
			return Tally{}, &StorageError{Err: err}
		}
	}
	return tally, nil
}

// isDuplicateKey detects a unique-constraint violation from the driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
