package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository { return &ProfileRepository{db: db} }

func (r *ProfileRepository) EnsureProfile(ctx context.Context, externalID, email string) (*model.Profile, error) {
	profile := model.Profile{}
	err := r.db.WithContext(ctx).
		Where(model.Profile{ExternalID: externalID}).
		Attrs(model.Profile{ID: uuid.NewString(), Email: email}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

var _ repository.IProfile = (*ProfileRepository)(nil)
