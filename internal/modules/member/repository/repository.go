package repository

import (
	"context"
	"errors"
	"strings"

	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CascadeResult lists the rows touched by deleting a member.
type CascadeResult struct {
	PaymentIDs []uint
	BillIDs    []uint
	RepairIDs  []uint
	// Schedules were kept with their assignment cleared.
	Schedules []entity.Schedule
}

type MemberRepository interface {
	Create(ctx context.Context, member *entity.Member) error
	FindByID(ctx context.Context, id uint) (*entity.Member, error)
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Member, error)
	FindAll(ctx context.Context) ([]entity.Member, error)
	Search(ctx context.Context, query string) ([]entity.Member, error)
	Update(ctx context.Context, member *entity.Member) error
	Delete(ctx context.Context, id uint) (*CascadeResult, error)

	LinkedMemberID(ctx context.Context, userID uint) (*uint, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	UserLinked(ctx context.Context, userID uint, excludeID uint) (bool, error)
	UserExists(ctx context.Context, userID uint) (bool, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
}

func (r *memberRepository) FindByID(ctx context.Context, id uint) (*entity.Member, error) {
	var member entity.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByIDs returns the members in the order of ids, skipping unknown ones.
func (r *memberRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Member, error) {
	if len(ids) == 0 {
		return []entity.Member{}, nil
	}

	var members []entity.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]entity.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	ordered := make([]entity.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

func (r *memberRepository) FindAll(ctx context.Context) ([]entity.Member, error) {
	var members []entity.Member
	err := r.db.WithContext(ctx).Order("id").Find(&members).Error
	return members, err
}

func (r *memberRepository) Search(ctx context.Context, query string) ([]entity.Member, error) {
	db := r.db.WithContext(ctx)
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(room_number) LIKE ?", like, like, like)
	}

	var members []entity.Member
	err := db.Order("name").Find(&members).Error
	return members, err
}

func (r *memberRepository) Update(ctx context.Context, member *entity.Member) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(member).Error
}

// Delete removes the member together with its payments, bills and repairs and
// clears it from any schedule, all in one transaction.
func (r *memberRepository) Delete(ctx context.Context, id uint) (*CascadeResult, error) {
	result := &CascadeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member entity.Member
		if err := tx.Select("id").First(&member, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.Payment{}).Where("member_id = ?", id).Order("id").Pluck("id", &result.PaymentIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Bill{}).Where("member_id = ?", id).Order("id").Pluck("id", &result.BillIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Repair{}).Where("member_id = ?", id).Order("id").Pluck("id", &result.RepairIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("member_id = ?", id).Delete(&entity.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&entity.Bill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&entity.Repair{}).Error; err != nil {
			return err
		}

		if err := tx.Where("assigned_to_id = ?", id).Order("id").Find(&result.Schedules).Error; err != nil {
			return err
		}
		if len(result.Schedules) > 0 {
			if err := tx.Model(&entity.Schedule{}).
				Where("assigned_to_id = ?", id).
				Update("assigned_to_id", nil).Error; err != nil {
				return err
			}
			for i := range result.Schedules {
				result.Schedules[i].AssignedToID = nil
			}
		}

		return tx.Delete(&entity.Member{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *memberRepository) LinkedMemberID(ctx context.Context, userID uint) (*uint, error) {
	var member entity.Member
	err := r.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member.ID, nil
}

func (r *memberRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Member{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepository) UserLinked(ctx context.Context, userID uint, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Member{}).
		Where("user_id = ? AND id <> ?", userID, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepository) UserExists(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}
