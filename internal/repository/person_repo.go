package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// PersonRepository 管理员 / 学生档案只读访问接口
type PersonRepository interface {
	GetAdmin(ctx context.Context, id int64) (*model.Admin, error)
	GetStudent(ctx context.Context, id int64) (*model.Student, error)
	// AdminNames / StudentNames 批量查询姓名，不存在的 ID 不出现在结果中
	AdminNames(ctx context.Context, ids []int64) (map[int64]string, error)
	StudentNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

type personRepo struct {
	db *gorm.DB
}

func NewPersonRepo(db *gorm.DB) PersonRepository {
	return &personRepo{db: db}
}

func (r *personRepo) GetAdmin(ctx context.Context, id int64) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *personRepo) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *personRepo) AdminNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var admins []model.Admin
	if err := r.db.WithContext(ctx).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&admins).Error; err != nil {
		return nil, err
	}
	for i := range admins {
		names[admins[i].ID] = admins[i].FullName()
	}
	return names, nil
}

func (r *personRepo) StudentNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var students []model.Student
	if err := r.db.WithContext(ctx).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&students).Error; err != nil {
		return nil, err
	}
	for i := range students {
		names[students[i].ID] = students[i].FullName()
	}
	return names, nil
}
