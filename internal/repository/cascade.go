package repository

import (
	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

// DeletedTree summarizes a cascade delete. ImageKeys lists stored images of the
// removed rows so the caller can purge them once the transaction commits.
type DeletedTree struct {
	Forms     int64
	Sections  int64
	Questions int64
	Options   int64
	ImageKeys []string
}

// The helpers below run inside the caller's transaction and delete leaves
// first: options, then questions, then sections, then the form. Responses are
// never touched.

func collectImageKeys(db *gorm.DB, m interface{}, column string, ids []uint, tree *DeletedTree) error {
	var keys []string
	err := db.Model(m).
		Where(column+" IN ? AND image_key IS NOT NULL", ids).
		Pluck("image_key", &keys).Error
	if err != nil {
		return err
	}
	tree.ImageKeys = append(tree.ImageKeys, keys...)
	return nil
}

func deleteOptionsOfQuestions(db *gorm.DB, questionIDs []uint, tree *DeletedTree) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := collectImageKeys(db, &model.Option{}, "question_id", questionIDs, tree); err != nil {
		return err
	}
	res := db.Where("question_id IN ?", questionIDs).Delete(&model.Option{})
	if res.Error != nil {
		return res.Error
	}
	tree.Options += res.RowsAffected
	return nil
}

func deleteQuestions(db *gorm.DB, questionIDs []uint, tree *DeletedTree) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := deleteOptionsOfQuestions(db, questionIDs, tree); err != nil {
		return err
	}
	if err := collectImageKeys(db, &model.Question{}, "id", questionIDs, tree); err != nil {
		return err
	}
	res := db.Where("id IN ?", questionIDs).Delete(&model.Question{})
	if res.Error != nil {
		return res.Error
	}
	tree.Questions += res.RowsAffected
	return nil
}

func deleteSections(db *gorm.DB, sectionIDs []uint, tree *DeletedTree) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	var questionIDs []uint
	if err := db.Model(&model.Question{}).Where("section_id IN ?", sectionIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if err := deleteQuestions(db, questionIDs, tree); err != nil {
		return err
	}
	if err := collectImageKeys(db, &model.Section{}, "id", sectionIDs, tree); err != nil {
		return err
	}
	res := db.Where("id IN ?", sectionIDs).Delete(&model.Section{})
	if res.Error != nil {
		return res.Error
	}
	tree.Sections += res.RowsAffected
	return nil
}

func deleteForm(db *gorm.DB, formID uint, tree *DeletedTree) error {
	var sectionIDs []uint
	if err := db.Model(&model.Section{}).Where("form_id = ?", formID).Pluck("id", &sectionIDs).Error; err != nil {
		return err
	}
	if err := deleteSections(db, sectionIDs, tree); err != nil {
		return err
	}
	if err := collectImageKeys(db, &model.Form{}, "id", []uint{formID}, tree); err != nil {
		return err
	}
	res := db.Delete(&model.Form{}, formID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	tree.Forms += res.RowsAffected
	return nil
}
