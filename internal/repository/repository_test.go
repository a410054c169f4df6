package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/testutil"
	"gorm.io/gorm"
)

var ctx = context.Background()

type fixture struct {
	db        *gorm.DB
	owner     model.User
	form      model.Form
	section   model.Section
	question  model.Question
	optionIDs []uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{db: db}

	f.owner = model.User{Username: "owner", PasswordHash: "x", EmailAddress: "owner@example.com"}
	if err := NewUserRepository(db).Create(ctx, &f.owner); err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.form = model.Form{Title: "Form", OwnerID: f.owner.ID}
	if err := NewFormRepository(db).Create(ctx, &f.form); err != nil {
		t.Fatalf("create form: %v", err)
	}
	f.section = model.Section{FormID: f.form.ID, Title: model.DefaultSectionTitle}
	if err := NewSectionRepository(db).Create(ctx, &f.section); err != nil {
		t.Fatalf("create section: %v", err)
	}
	f.question = model.Question{SectionID: f.section.ID, Title: "Q", Type: model.QuestionTypeCheckboxes, Version: 1}
	if err := NewQuestionRepository(db).Create(ctx, &f.question); err != nil {
		t.Fatalf("create question: %v", err)
	}
	options := []model.Option{{QuestionID: f.question.ID, Text: "a"}, {QuestionID: f.question.ID, Text: "b"}}
	if err := NewOptionRepository(db).CreateBatch(ctx, options); err != nil {
		t.Fatalf("create options: %v", err)
	}
	for _, o := range options {
		f.optionIDs = append(f.optionIDs, o.ID)
	}
	return f
}

func TestUserRepositoryDuplicate(t *testing.T) {
	f := newFixture(t)
	dup := model.User{Username: "owner", PasswordHash: "y", EmailAddress: "other@example.com"}
	err := NewUserRepository(f.db).Create(ctx, &dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := NewUserRepository(f.db).FindByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetResponseTokenOnlyOnce(t *testing.T) {
	f := newFixture(t)
	repo := NewFormRepository(f.db)

	won, err := repo.SetResponseToken(ctx, f.form.ID, "first", time.Now())
	if err != nil || !won {
		t.Fatalf("first SetResponseToken: %v %v", won, err)
	}
	won, err = repo.SetResponseToken(ctx, f.form.ID, "second", time.Now())
	if err != nil || won {
		t.Fatalf("second SetResponseToken should lose: %v %v", won, err)
	}
	form, err := repo.FindByResponseToken(ctx, "first")
	if err != nil || form.ID != f.form.ID {
		t.Fatalf("FindByResponseToken: %+v %v", form, err)
	}

	other := model.Form{Title: "Other", OwnerID: f.owner.ID}
	if err := repo.Create(ctx, &other); err != nil {
		t.Fatalf("create form: %v", err)
	}
	if _, err := repo.SetResponseToken(ctx, other.ID, "first", time.Now()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused token, got %v", err)
	}
}

func TestQuestionCompareAndSwap(t *testing.T) {
	f := newFixture(t)
	repo := NewQuestionRepository(f.db)

	if err := repo.CompareAndSwap(ctx, f.question.ID, 1, map[string]interface{}{"title": "v2"}); err != nil {
		t.Fatalf("CompareAndSwap: %v", err)
	}
	if err := repo.CompareAndSwap(ctx, f.question.ID, 1, map[string]interface{}{"title": "lost"}); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
	if err := repo.CompareAndSwap(ctx, 999, 1, map[string]interface{}{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	q, err := repo.FindByID(ctx, f.question.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if q.Title != "v2" || q.Version != 2 {
		t.Errorf("unexpected question %+v", q)
	}
}

func TestFormDeleteCascade(t *testing.T) {
	f := newFixture(t)
	key := model.ImageKey(model.ImageKindOption, f.optionIDs[0])
	if err := NewImageOwnerRepository(f.db).SetImageKey(ctx, model.ImageKindOption, f.optionIDs[0], key); err != nil {
		t.Fatalf("SetImageKey: %v", err)
	}
	response := model.Response{FormID: f.form.ID, ResponseData: []byte(`[]`), SubmittedAt: time.Now()}
	if err := NewResponseRepository(f.db).Create(ctx, &response); err != nil {
		t.Fatalf("create response: %v", err)
	}

	var tree *DeletedTree
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		tree, err = NewFormRepository(f.db).WithTx(tx).DeleteCascade(ctx, f.form.ID)
		return err
	})
	if err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if tree.Forms != 1 || tree.Sections != 1 || tree.Questions != 1 || tree.Options != 2 {
		t.Errorf("unexpected counts %+v", tree)
	}
	if len(tree.ImageKeys) != 1 || tree.ImageKeys[0] != key {
		t.Errorf("image keys = %v", tree.ImageKeys)
	}

	n, err := NewResponseRepository(f.db).CountByFormID(ctx, f.form.ID)
	if err != nil || n != 1 {
		t.Errorf("response count after cascade = %d, %v", n, err)
	}
	if _, err := NewFormRepository(f.db).DeleteCascade(ctx, f.form.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFindAllByFormIDPreloadsOptions(t *testing.T) {
	f := newFixture(t)
	questions, err := NewQuestionRepository(f.db).FindAllByFormID(ctx, f.form.ID)
	if err != nil {
		t.Fatalf("FindAllByFormID: %v", err)
	}
	if len(questions) != 1 || len(questions[0].Options) != 2 {
		t.Fatalf("unexpected questions %+v", questions)
	}
	if questions[0].Options[0].ID != f.optionIDs[0] {
		t.Errorf("options not in id order")
	}
}

func TestUnknownStoredQuestionType(t *testing.T) {
	f := newFixture(t)
	if err := f.db.Exec("UPDATE questions SET question_type = ? WHERE id = ?", "essay", f.question.ID).Error; err != nil {
		t.Fatalf("corrupt question type: %v", err)
	}
	repo := NewQuestionRepository(f.db)
	if _, err := repo.FindByIDWithOptions(ctx, f.question.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("FindByIDWithOptions: expected ErrInvalidState, got %v", err)
	}
	if _, err := repo.FindAllByFormID(ctx, f.form.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("FindAllByFormID: expected ErrInvalidState, got %v", err)
	}
	if _, err := NewFormRepository(f.db).FindTreeByID(ctx, f.form.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("FindTreeByID: expected ErrInvalidState, got %v", err)
	}
}

func TestMoveQuestionCompareAndSwap(t *testing.T) {
	f := newFixture(t)
	target := model.Section{FormID: f.form.ID, Title: "Second", Order: 1}
	if err := NewSectionRepository(f.db).Create(ctx, &target); err != nil {
		t.Fatalf("create section: %v", err)
	}
	repo := NewQuestionRepository(f.db)
	if err := repo.CompareAndSwap(ctx, f.question.ID, 1, map[string]interface{}{"section_id": target.ID, "display_order": 0}); err != nil {
		t.Fatalf("CompareAndSwap: %v", err)
	}
	questions, err := repo.FindAllBySectionID(ctx, target.ID)
	if err != nil || len(questions) != 1 || questions[0].Version != 2 {
		t.Fatalf("unexpected questions %+v %v", questions, err)
	}
	if next, err := repo.NextOrder(ctx, f.section.ID); err != nil || next != 0 {
		t.Errorf("source section NextOrder = %d, %v", next, err)
	}
}

func TestEachBatchByFormID(t *testing.T) {
	f := newFixture(t)
	repo := NewResponseRepository(f.db)
	for i := 0; i < 5; i++ {
		r := model.Response{FormID: f.form.ID, ResponseData: []byte(`[]`), SubmittedAt: time.Now()}
		if err := repo.Create(ctx, &r); err != nil {
			t.Fatalf("create response: %v", err)
		}
	}
	var sizes []int
	var last uint
	err := repo.EachBatchByFormID(ctx, f.form.ID, 2, func(batch []model.Response) error {
		sizes = append(sizes, len(batch))
		for _, r := range batch {
			if r.ID <= last {
				t.Errorf("response %d out of order", r.ID)
			}
			last = r.ID
		}
		return nil
	})
	if err != nil {
		t.Fatalf("EachBatchByFormID: %v", err)
	}
	if len(sizes) != 3 || sizes[0] != 2 || sizes[2] != 1 {
		t.Errorf("batch sizes = %v", sizes)
	}

	stop := errors.New("stop")
	err = repo.EachBatchByFormID(ctx, f.form.ID, 2, func([]model.Response) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestNextOrder(t *testing.T) {
	f := newFixture(t)
	sections := NewSectionRepository(f.db)
	next, err := sections.NextOrder(ctx, f.form.ID)
	if err != nil || next != 1 {
		t.Fatalf("NextOrder = %d, %v", next, err)
	}
	next, err = sections.NextOrder(ctx, 999)
	if err != nil || next != 0 {
		t.Fatalf("NextOrder for empty parent = %d, %v", next, err)
	}
}

func TestImageOwnerRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewImageOwnerRepository(f.db)
	key, err := repo.ImageKey(ctx, model.ImageKindForm, f.form.ID)
	if err != nil || key != nil {
		t.Fatalf("ImageKey before set = %v, %v", key, err)
	}
	if err := repo.SetImageKey(ctx, model.ImageKindForm, f.form.ID, "form/1"); err != nil {
		t.Fatalf("SetImageKey: %v", err)
	}
	key, err = repo.ImageKey(ctx, model.ImageKindForm, f.form.ID)
	if err != nil || key == nil || *key != "form/1" {
		t.Fatalf("ImageKey after set = %v, %v", key, err)
	}
	if _, err := repo.ImageKey(ctx, model.ImageKindSection, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
