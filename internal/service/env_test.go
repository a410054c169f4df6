package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/lshigami/formkit/internal/testutil"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	store     *storage.ImageStore
	users     UserService
	forms     FormService
	sections  SectionService
	questions QuestionService
	options   OptionService
	responses ResponseService
	exports   ExportService
	images    ImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := storage.NewImageStoreFs(afero.NewMemMapFs(), 1<<20)
	settings := Settings{}.withDefaults()
	settings.ExportBatchSize = 2 // force several batches

	userRepo := repository.NewUserRepository(db)
	formRepo := repository.NewFormRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	optionRepo := repository.NewOptionRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	tokens := auth.NewTokenManager(&config.Config{Auth: config.Auth{JWTSecret: "test", TokenTTL: time.Hour}})
	users := NewUserService(userRepo, tokens)
	users.(*userService).cost = bcrypt.MinCost

	return &testEnv{
		db:        db,
		store:     store,
		users:     users,
		forms:     NewFormService(db, formRepo, sectionRepo, userRepo, store, settings),
		sections:  NewSectionService(db, formRepo, sectionRepo, store),
		questions: NewQuestionService(db, sectionRepo, questionRepo, optionRepo, store),
		options:   NewOptionService(db, questionRepo, optionRepo, store),
		responses: NewResponseService(db, formRepo, questionRepo, responseRepo, settings),
		exports:   NewExportService(formRepo, questionRepo, responseRepo, settings),
		images:    NewImageService(repository.NewImageOwnerRepository(db), store),
	}
}

var ctx = context.Background()

func (e *testEnv) user(t *testing.T, name string) uint {
	t.Helper()
	u, err := e.users.RegisterUser(ctx, dto.RegisterUserRequest{
		Username:     name,
		Password:     "correct horse",
		EmailAddress: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("RegisterUser(%s): %v", name, err)
	}
	return u.ID
}

func (e *testEnv) form(t *testing.T, title string) *dto.FormResponse {
	t.Helper()
	f, err := e.forms.CreateForm(ctx, e.user(t, "owner"+title), dto.CreateFormRequest{Title: title})
	if err != nil {
		t.Fatalf("CreateForm: %v", err)
	}
	return f
}

func (e *testEnv) defaultSection(t *testing.T, formID uint) uint {
	t.Helper()
	sections, err := e.sections.ListSections(ctx, formID)
	if err != nil || len(sections) == 0 {
		t.Fatalf("ListSections: %v (%d)", err, len(sections))
	}
	return sections[0].ID
}

func (e *testEnv) question(t *testing.T, sectionID uint, qt model.QuestionType, options ...string) *dto.QuestionResponse {
	t.Helper()
	req := dto.CreateQuestionRequest{Title: "Q " + string(qt), Type: string(qt)}
	for _, o := range options {
		req.Options = append(req.Options, dto.OptionInput{Text: o})
	}
	q, err := e.questions.CreateQuestion(ctx, sectionID, req)
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	return q
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func wantCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	se, ok := AsError(err)
	if !ok {
		t.Fatalf("expected service error %s, got %v", code, err)
	}
	if se.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, se.Code, err)
	}
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
func strPtr(v string) *string {
	return &v
}

func itoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}
