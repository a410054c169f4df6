package router

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/controller/account"
	"github.com/lshigami/formkit/internal/controller/author"
	"github.com/lshigami/formkit/internal/controller/respondent"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/service"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/lshigami/formkit/internal/testutil"
	"github.com/spf13/afero"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *apiClient {
	t.Helper()
	cfg := &config.Config{
		Server:  config.Server{GinMode: gin.TestMode, PublicBaseURL: "http://forms.test"},
		Auth:    config.Auth{JWTSecret: "router-test", TokenTTL: time.Hour},
		Storage: config.Storage{MaxImageBytes: 1 << 16},
	}
	db := testutil.NewTestDB(t)
	store := storage.NewImageStoreFs(afero.NewMemMapFs(), cfg.Storage.MaxImageBytes)
	settings := service.NewSettings(cfg)
	tokens := auth.NewTokenManager(cfg)

	userRepo := repository.NewUserRepository(db)
	formRepo := repository.NewFormRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	optionRepo := repository.NewOptionRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	responses := service.NewResponseService(db, formRepo, questionRepo, responseRepo, settings)
	controllers := Controllers{
		Account:    account.NewAccountController(service.NewUserService(userRepo, tokens), tokens),
		Forms:      author.NewFormController(service.NewFormService(db, formRepo, sectionRepo, userRepo, store, settings)),
		Sections:   author.NewSectionController(service.NewSectionService(db, formRepo, sectionRepo, store)),
		Questions:  author.NewQuestionController(service.NewQuestionService(db, sectionRepo, questionRepo, optionRepo, store)),
		Options:    author.NewOptionController(service.NewOptionService(db, questionRepo, optionRepo, store)),
		Responses:  author.NewResponseController(responses, service.NewExportService(formRepo, questionRepo, responseRepo, settings)),
		Images:     author.NewImageController(service.NewImageService(repository.NewImageOwnerRepository(db), store), cfg),
		Respondent: respondent.NewRespondentController(responses, tokens),
	}

	engine := NewGinEngine(cfg)
	RegisterRoutes(engine, tokens, controllers)
	return &apiClient{t: t, engine: engine}
}

func (c *apiClient) do(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)
	return rec
}

// call sends v as JSON, checks the status and decodes the reply into out.
func (c *apiClient) call(method, path string, v interface{}, want int, out interface{}) {
	c.t.Helper()
	var body []byte
	if v != nil {
		var err error
		if body, err = json.Marshal(v); err != nil {
			c.t.Fatalf("marshal request: %v", err)
		}
	}
	rec := c.do(method, path, body, "application/json")
	if rec.Code != want {
		c.t.Fatalf("%s %s: status %d, want %d; body %s", method, path, rec.Code, want, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			c.t.Fatalf("%s %s: decode reply: %v", method, path, err)
		}
	}
}

func (c *apiClient) login(t *testing.T, username string) {
	t.Helper()
	c.call(http.MethodPost, "/api/v1/users", dto.RegisterUserRequest{
		Username:     username,
		Password:     "correct horse",
		EmailAddress: username + "@example.com",
	}, http.StatusCreated, nil)

	var tok dto.TokenResponse
	c.call(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: username, Password: "correct horse"}, http.StatusOK, &tok)
	if tok.AccessToken == "" || tok.User.Username != username {
		t.Fatalf("unexpected login reply %+v", tok)
	}
	c.token = tok.AccessToken
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestAuthorEndpointsRequireToken(t *testing.T) {
	c := newTestServer(t)
	c.call(http.MethodGet, "/api/v1/forms", nil, http.StatusUnauthorized, nil)

	c.token = "not-a-jwt"
	c.call(http.MethodPost, "/api/v1/forms", dto.CreateFormRequest{Title: "x"}, http.StatusUnauthorized, nil)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	c := newTestServer(t)
	c.login(t, "alice")
	c.token = ""
	c.call(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "alice", Password: "wrong password"}, http.StatusUnauthorized, nil)
	c.call(http.MethodPost, "/api/v1/users", dto.RegisterUserRequest{
		Username: "alice", Password: "correct horse", EmailAddress: "other@example.com",
	}, http.StatusConflict, nil)
}

func TestBuildPublishSubmitExport(t *testing.T) {
	c := newTestServer(t)
	c.login(t, "alice")

	var form dto.FormResponse
	c.call(http.MethodPost, "/api/v1/forms", dto.CreateFormRequest{Title: "Team Survey"}, http.StatusCreated, &form)

	var tree dto.FormCompleteResponse
	c.call(http.MethodGet, "/api/v1/forms/"+id(form.ID)+"/complete", nil, http.StatusOK, &tree)
	if len(tree.Sections) != 1 {
		t.Fatalf("new form should have its default section, got %d sections", len(tree.Sections))
	}
	sectionPath := "/api/v1/sections/" + id(tree.Sections[0].ID) + "/questions"

	var name, colour dto.QuestionResponse
	c.call(http.MethodPost, sectionPath, dto.CreateQuestionRequest{Title: "Name", Type: "text"}, http.StatusCreated, &name)
	c.call(http.MethodPost, sectionPath, dto.CreateQuestionRequest{
		Title: "Colour",
		Type:  "checkboxes",
		Options: []dto.OptionInput{
			{Text: "Red"}, {Text: "Green"}, {Text: "Blue"},
		},
	}, http.StatusCreated, &colour)
	if len(colour.Options) != 3 {
		t.Fatalf("expected 3 options, got %+v", colour.Options)
	}

	var pub, again dto.PublishResponse
	c.call(http.MethodPost, "/api/v1/forms/"+id(form.ID)+"/publish", nil, http.StatusOK, &pub)
	c.call(http.MethodPost, "/api/v1/forms/"+id(form.ID)+"/publish", nil, http.StatusOK, &again)
	if pub.Token == "" || pub.Token != again.Token {
		t.Fatalf("publish should be idempotent: %q then %q", pub.Token, again.Token)
	}
	if pub.Link != "http://forms.test/response/"+pub.Token+"/" {
		t.Errorf("unexpected link %q", pub.Link)
	}

	// respondents do not need an account
	authorToken := c.token
	c.token = ""
	var public dto.FormCompleteResponse
	c.call(http.MethodGet, "/response/"+pub.Token+"/", nil, http.StatusOK, &public)
	if public.ID != form.ID {
		t.Fatalf("token resolved to form %d, want %d", public.ID, form.ID)
	}

	answers := json.RawMessage(`{"` + id(name.ID) + `": "Ada", "` + id(colour.ID) + `": [` +
		id(colour.Options[0].ID) + `, ` + id(colour.Options[1].ID) + `]}`)
	var submitted dto.SubmissionResponse
	c.call(http.MethodPost, "/response/"+pub.Token+"/", answers, http.StatusCreated, &submitted)
	if submitted.UserID != nil {
		t.Errorf("anonymous submission should have no user, got %d", *submitted.UserID)
	}
	c.call(http.MethodPost, "/response/"+pub.Token+"/", []int{1}, http.StatusBadRequest, nil)
	c.call(http.MethodPost, "/response/no-such-token/", answers, http.StatusNotFound, nil)

	c.token = authorToken
	var count dto.CountResponse
	c.call(http.MethodGet, "/api/v1/forms/"+id(form.ID)+"/responses/count", nil, http.StatusOK, &count)
	if count.Count != 1 {
		t.Fatalf("expected 1 response, got %d", count.Count)
	}

	rec := c.do(http.MethodGet, "/api/v1/forms/"+id(form.ID)+"/export.csv", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "team_survey_responses.csv") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %v", rows)
	}
	if strings.Join(rows[0], ",") != strings.Join(service.CSVHeader, ",") {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][3] != id(name.ID) || rows[1][6] != "Ada" {
		t.Errorf("unexpected text row %v", rows[1])
	}
	if rows[2][6] != `["Red","Green"]` {
		t.Errorf("unexpected choice row %v", rows[2])
	}
}

func TestNotFoundAndBadIDs(t *testing.T) {
	c := newTestServer(t)
	c.login(t, "bob")

	c.call(http.MethodGet, "/api/v1/forms/abc", nil, http.StatusBadRequest, nil)
	c.call(http.MethodGet, "/api/v1/forms/0", nil, http.StatusBadRequest, nil)
	c.call(http.MethodGet, "/api/v1/forms/9999", nil, http.StatusNotFound, nil)
	c.call(http.MethodDelete, "/api/v1/sections/9999", nil, http.StatusNotFound, nil)

	rec := c.do(http.MethodGet, "/api/v1/forms/9999/export.csv", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("export of a missing form: status %d", rec.Code)
	}
}

func TestOptionsOnTextQuestionRejected(t *testing.T) {
	c := newTestServer(t)
	c.login(t, "carol")

	var form dto.FormResponse
	c.call(http.MethodPost, "/api/v1/forms", dto.CreateFormRequest{Title: "Feedback"}, http.StatusCreated, &form)
	var tree dto.FormCompleteResponse
	c.call(http.MethodGet, "/api/v1/forms/"+id(form.ID)+"/complete", nil, http.StatusOK, &tree)

	var q dto.QuestionResponse
	c.call(http.MethodPost, "/api/v1/sections/"+id(tree.Sections[0].ID)+"/questions",
		dto.CreateQuestionRequest{Title: "Comments", Type: "paragraph"}, http.StatusCreated, &q)
	c.call(http.MethodPost, "/api/v1/questions/"+id(q.ID)+"/options",
		dto.CreateOptionRequest{Text: "Yes"}, http.StatusUnprocessableEntity, nil)
}

func TestMoveQuestionBetweenSections(t *testing.T) {
	c := newTestServer(t)
	c.login(t, "dana")

	var form dto.FormResponse
	c.call(http.MethodPost, "/api/v1/forms", dto.CreateFormRequest{Title: "Moves"}, http.StatusCreated, &form)
	var tree dto.FormCompleteResponse
	c.call(http.MethodGet, "/api/v1/forms/"+id(form.ID)+"/complete", nil, http.StatusOK, &tree)
	var second dto.SectionResponse
	c.call(http.MethodPost, "/api/v1/forms/"+id(form.ID)+"/sections",
		dto.CreateSectionRequest{Title: "Second"}, http.StatusCreated, &second)

	var q dto.QuestionResponse
	c.call(http.MethodPost, "/api/v1/sections/"+id(tree.Sections[0].ID)+"/questions",
		dto.CreateQuestionRequest{Title: "Age", Type: "text"}, http.StatusCreated, &q)

	var moved dto.QuestionResponse
	c.call(http.MethodPost, "/api/v1/sections/"+id(second.ID)+"/questions/"+id(q.ID), nil, http.StatusOK, &moved)
	if moved.SectionID != second.ID || moved.Order != 0 {
		t.Errorf("unexpected moved question %+v", moved)
	}
	c.call(http.MethodPost, "/api/v1/sections/9999/questions/"+id(q.ID), nil, http.StatusNotFound, nil)
	c.call(http.MethodPost, "/api/v1/sections/"+id(second.ID)+"/questions/9999", nil, http.StatusNotFound, nil)
}

func TestImageUploadAndDownload(t *testing.T) {
	c := newTestServer(t)
	c.login(t, "dave")

	var form dto.FormResponse
	c.call(http.MethodPost, "/api/v1/forms", dto.CreateFormRequest{Title: "Pictures"}, http.StatusCreated, &form)

	path := "/api/v1/images/form/" + id(form.ID)
	rec := c.do(http.MethodPut, path, pngBytes, "application/octet-stream")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status %d: %s", rec.Code, rec.Body.String())
	}
	var img dto.ImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &img); err != nil {
		t.Fatalf("decode upload reply: %v", err)
	}
	if img.ContentType != "image/png" || img.URL != path {
		t.Errorf("unexpected upload reply %+v", img)
	}

	c.token = ""
	rec = c.do(http.MethodGet, path, nil, "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("download: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.Equal(rec.Body.Bytes(), pngBytes) {
		t.Error("downloaded bytes differ from upload")
	}

	rec = c.do(http.MethodPut, path, []byte("plain text"), "text/plain")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous upload: status %d", rec.Code)
	}
	rec = c.do(http.MethodGet, "/api/v1/images/widget/1", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status %d", rec.Code)
	}
}
