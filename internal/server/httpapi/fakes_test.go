package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/logging"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
)

type fakeUsers struct {
	registerErr error
	loginErr    error
	gotRegister models.RegisterInput
}

func (f *fakeUsers) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	f.gotRegister = in
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.AuthResult{Token: "tok", UserID: 7, UserName: in.UserName, ExpiresAt: time.Unix(100, 0).UTC()}, nil
}

func (f *fakeUsers) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.AuthResult{Token: "tok", UserID: 7, UserName: "alice"}, nil
}

type fakeRecipes struct {
	graph    *models.RecipeGraph
	err      error
	deleted  bool
	imageURL string
	gotOwner int64
	gotID    int64
	gotInput models.RecipeInput
	gotPatch models.RecipePatch
	gotFile  string
	gotData  []byte
}

func (f *fakeRecipes) Create(ctx context.Context, ownerID int64, in models.RecipeInput) (*models.RecipeGraph, error) {
	f.gotOwner, f.gotInput = ownerID, in
	return f.graph, f.err
}

func (f *fakeRecipes) Get(ctx context.Context, id int64) (*models.RecipeGraph, error) {
	f.gotID = id
	return f.graph, f.err
}

func (f *fakeRecipes) Update(ctx context.Context, id, ownerID int64, patch models.RecipePatch) (*models.RecipeGraph, error) {
	f.gotID, f.gotOwner, f.gotPatch = id, ownerID, patch
	return f.graph, f.err
}

func (f *fakeRecipes) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	f.gotID, f.gotOwner = id, ownerID
	return f.deleted, f.err
}

func (f *fakeRecipes) AttachImage(ctx context.Context, id, ownerID int64, fileName string, data []byte) (string, error) {
	f.gotID, f.gotOwner, f.gotFile, f.gotData = id, ownerID, fileName, data
	return f.imageURL, f.err
}

type fakeSearch struct {
	got      models.SearchQuery
	gotOwner int64
	err      error
}

func (f *fakeSearch) List(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error) {
	f.got = q
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page[models.RecipeSummary]{
		Items:      []models.RecipeSummary{{ID: 3, Title: "Soup", AuthorUserName: "alice"}},
		TotalCount: 21,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

func (f *fakeSearch) ListByOwner(ctx context.Context, ownerID int64, page, pageSize int) (*models.Page[models.RecipeSummary], error) {
	f.gotOwner = ownerID
	return f.List(ctx, models.SearchQuery{OwnerID: &ownerID, Page: page, PageSize: pageSize})
}

type fakeCategories struct{ err error }

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Vegetarian"}, {ID: 2, Name: "Vegan"}}, f.err
}

func (f *fakeCategories) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Category{ID: 11, Name: in.Name}, nil
}

type fakeRatings struct {
	err    error
	gotIn  models.RatingInput
	gotUID int64
}

func (f *fakeRatings) Rate(ctx context.Context, userID int64, in models.RatingInput) (*models.Rating, error) {
	f.gotUID, f.gotIn = userID, in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Rating{ID: 5, RecipeID: in.RecipeID, UserID: userID, UserName: "alice", Score: in.Score}, nil
}

func (f *fakeRatings) List(ctx context.Context, recipeID int64) ([]models.Rating, error) {
	return []models.Rating{{ID: 2, RecipeID: recipeID, Score: 4}}, nil
}

type fakeComments struct {
	err     error
	deleted bool
}

func (f *fakeComments) Create(ctx context.Context, userID int64, in models.CommentInput) (*models.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: 9, RecipeID: in.RecipeID, UserID: userID, UserName: "alice", Body: in.Body}, nil
}

func (f *fakeComments) List(ctx context.Context, recipeID int64) ([]models.Comment, error) {
	return []models.Comment{}, nil
}

func (f *fakeComments) Delete(ctx context.Context, id, userID int64) (bool, error) {
	return f.deleted, f.err
}

type fakeTokens map[string]*models.Identity

func (f fakeTokens) Validate(token string) (*models.Identity, error) {
	if token == "expired" {
		return nil, common.ErrTokenExpired
	}
	id, ok := f[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return id, nil
}

type testAPI struct {
	handler    http.Handler
	users      *fakeUsers
	recipes    *fakeRecipes
	search     *fakeSearch
	categories *fakeCategories
	ratings    *fakeRatings
	comments   *fakeComments
	metrics    *Metrics
}

const aliceToken = "alice-token"

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{
		users:      &fakeUsers{},
		recipes:    &fakeRecipes{},
		search:     &fakeSearch{},
		categories: &fakeCategories{},
		ratings:    &fakeRatings{},
		comments:   &fakeComments{},
		metrics:    NewMetrics(),
	}
	images := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image:" + r.URL.Path))
	})
	a.handler = NewRouter(RouterConfig{
		Users:         a.users,
		Recipes:       a.recipes,
		Search:        a.search,
		Categories:    a.categories,
		Ratings:       a.ratings,
		Comments:      a.comments,
		Tokens:        fakeTokens{aliceToken: {UserID: 7, Email: "alice@x.com", UserName: "alice"}},
		Images:        images,
		UploadsPrefix: "/uploads",
		MaxImageSize:  16,
		Metrics:       a.metrics,
		AuthLimiter:   NewRateLimiter(1000, 1000),
		Logger:        logging.NewNopLogger(),
	})
	return a
}

func (a *testAPI) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}
