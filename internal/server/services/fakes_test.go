package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/dbx"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/categories"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/comments"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/search"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the relational store shared by all
// fake repositories. It ignores transactions.
type memStore struct {
	users       map[int64]*models.User
	recipes     map[int64]*models.Recipe
	steps       map[int64][]models.Step
	ingredients map[int64][]models.Ingredient
	links       map[int64][]int64
	categories  map[int64]string
	ratings     map[int64]*models.Rating
	comments    map[int64]*models.Comment
	nextID      int64

	// failures injected by tests, keyed by method name
	fail map[string]error
}

func newMemStore() *memStore {
	s := &memStore{
		users:       map[int64]*models.User{},
		recipes:     map[int64]*models.Recipe{},
		steps:       map[int64][]models.Step{},
		ingredients: map[int64][]models.Ingredient{},
		links:       map[int64][]int64{},
		categories:  map[int64]string{},
		ratings:     map[int64]*models.Rating{},
		comments:    map[int64]*models.Comment{},
		nextID:      100,
		fail:        map[string]error{},
	}
	for i, n := range []string{"Vegetarian", "Vegan", "Dessert"} {
		s.categories[int64(i+1)] = n
	}
	return s
}

func (s *memStore) id() int64 { s.nextID++; return s.nextID }

func (s *memStore) failure(name string) error { return s.fail[name] }

type fakeRepoManager struct {
	s      *memStore
	search *fakeSearcher
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{s: newMemStore(), search: &fakeSearcher{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return (*fakeUsers)(m.s) }
func (m *fakeRepoManager) Recipes(db dbx.DBTX) recipes.Repository       { return (*fakeRecipes)(m.s) }
func (m *fakeRepoManager) Categories(db dbx.DBTX) categories.Repository { return (*fakeCategories)(m.s) }
func (m *fakeRepoManager) Ratings(db dbx.DBTX) ratings.Repository       { return (*fakeRatings)(m.s) }
func (m *fakeRepoManager) Comments(db dbx.DBTX) comments.Repository     { return (*fakeComments)(m.s) }
func (m *fakeRepoManager) Search(db dbx.DBTX) search.Searcher           { return m.search }

// --- users ---

type fakeUsers memStore

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	s := (*memStore)(f)
	if err := s.failure("Users.Create"); err != nil {
		return nil, err
	}
	u.ID = s.id()
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error) {
	s := (*memStore)(f)
	if err := s.failure("Users.Exists"); err != nil {
		return false, err
	}
	for _, u := range s.users {
		if u.UserName == userName || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := (*memStore)(f)
	if err := s.failure("Users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- recipes ---

type fakeRecipes memStore

func (f *fakeRecipes) st() *memStore { return (*memStore)(f) }

func (f *fakeRecipes) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	s := f.st()
	if err := s.failure("Recipes.Create"); err != nil {
		return nil, err
	}
	r.ID = s.id()
	cp := *r
	s.recipes[r.ID] = &cp
	return r, nil
}

func (f *fakeRecipes) Get(ctx context.Context, id int64) (*models.RecipeGraph, error) {
	s := f.st()
	r, ok := s.recipes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	g := &models.RecipeGraph{Recipe: *r, AuthorUserName: common.UnknownAuthor}
	if u, ok := s.users[r.OwnerID]; ok {
		g.AuthorUserName = u.UserName
	}
	return g, nil
}

func (f *fakeRecipes) FindOwnedForUpdate(ctx context.Context, id, ownerID int64) (*models.Recipe, error) {
	r, ok := f.st().recipes[id]
	if !ok || r.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecipes) Exists(ctx context.Context, id int64) (bool, error) {
	s := f.st()
	if err := s.failure("Recipes.Exists"); err != nil {
		return false, err
	}
	_, ok := s.recipes[id]
	return ok, nil
}

func (f *fakeRecipes) Update(ctx context.Context, r *models.Recipe) error {
	s := f.st()
	if err := s.failure("Recipes.Update"); err != nil {
		return err
	}
	if _, ok := s.recipes[r.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *r
	s.recipes[r.ID] = &cp
	return nil
}

func (f *fakeRecipes) Delete(ctx context.Context, id int64) error {
	s := f.st()
	if err := s.failure("Recipes.Delete"); err != nil {
		return err
	}
	for rid, rt := range s.ratings {
		if rt.RecipeID == id {
			delete(s.ratings, rid)
		}
	}
	for cid, c := range s.comments {
		if c.RecipeID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.links, id)
	delete(s.ingredients, id)
	delete(s.steps, id)
	delete(s.recipes, id)
	return nil
}

func (f *fakeRecipes) Steps(ctx context.Context, recipeID int64) ([]models.Step, error) {
	return append([]models.Step{}, f.st().steps[recipeID]...), nil
}

func (f *fakeRecipes) InsertSteps(ctx context.Context, recipeID int64, instructions []string) error {
	s := f.st()
	if err := s.failure("Recipes.InsertSteps"); err != nil {
		return err
	}
	for i, in := range instructions {
		s.steps[recipeID] = append(s.steps[recipeID], models.Step{ID: s.id(), RecipeID: recipeID, Order: i + 1, Instruction: in})
	}
	return nil
}

func (f *fakeRecipes) DeleteSteps(ctx context.Context, recipeID int64) error {
	delete(f.st().steps, recipeID)
	return nil
}

func (f *fakeRecipes) Ingredients(ctx context.Context, recipeID int64) ([]models.Ingredient, error) {
	return append([]models.Ingredient{}, f.st().ingredients[recipeID]...), nil
}

func (f *fakeRecipes) InsertIngredients(ctx context.Context, recipeID int64, in []models.IngredientInput) error {
	s := f.st()
	for _, i := range in {
		s.ingredients[recipeID] = append(s.ingredients[recipeID], models.Ingredient{ID: s.id(), RecipeID: recipeID, Name: i.Name, Quantity: i.Quantity})
	}
	return nil
}

func (f *fakeRecipes) DeleteIngredients(ctx context.Context, recipeID int64) error {
	delete(f.st().ingredients, recipeID)
	return nil
}

func (f *fakeRecipes) CategoryNames(ctx context.Context, recipeID int64) ([]string, error) {
	s := f.st()
	names := []string{}
	for _, id := range s.links[recipeID] {
		names = append(names, s.categories[id])
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeRecipes) LinkCategories(ctx context.Context, recipeID int64, ids []int64) error {
	s := f.st()
	for _, id := range ids {
		if _, ok := s.categories[id]; !ok {
			continue
		}
		dup := false
		for _, have := range s.links[recipeID] {
			dup = dup || have == id
		}
		if !dup {
			s.links[recipeID] = append(s.links[recipeID], id)
		}
	}
	return nil
}

func (f *fakeRecipes) UnlinkCategories(ctx context.Context, recipeID int64) error {
	delete(f.st().links, recipeID)
	return nil
}

// --- categories ---

type fakeCategories memStore

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	s := (*memStore)(f)
	if err := s.failure("Categories.List"); err != nil {
		return nil, err
	}
	out := []models.Category{}
	for id, n := range s.categories {
		out = append(out, models.Category{ID: id, Name: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategories) Create(ctx context.Context, name string) (*models.Category, error) {
	s := (*memStore)(f)
	id := s.id()
	s.categories[id] = name
	return &models.Category{ID: id, Name: name}, nil
}

// --- ratings ---

type fakeRatings memStore

func (f *fakeRatings) st() *memStore { return (*memStore)(f) }

func (f *fakeRatings) FindByPair(ctx context.Context, recipeID, userID int64) (*models.Rating, error) {
	s := f.st()
	if err := s.failure("Ratings.FindByPair"); err != nil {
		return nil, err
	}
	for _, rt := range s.ratings {
		if rt.RecipeID == recipeID && rt.UserID == userID {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRatings) Insert(ctx context.Context, r *models.Rating) (*models.Rating, error) {
	s := f.st()
	if err := s.failure("Ratings.Insert"); err != nil {
		return nil, err
	}
	for _, rt := range s.ratings {
		if rt.RecipeID == r.RecipeID && rt.UserID == r.UserID {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.ID = s.id()
	cp := *r
	s.ratings[r.ID] = &cp
	return r, nil
}

func (f *fakeRatings) UpdateScore(ctx context.Context, recipeID, userID int64, score int, at time.Time) (int64, error) {
	for _, rt := range f.st().ratings {
		if rt.RecipeID == recipeID && rt.UserID == userID {
			rt.Score = score
			rt.CreatedAt = at
			return rt.ID, nil
		}
	}
	return 0, common.ErrorNotFound
}

func (f *fakeRatings) Get(ctx context.Context, id int64) (*models.Rating, error) {
	s := f.st()
	rt, ok := s.ratings[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	cp.UserName = common.UnknownAuthor
	if u, ok := s.users[rt.UserID]; ok {
		cp.UserName = u.UserName
	}
	return &cp, nil
}

func (f *fakeRatings) ListByRecipe(ctx context.Context, recipeID int64) ([]models.Rating, error) {
	out := []models.Rating{}
	for _, rt := range f.st().ratings {
		if rt.RecipeID == recipeID {
			out = append(out, *rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRatings) Stats(ctx context.Context, recipeID int64) (models.RatingStats, error) {
	var st models.RatingStats
	sum := 0
	for _, rt := range f.st().ratings {
		if rt.RecipeID == recipeID {
			st.Count++
			sum += rt.Score
		}
	}
	if st.Count > 0 {
		st.Average = float64(sum) / float64(st.Count)
	}
	return st, nil
}

// --- comments ---

type fakeComments memStore

func (f *fakeComments) st() *memStore { return (*memStore)(f) }

func (f *fakeComments) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	s := f.st()
	if err := s.failure("Comments.Create"); err != nil {
		return nil, err
	}
	c.ID = s.id()
	cp := *c
	s.comments[c.ID] = &cp
	return c, nil
}

func (f *fakeComments) Get(ctx context.Context, id int64) (*models.Comment, error) {
	s := f.st()
	c, ok := s.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	cp.UserName = common.UnknownAuthor
	if u, ok := s.users[c.UserID]; ok {
		cp.UserName = u.UserName
	}
	return &cp, nil
}

func (f *fakeComments) ListByRecipe(ctx context.Context, recipeID int64) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range f.st().comments {
		if c.RecipeID == recipeID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeComments) DeleteOwned(ctx context.Context, id, userID int64) (bool, error) {
	s := f.st()
	if err := s.failure("Comments.DeleteOwned"); err != nil {
		return false, err
	}
	c, ok := s.comments[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(s.comments, id)
	return true, nil
}

// --- search ---

type fakeSearcher struct {
	got  models.SearchQuery
	page *models.Page[models.RecipeSummary]
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, q models.SearchQuery) (*models.Page[models.RecipeSummary], error) {
	f.got = q
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &models.Page[models.RecipeSummary]{Items: []models.RecipeSummary{}, Page: q.Page, PageSize: q.PageSize}, nil
}

// --- image store ---

type fakeImages struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newFakeImages() *fakeImages { return &fakeImages{saved: map[string][]byte{}} }

func (f *fakeImages) Save(ctx context.Context, key string, data []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved[key] = data
	return "/uploads/" + key, nil
}

func (f *fakeImages) Delete(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	delete(f.saved, strings.TrimPrefix(url, "/uploads/"))
	return nil
}

func (s *memStore) addUser(name string) int64 {
	id := s.id()
	s.users[id] = &models.User{ID: id, UserName: name, Email: name + "@x.com"}
	return id
}
