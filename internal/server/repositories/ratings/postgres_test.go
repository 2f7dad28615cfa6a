package ratings

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipehub/internal/common"
	"github.com/dmitrijs2005/recipehub/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByPair(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+ratings\s+WHERE\s+recipe_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipe_id", "user_id", "score", "created_at"}).
			AddRow(int64(9), int64(1), int64(2), 4, now))
	mock.ExpectQuery(q).WithArgs(int64(1), int64(3)).WillReturnError(sql.ErrNoRows)

	rt, err := repo.FindByPair(context.Background(), 1, 2)
	if err != nil || rt.ID != 9 || rt.Score != 4 {
		t.Fatalf("unexpected %+v, %v", rt, err)
	}
	if _, err := repo.FindByPair(context.Background(), 1, 3); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

const insertQ = `(?s)INSERT\s+INTO\s+ratings\s*\(recipe_id,\s*user_id,\s*score,\s*created_at\).*RETURNING\s+id`

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQ).WithArgs(int64(1), int64(2), 5, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	rt, err := repo.Insert(context.Background(), &models.Rating{RecipeID: 1, UserID: 2, Score: 5, CreatedAt: now})
	if err != nil || rt.ID != 3 {
		t.Fatalf("unexpected %+v, %v", rt, err)
	}
}

func TestInsert_PairConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: PairConstraint})

	_, err := repo.Insert(context.Background(), &models.Rating{RecipeID: 1, UserID: 2, Score: 5})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestInsert_RecipeGone(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Insert(context.Background(), &models.Rating{RecipeID: 1, UserID: 2, Score: 5})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &models.Rating{RecipeID: 1, UserID: 2, Score: 5})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateScore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+ratings\s+SET\s+score\s*=\s*\$3,\s*created_at\s*=\s*\$4\s+WHERE\s+recipe_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+id`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(1), int64(2), 5, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(q).WithArgs(int64(1), int64(4), 5, now).WillReturnError(sql.ErrNoRows)

	id, err := repo.UpdateScore(context.Background(), 1, 2, 5, now)
	if err != nil || id != 3 {
		t.Fatalf("unexpected %d, %v", id, err)
	}
	if _, err := repo.UpdateScore(context.Background(), 1, 4, 5, now); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

var listCols = []string{"id", "recipe_id", "user_id", "username", "score", "created_at"}

func TestGet_ResolvesUserName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+ratings\s+rt\s+LEFT\s+JOIN\s+users\s+u.*WHERE\s+rt\.id\s*=\s*\$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(listCols).AddRow(int64(3), int64(1), int64(2), "bob", 5, time.Now()))

	rt, err := repo.Get(context.Background(), 3)
	if err != nil || rt.UserName != "bob" || rt.Score != 5 {
		t.Fatalf("unexpected %+v, %v", rt, err)
	}
}

func TestListByRecipe_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+rt\.recipe_id\s*=\s*\$1\s+ORDER\s+BY\s+rt\.created_at\s+DESC,\s*rt\.id\s+DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(listCols).
			AddRow(int64(4), int64(1), int64(3), nil, 2, now).
			AddRow(int64(3), int64(1), int64(2), "bob", 5, now.Add(-time.Hour)))

	got, err := repo.ListByRecipe(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByRecipe error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 4 || got[0].UserName != common.UnknownAuthor || got[1].UserName != "bob" {
		t.Fatalf("unexpected ratings: %+v", got)
	}
}

func TestStats(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+COALESCE\(AVG\(score\),\s*0\)::float8,\s*COUNT\(\*\)\s+FROM\s+ratings\s+WHERE\s+recipe_id\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.5, 2))
	mock.ExpectQuery(q).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(0.0, 0))

	s, err := repo.Stats(context.Background(), 1)
	if err != nil || s.Average != 4.5 || s.Count != 2 {
		t.Fatalf("unexpected %+v, %v", s, err)
	}
	s, err = repo.Stats(context.Background(), 2)
	if err != nil || s.Average != 0 || s.Count != 0 {
		t.Fatalf("unexpected %+v, %v", s, err)
	}
}
