package comments

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

const insertQ = `(?s)INSERT\s+INTO\s+comments\s*\(recipe_id,\s*user_id,\s*body,\s*created_at\).*RETURNING\s+id`

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQ).WithArgs(int64(1), int64(2), "Tasty", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))

	c, err := repo.Create(context.Background(), &models.Comment{RecipeID: 1, UserID: 2, Body: "Tasty", CreatedAt: now})
	if err != nil || c.ID != 8 {
		t.Fatalf("unexpected %+v, %v", c, err)
	}
}

func TestCreate_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	if _, err := repo.Create(context.Background(), &models.Comment{RecipeID: 1}); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	_, err := repo.Create(context.Background(), &models.Comment{RecipeID: 1})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

var cols = []string{"id", "recipe_id", "user_id", "username", "body", "created_at"}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+comments\s+c\s+LEFT\s+JOIN\s+users\s+u.*WHERE\s+c\.id\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(8), int64(1), int64(2), "bob", "Tasty", time.Now()))
	mock.ExpectQuery(q).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	c, err := repo.Get(context.Background(), 8)
	if err != nil || c.UserName != "bob" || c.Body != "Tasty" {
		t.Fatalf("unexpected %+v, %v", c, err)
	}
	if _, err := repo.Get(context.Background(), 9); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByRecipe(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+c\.recipe_id\s*=\s*\$1\s+ORDER\s+BY\s+c\.created_at\s+DESC,\s*c\.id\s+DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(9), int64(1), int64(3), nil, "second", now).
			AddRow(int64(8), int64(1), int64(2), "bob", "first", now.Add(-time.Minute)))

	got, err := repo.ListByRecipe(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByRecipe error: %v", err)
	}
	if len(got) != 2 || got[0].Body != "second" || got[0].UserName != common.UnknownAuthor {
		t.Fatalf("unexpected comments: %+v", got)
	}
}

func TestDeleteOwned(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+comments\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs(int64(8), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(8), int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeleteOwned(context.Background(), 8, 2)
	if err != nil || !ok {
		t.Fatalf("want true,nil got %v,%v", ok, err)
	}
	ok, err = repo.DeleteOwned(context.Background(), 8, 3)
	if err != nil || ok {
		t.Fatalf("want false,nil got %v,%v", ok, err)
	}
}
