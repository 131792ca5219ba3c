package cart

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_AddIsRelativeAndGuarded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SET quantity = cart.quantity \+ EXCLUDED.quantity`).
		WithArgs(7, 1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(3, 5))

	l, err := NewPostgresRepository(db).Add(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Line{ID: 3, UserID: 7, ProductID: 1, Quantity: 5}, l)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_AddOverStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO cart").
		WithArgs(7, 1, 9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}))

	_, err = NewPostgresRepository(db).Add(context.Background(), 7, 1, 9)
	assert.True(t, errors.Is(err, ErrInsufficientStock), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_AdjustRejections(t *testing.T) {
	cases := []struct {
		name    string
		delta   int
		current *sqlmock.Rows
		want    error
	}{
		{"missing line", 1, sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}), ErrLineNotFound},
		{"below one", -3, sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}).AddRow(3, 7, 1, 2), ErrQuantityTooLow},
		{"over stock", 4, sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}).AddRow(3, 7, 1, 2), ErrInsufficientStock},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SET quantity = quantity \+ \$3::int`).
				WithArgs(7, 1, tc.delta).
				WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}))
			mock.ExpectQuery("SELECT id, user_id, product_id, quantity").
				WithArgs(7, 1).
				WillReturnRows(tc.current)

			_, err = NewPostgresRepository(db).Adjust(context.Background(), 7, 1, tc.delta)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_SetStoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE cart").WithArgs(7, 1, 2).WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresRepository(db).Set(context.Background(), 7, 1, 2)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInsufficientStock))
}
