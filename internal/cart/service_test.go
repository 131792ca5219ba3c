package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront-api/internal/product"
)

func newTestService() (*Service, *product.InMemoryRepository) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Leash", Price: decimal.RequireFromString("12.50"), Stock: 5},
		{ID: 2, Name: "Ball", Price: decimal.RequireFromString("2.00"), Stock: 1},
	})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(NewInMemoryRepository(products), products, log), products
}

func TestAddItem_MergesAndBoundsByStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	line, err := svc.AddItem(ctx, 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "Leash", line.ProductName)

	line, err = svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	_, err = svc.AddItem(ctx, 7, 1, 1)
	assert.True(t, errors.Is(err, ErrInsufficientStock), "got %v", err)

	lines, err := svc.View(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1, "re-adding must not duplicate the line")
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAddItem_Rejections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 99, 1)
	assert.True(t, errors.Is(err, product.ErrNotFound))

	_, err = svc.AddItem(ctx, 7, 1, 0)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = svc.AddItem(ctx, 7, 2, 2)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	_, err = svc.AddItem(ctx, 7, 1, 1<<62)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestSetQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SetQuantity(ctx, 7, 1, 2)
	assert.True(t, errors.Is(err, ErrLineNotFound))

	_, err = svc.AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)

	line, err := svc.SetQuantity(ctx, 7, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	_, err = svc.SetQuantity(ctx, 7, 1, 6)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	_, err = svc.SetQuantity(ctx, 7, 1, 0)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestChangeQuantity(t *testing.T) {
	svc, products := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)

	_, err = svc.ChangeQuantity(ctx, 7, 1, 0)
	assert.True(t, errors.Is(err, ErrInvalidDelta))

	_, err = svc.ChangeQuantity(ctx, 7, 1, 1<<62)
	assert.True(t, errors.Is(err, ErrInvalidDelta))

	_, err = svc.ChangeQuantity(ctx, 7, 1, -2)
	assert.True(t, errors.Is(err, ErrQuantityTooLow))

	line, err := svc.ChangeQuantity(ctx, 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	_, err = svc.ChangeQuantity(ctx, 7, 1, 1)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	// stock dropped below the cart quantity; decreasing is still allowed
	_, err = products.Update(ctx, product.Product{ID: 1, Name: "Leash", Price: decimal.RequireFromString("12.50"), Stock: 2})
	require.NoError(t, err)
	line, err = svc.ChangeQuantity(ctx, 7, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	_, err = svc.ChangeQuantity(ctx, 7, 2, 1)
	assert.True(t, errors.Is(err, ErrLineNotFound))
}

func TestRemoveAndView_ScopedToUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 8, 1, 1)
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Remove(ctx, 7, 2), ErrLineNotFound))
	require.NoError(t, svc.Remove(ctx, 7, 1))

	mine, err := svc.View(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := svc.View(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

// slowReads widens the window between reading a line and writing it back.
type slowReads struct {
	Repository
}

func (r slowReads) Get(ctx context.Context, userID, productID int) (Line, error) {
	time.Sleep(20 * time.Millisecond)
	return r.Repository.Get(ctx, userID, productID)
}

func TestAddItem_ConcurrentAddsAccumulate(t *testing.T) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Leash", Price: decimal.RequireFromString("12.50"), Stock: 100},
	})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewService(slowReads{NewInMemoryRepository(products)}, products, log)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, 7, 1, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := svc.View(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].Quantity)
}

func TestAddItem_ConcurrentAddsNeverExceedStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, rejs int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, 7, 1, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientStock):
				rejs++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, rejs)
	lines, err := svc.View(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}
