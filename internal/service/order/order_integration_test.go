//go:build integration

package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func TestCreateOrder_ConcurrentNumbers_Postgres(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	tn := testutil.SeedTenant(t, db, "pg")

	svc := NewOrderService(db, access.NewAuthorizer(), &config.BusinessConfig{
		Timezone:           "UTC",
		TaxRate:            0.1,
		OrderNumberRetries: 5,
	})
	svc.now = func() time.Time { return fixedNow }

	const n = 30
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]int)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			detail, err := svc.CreateOrder(context.Background(), tn.OwnerCaller(), &CreateOrderRequest{
				RestaurantID: tn.Restaurant.ID,
				Type:         models.OrderTypeTakeaway,
				Items:        []ItemInput{menuLine(tn, 1)},
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[detail.OrderNumber]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.Equal(t, 1, seen[fmt.Sprintf("20240301-%04d", i)])
	}
}

func TestUpdateStatus_ConcurrentServe_Postgres(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	tn := testutil.SeedTenant(t, db, "pgstats")

	svc := NewOrderService(db, access.NewAuthorizer(), &config.BusinessConfig{Timezone: "UTC", OrderNumberRetries: 3})
	ctx := context.Background()

	const n = 10
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		detail := newOrder(t, svc, tn.OwnerCaller(), tn, &tn.Customer.ID, menuLine(tn, 1))
		ids = append(ids, detail.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, tn.OwnerCaller(), id, models.OrderStatusServed)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	c := reloadCustomer(t, db, tn.Customer.ID)
	assert.Equal(t, n, c.TotalOrders)
	assert.True(t, c.TotalSpent.Equal(testutil.Money("125.00")), c.TotalSpent.String())
}
