package order

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/delivery"
	"github.com/wichananm65/pet-shop-storefront/internal/session/sessiontest"
)

func kg(v float64) *float64 { return &v }

func setupApp(t *testing.T) (*fiber.App, *cart.Service) {
	t.Helper()
	carts := cart.NewService(cart.ServiceDeps{})
	svc := NewService(ServiceDeps{
		Carts:          carts,
		Packing:        delivery.Options{MaxWeightKg: 10, MaxVolumeCm3: 40000},
		ShippingPerBox: 50,
		Clock:          func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
	})
	a := fiber.New()
	a.Use(sessiontest.HeaderClaims())
	NewHandler(svc).RegisterProtectedRoutes(a)
	return a, carts
}

func TestCreateOrder_Success(t *testing.T) {
	a, carts := setupApp(t)
	ctx := context.Background()
	if _, err := carts.Add(ctx, OwnerKey(7), cart.Item{ID: 5, Name: "Kibble", Price: 590, WeightKg: kg(3)}, 4); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/v1/orders", nil)
	req.Header.Set("X-User-ID", "7")
	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	var ord Order
	if err := json.NewDecoder(res.Body).Decode(&ord); err != nil {
		t.Fatal(err)
	}
	if ord.OrderID != 1 || ord.UserID != 7 || ord.Quantity != 4 {
		t.Errorf("unexpected order %+v", ord)
	}
	if ord.Boxes != 2 || ord.TotalPrice != 2360 || ord.ShippingPrice != 100 || ord.GrandPrice != 2460 {
		t.Errorf("unexpected pricing %+v", ord)
	}
	if ord.CreatedAt != "2024-05-01T09:00:00Z" || ord.Status != StatusPlaced {
		t.Errorf("unexpected metadata %+v", ord)
	}

	lines, _ := carts.Get(ctx, OwnerKey(7))
	if len(lines) != 0 {
		t.Errorf("expected cart cleared, got %+v", lines)
	}

	req = httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = a.Test(req, -1)
	var orders []Order
	_ = json.NewDecoder(res.Body).Decode(&orders)
	if len(orders) != 1 || orders[0].Lines[0].ID != 5 {
		t.Errorf("unexpected order list %+v", orders)
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	a, _ := setupApp(t)
	req := httptest.NewRequest("POST", "/api/v1/orders", nil)
	req.Header.Set("X-User-ID", "8")
	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
}

func TestOrders_RequireUser(t *testing.T) {
	a, _ := setupApp(t)
	for _, method := range []string{"POST", "GET"} {
		res, err := a.Test(httptest.NewRequest(method, "/api/v1/orders", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if res.StatusCode != 401 {
			t.Fatalf("%s: expected 401 got %d", method, res.StatusCode)
		}
	}
}
