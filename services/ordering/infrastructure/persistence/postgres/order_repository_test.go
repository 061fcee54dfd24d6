package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/database"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	domainevents "github.com/spicyjump/storefront/services/ordering/domain/events"
	"github.com/spicyjump/storefront/services/ordering/domain/models"
	"github.com/spicyjump/storefront/services/ordering/domain/repositories"
)

var orderCols = []string{
	"id", "order_number", "buyer_id", "seller_id", "total", "currency", "shipping_address",
	"status", "created_at", "updated_at",
}

var itemCols = []string{
	"id", "order_id", "product_id", "product_name", "product_name_en", "quantity", "unit_price", "subtotal",
}

type published struct {
	topic string
	event any
}

type recordingPublisher struct {
	got []published
	err error
}

func (p *recordingPublisher) PublishTx(_ context.Context, _ *sql.Tx, topic string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, published{topic: topic, event: event})
	return nil
}

func newMock(t *testing.T) (*database.Database, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return database.FromDB(sqlDB), mock
}

var created = time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20250502-AB12CD34",
		BuyerID:         uuid.New(),
		SellerID:        uuid.New(),
		Total:           decimal.RequireFromString("9.00"),
		Currency:        "USD",
		ShippingAddress: map[string]any{"recipient": "Lee"},
		Status:          models.StatusPending,
		Items: []models.Item{{
			ID:          uuid.New(),
			ProductID:   uuid.New(),
			ProductName: "김부각",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("4.50"),
			Subtotal:    decimal.RequireFromString("9.00"),
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestOrderRepository_Create(t *testing.T) {
	d, mock := newMock(t)
	pub := &recordingPublisher{}
	repo := NewOrderRepository(d, pub)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ordering.orders").
		WithArgs(o.ID, o.OrderNumber, o.BuyerID, o.SellerID, sqlmock.AnyArg(), "USD", sqlmock.AnyArg(),
			"PENDING", created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ordering.order_items").
		WithArgs(o.Items[0].ID, o.ID, o.Items[0].ProductID, "김부각", nil, int32(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
	if len(pub.got) != 1 || pub.got[0].topic != domainevents.TopicOrderCreated {
		t.Fatalf("expected one order.created event, got %+v", pub.got)
	}
	evt := pub.got[0].event.(domainevents.OrderCreated)
	if evt.OrderID != o.ID || !evt.Total.Equal(o.Total) || evt.Version != 1 {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestOrderRepository_Create_PublishFailureRollsBack(t *testing.T) {
	d, mock := newMock(t)
	repo := NewOrderRepository(d, &recordingPublisher{err: errors.New("outbox down")})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ordering.orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ordering.order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	if err := repo.Create(context.Background(), sampleOrder()); err == nil {
		t.Fatal("expected an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderRepository_GetByID(t *testing.T) {
	d, mock := newMock(t)
	repo := NewOrderRepository(d, nil)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM ordering.orders WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			id.String(), "ORD-20250502-AB12CD34", uuid.NewString(), uuid.NewString(), "9.00", "USD",
			[]byte(`{"recipient":"Lee","postal_code":"04524"}`), "PAID", created, created,
		))
	mock.ExpectQuery("FROM ordering.order_items").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
			uuid.NewString(), id.String(), uuid.NewString(), "김부각", "Seaweed chips", 2, "4.50", "9.00",
		))

	o, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if o.Status != models.StatusPaid || o.ShippingAddress["postal_code"] != "04524" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if len(o.Items) != 1 || o.Items[0].ProductNameEn != "Seaweed chips" || o.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	d, mock := newMock(t)
	repo := NewOrderRepository(d, nil)

	mock.ExpectQuery("FROM ordering.orders").WillReturnRows(sqlmock.NewRows(orderCols))

	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, orderingdomain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	t.Run("cancel publishes", func(t *testing.T) {
		d, mock := newMock(t)
		pub := &recordingPublisher{}
		repo := NewOrderRepository(d, pub)
		o := sampleOrder()
		o.Status = models.StatusCancelled

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE ordering.orders").
			WithArgs(o.ID, "PAID", "CANCELLED", o.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateStatus(context.Background(), o, models.StatusPaid,
			&repositories.Cancellation{Reason: models.ReasonBuyer, Restock: true})
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		evt := pub.got[0].event.(domainevents.OrderCancelled)
		if pub.got[0].topic != domainevents.TopicOrderCancelled || !evt.Restock || evt.Reason != models.ReasonBuyer {
			t.Fatalf("unexpected event: %+v", pub.got[0])
		}
		if len(evt.Items) != 1 || evt.Items[0].Quantity != 2 {
			t.Fatalf("cancelled items not carried: %+v", evt.Items)
		}
	})

	t.Run("lost race", func(t *testing.T) {
		d, mock := newMock(t)
		pub := &recordingPublisher{}
		repo := NewOrderRepository(d, pub)
		o := sampleOrder()
		o.Status = models.StatusPaid

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE ordering.orders").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.UpdateStatus(context.Background(), o, models.StatusPending, nil)
		if !errors.Is(err, orderingdomain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
		}
		if len(pub.got) != 0 {
			t.Fatal("nothing may be published for a lost update")
		}
	})
}

func TestOrderRepository_SellerStats(t *testing.T) {
	d, mock := newMock(t)
	repo := NewOrderRepository(d, nil)
	seller := uuid.New()

	mock.ExpectQuery("FROM ordering.orders\\s+WHERE seller_id = \\$1\\s+GROUP BY status").
		WithArgs(seller).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "sum"}).
			AddRow("PENDING", 2, "30.00").
			AddRow("PAID", 3, "45.50").
			AddRow("DELIVERED", 1, "10.00").
			AddRow("CANCELLED", 4, "99.00"))

	stats, err := repo.SellerStats(context.Background(), seller)
	if err != nil {
		t.Fatalf("SellerStats: %v", err)
	}
	if stats.TotalOrders != 10 || stats.StatusCounts[models.StatusCancelled] != 4 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.Revenue.Equal(decimal.RequireFromString("55.50")) {
		t.Fatalf("revenue = %s, want 55.50 (pending and cancelled excluded)", stats.Revenue)
	}
}

func TestOrderRepository_HasDelivered(t *testing.T) {
	d, mock := newMock(t)
	repo := NewOrderRepository(d, nil)
	user, product := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(user, product).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasDelivered(context.Background(), user, product)
	if err != nil || !ok {
		t.Fatalf("HasDelivered = %v, %v", ok, err)
	}
}

func TestOrderRepository_PeriodStats(t *testing.T) {
	d, mock := newMock(t)
	repo := NewOrderRepository(d, nil)
	to := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -7)

	mock.ExpectQuery("FROM ordering.orders\\s+WHERE created_at >= \\$1 AND created_at < \\$2").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count", "completed", "cancelled", "revenue"}).
			AddRow(12, 5, 2, "310.25"))

	stats, err := repo.PeriodStats(context.Background(), from, to)
	if err != nil {
		t.Fatalf("PeriodStats: %v", err)
	}
	if stats.Orders != 12 || stats.Completed != 5 || stats.Cancelled != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.Revenue.Equal(decimal.RequireFromString("310.25")) {
		t.Fatalf("revenue = %s", stats.Revenue)
	}
}
