package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spicyjump/storefront/pkg/database"
	"github.com/spicyjump/storefront/pkg/events"
	paymentdomain "github.com/spicyjump/storefront/services/payment/domain"
	domainevents "github.com/spicyjump/storefront/services/payment/domain/events"
	"github.com/spicyjump/storefront/services/payment/domain/models"
	"github.com/spicyjump/storefront/services/payment/infrastructure/persistence/postgres/db"
)

const uniqueViolation = "23505"

// PaymentRepository implements repositories.PaymentRepository against PostgreSQL.
type PaymentRepository struct {
	db  *database.Database
	pub events.TxPublisher
}

// NewPaymentRepository returns a PaymentRepository. A nil pub skips events.
func NewPaymentRepository(database *database.Database, pub events.TxPublisher) *PaymentRepository {
	return &PaymentRepository{db: database, pub: pub}
}

// Create inserts p. The partial unique index on active payments per order
// turns a concurrent second payment into ErrPaymentInProgress.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	err := db.New(r.db.DB()).InsertPayment(ctx, db.PaymentPayment{
		ID:                    p.ID,
		OrderID:               p.OrderID,
		BuyerID:               p.BuyerID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		Method:                string(p.Method),
		Status:                string(p.Status),
		Provider:              string(p.Provider),
		ProviderTransactionID: nullString(p.ProviderTxID),
		ProviderResponse:      p.ProviderResponse,
		FailureReason:         nullString(p.FailureReason),
		RefundReason:          nullString(p.RefundReason),
		CreatedAt:             p.CreatedAt,
		PaidAt:                nullTime(p.PaidAt),
		RefundedAt:            nullTime(p.RefundedAt),
		UpdatedAt:             p.UpdatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return paymentdomain.ErrPaymentInProgress
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return one(db.New(r.db.DB()).GetPaymentByID(ctx, id))
}

func (r *PaymentRepository) GetByProviderTxID(ctx context.Context, txID string) (*models.Payment, error) {
	return one(db.New(r.db.DB()).GetPaymentByProviderTxID(ctx, txID))
}

func (r *PaymentRepository) Active(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	return one(db.New(r.db.DB()).GetActivePayment(ctx, orderID))
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error) {
	rows, err := db.New(r.db.DB()).ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order payments: %w", err)
	}
	out := make([]*models.Payment, len(rows))
	for i, row := range rows {
		out[i] = rowToPayment(row)
	}
	return out, nil
}

// Save is a compare-and-set on the status column.
func (r *PaymentRepository) Save(ctx context.Context, p *models.Payment, from models.Status) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdatePayment(ctx, db.UpdatePaymentParams{
			ID:                    p.ID,
			From:                  string(from),
			Status:                string(p.Status),
			ProviderTransactionID: nullString(p.ProviderTxID),
			ProviderResponse:      p.ProviderResponse,
			FailureReason:         nullString(p.FailureReason),
			RefundReason:          nullString(p.RefundReason),
			PaidAt:                nullTime(p.PaidAt),
			RefundedAt:            nullTime(p.RefundedAt),
			UpdatedAt:             p.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: payment %s is no longer %s", paymentdomain.ErrAlreadyProcessed, p.ID, from)
		}
		if r.pub == nil || p.Status == from {
			return nil
		}

		switch p.Status {
		case models.StatusCompleted:
			err = r.pub.PublishTx(ctx, tx, domainevents.TopicPaymentCompleted, domainevents.PaymentCompleted{
				Meta:      events.NewMeta(p.UpdatedAt),
				PaymentID: p.ID,
				OrderID:   p.OrderID,
				Amount:    p.Amount,
				Currency:  p.Currency,
				Provider:  string(p.Provider),
			})
		case models.StatusRefunded:
			err = r.pub.PublishTx(ctx, tx, domainevents.TopicPaymentRefunded, domainevents.PaymentRefunded{
				Meta:      events.NewMeta(p.UpdatedAt),
				PaymentID: p.ID,
				OrderID:   p.OrderID,
				Amount:    p.Amount,
				Reason:    p.RefundReason,
			})
		}
		if err != nil {
			return fmt.Errorf("publish payment %s: %w", p.Status, err)
		}
		return nil
	})
}

func one(row db.PaymentPayment, err error) (*models.Payment, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, paymentdomain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("query payment: %w", err)
	}
	return rowToPayment(row), nil
}

func rowToPayment(row db.PaymentPayment) *models.Payment {
	p := &models.Payment{
		ID:               row.ID,
		OrderID:          row.OrderID,
		BuyerID:          row.BuyerID,
		Amount:           row.Amount,
		Currency:         row.Currency,
		Method:           models.Method(row.Method),
		Status:           models.Status(row.Status),
		Provider:         models.Provider(row.Provider),
		ProviderTxID:     row.ProviderTransactionID.String,
		ProviderResponse: row.ProviderResponse,
		FailureReason:    row.FailureReason.String,
		RefundReason:     row.RefundReason.String,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.PaidAt.Valid {
		p.PaidAt = &row.PaidAt.Time
	}
	if row.RefundedAt.Valid {
		p.RefundedAt = &row.RefundedAt.Time
	}
	return p
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
