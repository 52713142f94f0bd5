package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

// Repository defines persistence operations for transactions and invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	FindTransactionByIntent(ctx context.Context, intentID string) (*models.Transaction, error)
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	FindInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error)
	MarkInvoicePaid(ctx context.Context, invoiceID, transactionID uuid.UUID) (int64, error)
	ListInvoicesByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*InvoiceList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindTransactionByIntent(ctx context.Context, intentID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("id = ?", invoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkInvoicePaid flips an unpaid invoice to paid and links the settling
// transaction. The status guard makes a double confirm report zero rows.
func (r *repository) MarkInvoicePaid(ctx context.Context, invoiceID, transactionID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND status = ?", invoiceID, enums.InvoiceStatusUnpaid).
		Updates(map[string]any{
			"status":         enums.InvoiceStatusPaid,
			"transaction_id": transactionID,
			"updated_at":     time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ListInvoicesByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*InvoiceList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var invoices []models.Invoice
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	list := &InvoiceList{Invoices: invoices}
	if len(invoices) > limit {
		list.Invoices = invoices[:limit]
		last := list.Invoices[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
