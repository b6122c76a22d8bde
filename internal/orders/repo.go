package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

// PlaceOrder reserves one unit of every requested product and persists the
// order with its detail as a single transaction. Row locks taken by the
// snapshot query serialize competing decrements of the same product, so two
// placements racing on stock = 1 cannot both commit. Any failure after the
// first decrement rolls the whole unit of work back.
func (r *Repo) PlaceOrder(ctx context.Context, user *User, productIDs []string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, name, description, price::text, stock, COALESCE(img_url, '')
		FROM products
		WHERE id = ANY($1) AND stock > 0
		ORDER BY id
		FOR UPDATE`, productIDs)
	if err != nil {
		return nil, err
	}
	available, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := validateSnapshot(productIDs, available); err != nil {
		return nil, err
	}
	total, err := totalPrice(available)
	if err != nil {
		return nil, err
	}

	for _, p := range available {
		ct, err := tx.Exec(ctx, `UPDATE products SET stock = stock - 1 WHERE id = $1 AND stock > 0`, p.ID)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() != 1 {
			return nil, ErrProductNotFound
		}
	}

	detailID := uuid.NewString()
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_details(id, price) VALUES ($1, $2)`,
		detailID, total.StringFixed(2)); err != nil {
		return nil, err
	}
	for _, p := range available {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_detail_products(order_detail_id, product_id)
			VALUES ($1, $2)`, detailID, p.ID); err != nil {
			return nil, err
		}
	}

	orderID := uuid.NewString()
	createdAt := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, order_detail_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		orderID, user.ID, detailID, createdAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	reserved := make([]Product, len(available))
	for i, p := range available {
		p.Stock--
		reserved[i] = p
	}
	return &Order{
		ID:        orderID,
		CreatedAt: createdAt,
		User:      user.Snapshot(),
		Detail:    OrderDetail{ID: detailID, Price: total, Products: reserved},
	}, nil
}

// OrderByID is a read-only join of the order, its detail, the user snapshot
// and the referenced products.
func (r *Repo) OrderByID(ctx context.Context, orderID string) (*Order, error) {
	var (
		o        Order
		priceRaw string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.created_at,
		       u.id, u.name, u.email,
		       COALESCE(u.phone, ''), COALESCE(u.country, ''),
		       COALESCE(u.address, ''), COALESCE(u.city, ''),
		       d.id, d.price::text
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_details d ON d.id = o.order_detail_id
		WHERE o.id = $1`, orderID).Scan(
		&o.ID, &o.CreatedAt,
		&o.User.ID, &o.User.Name, &o.User.Email,
		&o.User.Phone, &o.User.Country, &o.User.Address, &o.User.City,
		&o.Detail.ID, &priceRaw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.Detail.Price, err = decimal.NewFromString(priceRaw); err != nil {
		return nil, ErrInvalidAmount
	}

	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.name, p.description, p.price::text, p.stock, COALESCE(p.img_url, '')
		FROM order_detail_products dp
		JOIN products p ON p.id = dp.product_id
		WHERE dp.order_detail_id = $1
		ORDER BY p.id`, o.Detail.ID)
	if err != nil {
		return nil, err
	}
	if o.Detail.Products, err = scanProducts(rows); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var (
			p        Product
			priceRaw string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &priceRaw, &p.Stock, &p.ImgURL); err != nil {
			return nil, err
		}
		var err error
		if p.Price, err = decimal.NewFromString(priceRaw); err != nil {
			return nil, &InvalidPriceError{ProductID: p.ID}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
