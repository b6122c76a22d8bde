package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, price::text, stock, COALESCE(img_url, '')
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *Repo) ProductByID(ctx context.Context, id string) (*Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, price::text, stock, COALESCE(img_url, '')
		FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	ps, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, ErrProductNotFound
	}
	return &ps[0], nil
}

func (r *Repo) CreateProduct(ctx context.Context, p *Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	p.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, description, price, stock, img_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.ImgURL)
	return err
}

func (r *Repo) UpdateProduct(ctx context.Context, p *Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, img_url = NULLIF($6, '')
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.ImgURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func validateProduct(p *Product) error {
	if p.Price.LessThanOrEqual(decimal.Zero) {
		return &InvalidPriceError{ProductID: p.ID}
	}
	if p.Stock < 0 {
		return ErrInvalidAmount
	}
	return nil
}
