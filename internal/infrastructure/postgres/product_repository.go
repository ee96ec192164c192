package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = "id, referencia, cor, x, y, rack, acab, obs, marked, created_at, updated_at"

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Referencia, &p.Cor, &p.X, &p.Y, &p.Rack, &p.Acab, &p.Obs, &p.Marked,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y devuelve la fila tal como quedó (timestamps de la DB).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `
		INSERT INTO products (id, referencia, cor, x, y, rack, acab, obs, marked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query,
		product.ID, product.Referencia, product.Cor, product.X, product.Y, product.Rack,
		product.Acab, product.Obs, product.Marked, product.CreatedAt, product.UpdatedAt,
	))
	if err != nil {
		return nil, storeErr(err, "insert product")
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, storeErr(err, "get product")
	}
	return p, nil
}

// GetByReferencia obtiene el producto más reciente con esa referencia.
func (r *ProductRepo) GetByReferencia(ctx context.Context, referencia string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE referencia = $1 ORDER BY created_at DESC LIMIT 1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, referencia))
	if err != nil {
		return nil, storeErr(err, "get product by referencia")
	}
	return p, nil
}

// Update reescribe todos los campos editables en una sola sentencia.
// Si la fila desapareció entre la lectura previa y la escritura devuelve ErrNotFound.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `
		UPDATE products
		SET referencia = $2, cor = $3, x = $4, y = $5, rack = $6, acab = $7, obs = $8, marked = $9, updated_at = $10
		WHERE id = $1
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query,
		product.ID, product.Referencia, product.Cor, product.X, product.Y, product.Rack,
		product.Acab, product.Obs, product.Marked, product.UpdatedAt,
	))
	if err != nil {
		return nil, storeErr(err, "update product")
	}
	return p, nil
}

// Delete elimina un producto por ID y devuelve la fila borrada.
func (r *ProductRepo) Delete(ctx context.Context, id string) (*entity.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, storeErr(err, "delete product")
	}
	return p, nil
}

// List lista productos (más recientes primero) aplicando los filtros presentes.
func (r *ProductRepo) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	query := psql.Select(strings.Split(productColumns, ", ")...).
		From("products").
		OrderBy("created_at DESC")

	if filter.Referencia != "" {
		query = query.Where(sq.ILike{"referencia": "%" + escapeLike(filter.Referencia) + "%"})
	}
	if filter.Cor != "" {
		query = query.Where(sq.Eq{"cor": filter.Cor})
	}
	if filter.Rack != "" {
		query = query.Where(sq.Eq{"rack": filter.Rack})
	}
	if filter.Acab != "" {
		query = query.Where(sq.Eq{"acab": filter.Acab})
	}
	if filter.Marked != nil {
		query = query.Where(sq.Eq{"marked": *filter.Marked})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, storeErr(err, "build product list")
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr(err, "list products")
	}
	defer rows.Close()

	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr(err, "scan product")
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "list products")
	}
	return list, nil
}

// escapeLike escapa los comodines de LIKE en texto de usuario.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
