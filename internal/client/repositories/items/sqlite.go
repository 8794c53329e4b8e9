package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/search"
	"github.com/annagav/garderobe/internal/common"
	"github.com/annagav/garderobe/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// dateLayout stores purchase dates as calendar dates without a time of day.
const dateLayout = "2006-01-02"

func (r *SQLiteRepository) Insert(ctx context.Context, item *models.ClothingItem) error {
	if item.ID != 0 {
		query := `INSERT INTO clothing_items (id, name, category, season,
				color_red, color_green, color_blue, material, brand, purchase_date, price, favorite, image_uri)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := r.db.ExecContext(ctx, query, insertArgs(item, true)...)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		return nil
	}

	query := `INSERT INTO clothing_items (name, category, season,
			color_red, color_green, color_blue, material, brand, purchase_date, price, favorite, image_uri)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, insertArgs(item, false)...)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted id: %w", err)
	}
	item.ID = id
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, item *models.ClothingItem) error {
	query := `UPDATE clothing_items SET name=?, category=?, season=?,
			color_red=?, color_green=?, color_blue=?, material=?, brand=?,
			purchase_date=?, price=?, favorite=?, image_uri=?
		WHERE id=?`
	args := insertArgs(item, false)
	args = append(args, item.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("item %d: %w", item.ID, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clothing_items WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("item %d: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.ClothingItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, category, season,
			color_red, color_green, color_blue, material, brand, purchase_date, price, favorite, image_uri
		FROM clothing_items WHERE id=?`, id)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ClothingItem, error) {
	return r.Search(ctx, search.Criteria{})
}

func (r *SQLiteRepository) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clothing_items SET favorite=? WHERE id=?`, boolToInt(favorite), id)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("item %d: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Search(ctx context.Context, c search.Criteria) ([]models.ClothingItem, error) {
	query, args := search.BuildItems(c)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	var result []models.ClothingItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clothing_items`); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) BulkInsert(ctx context.Context, items []models.ClothingItem) error {
	query := `INSERT INTO clothing_items (id, name, category, season,
			color_red, color_green, color_blue, material, brand, purchase_date, price, favorite, image_uri)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range items {
		if _, err := r.db.ExecContext(ctx, query, insertArgs(&items[i], true)...); err != nil {
			return fmt.Errorf("failed to bulk insert item %d: %w", items[i].ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clothing_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func insertArgs(item *models.ClothingItem, withID bool) []any {
	var args []any
	if withID {
		args = append(args, item.ID)
	}

	var date sql.NullString
	if item.PurchaseDate != nil {
		date = sql.NullString{String: item.PurchaseDate.Format(dateLayout), Valid: true}
	}
	var price sql.NullFloat64
	if item.Price != nil {
		price = sql.NullFloat64{Float64: *item.Price, Valid: true}
	}
	var brand sql.NullString
	if item.Brand != "" {
		brand = sql.NullString{String: item.Brand, Valid: true}
	}
	var image sql.NullString
	if item.ImageURI != "" {
		image = sql.NullString{String: item.ImageURI, Valid: true}
	}

	return append(args,
		item.Name, item.Category, item.Season,
		item.Color.Red, item.Color.Green, item.Color.Blue,
		item.Material, brand, date, price, boolToInt(item.Favorite), image)
}

func scanItem(scan func(dest ...any) error) (*models.ClothingItem, error) {
	var item models.ClothingItem
	var brand, date, image sql.NullString
	var price sql.NullFloat64
	var favorite int

	err := scan(&item.ID, &item.Name, &item.Category, &item.Season,
		&item.Color.Red, &item.Color.Green, &item.Color.Blue,
		&item.Material, &brand, &date, &price, &favorite, &image)
	if err != nil {
		return nil, err
	}

	item.Brand = brand.String
	item.ImageURI = image.String
	item.Favorite = favorite != 0
	if price.Valid {
		p := price.Float64
		item.Price = &p
	}
	if date.Valid {
		d, err := time.Parse(dateLayout, date.String)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase date %q: %w", date.String, err)
		}
		item.PurchaseDate = &d
	}
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
