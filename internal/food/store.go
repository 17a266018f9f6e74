// Package food serves nutrition records from the food_items table with
// field selection, pagination, and a short-TTL query cache.
package food

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf/internal/logging"
	"github.com/studyshelf/studyshelf/internal/metrics"
)

// ErrNoValidNutrients is returned when a nutrient selection contains no
// allow-listed column names.
var ErrNoValidNutrients = errors.New("food: no valid nutrients provided")

// Item is one food_items row with a caller-selected column set.
type Item map[string]any

// Store is a PostgreSQL-backed food store with a short-TTL query cache.
type Store struct {
	db    *sql.DB
	cache *gocache.Cache
}

// New opens the database and initializes the query cache.
func New(databaseURL string, cacheTTL time.Duration) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{
		db:    db,
		cache: gocache.New(cacheTTL, cacheTTL+20*time.Second),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// UpdateConnectionMetrics updates the database connection metrics.
func (s *Store) UpdateConnectionMetrics() {
	stats := s.db.Stats()
	metrics.SetDBConnectionsOpen(stats.OpenConnections)
}

// All returns food items ordered by name with optional column selection
// and pagination.
func (s *Store) All(ctx context.Context, fields []string, limit, offset int) ([]Item, error) {
	columns := formatColumns(validateFields(fields))
	key := cacheKey("allFoodItems", map[string]any{
		"columns": columns, "limit": limit, "offset": offset,
	})
	if cached, ok := s.cache.Get(key); ok {
		metrics.RecordFoodCacheHit()
		return cached.([]Item), nil
	}
	metrics.RecordFoodCacheMiss()

	query := fmt.Sprintf(
		`SELECT %s FROM food_items ORDER BY food_name ASC LIMIT $1 OFFSET $2`, columns)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	metrics.RecordDBQuery("food_all", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query food items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, items)
	return items, nil
}

// Search returns food items whose name matches the query
// (case-insensitive substring).
func (s *Store) Search(ctx context.Context, nameQuery string, fields []string, limit, offset int) ([]Item, error) {
	columns := formatColumns(validateFields(fields))
	key := cacheKey("searchFoodItems", map[string]any{
		"query": nameQuery, "columns": columns, "limit": limit, "offset": offset,
	})
	if cached, ok := s.cache.Get(key); ok {
		metrics.RecordFoodCacheHit()
		return cached.([]Item), nil
	}
	metrics.RecordFoodCacheMiss()

	query := fmt.Sprintf(
		`SELECT %s FROM food_items WHERE food_name ILIKE $1 ORDER BY food_name ASC LIMIT $2 OFFSET $3`, columns)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, "%"+nameQuery+"%", limit, offset)
	metrics.RecordDBQuery("food_search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("search food items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, items)
	return items, nil
}

// Delete removes a food item and returns the deleted row, or nil when no
// row matched. Cached nutrient lookups for the item are invalidated.
func (s *Store) Delete(ctx context.Context, id int) (Item, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`DELETE FROM food_items WHERE id = $1 RETURNING *`, id)
	metrics.RecordDBQuery("food_delete", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("delete food item: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	s.invalidateFoodKeys(id)
	logging.Info("deleted food item", zap.Int("id", id))
	return items[0], nil
}

// Nutrients returns the selected nutrient columns for one food item.
// Non-numeric values come back as 0; a nil map means the item does not
// exist.
func (s *Store) Nutrients(ctx context.Context, foodID int, nutrients []string) (map[string]float64, error) {
	valid := validateFields(nutrients)
	if len(valid) == 0 {
		return nil, ErrNoValidNutrients
	}

	key := cacheKey("nutrientsForFood", map[string]any{
		"foodId": foodID, "nutrients": valid,
	})
	if cached, ok := s.cache.Get(key); ok {
		metrics.RecordFoodCacheHit()
		return cached.(map[string]float64), nil
	}
	metrics.RecordFoodCacheMiss()

	cols := make([]string, len(valid))
	for i, n := range valid {
		cols[i] = `"` + n + `"`
	}
	query := fmt.Sprintf(
		`SELECT %s FROM food_items WHERE id = $1 LIMIT 1`, strings.Join(cols, ", "))

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, foodID)
	metrics.RecordDBQuery("food_nutrients", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query nutrients: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	data := make(map[string]float64, len(valid))
	for _, n := range valid {
		data[n] = toFloat(items[0][n])
	}
	s.cache.SetDefault(key, data)
	return data, nil
}

// invalidateFoodKeys drops cached nutrient lookups for a deleted item.
func (s *Store) invalidateFoodKeys(id int) {
	marker := fmt.Sprintf(`"foodId":%d`, id)
	for key := range s.cache.Items() {
		if strings.Contains(key, marker) {
			s.cache.Delete(key)
		}
	}
}

// cacheKey builds a deterministic key from sorted parameters so that
// equivalent queries share an entry regardless of parameter order.
func cacheKey(prefix string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("_{")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		v, _ := json.Marshal(params[k])
		fmt.Fprintf(&b, "%q:%s", k, v)
	}
	b.WriteByte('}')
	return b.String()
}

// scanItems reads generic rows into maps keyed by column name.
func scanItems(rows *sql.Rows) ([]Item, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	items := []Item{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		item := make(Item, len(cols))
		for i, col := range cols {
			// lib/pq returns []byte for text and numeric columns.
			if b, ok := values[i].([]byte); ok {
				item[col] = string(b)
				continue
			}
			item[col] = values[i]
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// toFloat coerces a scanned value to float64, defaulting to 0.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
