// Пакет repository — слой доступа к данным PostgreSQL для Dashboard Module.
// DM — read-only потребитель таблицы alerts (owned by detection pipeline)
// и владелец таблицы blob_metadata (метаданные blob-хранилища).
// Все запросы — чистый SQL через pgx, без ORM.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicateKey — нарушение уникального ограничения.
	// Для blob_metadata: вторая запись превью для того же оригинала.
	ErrDuplicateKey = errors.New("нарушение уникального ограничения")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation — код SQLSTATE нарушения уникального ограничения.
const uniqueViolation = "23505"

// isUniqueViolation проверяет, является ли ошибка нарушением
// уникального ограничения PostgreSQL (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
