package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

const pgUniqueViolation = "23505"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore keeps users in a table with unique constraints on username
// and wallet_address.
type PostgresStore struct {
	db       *sql.DB
	table    string
	settings settings
}

// NewPostgresStore opens the pool through the pgx stdlib driver and creates
// the table when missing.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	s := newSettings(opts)
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres: empty dsn")
	}
	if !tableName.MatchString(s.collection) {
		return nil, fmt.Errorf("postgres: invalid table name %q", s.collection)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	if err := db.PingContext(cctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	p := &PostgresStore{db: db, table: s.collection, settings: s}
	if err := p.ensureSchema(cctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "postgres user store ready", logger.String("table", p.table))
	return p, nil
}

func (p *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+p.table+` (
		username       TEXT PRIMARY KEY,
		user_id        TEXT,
		wallet_address TEXT NOT NULL UNIQUE,
		sbt_address    TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Driver() string { return DriverPostgres }

const userColumns = `username, COALESCE(user_id, ''), wallet_address, COALESCE(sbt_address, ''), created_at`

func (p *PostgresStore) Create(ctx context.Context, u model.User) (model.User, error) {
	metrics.RecordStoreOperation(DriverPostgres, "create")
	u, err := validate(u)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = p.settings.now().UTC()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO `+p.table+` (username, user_id, wallet_address, sbt_address, created_at)
		 VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5)`,
		u.Username, u.UserID, u.WalletAddress, u.SBTAddress, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			metrics.RecordStoreError(DriverPostgres, "duplicate")
			return model.User{}, ErrDuplicateKey
		}
		return model.User{}, p.fail(ctx, "create", err)
	}
	return u, nil
}

func (p *PostgresStore) FindByWallet(ctx context.Context, wallet string) (model.User, error) {
	metrics.RecordStoreOperation(DriverPostgres, "find_by_wallet")
	return p.queryOne(ctx, "find_by_wallet",
		`SELECT `+userColumns+` FROM `+p.table+` WHERE wallet_address = $1`, wallet)
}

func (p *PostgresStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	metrics.RecordStoreOperation(DriverPostgres, "find_by_username")
	return p.queryOne(ctx, "find_by_username",
		`SELECT `+userColumns+` FROM `+p.table+` WHERE username = $1`, username)
}

func (p *PostgresStore) SetSBTAddress(ctx context.Context, wallet, sbtAddress string) (model.User, error) {
	metrics.RecordStoreOperation(DriverPostgres, "set_sbt")
	return p.queryOne(ctx, "set_sbt",
		`UPDATE `+p.table+` SET sbt_address = NULLIF($2, '') WHERE wallet_address = $1 RETURNING `+userColumns,
		wallet, sbtAddress)
}

func (p *PostgresStore) ListWithSBT(ctx context.Context) ([]model.User, error) {
	metrics.RecordStoreOperation(DriverPostgres, "list_sbt")
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM `+p.table+`
		 WHERE sbt_address IS NOT NULL AND sbt_address <> ''
		 ORDER BY created_at, username`)
	if err != nil {
		return nil, p.fail(ctx, "list_sbt", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.Username, &u.UserID, &u.WalletAddress, &u.SBTAddress, &u.CreatedAt); err != nil {
			return nil, p.fail(ctx, "list_sbt", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, p.fail(ctx, "list_sbt", err)
	}
	return out, nil
}

func (p *PostgresStore) Close(context.Context) error {
	return p.db.Close()
}

func (p *PostgresStore) queryOne(ctx context.Context, op, query string, args ...any) (model.User, error) {
	var u model.User
	err := p.db.QueryRowContext(ctx, query, args...).
		Scan(&u.Username, &u.UserID, &u.WalletAddress, &u.SBTAddress, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, p.fail(ctx, op, err)
	}
	return u, nil
}

func (p *PostgresStore) fail(ctx context.Context, op string, err error) error {
	metrics.RecordStoreError(DriverPostgres, op)
	p.settings.log.Error(ctx, "postgres operation failed", logger.String("op", op), logger.Error(err))
	return fmt.Errorf("postgres %s: %w", op, err)
}
