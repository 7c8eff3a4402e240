package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

const pqUniqueViolation = "23505"

// Dialect holds what differs between the supported SQL engines.
type Dialect struct {
	name              string
	schema            string
	numbered          bool
	lockClause        string
	isUniqueViolation func(err error) bool
}

var (
	SQLiteDialect = Dialect{
		name: "sqlite",
		schema: `CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			board TEXT NOT NULL,
			current_player TEXT NOT NULL,
			player1 TEXT,
			player2 TEXT,
			winner TEXT,
			status TEXT NOT NULL,
			player_x_moves TEXT NOT NULL,
			player_o_moves TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		isUniqueViolation: func(err error) bool {
			var sqliteErr *msqlite.Error
			if !errors.As(err, &sqliteErr) {
				return false
			}
			code := sqliteErr.Code()
			return code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
		},
	}

	PostgresDialect = Dialect{
		name: "postgres",
		schema: `CREATE TABLE IF NOT EXISTS games (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			board TEXT NOT NULL,
			current_player TEXT NOT NULL,
			player1 TEXT,
			player2 TEXT,
			winner TEXT,
			status TEXT NOT NULL,
			player_x_moves TEXT NOT NULL,
			player_o_moves TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		numbered:   true,
		lockClause: " FOR UPDATE",
		isUniqueViolation: func(err error) bool {
			var pqErr *pq.Error
			return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
		},
	}
)

// rebind rewrites ? placeholders into $n for engines that need numbered ones.
func (that Dialect) rebind(query string) string {
	if !that.numbered {
		return query
	}

	var builder strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			builder.WriteString("$" + strconv.Itoa(n))
			continue
		}
		builder.WriteRune(r)
	}

	return builder.String()
}

const gameColumns = `id, code, board, current_player, player1, player2, winner, status, player_x_moves, player_o_moves, created_at`

type sqlGame struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLGameRepository(db *sql.DB, dialect Dialect) GameRepository {
	return &sqlGame{
		db:      db,
		dialect: dialect,
	}
}

// Migrate creates the games table if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if _, err := db.ExecContext(ctx, dialect.schema); err != nil {
		return fmt.Errorf("can't create %s games table: %w", dialect.name, err)
	}

	return nil
}

type gameRow struct {
	board   string
	movesX  string
	movesO  string
	player1 sql.NullString
	player2 sql.NullString
	winner  sql.NullString
}

func toRow(game *entity.Game) (gameRow, error) {
	board, err := json.Marshal(game.Board)
	if err != nil {
		return gameRow{}, fmt.Errorf("failed to encode board: %w", err)
	}

	movesX, err := json.Marshal(movesOrEmpty(game.MovesX))
	if err != nil {
		return gameRow{}, fmt.Errorf("failed to encode X moves: %w", err)
	}

	movesO, err := json.Marshal(movesOrEmpty(game.MovesO))
	if err != nil {
		return gameRow{}, fmt.Errorf("failed to encode O moves: %w", err)
	}

	return gameRow{
		board:   string(board),
		movesX:  string(movesX),
		movesO:  string(movesO),
		player1: nullString(game.Player1),
		player2: nullString(game.Player2),
		winner:  nullString(string(game.Winner)),
	}, nil
}

func (that *sqlGame) Create(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	created := game.Clone()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	row, err := toRow(created)
	if err != nil {
		return nil, err
	}

	query := that.dialect.rebind(`INSERT INTO games (
		code, board, current_player, player1, player2, winner, status, player_x_moves, player_o_moves, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err = that.db.QueryRowContext(ctx, query,
		created.Code, row.board, string(created.CurrentPlayer), row.player1, row.player2, row.winner,
		string(created.Status), row.movesX, row.movesO, created.CreatedAt.UnixMilli(),
	).Scan(&created.ID)
	if err != nil {
		if that.dialect.isUniqueViolation(err) {
			return nil, apperror.ErrGameAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}

	return created, nil
}

func (that *sqlGame) GetByCode(ctx context.Context, code string) (*entity.Game, error) {
	query := that.dialect.rebind(`SELECT ` + gameColumns + ` FROM games WHERE code = ?`)

	return scanGame(that.db.QueryRowContext(ctx, query, code))
}

func (that *sqlGame) Update(ctx context.Context, code string, mutate MutateFunc) (*entity.Game, error) {
	tx, err := that.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := that.dialect.rebind(`SELECT ` + gameColumns + ` FROM games WHERE code = ?` + that.dialect.lockClause)

	game, err := scanGame(tx.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, err
	}

	if err = mutate(game); err != nil {
		return nil, err
	}

	row, err := toRow(game)
	if err != nil {
		return nil, err
	}

	update := that.dialect.rebind(`UPDATE games SET
		board = ?, current_player = ?, player1 = ?, player2 = ?, winner = ?, status = ?,
		player_x_moves = ?, player_o_moves = ?
	WHERE code = ?`)

	if _, err = tx.ExecContext(ctx, update,
		row.board, string(game.CurrentPlayer), row.player1, row.player2, row.winner, string(game.Status),
		row.movesX, row.movesO, code,
	); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit game update: %w", err)
	}

	return game, nil
}

func (that *sqlGame) DeleteByCode(ctx context.Context, code string) error {
	result, err := that.db.ExecContext(ctx, that.dialect.rebind(`DELETE FROM games WHERE code = ?`), code)
	if err != nil {
		return fmt.Errorf("failed to delete game by code: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted games: %w", err)
	}

	if affected == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func scanGame(scanner interface{ Scan(dest ...any) error }) (*entity.Game, error) {
	var (
		game          entity.Game
		row           gameRow
		currentPlayer string
		status        string
		createdAt     int64
	)

	err := scanner.Scan(
		&game.ID, &game.Code, &row.board, &currentPlayer, &row.player1, &row.player2, &row.winner,
		&status, &row.movesX, &row.movesO, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	if err = json.Unmarshal([]byte(row.board), &game.Board); err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}

	if err = json.Unmarshal([]byte(row.movesX), &game.MovesX); err != nil {
		return nil, fmt.Errorf("failed to decode X moves: %w", err)
	}

	if err = json.Unmarshal([]byte(row.movesO), &game.MovesO); err != nil {
		return nil, fmt.Errorf("failed to decode O moves: %w", err)
	}

	game.CurrentPlayer = entity.Mark(currentPlayer)
	game.Status = entity.Status(status)
	game.Player1 = row.player1.String
	game.Player2 = row.player2.String
	game.Winner = entity.Mark(row.winner.String)
	game.CreatedAt = time.UnixMilli(createdAt).UTC()
	game.MovesX = movesOrEmpty(game.MovesX)
	game.MovesO = movesOrEmpty(game.MovesO)

	return &game, nil
}

func movesOrEmpty(moves []int) []int {
	if moves == nil {
		return []int{}
	}
	return moves
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
