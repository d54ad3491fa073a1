package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL driver
	_ "github.com/lib/pq"

	"github.com/sakura-arcade/gameserver/models"
)

// PostgreSQL is the raw database/sql match archive. It shares the
// match_records table with the GORM store.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            game_key TEXT NOT NULL,
            players JSONB NOT NULL,
            scores JSONB NOT NULL,
            history JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_match_records_room_id ON match_records (room_id)`)
	return err
}

func (p *PostgreSQL) SaveMatch(rec *models.MatchRecord) error {
	players := make(map[string]interface{}, len(rec.Players))
	for _, pl := range rec.Players {
		players[pl.ID] = map[string]interface{}{
			"name":      pl.Name,
			"avatar":    pl.Avatar,
			"seatIndex": pl.SeatIndex,
		}
	}

	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}
	scoresJSON, err := json.Marshal(rec.Scores)
	if err != nil {
		return err
	}
	historyJSON, err := json.Marshal(rec.History)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO match_records (room_id, game_key, players, scores, history, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.RoomID, rec.GameKey, playersJSON, scoresJSON, historyJSON, rec.FinishedAt)
	return err
}

func (p *PostgreSQL) PlayerRecord(playerID string) (map[string]interface{}, error) {
	row := p.db.QueryRow(`
        SELECT
            COUNT(*),
            COALESCE(SUM((scores->>$1)::int), 0)
        FROM match_records
        WHERE jsonb_exists(players, $1)`,
		playerID)

	var matches, totalScore int64
	if err := row.Scan(&matches, &totalScore); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return map[string]interface{}{
		"matches":     matches,
		"total_score": totalScore,
	}, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
