package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sakura-arcade/gameserver/models"
)

// GormPostgreSQL is the GORM-backed match archive.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveMatch(rec *models.MatchRecord) error {
	players := make(map[string]interface{}, len(rec.Players))
	for _, pl := range rec.Players {
		players[pl.ID] = map[string]interface{}{
			"name":      pl.Name,
			"avatar":    pl.Avatar,
			"seatIndex": pl.SeatIndex,
		}
	}
	scores := make(map[string]interface{}, len(rec.Scores))
	for id, s := range rec.Scores {
		scores[id] = s
	}
	history := make([]interface{}, len(rec.History))
	for i, h := range rec.History {
		history[i] = h
	}

	row := models.GormMatchRecord{
		RoomID:    rec.RoomID,
		GameKey:   rec.GameKey,
		Players:   players,
		Scores:    scores,
		History:   history,
		CreatedAt: rec.FinishedAt,
	}
	return p.db.Create(&row).Error
}

func (p *GormPostgreSQL) PlayerRecord(playerID string) (map[string]interface{}, error) {
	var stats map[string]interface{}

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) as matches,
            COALESCE(SUM((scores->>?)::int), 0) as total_score
        FROM match_records
        WHERE jsonb_exists(players, ?)`,
		playerID, playerID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, ErrRecordNotFound
	}
	return stats, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
