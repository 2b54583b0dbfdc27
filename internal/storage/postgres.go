package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/agrovision/backend/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	entities, err := json.Marshal(msg.Entities)
	if err != nil {
		return fmt.Errorf("error encoding entities: %v", err)
	}

	query := `
		INSERT INTO chat_history (id, user_id, farm_id, message, response_text, suggestions, intent, entities, confidence, source, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = s.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.FarmID,
		msg.Message,
		msg.ResponseText,
		pq.Array(msg.Suggestions),
		string(msg.Intent),
		entities,
		string(msg.Confidence),
		msg.Source,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving chat message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) History(ctx context.Context, farmID string, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, COALESCE(farm_id::text, ''), message, response_text, suggestions, intent, entities, confidence, source, created_at
		FROM chat_history
		WHERE farm_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, farmID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying chat history: %v", err)
	}
	defer rows.Close()

	messages := []*models.ChatMessage{}
	for rows.Next() {
		msg := &models.ChatMessage{}
		var entities []byte
		err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.FarmID,
			&msg.Message,
			&msg.ResponseText,
			pq.Array(&msg.Suggestions),
			&msg.Intent,
			&entities,
			&msg.Confidence,
			&msg.Source,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat message: %v", err)
		}
		if err := json.Unmarshal(entities, &msg.Entities); err != nil {
			return nil, fmt.Errorf("error decoding entities: %v", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) CreateFarm(ctx context.Context, farm *models.Farm) error {
	query := `
		INSERT INTO farms (id, user_id, name, crop_type, latitude, longitude, area_hectares, location_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		farm.ID,
		farm.UserID,
		farm.Name,
		farm.CropType,
		farm.Latitude,
		farm.Longitude,
		farm.Area,
		farm.Address,
	).Scan(&farm.CreatedAt, &farm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating farm: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetFarm(ctx context.Context, id string) (*models.Farm, error) {
	query := `
		SELECT id, user_id, name, crop_type, latitude, longitude, COALESCE(area_hectares, 0), COALESCE(location_address, ''), created_at, updated_at
		FROM farms
		WHERE id = $1`

	farm := &models.Farm{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&farm.ID,
		&farm.UserID,
		&farm.Name,
		&farm.CropType,
		&farm.Latitude,
		&farm.Longitude,
		&farm.Area,
		&farm.Address,
		&farm.CreatedAt,
		&farm.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying farm: %v", err)
	}

	return farm, nil
}

func (s *PostgresStorage) ListFarms(ctx context.Context, userID string, limit int) ([]*models.Farm, error) {
	query := `
		SELECT id, user_id, name, crop_type, latitude, longitude, COALESCE(area_hectares, 0), COALESCE(location_address, ''), created_at, updated_at
		FROM farms
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying farms: %v", err)
	}
	defer rows.Close()

	farms := []*models.Farm{}
	for rows.Next() {
		farm := &models.Farm{}
		err := rows.Scan(
			&farm.ID,
			&farm.UserID,
			&farm.Name,
			&farm.CropType,
			&farm.Latitude,
			&farm.Longitude,
			&farm.Area,
			&farm.Address,
			&farm.CreatedAt,
			&farm.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning farm: %v", err)
		}
		farms = append(farms, farm)
	}

	return farms, rows.Err()
}

func (s *PostgresStorage) UpdateFarm(ctx context.Context, farm *models.Farm) error {
	query := `
		UPDATE farms
		SET name = $1, crop_type = $2, latitude = $3, longitude = $4, area_hectares = $5, location_address = $6, updated_at = $7
		WHERE id = $8`

	farm.UpdatedAt = time.Now()
	result, err := s.db.ExecContext(ctx, query,
		farm.Name,
		farm.CropType,
		farm.Latitude,
		farm.Longitude,
		farm.Area,
		farm.Address,
		farm.UpdatedAt,
		farm.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating farm: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) DeleteFarm(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM farms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting farm: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) SaveAnalysis(ctx context.Context, analysis *models.SatelliteAnalysis) error {
	query := `
		INSERT INTO satellite_analysis (id, farm_id, ndvi, evi, savi, ndwi, health_score, issues, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.FarmID,
		analysis.NDVI,
		analysis.EVI,
		analysis.SAVI,
		analysis.NDWI,
		analysis.HealthScore,
		pq.Array(analysis.Issues),
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving analysis: %v", err)
	}

	return nil
}

func (s *PostgresStorage) LatestAnalysis(ctx context.Context, farmID string) (*models.SatelliteAnalysis, error) {
	query := `
		SELECT id, farm_id, ndvi, evi, savi, ndwi, health_score, issues, created_at
		FROM satellite_analysis
		WHERE farm_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	analysis := &models.SatelliteAnalysis{}
	err := s.db.QueryRowContext(ctx, query, farmID).Scan(
		&analysis.ID,
		&analysis.FarmID,
		&analysis.NDVI,
		&analysis.EVI,
		&analysis.SAVI,
		&analysis.NDWI,
		&analysis.HealthScore,
		pq.Array(&analysis.Issues),
		&analysis.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying latest analysis: %v", err)
	}

	return analysis, nil
}

func (s *PostgresStorage) Trend(ctx context.Context, farmID string, limit int) ([]models.TrendPoint, error) {
	query := `
		SELECT created_at, ndvi
		FROM satellite_analysis
		WHERE farm_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, farmID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying trend: %v", err)
	}
	defer rows.Close()

	points := []models.TrendPoint{}
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Date, &p.Value); err != nil {
			return nil, fmt.Errorf("error scanning trend point: %v", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first so trend direction reads naturally
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
