package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmsurvey/internal/domain/survey"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	metaDeviceID    = "device_id"
	metaActor       = "actor"
	metaLastAttempt = "last_attempt"
	metaLastSuccess = "last_success"
	metaLastError   = "last_error"
)

var ErrAmbiguousID = errors.New("идентификатор подходит к нескольким записям")

// Storage локальная очередь записей устройства
type Storage interface {
	Save(ctx context.Context, s *LocalSurvey) error
	Get(ctx context.Context, clientID string) (*LocalSurvey, error)
	List(ctx context.Context, filter ListFilter) ([]LocalSurvey, error)
	Pending(ctx context.Context) ([]LocalSurvey, error)
	MarkSynced(ctx context.Context, marks []SyncedMark) (int, error)
	Delete(ctx context.Context, clientID string) error
	Stats(ctx context.Context) (LocalStats, error)
	DeviceID(ctx context.Context) (string, error)
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
	Close() error
}

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS surveys (
			client_id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			farmer_name TEXT NOT NULL,
			household_size INTEGER,
			phone TEXT NOT NULL DEFAULT '',
			village TEXT NOT NULL DEFAULT '',
			island TEXT NOT NULL DEFAULT '',
			latitude REAL,
			longitude REAL,
			gps_accuracy REAL,
			farm_size REAL,
			crops TEXT NOT NULL DEFAULT '[]',
			livestock TEXT NOT NULL DEFAULT '{}',
			pest_issues TEXT NOT NULL DEFAULT '',
			pest_severity TEXT NOT NULL DEFAULT '',
			pest_description TEXT NOT NULL DEFAULT '',
			treatment_used TEXT NOT NULL DEFAULT '',
			harvest_date INTEGER,
			notes TEXT NOT NULL DEFAULT '',
			client_timestamp INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			revision INTEGER NOT NULL DEFAULT 1,
			synced INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_surveys_synced ON surveys(synced);
		CREATE INDEX IF NOT EXISTS idx_surveys_updated ON surveys(updated_at);

		CREATE TABLE IF NOT EXISTS photos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id TEXT NOT NULL REFERENCES surveys(client_id) ON DELETE CASCADE,
			photo_type TEXT NOT NULL,
			caption TEXT NOT NULL DEFAULT '',
			data BLOB NOT NULL,
			checksum TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE (client_id, checksum)
		);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	return s.ensureRevision()
}

// ensureRevision добавляет счетчик версий в базы, созданные до его появления
func (s *SQLiteStorage) ensureRevision() error {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('surveys') WHERE name = 'revision'`).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = s.db.Exec(`ALTER TABLE surveys ADD COLUMN revision INTEGER NOT NULL DEFAULT 1`)
	return err
}

// Save создает или заменяет запись и снова ставит ее в очередь.
// Фотографии только добавляются. Каждое сохранение увеличивает rec.Revision.
func (s *SQLiteStorage) Save(ctx context.Context, rec *LocalSurvey) error {
	crops, err := json.Marshal(rec.Crops)
	if err != nil {
		return fmt.Errorf("ошибка сериализации культур: %w", err)
	}
	livestock, err := json.Marshal(rec.Livestock)
	if err != nil {
		return fmt.Errorf("ошибка сериализации скота: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.Synced = false

	err = tx.QueryRowContext(ctx, `
		INSERT INTO surveys (
			client_id, device_id, user_id, farmer_name, household_size, phone, village, island,
			latitude, longitude, gps_accuracy, farm_size, crops, livestock,
			pest_issues, pest_severity, pest_description, treatment_used, harvest_date, notes,
			client_timestamp, created_at, updated_at, synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (client_id) DO UPDATE SET
			user_id = excluded.user_id,
			farmer_name = excluded.farmer_name,
			household_size = excluded.household_size,
			phone = excluded.phone,
			village = excluded.village,
			island = excluded.island,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			gps_accuracy = excluded.gps_accuracy,
			farm_size = excluded.farm_size,
			crops = excluded.crops,
			livestock = excluded.livestock,
			pest_issues = excluded.pest_issues,
			pest_severity = excluded.pest_severity,
			pest_description = excluded.pest_description,
			treatment_used = excluded.treatment_used,
			harvest_date = excluded.harvest_date,
			notes = excluded.notes,
			client_timestamp = excluded.client_timestamp,
			updated_at = excluded.updated_at,
			revision = surveys.revision + 1,
			synced = 0
		RETURNING revision`,
		rec.ClientID, rec.DeviceID, rec.UserID, rec.FarmerName, rec.HouseholdSize, rec.Phone, rec.Village, rec.Island,
		rec.Latitude, rec.Longitude, rec.GPSAccuracy, rec.FarmSize, string(crops), string(livestock),
		rec.PestIssues, rec.PestSeverity, rec.PestDescription, rec.TreatmentUsed, millisPtr(rec.HarvestDate), rec.Notes,
		rec.ClientTimestamp.UnixMilli(), rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(),
	).Scan(&rec.Revision)
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	for _, ph := range rec.Photos {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO photos (client_id, photo_type, caption, data, checksum, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ClientID, ph.Type, ph.Caption, ph.Data, ph.Checksum, now.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("ошибка сохранения фотографии: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

const surveyColumns = `client_id, device_id, user_id, farmer_name, household_size, phone, village, island,
	latitude, longitude, gps_accuracy, farm_size, crops, livestock,
	pest_issues, pest_severity, pest_description, treatment_used, harvest_date, notes,
	client_timestamp, created_at, updated_at, revision, synced`

// Get ищет запись по полному идентификатору или его началу
func (s *SQLiteStorage) Get(ctx context.Context, clientID string) (*LocalSurvey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE client_id = ? OR client_id LIKE ? || '%' LIMIT 2`,
		clientID, clientID)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска записи: %w", err)
	}
	defer rows.Close()

	var found []LocalSurvey
	for rows.Next() {
		rec, err := scanLocal(rows)
		if err != nil {
			return nil, err
		}
		if rec.ClientID == clientID {
			found = []LocalSurvey{*rec}
			break
		}
		found = append(found, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения записи: %w", err)
	}
	rows.Close()

	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
	default:
		return nil, ErrAmbiguousID
	}

	rec := &found[0]
	if rec.Photos, err = s.photos(ctx, rec.ClientID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStorage) List(ctx context.Context, filter ListFilter) ([]LocalSurvey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys`
	var args []any
	if filter.PendingOnly {
		query += ` WHERE synced = 0`
	}
	query += ` ORDER BY updated_at DESC, client_id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	return s.query(ctx, query, args...)
}

// Pending все неотправленные записи вместе с фотографиями, в порядке создания
func (s *SQLiteStorage) Pending(ctx context.Context) ([]LocalSurvey, error) {
	records, err := s.query(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE synced = 0 ORDER BY created_at, client_id`)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Photos, err = s.photos(ctx, records[i].ClientID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// MarkSynced отмечает записи, которые не сохранялись повторно с момента отправки.
// Правка или новая фотография во время синхронизации оставляют запись в очереди.
func (s *SQLiteStorage) MarkSynced(ctx context.Context, marks []SyncedMark) (int, error) {
	if len(marks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	marked := 0
	for _, m := range marks {
		res, err := tx.ExecContext(ctx,
			`UPDATE surveys SET synced = 1 WHERE client_id = ? AND revision = ? AND synced = 0`,
			m.ClientID, m.Revision)
		if err != nil {
			return 0, fmt.Errorf("ошибка отметки записи %s: %w", m.ClientID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("ошибка отметки записи %s: %w", m.ClientID, err)
		}
		marked += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return marked, nil
}

// Delete удаляет запись вместе с ее фотографиями
func (s *SQLiteStorage) Delete(ctx context.Context, clientID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM surveys WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) Stats(ctx context.Context) (LocalStats, error) {
	var st LocalStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN synced = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(farm_size), 0)
		FROM surveys`).Scan(&st.Total, &st.Pending, &st.TotalArea)
	if err != nil {
		return st, fmt.Errorf("ошибка подсчета статистики: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT c.value
		FROM surveys, json_each(surveys.crops) AS c
		GROUP BY c.value
		ORDER BY COUNT(*) DESC, c.value
		LIMIT 1`).Scan(&st.TopCrop)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("ошибка подсчета культур: %w", err)
	}

	return st, nil
}

// DeviceID возвращает идентификатор устройства, создавая его при первом обращении
func (s *SQLiteStorage) DeviceID(ctx context.Context) (string, error) {
	id, err := s.GetMeta(ctx, metaDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (key, value) VALUES (?, ?)`, metaDeviceID, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("ошибка сохранения идентификатора устройства: %w", err)
	}
	return s.GetMeta(ctx, metaDeviceID)
}

// GetMeta возвращает пустую строку для отсутствующего ключа
func (s *SQLiteStorage) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStorage) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) query(ctx context.Context, query string, args ...any) ([]LocalSurvey, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки записей: %w", err)
	}
	defer rows.Close()

	var records []LocalSurvey
	for rows.Next() {
		rec, err := scanLocal(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка выборки записей: %w", err)
	}
	return records, nil
}

func (s *SQLiteStorage) photos(ctx context.Context, clientID string) ([]survey.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, photo_type, caption, data, checksum, created_at
		FROM photos WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения фотографий: %w", err)
	}
	defer rows.Close()

	var photos []survey.Photo
	for rows.Next() {
		var (
			ph      survey.Photo
			created int64
		)
		if err := rows.Scan(&ph.ID, &ph.Type, &ph.Caption, &ph.Data, &ph.Checksum, &created); err != nil {
			return nil, fmt.Errorf("ошибка чтения фотографии: %w", err)
		}
		ph.CreatedAt = time.UnixMilli(created).UTC()
		photos = append(photos, ph)
	}
	return photos, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLocal(row scanner) (*LocalSurvey, error) {
	var (
		rec                        LocalSurvey
		household                  sql.NullInt64
		lat, lng, accuracy, area   sql.NullFloat64
		harvest                    sql.NullInt64
		crops, livestock           string
		clientTS, created, updated int64
	)

	err := row.Scan(
		&rec.ClientID, &rec.DeviceID, &rec.UserID, &rec.FarmerName, &household, &rec.Phone, &rec.Village, &rec.Island,
		&lat, &lng, &accuracy, &area, &crops, &livestock,
		&rec.PestIssues, &rec.PestSeverity, &rec.PestDescription, &rec.TreatmentUsed, &harvest, &rec.Notes,
		&clientTS, &created, &updated, &rec.Revision, &rec.Synced,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения записи: %w", err)
	}

	if err := json.Unmarshal([]byte(crops), &rec.Crops); err != nil {
		return nil, fmt.Errorf("ошибка разбора культур: %w", err)
	}
	if err := json.Unmarshal([]byte(livestock), &rec.Livestock); err != nil {
		return nil, fmt.Errorf("ошибка разбора скота: %w", err)
	}

	if household.Valid {
		v := int(household.Int64)
		rec.HouseholdSize = &v
	}
	rec.Latitude = floatPtr(lat)
	rec.Longitude = floatPtr(lng)
	rec.GPSAccuracy = floatPtr(accuracy)
	rec.FarmSize = floatPtr(area)
	if harvest.Valid {
		d := time.UnixMilli(harvest.Int64).UTC()
		rec.HarvestDate = &d
	}

	rec.ClientTimestamp = time.UnixMilli(clientTS).UTC()
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return &rec, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func millisPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
