package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmsurvey/internal/domain/survey"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/slog"
)

var tracer = otel.Tracer("postgres")

const surveyColumns = `
	id, client_id, device_id, user_id, farmer_name, household_size,
	COALESCE(phone, ''), COALESCE(village, ''), COALESCE(island, ''),
	latitude, longitude, gps_accuracy, farm_size, crops, livestock,
	COALESCE(pest_issues, ''), COALESCE(pest_severity, ''), COALESCE(pest_description, ''),
	COALESCE(treatment_used, ''), harvest_date, COALESCE(notes, ''),
	client_timestamp, server_timestamp, created_at, synced_at, COALESCE(synced_by, '')`

const insertPhotoQuery = `
	INSERT INTO photos (survey_id, photo_data, photo_type, caption, checksum)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	ON CONFLICT (survey_id, checksum) DO NOTHING`

// maxNearby ограничивает выдачу поиска по радиусу
const maxNearby = 200

type rowScanner interface {
	Scan(dest ...any) error
}

type SurveyRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSurveyRepository(pool *pgxpool.Pool, log *slog.Logger) *SurveyRepository {
	return &SurveyRepository{
		pool: pool,
		log:  log.With("component", "survey_repository"),
	}
}

// Upsert применяет запись в одной транзакции: строка с той же парой
// (client_id, device_id) блокируется до решения, поэтому параллельные
// отправки одной записи сериализуются и не создают дубликатов.
func (r *SurveyRepository) Upsert(ctx context.Context, s *survey.Survey, actor string) (_ *survey.UpsertResult, err error) {
	ctx, span := tracer.Start(ctx, "SurveyRepository.Upsert")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("survey.client_id", s.ClientID),
		attribute.String("survey.device_id", s.DeviceID),
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	existing, err := r.lockByIdentity(ctx, tx, s.ClientID, s.DeviceID)
	if err != nil {
		return nil, err
	}

	var (
		stored  *survey.Survey
		outcome survey.Outcome
	)

	if existing == nil {
		stored, err = r.insert(ctx, tx, s, actor)
		switch {
		case err == nil:
			outcome = survey.OutcomeInserted
		case errors.Is(err, pgx.ErrNoRows):
			// параллельная транзакция вставила запись первой
			existing, err = r.lockByIdentity(ctx, tx, s.ClientID, s.DeviceID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, fmt.Errorf("upsert survey %s/%s: row vanished after conflict", s.ClientID, s.DeviceID)
			}
		default:
			return nil, err
		}
	}

	if existing != nil {
		outcome = survey.Resolve(existing, s)
		stored = existing
		if outcome == survey.OutcomeUpdated {
			survey.Merge(existing, s, actor, time.Now().UTC())
			if stored, err = r.update(ctx, tx, existing); err != nil {
				return nil, err
			}
		}
	}

	added, skipped, err := r.addPhotos(ctx, tx, stored.ID, s.Photos)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}
	span.SetAttributes(attribute.String("survey.outcome", string(outcome)))

	r.log.Debug("survey upserted",
		"id", stored.ID, "client_id", stored.ClientID, "device_id", stored.DeviceID,
		"outcome", outcome, "photos_added", added, "photos_skipped", skipped)

	return &survey.UpsertResult{
		Survey:        stored,
		Outcome:       outcome,
		PhotosAdded:   added,
		PhotosSkipped: skipped,
	}, nil
}

func (r *SurveyRepository) lockByIdentity(ctx context.Context, tx pgx.Tx, clientID, deviceID string) (*survey.Survey, error) {
	query := `SELECT ` + surveyColumns + `
		FROM surveys
		WHERE client_id = $1 AND device_id = $2
		FOR UPDATE`

	s, err := scanSurvey(tx.QueryRow(ctx, query, clientID, deviceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock survey: %w", err)
	}
	return s, nil
}

// insert возвращает pgx.ErrNoRows, если пара идентичности уже занята
func (r *SurveyRepository) insert(ctx context.Context, tx pgx.Tx, s *survey.Survey, actor string) (*survey.Survey, error) {
	query := `
		INSERT INTO surveys (
			client_id, device_id, user_id, farmer_name, household_size, phone, village, island,
			latitude, longitude, gps_accuracy, farm_size, crops, livestock,
			pest_issues, pest_severity, pest_description, treatment_used, harvest_date, notes,
			client_timestamp, synced_at, synced_by)
		VALUES (
			$1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			$9, $10, $11, $12, $13, $14,
			NULLIF($15, ''), NULLIF($16, ''), NULLIF($17, ''), NULLIF($18, ''), $19, NULLIF($20, ''),
			$21, NOW(), $22)
		ON CONFLICT (client_id, device_id) DO NOTHING
		RETURNING ` + surveyColumns

	crops, livestock, err := encodeJSON(s)
	if err != nil {
		return nil, err
	}

	stored, err := scanSurvey(tx.QueryRow(ctx, query,
		s.ClientID, s.DeviceID, s.UserID, s.FarmerName, s.HouseholdSize, s.Phone, s.Village, s.Island,
		s.Latitude, s.Longitude, s.GPSAccuracy, s.FarmSize, crops, livestock,
		s.PestIssues, s.PestSeverity, s.PestDescription, s.TreatmentUsed, s.HarvestDate, s.Notes,
		survey.NormalizeTime(s.ClientTimestamp), actor,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error("failed to insert survey",
			"client_id", s.ClientID, "device_id", s.DeviceID, "error", err)
		return nil, fmt.Errorf("insert survey: %w", err)
	}
	return stored, nil
}

func (r *SurveyRepository) update(ctx context.Context, tx pgx.Tx, s *survey.Survey) (*survey.Survey, error) {
	query := `
		UPDATE surveys SET
			user_id = $2, farmer_name = $3, household_size = $4,
			phone = NULLIF($5, ''), village = NULLIF($6, ''), island = NULLIF($7, ''),
			latitude = $8, longitude = $9, gps_accuracy = $10, farm_size = $11,
			crops = $12, livestock = $13,
			pest_issues = NULLIF($14, ''), pest_severity = NULLIF($15, ''),
			pest_description = NULLIF($16, ''), treatment_used = NULLIF($17, ''),
			harvest_date = $18, notes = NULLIF($19, ''),
			client_timestamp = $20,
			server_timestamp = GREATEST(NOW(), server_timestamp),
			synced_at = NOW(), synced_by = $21
		WHERE id = $1
		RETURNING ` + surveyColumns

	crops, livestock, err := encodeJSON(s)
	if err != nil {
		return nil, err
	}

	stored, err := scanSurvey(tx.QueryRow(ctx, query,
		s.ID, s.UserID, s.FarmerName, s.HouseholdSize,
		s.Phone, s.Village, s.Island,
		s.Latitude, s.Longitude, s.GPSAccuracy, s.FarmSize,
		crops, livestock,
		s.PestIssues, s.PestSeverity, s.PestDescription, s.TreatmentUsed,
		s.HarvestDate, s.Notes, s.ClientTimestamp, s.SyncedBy,
	))
	if err != nil {
		r.log.Error("failed to update survey", "id", s.ID, "error", err)
		return nil, fmt.Errorf("update survey: %w", err)
	}
	return stored, nil
}

// addPhotos добавляет фотографии; совпадающие по контрольной сумме пропускаются
func (r *SurveyRepository) addPhotos(ctx context.Context, tx pgx.Tx, surveyID int64, photos []survey.Photo) (added, skipped int, err error) {
	if len(photos) == 0 {
		return 0, 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range photos {
		batch.Queue(insertPhotoQuery, surveyID, p.Data, p.Type, p.Caption, p.Checksum)
	}

	br := tx.SendBatch(ctx, batch)
	for range photos {
		tag, execErr := br.Exec()
		if execErr != nil {
			_ = br.Close()
			return 0, 0, fmt.Errorf("insert photo: %w", execErr)
		}
		if tag.RowsAffected() == 1 {
			added++
		} else {
			skipped++
		}
	}

	if err := br.Close(); err != nil {
		return 0, 0, fmt.Errorf("insert photos: %w", err)
	}
	return added, skipped, nil
}

func (r *SurveyRepository) GetByID(ctx context.Context, id int64) (*survey.Survey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = $1`

	s, err := scanSurvey(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, survey.ErrNotFound
		}
		r.log.Error("failed to get survey", "id", id, "error", err)
		return nil, fmt.Errorf("get survey: %w", err)
	}

	photos, err := r.photos(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Photos = photos

	return s, nil
}

func (r *SurveyRepository) photos(ctx context.Context, surveyID int64) ([]survey.Photo, error) {
	const query = `
		SELECT id, survey_id, photo_type, COALESCE(caption, ''), checksum, created_at
		FROM photos
		WHERE survey_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	photos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (survey.Photo, error) {
		var p survey.Photo
		err := row.Scan(&p.ID, &p.SurveyID, &p.Type, &p.Caption, &p.Checksum, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan photos: %w", err)
	}
	return photos, nil
}

// Delete удаляет запись; фотографии удаляются каскадно внешним ключом
func (r *SurveyRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM surveys WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("failed to delete survey", "id", id, "error", err)
		return fmt.Errorf("delete survey: %w", err)
	}

	if result.RowsAffected() == 0 {
		return survey.ErrNotFound
	}

	return nil
}

func (r *SurveyRepository) List(ctx context.Context, filter survey.Filter) (*survey.Page, error) {
	where, args := filterClause(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM surveys`+where, args...).Scan(&total); err != nil {
		r.log.Error("failed to count surveys", "error", err)
		return nil, fmt.Errorf("count surveys: %w", err)
	}

	query := `SELECT ` + surveyColumns + ` FROM surveys` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list surveys", "error", err)
		return nil, fmt.Errorf("list surveys: %w", err)
	}

	surveys, err := collectSurveys(rows)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}

	return &survey.Page{
		Surveys:    surveys,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func filterClause(f survey.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Search != "" {
		add("(farmer_name ILIKE $%[1]d OR village ILIKE $%[1]d OR island ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if f.Island != "" {
		add("island = $%d", f.Island)
	}
	if f.Village != "" {
		add("village ILIKE $%d", f.Village)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.StartDate != nil {
		add("created_at >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("created_at <= $%d", *f.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FindNearby отбирает кандидатов по полосе широт и считает точное расстояние гаверсинусом
func (r *SurveyRepository) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]survey.Nearby, error) {
	query := `
		SELECT * FROM (
			SELECT ` + surveyColumns + `,
				2 * 6371 * ASIN(LEAST(1, SQRT(
					POWER(SIN(RADIANS(latitude - $1) / 2), 2) +
					COS(RADIANS($1)) * COS(RADIANS(latitude)) *
					POWER(SIN(RADIANS(longitude - $2) / 2), 2)
				))) AS distance_km
			FROM surveys
			WHERE latitude IS NOT NULL AND longitude IS NOT NULL
				AND latitude BETWEEN $3 AND $4
		) candidates
		WHERE distance_km <= $5
		ORDER BY distance_km, id
		LIMIT $6`

	minLat, maxLat := survey.LatitudeBounds(lat, radiusKm)

	rows, err := r.pool.Query(ctx, query, lat, lng, minLat, maxLat, radiusKm, maxNearby)
	if err != nil {
		r.log.Error("failed to find nearby surveys", "lat", lat, "lng", lng, "error", err)
		return nil, fmt.Errorf("find nearby: %w", err)
	}

	nearby, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (survey.Nearby, error) {
		var distance float64
		s, err := scanSurvey(row, &distance)
		if err != nil {
			return survey.Nearby{}, err
		}
		return survey.Nearby{Survey: *s, DistanceKm: distance}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan nearby: %w", err)
	}
	return nearby, nil
}

func (r *SurveyRepository) Statistics(ctx context.Context) (*survey.Statistics, error) {
	const totalsQuery = `
		SELECT
			COUNT(*),
			COALESCE(SUM(farm_size), 0),
			COUNT(DISTINCT user_id) FILTER (WHERE user_id <> 'anonymous'),
			COALESCE(AVG(farm_size), 0),
			COUNT(DISTINCT island),
			COUNT(DISTINCT village),
			COUNT(*) FILTER (WHERE pest_issues IS NOT NULL AND pest_issues <> 'none'),
			COALESCE(SUM((livestock->>'cattle')::int), 0),
			COALESCE(SUM((livestock->>'pigs')::int), 0),
			COALESCE(SUM((livestock->>'poultry')::int), 0),
			COALESCE(SUM((livestock->>'goats')::int), 0)
		FROM surveys`

	var st survey.Statistics
	err := r.pool.QueryRow(ctx, totalsQuery).Scan(
		&st.TotalSurveys, &st.TotalFarmArea, &st.ActiveEnumerators, &st.AvgFarmSize,
		&st.IslandsCovered, &st.VillagesCovered, &st.SurveysWithPests,
		&st.Livestock.Cattle, &st.Livestock.Pigs, &st.Livestock.Poultry, &st.Livestock.Goats,
	)
	if err != nil {
		r.log.Error("failed to compute statistics", "error", err)
		return nil, fmt.Errorf("statistics totals: %w", err)
	}

	if st.Crops, err = r.counts(ctx, `
		SELECT crop, COUNT(*)
		FROM surveys, jsonb_array_elements_text(crops) AS crop
		GROUP BY crop
		ORDER BY COUNT(*) DESC, crop
		LIMIT 20`); err != nil {
		return nil, fmt.Errorf("statistics crops: %w", err)
	}

	if st.Islands, err = r.counts(ctx, `
		SELECT island, COUNT(*)
		FROM surveys
		WHERE island IS NOT NULL
		GROUP BY island
		ORDER BY COUNT(*) DESC, island`); err != nil {
		return nil, fmt.Errorf("statistics islands: %w", err)
	}

	if st.Villages, err = r.counts(ctx, `
		SELECT village, COUNT(*)
		FROM surveys
		WHERE village IS NOT NULL
		GROUP BY village
		ORDER BY COUNT(*) DESC, village
		LIMIT 10`); err != nil {
		return nil, fmt.Errorf("statistics villages: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT pest_issues, COALESCE(pest_severity, 'none'), COUNT(*)
		FROM surveys
		WHERE pest_issues IS NOT NULL AND pest_issues <> 'none'
		GROUP BY 1, 2
		ORDER BY 3 DESC, 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("statistics pests: %w", err)
	}
	if st.Pests, err = pgx.CollectRows(rows, pgx.RowToStructByPos[survey.PestCount]); err != nil {
		return nil, fmt.Errorf("statistics pests: %w", err)
	}

	return &st, nil
}

func (r *SurveyRepository) counts(ctx context.Context, query string) ([]survey.Count, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[survey.Count])
}

func collectSurveys(rows pgx.Rows) ([]survey.Survey, error) {
	surveys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (survey.Survey, error) {
		s, err := scanSurvey(row)
		if err != nil {
			return survey.Survey{}, err
		}
		return *s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan surveys: %w", err)
	}
	return surveys, nil
}

// scanSurvey читает колонки surveyColumns; extra дописываются в конец списка приемников
func scanSurvey(row rowScanner, extra ...any) (*survey.Survey, error) {
	var (
		s         survey.Survey
		crops     []byte
		livestock []byte
	)

	dest := []any{
		&s.ID, &s.ClientID, &s.DeviceID, &s.UserID, &s.FarmerName, &s.HouseholdSize,
		&s.Phone, &s.Village, &s.Island,
		&s.Latitude, &s.Longitude, &s.GPSAccuracy, &s.FarmSize, &crops, &livestock,
		&s.PestIssues, &s.PestSeverity, &s.PestDescription,
		&s.TreatmentUsed, &s.HarvestDate, &s.Notes,
		&s.ClientTimestamp, &s.ServerTimestamp, &s.CreatedAt, &s.SyncedAt, &s.SyncedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(crops, &s.Crops); err != nil {
		return nil, fmt.Errorf("decode crops: %w", err)
	}
	if s.Crops == nil {
		s.Crops = []string{}
	}
	if err := json.Unmarshal(livestock, &s.Livestock); err != nil {
		return nil, fmt.Errorf("decode livestock: %w", err)
	}

	s.ClientTimestamp = s.ClientTimestamp.UTC()
	s.ServerTimestamp = s.ServerTimestamp.UTC()
	s.CreatedAt = s.CreatedAt.UTC()

	return &s, nil
}

func encodeJSON(s *survey.Survey) (crops, livestock string, err error) {
	cropList := s.Crops
	if cropList == nil {
		cropList = []string{}
	}
	c, err := json.Marshal(cropList)
	if err != nil {
		return "", "", fmt.Errorf("encode crops: %w", err)
	}
	l, err := json.Marshal(s.Livestock)
	if err != nil {
		return "", "", fmt.Errorf("encode livestock: %w", err)
	}
	return string(c), string(l), nil
}
