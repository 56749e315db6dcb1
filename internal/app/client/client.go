package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	gosync "sync"
	"time"

	"farmsurvey/internal/app/client/config"
	"farmsurvey/internal/domain/survey"
	syncdomain "farmsurvey/internal/domain/sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
	storage    Storage
	syncer     *Syncer
	login      string
	wg         gosync.WaitGroup
	cancel     context.CancelFunc
	mu         gosync.RWMutex
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации локального хранилища: %w", err)
	}

	app := newApp(cfg, log, storage, NewHTTPClient(cfg, log))
	if err := app.restoreSession(context.Background()); err != nil {
		log.Warn("Не удалось восстановить сессию", "error", err)
	}
	return app, nil
}

func newApp(cfg *config.Config, log *slog.Logger, storage Storage, httpCl *httpClient) *App {
	app := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		storage:    storage,
	}
	app.syncer = NewSyncer(storage, httpCl, app.Actor, cfg.SyncTimeout, log)
	return app
}

// AddSurvey ставит новую запись в очередь; идентичность и время выставляются здесь
func (a *App) AddSurvey(ctx context.Context, s *survey.Survey) (*LocalSurvey, error) {
	deviceID, err := a.storage.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	if s.ClientID == "" {
		s.ClientID = uuid.NewString()
	}
	s.DeviceID = deviceID
	s.UserID = a.actorOrAnonymous()
	s.ClientTimestamp = time.Now()

	rec := &LocalSurvey{Survey: *s}
	if err := a.save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EditSurvey изменяет запись и снова ставит ее в очередь с более поздней меткой времени.
// Если edit вернул ошибку, запись не сохраняется.
func (a *App) EditSurvey(ctx context.Context, clientID string, edit func(*survey.Survey) error) (*LocalSurvey, error) {
	rec, err := a.storage.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	prev := rec.ClientTimestamp
	if err := edit(&rec.Survey); err != nil {
		return nil, err
	}
	rec.ClientID, rec.DeviceID = strings.TrimSpace(rec.ClientID), strings.TrimSpace(rec.DeviceID)
	rec.UserID = a.actorOrAnonymous()
	rec.ClientTimestamp = nextTimestamp(prev, time.Now())
	rec.Photos = nil

	if err := a.save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AttachPhoto добавляет фотографию; запись повторно уходит на сервер,
// где фотографии дописываются при любом исходе
func (a *App) AttachPhoto(ctx context.Context, clientID string, data []byte, photoType, caption string) error {
	if len(data) == 0 {
		return errors.New("пустой файл фотографии")
	}

	rec, err := a.storage.Get(ctx, clientID)
	if err != nil {
		return err
	}

	if photoType == "" {
		photoType = syncdomain.DefaultPhotoType
	}
	sum := sha256.Sum256(data)
	rec.Photos = []survey.Photo{{
		Type:     photoType,
		Caption:  caption,
		Data:     data,
		Checksum: hex.EncodeToString(sum[:]),
	}}

	return a.storage.Save(ctx, rec)
}

func (a *App) GetSurvey(ctx context.Context, clientID string) (*LocalSurvey, error) {
	return a.storage.Get(ctx, clientID)
}

func (a *App) ListSurveys(ctx context.Context, filter ListFilter) ([]LocalSurvey, error) {
	return a.storage.List(ctx, filter)
}

// DeleteSurvey удаляет запись локально вместе с фотографиями
func (a *App) DeleteSurvey(ctx context.Context, clientID string) error {
	rec, err := a.storage.Get(ctx, clientID)
	if err != nil {
		return err
	}
	return a.storage.Delete(ctx, rec.ClientID)
}

func (a *App) LocalStats(ctx context.Context) (LocalStats, error) {
	return a.storage.Stats(ctx)
}

func (a *App) DeviceID(ctx context.Context) (string, error) {
	return a.storage.DeviceID(ctx)
}

func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	return a.syncer.Sync(ctx)
}

func (a *App) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	return a.syncer.Status(ctx)
}

// StartAutoSync запускает фоновую синхронизацию; останавливается через StopAutoSync
func (a *App) StartAutoSync(ctx context.Context, onResult func(*SyncResult, error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.syncer.Watch(ctx, a.config.SyncInterval, onResult)
	}()
}

func (a *App) StopAutoSync() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// CheckConnection проверяет доступность сервера
func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

func (a *App) Register(ctx context.Context, login, password string) error {
	return a.httpClient.Register(ctx, login, password)
}

// Login получает токен и запоминает логин как автора синхронизаций
func (a *App) Login(ctx context.Context, login, password string) error {
	token, err := a.httpClient.Login(ctx, login, password)
	if err != nil {
		return err
	}

	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	if err := a.storage.SetMeta(ctx, metaActor, login); err != nil {
		return err
	}

	a.mu.Lock()
	a.login = login
	a.mu.Unlock()
	return nil
}

// Logout забывает токен; дальнейшие синхронизации идут от anonymous
func (a *App) Logout(ctx context.Context) error {
	if err := os.Remove(a.config.TokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	if err := a.storage.SetMeta(ctx, metaActor, ""); err != nil {
		return err
	}

	a.httpClient.SetToken("")
	a.mu.Lock()
	a.login = ""
	a.mu.Unlock()
	return nil
}

func (a *App) IsAuthenticated() bool {
	return a.Actor() != ""
}

// Actor логин текущего пользователя, пусто если вход не выполнен
func (a *App) Actor() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.login
}

func (a *App) Close() error {
	a.StopAutoSync()
	return a.storage.Close()
}

func (a *App) restoreSession(ctx context.Context) error {
	token, err := os.ReadFile(a.config.TokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	login, err := a.storage.GetMeta(ctx, metaActor)
	if err != nil {
		return err
	}

	a.httpClient.SetToken(strings.TrimSpace(string(token)))
	a.mu.Lock()
	a.login = login
	a.mu.Unlock()
	return nil
}

func (a *App) actorOrAnonymous() string {
	if login := a.Actor(); login != "" {
		return login
	}
	return syncdomain.AnonymousActor
}

func (a *App) save(ctx context.Context, rec *LocalSurvey) error {
	survey.Normalize(&rec.Survey)
	if err := survey.Validate(&rec.Survey); err != nil {
		return err
	}
	return a.storage.Save(ctx, rec)
}

// nextTimestamp гарантирует, что правка получит метку строго позже предыдущей
func nextTimestamp(prev, now time.Time) time.Time {
	now = survey.NormalizeTime(now)
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}
