package client

import "errors"

var (
	// ErrConnectivity сервер недоступен; очередь не изменяется
	ErrConnectivity     = errors.New("нет соединения с сервером")
	ErrSyncInProgress   = errors.New("синхронизация уже выполняется")
	ErrSyncRejected     = errors.New("сервер отклонил пакет")
	ErrNotFound         = errors.New("запись не найдена")
	ErrNotAuthenticated = errors.New("требуется вход: farmsurvey auth login")
)
