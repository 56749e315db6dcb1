package survey

import "time"

// Resolve решает судьбу входящей записи при сравнении с уже сохраненной.
//
// existing == nil означает, что записи с такой парой (client_id, device_id) нет.
// Входящая запись побеждает только если ее clientTimestamp строго новее;
// при равенстве сохраняется существующая запись, поэтому повторная отправка
// уже примененной записи ничего не меняет.
func Resolve(existing, incoming *Survey) Outcome {
	if existing == nil {
		return OutcomeInserted
	}
	if NormalizeTime(incoming.ClientTimestamp).After(NormalizeTime(existing.ClientTimestamp)) {
		return OutcomeUpdated
	}
	return OutcomeRejected
}

// Merge переносит содержательные поля входящей записи в сохраненную.
// Серверный идентификатор, created_at и пара идентичности не меняются.
func Merge(stored, incoming *Survey, actor string, now time.Time) {
	stored.UserID = incoming.UserID
	stored.FarmerName = incoming.FarmerName
	stored.HouseholdSize = incoming.HouseholdSize
	stored.Phone = incoming.Phone
	stored.Village = incoming.Village
	stored.Island = incoming.Island
	stored.Latitude = incoming.Latitude
	stored.Longitude = incoming.Longitude
	stored.GPSAccuracy = incoming.GPSAccuracy
	stored.FarmSize = incoming.FarmSize
	stored.Crops = incoming.Crops
	stored.Livestock = incoming.Livestock
	stored.PestIssues = incoming.PestIssues
	stored.PestSeverity = incoming.PestSeverity
	stored.PestDescription = incoming.PestDescription
	stored.TreatmentUsed = incoming.TreatmentUsed
	stored.HarvestDate = incoming.HarvestDate
	stored.Notes = incoming.Notes
	stored.ClientTimestamp = NormalizeTime(incoming.ClientTimestamp)
	stored.ServerTimestamp = NextServerTimestamp(stored.ServerTimestamp, now)
	stored.SyncedAt = &now
	stored.SyncedBy = actor
}

// NextServerTimestamp не дает серверной метке уменьшиться при скачке часов назад
func NextServerTimestamp(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
