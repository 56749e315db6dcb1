package survey

import (
	"farmsurvey/internal/domain/survey"

	"github.com/danielgtaylor/huma/v2"
)

// FilterParams общие параметры выборки для списка и экспорта
type FilterParams struct {
	Search    string `query:"search" doc:"Поиск по имени фермера, деревне и острову"`
	Island    string `query:"island"`
	Village   string `query:"village"`
	UserID    string `query:"user_id" doc:"Логин счетчика"`
	StartDate string `query:"start_date" doc:"Начало периода: YYYY-MM-DD или RFC 3339"`
	EndDate   string `query:"end_date" doc:"Конец периода включительно: YYYY-MM-DD или RFC 3339"`
}

type listInput struct {
	FilterParams
	Page  int `query:"page" minimum:"1" default:"1"`
	Limit int `query:"limit" minimum:"1" maximum:"200" default:"50"`
}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Status     string          `json:"status"`
	Surveys    []survey.Survey `json:"surveys"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type nearbyInput struct {
	Lat    float64 `query:"lat" required:"true" minimum:"-90" maximum:"90"`
	Lng    float64 `query:"lng" required:"true" minimum:"-180" maximum:"180"`
	Radius float64 `query:"radius" minimum:"0" maximum:"500" default:"10" doc:"Радиус поиска, км"`
}

type nearbyOutput struct {
	Body NearbyResponse
}

type NearbyResponse struct {
	Status  string          `json:"status"`
	Count   int             `json:"count"`
	Surveys []survey.Nearby `json:"surveys"`
}

type statsInput struct{}

type statsOutput struct {
	Body StatsResponse
}

type StatsResponse struct {
	Status string             `json:"status"`
	Stats  *survey.Statistics `json:"stats"`
}

type idInput struct {
	ID int64 `path:"id" minimum:"1"`
}

type getOutput struct {
	Body GetResponse
}

type GetResponse struct {
	Status string         `json:"status"`
	Survey *survey.Survey `json:"survey"`
}

type deleteOutput struct {
	Body DeleteResponse
}

type DeleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type exportInput struct {
	FilterParams
}

type exportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               func(ctx huma.Context)
}
