package health

import "time"

type Input struct{}

type Output struct {
	Status int
	Body   Response
}

type Response struct {
	Status   string    `json:"status" example:"OK" doc:"Health status of the service"`
	Database string    `json:"database" example:"connected" doc:"Database connectivity"`
	Time     time.Time `json:"time" doc:"Server time"`
	Error    string    `json:"error,omitempty"`
}
