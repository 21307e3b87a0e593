package storage

// WageLogRecord is the batch-create payload for one imported row.
type WageLogRecord struct {
	WorkerID        int64   `json:"worker_id"`
	ProcessID       int64   `json:"process_id"`
	SpecModelID     int64   `json:"spec_model_id"`
	Date            string  `json:"date"`
	ActualPrice     float64 `json:"actual_price"`
	Quantity        float64 `json:"quantity"`
	ActualGroupSize float64 `json:"actual_group_size"`
	TotalWage       float64 `json:"total_wage"`
	Remark          string  `json:"remark"`
}

// WageLog is a stored wage-log row as returned by the query endpoint.
type WageLog struct {
	ID              int64   `json:"id"`
	Worker          string  `json:"worker"`
	WorkerID        int64   `json:"worker_id"`
	Process         string  `json:"process"`
	ProcessID       int64   `json:"process_id"`
	SpecModel       string  `json:"spec_model"`
	SpecModelID     int64   `json:"spec_model_id"`
	ActualPrice     float64 `json:"actual_price"`
	Quantity        float64 `json:"quantity"`
	ActualGroupSize float64 `json:"actual_group_size"`
	TotalWage       float64 `json:"total_wage"`
	Date            string  `json:"date"`
	Remark          string  `json:"remark,omitempty"`
}

type WageLogFilter struct {
	StartDate string
	EndDate   string
	WorkerID  int64
	ProcessID int64
}
