package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id"`
	ChatId    string            `json:"chat_id,omitempty"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type IngestResult struct {
	FileName     string `json:"file_name"`
	IndexedCount int    `json:"indexed_count"`
}

type Result struct {
	Status              string        `json:"status"`
	RAGExternalResponse *RAGResponse  `json:"rag_response,omitempty"`
	Ingest              *IngestResult `json:"ingest,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type StatsResponse struct {
	Collection     string `json:"collection"`
	Documents      uint64 `json:"documents"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
	QdrantOnline   bool   `json:"qdrant_online"`
}

// requests---------------------

type QueryRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatID,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id"`
}
