package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fryerbot/internal/adapter"
	"fryerbot/internal/adapter/utils"
	"fryerbot/internal/api"
	"fryerbot/internal/config"
	"fryerbot/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id              string
	chatId          string
	message         string
	isNewChat       bool
	traceId         string
	isCatalogIngest bool
	fileName        string
	filePath        string
	recreate        bool
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// QueryHandler accepts a question, queues a background RAG job and returns
// the job id to poll. The bot answers inline, this endpoint is for testing
// the pipeline from the admin panel.
func QueryHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Query handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateQueryRequest(requestData) {

			logRH.Warn("Bad Query Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
			return
		}
		processNewJobData(request, w, requestData, ingestUpload{})
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler retrieves the current state of a job by its id.
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler receives a catalog sheet via multipart/form-data, saves
// it to a temporary directory and queues a reindex job. The "recreate"
// field drops and recreates the collection before indexing.
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		err := r.ParseMultipartForm(config.MaxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("catalog")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		if !isSupportedCatalogFile(fileMetadata.Filename) {
			WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Unsupported file format, expected .xlsx, .xls or .csv")
			return
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Write error")
			return
		}

		upload := ingestUpload{
			fileName: fileMetadata.Filename,
			filePath: tempFilePath,
			recreate: recreateFromForm(r.FormValue("recreate")),
		}
		processNewJobData(r, w, api.QueryRequest{}, upload)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// StatsHandler reports the collection the bot answers from.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		count, err := handlerInstance.ragService.CountDocuments(r.Context())
		if err != nil {
			logRH.Error("Couldn't count documents :", "err", err)
		}

		writeJsonResponse(w, http.StatusOK, api.StatsResponse{
			Collection:     config.CollectionName(),
			Documents:      count,
			Model:          config.OpenAIModel(),
			EmbeddingModel: config.OpenAIEmbeddingModel(),
			QdrantOnline:   err == nil,
		})
	}
}

func isSupportedCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls", ".csv":
		return true
	default:
		return false
	}
}

func recreateFromForm(value string) bool {
	switch strings.ToLower(value) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
