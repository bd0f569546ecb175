package middleware

import (
	"net/http"
	"strconv"

	"fryerbot/internal/handlers"
	"fryerbot/internal/metrics"
	"fryerbot/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

// Read-only routes stay reachable without a token, liveness probes and the
// upload page must not 401 when ADMIN_TOKEN is set.
var IndexHandler = WrapPublic(handlers.IndexHandler)
var HealthHandler = WrapPublic(handlers.HealthHandler)
var GetStatusHandler = WrapPublic(handlers.GetStatusHandler)
var StatsHandler = WrapPublic(handlers.StatsHandler)

var QueryHandler = Wrap(handlers.QueryHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)

// Wrap guards the mutating routes: trace, bearer auth, per-IP rate limit.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, processRequest)
}

// WrapPublic covers the read-only routes: trace and metrics only.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, processPublicRequest)
}

func wrap(next http.HandlerFunc, process func(requestResponseStruct) requestResponseStruct) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := process(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop here if rate limit fails
	}

	return re
}

func processPublicRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
	}
	return re
}
